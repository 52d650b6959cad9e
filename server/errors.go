package server

import "errors"

var (
	// ErrAnswererRequired is returned when no question answerer is provided.
	ErrAnswererRequired = errors.New("answerer is required")

	// ErrDescriberRequired is returned when no schema describer is provided.
	ErrDescriberRequired = errors.New("schema describer is required")
)
