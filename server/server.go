// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/poiesic/nlqengine/core"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8000"

// Answerer answers natural-language questions.
type Answerer interface {
	Answer(ctx context.Context, question string) (*core.QueryResult, error)
}

// SchemaDescriber produces a snapshot of the relational store.
type SchemaDescriber interface {
	Describe(ctx context.Context) (*core.SchemaSnapshot, error)
}

// Pinger checks that the relational store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP surface of the query engine.
type Server struct {
	echo      *echo.Echo
	answerer  Answerer
	describer SchemaDescriber
	pinger    Pinger
	addr      string
	origins   []string
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithAddr sets the listen address.
// Default is ":8000".
func WithAddr(addr string) Option {
	return func(s *Server) error {
		if addr == "" {
			addr = DefaultAddr
		}
		s.addr = addr
		return nil
	}
}

// WithAllowedOrigins sets the CORS origins allowed to call the API with
// credentials. Default is http://localhost:3000.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) error {
		if len(origins) > 0 {
			s.origins = origins
		}
		return nil
	}
}

// WithPinger enables the health endpoint's store check.
func WithPinger(pinger Pinger) Option {
	return func(s *Server) error {
		s.pinger = pinger
		return nil
	}
}

// New creates a server with routes and middleware registered.
func New(answerer Answerer, describer SchemaDescriber, opts ...Option) (*Server, error) {
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	if describer == nil {
		return nil, ErrDescriberRequired
	}

	s := &Server{
		answerer:  answerer,
		describer: describer,
		addr:      DefaultAddr,
		origins:   []string{"http://localhost:3000"},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "http-server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "err", v.Error)...)
				return nil
			}
			s.logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.origins,
		AllowCredentials: true,
		AllowMethods:     []string{"*"},
		AllowHeaders:     []string{"*"},
	}))

	e.GET("/", s.handleRoot)
	e.GET("/api/health", s.handleHealth)
	e.GET("/api/schema", s.handleSchema)
	e.POST("/api/query", s.handleQuery)

	s.echo = e
	return s, nil
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start listens on the configured address and blocks until the server stops.
// A server stopped by Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
