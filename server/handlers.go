package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/nlqengine/core"
)

const (
	welcomeMessage     = "Welcome to the NLP Query Engine API!"
	emptySchemaMessage = "Successfully connected, but the database has no tables."
	noTablesDetail     = "No database tables found."
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string    `json:"detail"`
	Kind   core.Kind `json:"kind,omitempty"`
}

type queryRequest struct {
	Query *string `json:"query"`
}

type sqlResults struct {
	GeneratedSQL string     `json:"generated_sql"`
	Results      []core.Row `json:"results"`
}

type queryResponse struct {
	NaturalLanguageQuery string       `json:"natural_language_query"`
	DocumentResults      []core.Chunk `json:"document_results"`
	SQLResults           sqlResults   `json:"sql_results"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": welcomeMessage,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.pinger == nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": true})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"ok": false, "err": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSchema(c echo.Context) error {
	snapshot, err := s.describer.Describe(c.Request().Context())
	if err != nil {
		s.logFailure(c, "schema", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Detail: "Failed to analyze database schema: " + err.Error(),
			Kind:   core.KindOf(err),
		})
	}

	if snapshot.IsEmpty() {
		return c.JSON(http.StatusOK, map[string]string{"message": emptySchemaMessage})
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleQuery(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body: " + err.Error()})
	}
	if req.Query == nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "field required: query"})
	}

	result, err := s.answerer.Answer(c.Request().Context(), *req.Query)
	if err != nil {
		s.logFailure(c, "query", err)
		if errors.Is(err, core.ErrEmptySchema) {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: noTablesDetail, Kind: core.KindEmptySchema})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Detail: "An error occurred: " + err.Error(),
			Kind:   core.KindOf(err),
		})
	}

	return c.JSON(http.StatusOK, queryResponse{
		NaturalLanguageQuery: result.Question,
		DocumentResults:      result.DocumentHits,
		SQLResults: sqlResults{
			GeneratedSQL: result.GeneratedQuery,
			Results:      result.Rows,
		},
	})
}

func (s *Server) logFailure(c echo.Context, route string, err error) {
	s.logger.Error("request failed",
		"route", route,
		"kind", core.KindOf(err),
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"err", err)
}
