package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/nlqengine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAnswerer implements Answerer for testing
type testAnswerer struct {
	result   *core.QueryResult
	err      error
	calls    int
	question string
}

func (a *testAnswerer) Answer(ctx context.Context, question string) (*core.QueryResult, error) {
	a.calls++
	a.question = question
	return a.result, a.err
}

// testDescriber implements SchemaDescriber for testing
type testDescriber struct {
	snapshot *core.SchemaSnapshot
	err      error
}

func (d *testDescriber) Describe(ctx context.Context) (*core.SchemaSnapshot, error) {
	return d.snapshot, d.err
}

type testPinger struct{ err error }

func (p testPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, answerer Answerer, describer SchemaDescriber, opts ...Option) *Server {
	t.Helper()
	s, err := New(answerer, describer, opts...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func employeesSnapshot() *core.SchemaSnapshot {
	s := core.NewSchemaSnapshot()
	s.Tables["employees"] = core.Table{
		Name:        "employees",
		Columns:     []core.Column{{Name: "name", Type: "TEXT"}, {Name: "department", Type: "TEXT"}},
		ForeignKeys: []core.ForeignKey{},
	}
	return s
}

func TestNew_RequiresComponents(t *testing.T) {
	_, err := New(nil, &testDescriber{})
	assert.ErrorIs(t, err, ErrAnswererRequired)
	_, err = New(&testAnswerer{}, nil)
	assert.ErrorIs(t, err, ErrDescriberRequired)
}

func TestServer_Root(t *testing.T) {
	s := newTestServer(t, &testAnswerer{}, &testDescriber{})

	rec := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "message": "Welcome to the NLP Query Engine API!"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_Schema(t *testing.T) {
	t.Run("snapshot", func(t *testing.T) {
		s := newTestServer(t, &testAnswerer{}, &testDescriber{snapshot: employeesSnapshot()})

		rec := do(t, s, http.MethodGet, "/api/schema", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"tables": {"employees": {
			"columns": [{"name": "name", "type": "TEXT"}, {"name": "department", "type": "TEXT"}],
			"foreign_keys": []
		}}}`, rec.Body.String())
	})

	t.Run("empty store", func(t *testing.T) {
		s := newTestServer(t, &testAnswerer{}, &testDescriber{snapshot: core.NewSchemaSnapshot()})

		rec := do(t, s, http.MethodGet, "/api/schema", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message": "Successfully connected, but the database has no tables."}`, rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		err := core.Wrap(errors.New("connection refused"), core.KindConnection, "failed to describe schema")
		s := newTestServer(t, &testAnswerer{}, &testDescriber{err: err})

		rec := do(t, s, http.MethodGet, "/api/schema", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"detail":"Failed to analyze database schema: connection: failed to describe schema: connection refused"`)
		assert.Contains(t, rec.Body.String(), `"kind":"connection"`)
	})
}

func TestServer_Query(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		answerer := &testAnswerer{result: &core.QueryResult{
			Question:       "Who works in Engineering?",
			DocumentHits:   []core.Chunk{{Source: "staff.txt", Content: "Alice works in Engineering.", Ordinal: 0}},
			GeneratedQuery: "SELECT name FROM employees WHERE department = 'Engineering'",
			Rows:           []core.Row{{"name": "Alice"}},
		}}
		s := newTestServer(t, answerer, &testDescriber{})

		rec := do(t, s, http.MethodPost, "/api/query", `{"query": "Who works in Engineering?"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Who works in Engineering?", answerer.question)
		assert.JSONEq(t, `{
			"natural_language_query": "Who works in Engineering?",
			"document_results": [{"source": "staff.txt", "content": "Alice works in Engineering.", "ordinal": 0}],
			"sql_results": {
				"generated_sql": "SELECT name FROM employees WHERE department = 'Engineering'",
				"results": [{"name": "Alice"}]
			}
		}`, rec.Body.String())
	})

	t.Run("empty schema", func(t *testing.T) {
		s := newTestServer(t, &testAnswerer{err: core.ErrEmptySchema}, &testDescriber{})

		rec := do(t, s, http.MethodPost, "/api/query", `{"query": "anyone?"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"detail": "No database tables found.", "kind": "empty_schema"}`, rec.Body.String())
	})

	t.Run("generation failure", func(t *testing.T) {
		err := core.Wrap(errors.New("model timed out"), core.KindGeneration, "failed to generate query")
		s := newTestServer(t, &testAnswerer{err: err}, &testDescriber{})

		rec := do(t, s, http.MethodPost, "/api/query", `{"query": "q"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"detail": "An error occurred: generation: failed to generate query: model timed out", "kind": "generation"}`, rec.Body.String())
	})

	t.Run("untyped failure is internal", func(t *testing.T) {
		s := newTestServer(t, &testAnswerer{err: errors.New("boom")}, &testDescriber{})

		rec := do(t, s, http.MethodPost, "/api/query", `{"query": "q"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"internal"`)
	})

	t.Run("missing query", func(t *testing.T) {
		answerer := &testAnswerer{}
		s := newTestServer(t, answerer, &testDescriber{})

		for _, body := range []string{`{}`, `{"query": null}`, ""} {
			rec := do(t, s, http.MethodPost, "/api/query", body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		}
		assert.Equal(t, 0, answerer.calls)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, &testAnswerer{}, &testDescriber{})

		rec := do(t, s, http.MethodPost, "/api/query", `{"query": `)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, &testAnswerer{}, &testDescriber{}, WithPinger(testPinger{}))
	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s = newTestServer(t, &testAnswerer{}, &testDescriber{}, WithPinger(testPinger{err: errors.New("connection refused")}))
	rec = do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, &testAnswerer{}, &testDescriber{}, WithAllowedOrigins("http://localhost:3000"))

	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}
