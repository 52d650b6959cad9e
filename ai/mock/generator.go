package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/nlqengine/core"
)

// MockQueryGenerator is a test double for ai.QueryGenerator.
// It allows custom behavior injection via function fields.
type MockQueryGenerator struct {
	// GenerateQueryFunc is called by GenerateQuery if set.
	// If nil, selects every row of the lexically first table.
	GenerateQueryFunc func(ctx context.Context, question string, schema *core.SchemaSnapshot) (string, error)

	// Queries maps exact questions to canned SQL and takes precedence over
	// the default behavior.
	Queries map[string]string

	callCount atomic.Int64
}

// NewMockQueryGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockQueryGenerator() *MockQueryGenerator {
	return &MockQueryGenerator{}
}

// GenerateQuery returns canned or default SQL.
func (m *MockQueryGenerator) GenerateQuery(ctx context.Context, question string, schema *core.SchemaSnapshot) (string, error) {
	m.callCount.Add(1)

	if m.GenerateQueryFunc != nil {
		return m.GenerateQueryFunc(ctx, question, schema)
	}

	if sql, ok := m.Queries[question]; ok {
		return sql, nil
	}

	names := schema.TableNames()
	if len(names) == 0 {
		return "", core.ErrEmptySchema
	}
	return "SELECT * FROM " + names[0], nil
}

// CallCount returns the number of times GenerateQuery was called.
func (m *MockQueryGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom behavior.
func (m *MockQueryGenerator) Reset() {
	m.callCount.Store(0)
	m.GenerateQueryFunc = nil
	m.Queries = nil
}
