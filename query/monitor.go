package query

import (
	"log/slog"

	"github.com/poiesic/nlqengine/core"
)

// Monitor provides hooks to observe the answering of a question.
// AfterSearch runs on the search goroutine, concurrently with the other
// hooks, so implementations must be safe for concurrent use.
type Monitor interface {
	Start(question string)
	AfterSearch(hits []core.Chunk, err error)
	AfterDescribe(snapshot *core.SchemaSnapshot)
	AfterGenerate(statement string)
	AfterExecute(rows []core.Row)
	Failed(err error)
	Finish(result *core.QueryResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterSearch(_ []core.Chunk, _ error)  {}
func (n *noopMonitor) AfterDescribe(_ *core.SchemaSnapshot) {}
func (n *noopMonitor) AfterGenerate(_ string)               {}
func (n *noopMonitor) AfterExecute(_ []core.Row)            {}
func (n *noopMonitor) Failed(_ error)                       {}
func (n *noopMonitor) Finish(_ *core.QueryResult)           {}

// LoggingMonitor reports every step through slog at debug level and
// failures at warn level, tagged with the failure kind.
type LoggingMonitor struct {
	logger *slog.Logger
}

var _ Monitor = (*LoggingMonitor)(nil)

// NewLoggingMonitor creates a monitor that logs to logger, or to
// slog.Default() when logger is nil.
func NewLoggingMonitor(logger *slog.Logger) *LoggingMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMonitor{logger: logger.With("component", "query-monitor")}
}

func (m *LoggingMonitor) Start(question string) {
	m.logger.Debug("answering question", "question", question)
}

func (m *LoggingMonitor) AfterSearch(hits []core.Chunk, err error) {
	if err != nil {
		m.logger.Debug("document search failed", "err", err)
		return
	}
	m.logger.Debug("document search complete", "hits", len(hits))
}

func (m *LoggingMonitor) AfterDescribe(snapshot *core.SchemaSnapshot) {
	m.logger.Debug("schema described", "tables", len(snapshot.Tables))
}

func (m *LoggingMonitor) AfterGenerate(statement string) {
	m.logger.Debug("query generated", "sql", statement)
}

func (m *LoggingMonitor) AfterExecute(rows []core.Row) {
	m.logger.Debug("query executed", "rows", len(rows))
}

func (m *LoggingMonitor) Failed(err error) {
	m.logger.Warn("question failed", "kind", core.KindOf(err), "err", err)
}

func (m *LoggingMonitor) Finish(result *core.QueryResult) {
	m.logger.Info("question answered",
		"documents", len(result.DocumentHits),
		"rows", len(result.Rows))
}
