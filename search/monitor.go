package search

import "github.com/poiesic/nlqengine/ingestion"

// BuildMonitor provides hooks to observe an index build.
type BuildMonitor interface {
	Start(corpusDir string)
	DocumentLoaded(doc ingestion.Document)
	ChunksLoaded(total, cached int)
	BatchEmbedded(done, total int)
	Finish(report *BuildReport)
}

// noopMonitor is a no-op implementation of BuildMonitor
type noopMonitor struct{}

var _ BuildMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                      {}
func (n *noopMonitor) DocumentLoaded(_ ingestion.Document) {}
func (n *noopMonitor) ChunksLoaded(_, _ int)               {}
func (n *noopMonitor) BatchEmbedded(_, _ int)              {}
func (n *noopMonitor) Finish(_ *BuildReport)               {}
