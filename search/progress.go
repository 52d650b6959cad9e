package search

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/nlqengine/ingestion"
)

// ProgressTracker tracks and reports progress of chunk embedding.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
// total: total number of chunks to embed
// reportInterval: report progress every N chunks
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Update sets the current progress to the specified value.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	if current > p.total {
		current = p.total
	}
	p.current = current

	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish marks the operation as complete and prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rEmbedding: %d/%d (%.1f%%) - %.1f chunks/s",
		p.current, p.total, percentage, rate)
}

// ProgressMonitor is a BuildMonitor that writes human-readable progress.
type ProgressMonitor struct {
	writer         io.Writer
	reportInterval int
	tracker        *ProgressTracker
}

var _ BuildMonitor = (*ProgressMonitor)(nil)

// NewProgressMonitor creates a monitor writing to w, reporting embedding
// progress every reportInterval chunks.
func NewProgressMonitor(w io.Writer, reportInterval int) *ProgressMonitor {
	return &ProgressMonitor{writer: w, reportInterval: reportInterval}
}

func (m *ProgressMonitor) Start(corpusDir string) {
	fmt.Fprintf(m.writer, "Loading documents from %s\n", corpusDir)
}

func (m *ProgressMonitor) DocumentLoaded(doc ingestion.Document) {
	switch doc.Status {
	case ingestion.DocumentDecoded:
		fmt.Fprintf(m.writer, "  %s: %d paragraphs\n", doc.Name, len(doc.Paragraphs))
	case ingestion.DocumentSkipped:
		fmt.Fprintf(m.writer, "  %s: skipped (unsupported format)\n", doc.Name)
	case ingestion.DocumentFailed:
		fmt.Fprintf(m.writer, "  %s: failed (%v)\n", doc.Name, doc.Err)
	}
}

func (m *ProgressMonitor) ChunksLoaded(total, cached int) {
	if cached > 0 {
		fmt.Fprintf(m.writer, "%d chunks, %d from cache\n", total, cached)
	}
	m.tracker = NewProgressTracker(m.writer, total-cached, m.reportInterval)
	m.tracker.Start()
}

func (m *ProgressMonitor) BatchEmbedded(done, _ int) {
	if m.tracker != nil {
		m.tracker.Update(done)
	}
}

func (m *ProgressMonitor) Finish(report *BuildReport) {
	if m.tracker != nil {
		m.tracker.Finish()
	}
	fmt.Fprintf(m.writer, "Indexed %d chunks from %d documents (%d skipped, %d failed) in %s\n",
		report.Chunks, report.Documents, report.Skipped, report.Failed, report.Elapsed.Round(time.Millisecond))
}
