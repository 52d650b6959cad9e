package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func setupPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestSplitParagraphs(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\n\t\n ", nil},
		{"single paragraph", "Alice works in Engineering.", []string{"Alice works in Engineering."}},
		{"two paragraphs", "Alice works in Engineering.\n\nBob works in Sales.", []string{"Alice works in Engineering.", "Bob works in Sales."}},
		{"line breaks stay inside a paragraph", "line one\nline two\n\nnext", []string{"line one\nline two", "next"}},
		{"windows line endings", "first\r\n\r\nsecond\r\n", []string{"first", "second"}},
		{"blank line with spaces", "first\n   \nsecond", []string{"first", "second"}},
		{"runs of blank lines", "first\n\n\n\n  second  ", []string{"first", "second"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitParagraphs(tc.text))
		})
	}
}

func TestPipeline_Load(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "b.txt", "Bob works in Sales.\n\n\n")
	writeCorpusFile(t, dir, "a.txt", "Alice works in Engineering.\n\nAlice likes Go.")
	writeCorpusFile(t, dir, "c.png", "binary")
	writeCorpusFile(t, dir, "d.md", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeCorpusFile(t, filepath.Join(dir, "nested"), "hidden.txt", "never loaded")

	p := setupPipeline(t, WithPoolSize(4))

	var observed []string
	corpus, err := p.Load(context.Background(), dir, func(doc Document) {
		observed = append(observed, doc.Name+":"+doc.Status.String())
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt:decoded", "b.txt:decoded", "c.png:skipped", "d.md:decoded"}, observed)
	assert.Equal(t, 3, corpus.Count(DocumentDecoded))
	assert.Equal(t, 1, corpus.Count(DocumentSkipped))
	assert.Equal(t, 0, corpus.Count(DocumentFailed))

	require.Len(t, corpus.Chunks, 3)
	assert.Equal(t, core.Chunk{Source: "a.txt", Content: "Alice works in Engineering.", Ordinal: 0}, corpus.Chunks[0])
	assert.Equal(t, core.Chunk{Source: "a.txt", Content: "Alice likes Go.", Ordinal: 1}, corpus.Chunks[1])
	assert.Equal(t, core.Chunk{Source: "b.txt", Content: "Bob works in Sales.", Ordinal: 2}, corpus.Chunks[2])
}

func TestPipeline_Load_OrderIndependentOfWorkers(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 30; i++ {
		writeCorpusFile(t, dir, fmt.Sprintf("doc%02d.txt", i), fmt.Sprintf("paragraph %d\n\nfollow-up %d", i, i))
	}

	p := setupPipeline(t, WithPoolSize(8))
	corpus, err := p.Load(context.Background(), dir, nil)
	require.NoError(t, err)

	require.Len(t, corpus.Chunks, 60)
	for i, chunk := range corpus.Chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, fmt.Sprintf("doc%02d.txt", i/2), chunk.Source)
	}
}

func TestPipeline_Load_DecodeFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "broken.pdf", "not a pdf")
	writeCorpusFile(t, dir, "good.txt", "still indexed")

	p := setupPipeline(t)
	corpus, err := p.Load(context.Background(), dir, nil)
	require.NoError(t, err)

	require.Len(t, corpus.Documents, 2)
	assert.Equal(t, DocumentFailed, corpus.Documents[0].Status)
	assert.True(t, errors.Is(corpus.Documents[0].Err, core.ErrExtraction))
	require.Len(t, corpus.Chunks, 1)
	assert.Equal(t, "still indexed", corpus.Chunks[0].Content)
	assert.Equal(t, 0, corpus.Chunks[0].Ordinal)
}

func TestPipeline_Load_CustomRegistry(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "notes.csv", "ignored")

	registry := extract.NewEmptyRegistry()
	registry.Register(".csv", extract.ExtractorFunc(func(ctx context.Context, path string) (string, error) {
		return "one\n\ntwo", nil
	}))

	p := setupPipeline(t, WithRegistry(registry))
	corpus, err := p.Load(context.Background(), dir, nil)
	require.NoError(t, err)
	require.Len(t, corpus.Chunks, 2)
	assert.Equal(t, "notes.csv", corpus.Chunks[1].Source)
}

func TestPipeline_Load_MissingDirectory(t *testing.T) {
	p := setupPipeline(t)

	_, err := p.Load(context.Background(), filepath.Join(t.TempDir(), "absent"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestPipeline_Load_FileInsteadOfDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "file.txt", "x")

	p := setupPipeline(t)
	_, err := p.Load(context.Background(), filepath.Join(dir, "file.txt"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorpusNotDirectory))
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestPipeline_Load_EmptyDirectory(t *testing.T) {
	p := setupPipeline(t)

	corpus, err := p.Load(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, corpus.Documents)
	assert.Empty(t, corpus.Chunks)
}

func TestNewPipeline_NilRegistry(t *testing.T) {
	_, err := NewPipeline(WithRegistry(nil))
	assert.ErrorIs(t, err, ErrRegistryRequired)
}
