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

package ingestion

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/nlqengine/extract"
)

// DocumentStatus describes what happened to a document during Load.
type DocumentStatus int

const (
	// DocumentDecoded means text was extracted and split.
	DocumentDecoded DocumentStatus = iota
	// DocumentSkipped means no extractor handles the file's format.
	DocumentSkipped
	// DocumentFailed means the extractor could not decode the file.
	DocumentFailed
)

func (s DocumentStatus) String() string {
	switch s {
	case DocumentDecoded:
		return "decoded"
	case DocumentSkipped:
		return "skipped"
	case DocumentFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Document is the outcome of processing one corpus file.
type Document struct {
	Name       string
	Path       string
	Status     DocumentStatus
	Paragraphs []string
	Err        error
}

// processor decodes a single document and splits it into paragraphs.
type processor struct {
	registry *extract.Registry
	logger   *slog.Logger
}

func newProcessor(registry *extract.Registry, logger *slog.Logger) *processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &processor{
		registry: registry,
		logger:   logger.With("processor", "documents"),
	}
}

// process never returns an error; failures are recorded on the Document.
func (p *processor) process(ctx context.Context, path string) Document {
	doc := Document{
		Name: filepath.Base(path),
		Path: path,
	}

	if !p.registry.Supports(path) {
		p.logger.Debug("skipping unsupported document", "document", doc.Name)
		doc.Status = DocumentSkipped
		return doc
	}

	if err := ctx.Err(); err != nil {
		doc.Status = DocumentFailed
		doc.Err = err
		return doc
	}

	text, err := p.registry.Extract(ctx, path)
	if err != nil {
		p.logger.Warn("error decoding document", "document", doc.Name, "err", err)
		doc.Status = DocumentFailed
		doc.Err = err
		return doc
	}

	doc.Status = DocumentDecoded
	doc.Paragraphs = SplitParagraphs(text)
	p.logger.Debug("decoded document", "document", doc.Name, "paragraphs", len(doc.Paragraphs))
	return doc
}
