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

package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/nlqengine/core"
)

// Extractor decodes one document into plain text.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) (string, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Registry dispatches to an Extractor by lowercase file extension.
// A Registry must not be modified after it is shared between goroutines.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns a registry with the default decoders installed.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	r.Register(".pdf", ExtractorFunc(extractPDF))
	r.Register(".docx", ExtractorFunc(extractDOCX))
	r.Register(".txt", ExtractorFunc(extractText))
	r.Register(".md", ExtractorFunc(extractText))
	r.Register(".html", ExtractorFunc(extractHTML))
	r.Register(".htm", ExtractorFunc(extractHTML))
	r.Register(".xlsx", ExtractorFunc(extractXLSX))
	return r
}

// NewEmptyRegistry returns a registry with no decoders.
func NewEmptyRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

// Register installs e for ext (with or without the leading dot).
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(ext string, e Extractor) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.byExt[ext] = e
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions lists the registered extensions in lexical order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract decodes path with the extractor registered for its extension.
// Unknown extensions return ErrUnsupportedFormat; decode failures are
// ExtractionError-kind errors naming the file.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	text, err := e.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return "", err
		}
		return "", &core.Error{
			Kind:    core.KindExtraction,
			Message: "cannot decode " + filepath.Base(path),
			Cause:   err,
		}
	}
	return text, nil
}
