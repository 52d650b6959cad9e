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

package openai

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/poiesic/nlqengine/ai"
	"github.com/poiesic/nlqengine/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryGenerator implements ai.QueryGenerator using OpenAI-compatible chat APIs.
type QueryGenerator struct {
	client  llms.Model
	dialect core.Dialect
	logger  *slog.Logger
}

// generation is the JSON shape requested from the model.
type generation struct {
	SQL string `json:"sql"`
}

// newQueryGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryGenerator(config *ai.Config) (*QueryGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return newQueryGeneratorWithModel(client, config.Dialect), nil
}

// newQueryGeneratorWithModel wires an arbitrary llms.Model, used by tests.
func newQueryGeneratorWithModel(client llms.Model, dialect core.Dialect) *QueryGenerator {
	return &QueryGenerator{
		client:  client,
		dialect: dialect,
		logger:  slog.Default().With("component", "openai-generator"),
	}
}

// NewQueryGenerator creates a new SQL generator using the provided configuration.
//
// Returns ai.QueryGenerator interface to enforce abstraction.
func NewQueryGenerator(config *ai.Config) (ai.QueryGenerator, error) {
	return newQueryGenerator(config)
}

// GenerateQuery asks the model for one SQL statement answering question.
// The model is called exactly once; malformed output is a generation error,
// not a reason to ask again.
func (g *QueryGenerator) GenerateQuery(ctx context.Context, question string, schema *core.SchemaSnapshot) (string, error) {
	if schema.IsEmpty() {
		return "", core.ErrEmptySchema
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt(g.dialect, schema)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart("Question: " + question),
			},
		},
	}

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", core.Wrap(err, core.KindGeneration, "generation provider failed")
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return "", core.NewError(core.KindGeneration, "model returned no choices")
	}

	sql, err := parseGeneration(response.Choices[0].Content)
	if err != nil {
		g.logger.Warn("error parsing generator response", "response", response.Choices[0].Content, "err", err)
		return "", err
	}

	g.logger.Debug("generated query", "question", question, "sql", sql)
	return sql, nil
}

// parseGeneration extracts the SQL string from a model response.
// A JSON object with an "sql" field is preferred; a bare SELECT/WITH
// statement is accepted as is.
func parseGeneration(raw string) (string, error) {
	text := stripCodeFences(raw)

	var result generation
	if err := json.Unmarshal([]byte(repairJSON(text)), &result); err != nil {
		if looksLikeSQL(text) {
			return cleanSQL(text), nil
		}
		return "", core.Wrap(err, core.KindGeneration, "model output is neither JSON nor SQL")
	}

	sql := cleanSQL(result.SQL)
	if sql == "" {
		return "", core.NewError(core.KindGeneration, "model returned an empty query")
	}
	return sql, nil
}
