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
	"log/slog"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client         llms.Model
	reasoningModel string
	maxAttempts    int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:         client,
		reasoningModel: config.ReasoningModel,
		maxAttempts:    config.MaxAttempts,
		retryBaseDelay: config.RetryBaseDelay,
		logger:         slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Invoke sends one prompt to the service and returns the raw completion.
// Transient failures are retried with exponential backoff before the error
// is surfaced to the caller.
func (g *Generator) Invoke(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
	options := ai.ApplyInvokeOptions(opts...)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(options.Temperature),
	}
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(options.MaxTokens))
	}
	if options.StructuredOutput {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	if options.Reasoning && g.reasoningModel != "" {
		callOpts = append(callOpts, llms.WithModel(g.reasoningModel))
	}

	var text string
	err := ai.RetryWithBackoff(ctx, func() error {
		response, err := g.client.GenerateContent(ctx, content, callOpts...)
		if err != nil {
			return err
		}
		if len(response.Choices) < 1 {
			return ai.ErrEmptyCompletion
		}
		text = response.Choices[0].Content
		return nil
	}, g.maxAttempts, g.retryBaseDelay)
	if err != nil {
		g.logger.Error("generation failed", "promptLength", len(prompt), "err", err)
		return "", err
	}

	g.logger.Debug("generation complete",
		"promptLength", len(prompt),
		"responseLength", len(text),
		"reasoning", options.Reasoning)
	return text, nil
}
