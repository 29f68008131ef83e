package ai

import "context"

// Generator sends prompts to a text generation service.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Invoke sends a single prompt and returns the model's raw output text.
	// The output is returned verbatim, including any markdown fences or
	// reasoning markup the model emitted; callers that expect structured
	// data recover it with the decode package.
	// Returns an error if the service call fails after retries.
	Invoke(ctx context.Context, prompt string, opts ...InvokeOption) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Generator and
// Embedder instances, ensuring they share configuration and resources.
type Provider interface {
	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

// InvokeOptions collects the per-call parameters of a generation request.
type InvokeOptions struct {
	// Temperature controls sampling randomness. Default: 0.7
	Temperature float64

	// MaxTokens caps the length of the completion. Default: 2048
	MaxTokens int

	// Reasoning asks for a reasoning-capable model when the provider has
	// one configured. Reasoning markup in the output is stripped by the
	// decode package.
	Reasoning bool

	// StructuredOutput asks the service to constrain output to valid JSON.
	StructuredOutput bool
}

// InvokeOption is a functional option for a single Invoke call.
type InvokeOption func(*InvokeOptions)

// WithTemperature sets the sampling temperature for one call.
func WithTemperature(t float64) InvokeOption {
	return func(o *InvokeOptions) {
		o.Temperature = t
	}
}

// WithMaxTokens sets the completion length cap for one call.
func WithMaxTokens(n int) InvokeOption {
	return func(o *InvokeOptions) {
		o.MaxTokens = n
	}
}

// WithReasoning requests a reasoning-capable model for one call.
func WithReasoning() InvokeOption {
	return func(o *InvokeOptions) {
		o.Reasoning = true
	}
}

// WithStructuredOutput requests JSON-constrained output for one call.
func WithStructuredOutput() InvokeOption {
	return func(o *InvokeOptions) {
		o.StructuredOutput = true
	}
}

// ApplyInvokeOptions resolves the options for one call against the defaults.
func ApplyInvokeOptions(opts ...InvokeOption) InvokeOptions {
	options := InvokeOptions{
		Temperature: 0.7,
		MaxTokens:   2048,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
