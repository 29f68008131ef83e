// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Generator, ai.Embedder,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Scripted responses, returned in order
//	gen := mock.NewMockGenerator(`[{"index":0,"category":"research"}]`, `[]`)
//
//	// Custom behavior injection
//	gen.InvokeFunc = func(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
//	    return "{}", nil
//	}
//
//	// Check call counts
//	count := gen.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockGenerator: Pops scripted responses; returns "[]" when exhausted
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockProvider: Aggregates mock generator and embedder
package mock
