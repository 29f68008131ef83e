package mock

import (
	"context"
	"sync"

	"github.com/poiesic/curator/ai"
)

// MockGenerator is a test double for ai.Generator.
// It pops scripted responses in order and records the prompts it received.
// Batch stages call Invoke from pool goroutines, so all state is mutex-guarded.
type MockGenerator struct {
	// InvokeFunc is called by Invoke if set.
	// If nil, scripted responses are returned in order.
	InvokeFunc func(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error)

	mu        sync.Mutex
	responses []string
	prompts   []string
	callCount int
}

// NewMockGenerator creates a mock generator with the given scripted responses.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{responses: responses}
}

// Invoke records the prompt and returns the next scripted response.
// When the script is exhausted it returns an empty JSON array, which decodes
// cleanly for every batch stage.
func (m *MockGenerator) Invoke(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	fn := m.InvokeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, opts...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) > 0 {
		response := m.responses[0]
		m.responses = m.responses[1:]
		return response, nil
	}
	return "[]", nil
}

// Enqueue appends further scripted responses.
func (m *MockGenerator) Enqueue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// CallCount returns the number of times Invoke was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns a copy of all prompts received so far, in call order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Reset clears the call count, recorded prompts and custom function.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.responses = nil
	m.InvokeFunc = nil
}
