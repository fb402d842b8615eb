package gemini

import (
	"context"
	"sync"
)

// MockClient is a Generator for tests. It records every prompt it receives.
type MockClient struct {
	Text string
	Err  error

	mu      sync.Mutex
	prompts []string
}

var _ Generator = (*MockClient)(nil)

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockClient) Close() error { return nil }

// Calls returns how many times Generate was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or "" if none was sent.
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
