package llm

import (
	"context"
	"sync"

	"github.com/pavelanni/tutor/internal/model"
)

// MockResponse is a canned reply for MockBackend.
type MockResponse struct {
	Content string
	Err     error
}

// MockBackend returns canned replies in FIFO order and records every request.
type MockBackend struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     [][]model.ChatMessage
}

// NewMock creates a MockBackend with the given canned replies.
func NewMock(responses ...MockResponse) *MockBackend {
	return &MockBackend{responses: responses}
}

// Chat returns the next canned reply, or ErrProviderUnavailable once the queue is empty.
func (m *MockBackend) Chat(_ context.Context, msgs []model.ChatMessage) (model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, append([]model.ChatMessage(nil), msgs...))

	if len(m.responses) == 0 {
		return model.ChatMessage{}, &ErrProviderUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return model.ChatMessage{}, resp.Err
	}
	return model.ChatMessage{Role: model.RoleAssistant, Content: resp.Content}, nil
}

// ModelID returns "mock".
func (m *MockBackend) ModelID() string {
	return "mock"
}

// AddResponse appends a canned reply to the queue.
func (m *MockBackend) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Chat calls made.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
