package routing

import (
	"context"
	"sync"

	"github.com/upb/llm-gateway/services/autorepair"
	"github.com/upb/llm-gateway/services/providers"
)

// mockProvider is a scripted test implementation of providers.Provider.
// Each call pops the next scripted outcome; once the script is
// exhausted, calls succeed.
type mockProvider struct {
	mu        sync.Mutex
	identity  providers.Identity
	available bool
	model     string
	script    []error
	calls     []string // models received, in order
}

func newMockProvider(identity providers.Identity, model string) *mockProvider {
	return &mockProvider{
		identity:  identity,
		available: true,
		model:     model,
	}
}

func (m *mockProvider) failWith(errs ...error) *mockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, errs...)
	return m
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockProvider) calledModels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockProvider) Identity() providers.Identity { return m.identity }
func (m *mockProvider) Available() bool              { return m.available }
func (m *mockProvider) DefaultModel() string         { return m.model }

func (m *mockProvider) Complete(ctx context.Context, req *providers.Request, model string) (*providers.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, model)
	var err error
	if len(m.script) > 0 {
		err = m.script[0]
		m.script = m.script[1:]
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &providers.Response{
		ID:       "mock-completion",
		Provider: m.identity,
		Model:    model,
		Content:  "mock response",
	}, nil
}

// recordingDispatcher captures repair requests for assertions.
type recordingDispatcher struct {
	mu       sync.Mutex
	requests []*autorepair.RepairRequest
	err      error
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, req *autorepair.RepairRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.err
}

func (r *recordingDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recordingDispatcher) last() *autorepair.RepairRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}
