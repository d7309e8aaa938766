package temporal

import (
	"context"
	"fmt"
	"sync"
)

// MockRunner is an in-memory Runner for testing. Started workflows stay
// running until Complete or Fail is called.
type MockRunner struct {
	mu       sync.Mutex
	seq      int
	runs     map[string]*ExplainStatus
	inputs   map[string]ExplainInput
	startErr error
}

// NewMockRunner creates a new MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		runs:   make(map[string]*ExplainStatus),
		inputs: make(map[string]ExplainInput),
	}
}

// StartExplain records the run and returns a deterministic ID.
func (m *MockRunner) StartExplain(ctx context.Context, input ExplainInput) (string, error) {
	if m.startErr != nil {
		return "", m.startErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := workflowID(input.Digest, fmt.Sprint(m.seq))
	m.runs[id] = &ExplainStatus{WorkflowID: id, Status: StatusRunning}
	m.inputs[id] = input
	return id, nil
}

// GetExplainStatus returns a copy of the recorded status.
func (m *MockRunner) GetExplainStatus(ctx context.Context, id string) (*ExplainStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.runs[id]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	cp := *st
	return &cp, nil
}

// Complete marks a run as completed with the given result.
func (m *MockRunner) Complete(id string, result *ExplainResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.runs[id]; ok {
		st.Status = StatusCompleted
		st.Result = result
	}
}

// Fail marks a run as failed.
func (m *MockRunner) Fail(id, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.runs[id]; ok {
		st.Status = StatusFailed
		st.Error = message
	}
}

// Input returns the input a run was started with.
func (m *MockRunner) Input(id string) (ExplainInput, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.inputs[id]
	return in, ok
}

// SetStartError makes StartExplain fail.
func (m *MockRunner) SetStartError(err error) {
	m.startErr = err
}
