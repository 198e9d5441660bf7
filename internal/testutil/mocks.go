// Package testutil provides shared testing utilities, mocks, and fixtures
// for use across the ai-contingency test suite.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Step is one scripted response of a MockInvoker.
type Step struct {
	Result *types.Result
	Err    error
	Delay  time.Duration // sleep before answering, cut short by ctx
	Block  bool          // wait for ctx to end and return ctx.Err()
	Panic  interface{}   // panic with this value instead of answering
}

// OK returns a successful step with the given content.
func OK(content string) Step {
	return Step{Result: &types.Result{Content: content, TokensUsed: len(content), Model: "mock-model"}}
}

// Fail returns a failing step.
func Fail(err error) Step {
	return Step{Err: err}
}

// ErrBoom is a generic provider failure used by tests.
var ErrBoom = errors.New("boom: 500 internal server error")

// MockInvoker is a types.Invoker that replays a script of steps. The last step repeats
// once the script runs out. It records every request it receives.
type MockInvoker struct {
	mu       sync.Mutex
	steps    []Step
	calls    int
	requests []types.Request
}

// NewMockInvoker creates a MockInvoker with the given script.
func NewMockInvoker(steps ...Step) *MockInvoker {
	if len(steps) == 0 {
		steps = []Step{OK("ok")}
	}
	return &MockInvoker{steps: steps}
}

// AlwaysOK returns an invoker that always succeeds with content.
func AlwaysOK(content string) *MockInvoker {
	return NewMockInvoker(OK(content))
}

// AlwaysFail returns an invoker that always fails with err.
func AlwaysFail(err error) *MockInvoker {
	return NewMockInvoker(Fail(err))
}

// Invoke implements types.Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, req types.Request) (*types.Result, error) {
	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	step := m.steps[idx]
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if step.Panic != nil {
		panic(step.Panic)
	}

	if step.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if step.Delay > 0 {
		select {
		case <-time.After(step.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if step.Err != nil {
		return nil, step.Err
	}
	return step.Result, nil
}

// Calls returns the number of Invoke calls so far.
func (m *MockInvoker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of the received requests.
func (m *MockInvoker) Requests() []types.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Provider builds an enabled descriptor around an invoker.
func Provider(key string, priority int, inv types.Invoker) types.ProviderDescriptor {
	return types.ProviderDescriptor{
		Key:      key,
		Type:     "mock",
		Model:    key + "-model",
		Priority: priority,
		Enabled:  true,
		Invoker:  inv,
	}
}

// Disabled returns p with Enabled cleared.
func Disabled(p types.ProviderDescriptor) types.ProviderDescriptor {
	p.Enabled = false
	return p
}

// FailingSink is an attempt log whose writes always fail.
type FailingSink struct {
	Err error
}

func (s FailingSink) Append(ctx context.Context, records ...types.AttemptRecord) error {
	return s.Err
}

func (s FailingSink) Query(ctx context.Context, since time.Time) ([]types.AttemptRecord, error) {
	return nil, s.Err
}

func (s FailingSink) Prune(ctx context.Context, before time.Time) (int64, error) {
	return 0, s.Err
}

func (s FailingSink) Close() error { return nil }
