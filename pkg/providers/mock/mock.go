// Package mock provides a scripted provider for demos, diagnostics and failure drills.
// Each call consumes the next script entry; the last entry repeats forever.
//
// Script entries:
//
//	ok               succeed with a canned reply
//	ok:<text>        succeed with <text>
//	fail:<status>    fail as if the API returned HTTP <status> (e.g. fail:429)
//	timeout          block until the call's context ends
//	empty            succeed with empty content (a malformed response)
//	delay:<dur>      wait <dur>, then succeed
package mock

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// DefaultReply is the content returned by a bare "ok" entry.
const DefaultReply = "OK"

type stepKind int

const (
	stepOK stepKind = iota
	stepFail
	stepTimeout
	stepEmpty
	stepDelay
)

type step struct {
	kind    stepKind
	content string
	status  int
	delay   time.Duration
}

// Invoker replays a parsed script.
type Invoker struct {
	key   string
	model string
	steps []step

	mu    sync.Mutex
	calls int
}

// New parses script and returns an invoker for provider key. An empty script always
// succeeds.
func New(key, model string, script []string) (*Invoker, error) {
	if model == "" {
		model = "mock"
	}
	steps, err := parseScript(script)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", key, err)
	}
	return &Invoker{key: key, model: model, steps: steps}, nil
}

func parseScript(script []string) ([]step, error) {
	if len(script) == 0 {
		return []step{{kind: stepOK, content: DefaultReply}}, nil
	}

	steps := make([]step, 0, len(script))
	for i, entry := range script {
		name, arg, hasArg := strings.Cut(strings.TrimSpace(entry), ":")
		switch strings.ToLower(name) {
		case "ok":
			content := DefaultReply
			if hasArg && arg != "" {
				content = arg
			}
			steps = append(steps, step{kind: stepOK, content: content})
		case "fail":
			status := http.StatusInternalServerError
			if hasArg {
				n, err := strconv.Atoi(arg)
				if err != nil || n < 100 || n > 599 {
					return nil, fmt.Errorf("script entry %d %q: invalid status", i, entry)
				}
				status = n
			}
			steps = append(steps, step{kind: stepFail, status: status})
		case "timeout":
			steps = append(steps, step{kind: stepTimeout})
		case "empty":
			steps = append(steps, step{kind: stepEmpty})
		case "delay":
			d, err := time.ParseDuration(arg)
			if err != nil || d < 0 {
				return nil, fmt.Errorf("script entry %d %q: invalid duration", i, entry)
			}
			steps = append(steps, step{kind: stepDelay, delay: d, content: DefaultReply})
		default:
			return nil, fmt.Errorf("script entry %d %q: unknown action", i, entry)
		}
	}
	return steps, nil
}

// Invoke implements types.Invoker.
func (m *Invoker) Invoke(ctx context.Context, req types.Request) (*types.Result, error) {
	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	s := m.steps[idx]
	m.calls++
	m.mu.Unlock()

	switch s.kind {
	case stepFail:
		return nil, common.ClassifyStatus(m.key, s.status, fmt.Sprintf("mock failure: HTTP %d %s", s.status, http.StatusText(s.status)))
	case stepTimeout:
		<-ctx.Done()
		return nil, common.ClassifyError(m.key, ctx.Err())
	case stepEmpty:
		return &types.Result{Model: m.model}, nil
	case stepDelay:
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, common.ClassifyError(m.key, ctx.Err())
		}
	}

	return &types.Result{
		Content:    s.content,
		TokensUsed: len(strings.Fields(req.Prompt)) + len(strings.Fields(s.content)),
		Model:      m.model,
	}, nil
}

// Calls returns how many times Invoke has run.
func (m *Invoker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Model returns the model name reported in results.
func (m *Invoker) Model() string { return m.model }
