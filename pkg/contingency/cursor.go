package contingency

import (
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common/retry"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// cursor is the dispatch state machine: (provider position, attempt number).
// It starts at (0, 1) and is advanced once per failed attempt.
type cursor struct {
	order    []types.ProviderDescriptor
	policies []*retry.RetryPolicy
	provider int
	attempt  int
}

func newCursor(order []types.ProviderDescriptor, policyFor func(types.ProviderDescriptor) *retry.RetryPolicy) *cursor {
	policies := make([]*retry.RetryPolicy, len(order))
	for i, p := range order {
		policies[i] = policyFor(p)
	}
	return &cursor{
		order:    order,
		policies: policies,
		attempt:  1,
	}
}

func (c *cursor) done() bool {
	return c.provider >= len(c.order)
}

// current returns the provider to call next, its position and the attempt number.
func (c *cursor) current() (types.ProviderDescriptor, int, int) {
	return c.order[c.provider], c.provider, c.attempt
}

// advance moves past a failed attempt. It either stays on the same provider and
// returns the wait before the retry, or moves to the next provider with switched set.
func (c *cursor) advance() (wait time.Duration, switched bool) {
	policy := c.policies[c.provider]
	if policy.HasNext(c.attempt) {
		wait = policy.Strategy().NextDelay(c.attempt)
		c.attempt++
		return wait, false
	}
	c.provider++
	c.attempt = 1
	return 0, true
}
