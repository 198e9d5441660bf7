package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchResult_Err(t *testing.T) {
	ok := &DispatchResult{Success: true, ProviderKey: "a", Content: "hi"}
	assert.NoError(t, ok.Err())
	assert.False(t, ok.Exhausted())

	exhausted := NewFailedResult("d1", nil, fmt.Errorf("%w: a: boom", ErrAllProvidersExhausted))
	assert.True(t, errors.Is(exhausted.Err(), ErrAllProvidersExhausted))
	assert.True(t, exhausted.Exhausted())
	assert.Equal(t, "all providers exhausted: a: boom", exhausted.Error)

	cancelled := NewFailedResult("d2", nil, fmt.Errorf("%w: context canceled", ErrDispatchCancelled))
	assert.True(t, errors.Is(cancelled.Err(), ErrDispatchCancelled))
	assert.False(t, cancelled.Exhausted())
}

func TestDispatchResult_ErrWithoutCause(t *testing.T) {
	// Results decoded from JSON carry no cause.
	res := &DispatchResult{Success: false, Error: "all providers failed"}
	assert.True(t, errors.Is(res.Err(), ErrAllProvidersExhausted))

	var nilRes *DispatchResult
	assert.NoError(t, nilRes.Err())
}
