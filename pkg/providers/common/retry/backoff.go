package retry

import "time"

// BackoffStrategy is the interface that all backoff strategies must implement
type BackoffStrategy interface {
	// NextDelay returns the wait after the failed attempt with the given
	// 1-based number.
	NextDelay(attempt int) time.Duration
}

// ConstantBackoffStrategy implements a constant delay between retries
type ConstantBackoffStrategy struct {
	delay time.Duration
}

// NewConstantBackoffStrategy creates a new constant backoff strategy
func NewConstantBackoffStrategy(delay time.Duration) *ConstantBackoffStrategy {
	return &ConstantBackoffStrategy{
		delay: delay,
	}
}

// NextDelay returns a constant delay regardless of attempt number
func (s *ConstantBackoffStrategy) NextDelay(attempt int) time.Duration {
	return s.delay
}

// LinearBackoffStrategy implements a linear increase in delay
type LinearBackoffStrategy struct {
	initialDelay time.Duration
	increment    time.Duration
	maxDelay     time.Duration
}

// NewLinearBackoffStrategy creates a new linear backoff strategy
func NewLinearBackoffStrategy(initialDelay, increment, maxDelay time.Duration) *LinearBackoffStrategy {
	return &LinearBackoffStrategy{
		initialDelay: initialDelay,
		increment:    increment,
		maxDelay:     maxDelay,
	}
}

// NextDelay calculates the next delay using linear backoff:
// initialDelay + increment*(attempt-1).
func (s *LinearBackoffStrategy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := s.initialDelay + time.Duration(attempt-1)*s.increment

	// Cap at max delay
	if s.maxDelay > 0 && delay > s.maxDelay {
		delay = s.maxDelay
	}
	if delay < 0 {
		delay = 0
	}

	return delay
}
