package retry_test

import (
	"fmt"
	"time"

	"github.com/cecil-the-coder/ai-contingency/pkg/providers/common/retry"
)

// Example_linearBackoff shows the waits a provider sees under the default policy
func Example_linearBackoff() {
	policy := retry.DefaultRetryPolicy()
	strategy := policy.Strategy()

	for attempt := 1; policy.HasNext(attempt); attempt++ {
		fmt.Printf("after attempt %d wait %v\n", attempt, strategy.NextDelay(attempt))
	}
	// Output:
	// after attempt 1 wait 1s
	// after attempt 2 wait 2s
}

// Example_capped shows MaxDelay limiting a long retry sequence
func Example_capped() {
	policy := retry.DefaultRetryPolicy().WithMaxAttempts(5).WithMaxDelay(3 * time.Second)
	strategy := policy.Strategy()

	fmt.Println(strategy.NextDelay(4))
	// Output: 3s
}
