package cloud

import "time"

// RetryConfig tunes the exponential backoff applied to transient API
// failures. These retries cover individual REST calls only; the
// application-level remediation ledger has its own independent ceiling.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the initial
	// failure, so an operation runs at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay is the wait before the first retry; the delay doubles
	// with each subsequent attempt.
	BaseDelay time.Duration

	// MaxDelay caps the sleep between retries regardless of how large
	// the exponential calculation grows.
	MaxDelay time.Duration

	// OperationTimeout bounds the whole operation including retries and
	// backoff sleeps.
	OperationTimeout time.Duration
}

// DefaultRetryConfig is the retry posture shared by all workflows.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       3,
		BaseDelay:        2 * time.Second,
		MaxDelay:         10 * time.Second,
		OperationTimeout: 30 * time.Second,
	}
}
