package openstack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/chameleoncloud/hammers-go/internal/cloud"
	"github.com/gophercloud/gophercloud/v2"
)

// isRetryable classifies an error as transient. Gophercloud HTTP errors
// with rate-limit or server-side status codes are retryable; other HTTP
// codes mean the request itself is bad and retrying cannot help.
// Non-HTTP failures (DNS, connection reset) are assumed transient.
func isRetryable(err error) bool {
	var unexpected gophercloud.ErrUnexpectedResponseCode

	if errors.As(err, &unexpected) {
		switch unexpected.Actual {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

// IsNotFound reports whether an error is a 404 from the API. Janitor
// workflows treat a vanished resource as already cleaned up.
func IsNotFound(err error) bool {
	var unexpected gophercloud.ErrUnexpectedResponseCode
	return errors.As(err, &unexpected) && unexpected.Actual == http.StatusNotFound
}

// IsConflict reports whether an error is a 409. Ironic returns these
// when a metadata patch races a provision state transition.
func IsConflict(err error) bool {
	var unexpected gophercloud.ErrUnexpectedResponseCode
	return errors.As(err, &unexpected) && unexpected.Actual == http.StatusConflict
}

// ExecuteAction runs operation under the configured retry policy:
// exponential backoff with jitter, capped per-sleep at MaxDelay and
// overall by OperationTimeout. opName appears in logs only.
func ExecuteAction(ctx context.Context, cfg cloud.RetryConfig, opName string, operation func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer cancel()

	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%s timed out before attempt %d: %w", opName, attempt+1, ctx.Err())
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxRetries {
			break
		}

		slog.Warn("Transient error detected, scheduling retry",
			"operation", opName,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"error", lastErr)

		backoff := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
		jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
		sleepDuration := min(time.Duration(backoff)+jitter, cfg.MaxDelay)

		select {
		case <-time.After(sleepDuration):
			continue
		case <-ctx.Done():
			return fmt.Errorf("%s context cancelled during backoff: %w", opName, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", opName, cfg.MaxRetries, lastErr)
}
