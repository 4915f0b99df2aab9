package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/flowmeta/flowmeta/internal/logger"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

// RetryPolicy bounds how transient failures are retried: up to MaxAttempts
// total attempts with an exponentially doubling delay capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the platform's rate-limit behavior well
// enough in practice.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second}
}

// Statuses worth another attempt: rate limiting and gateway hiccups.
var retriableStatuses = map[int]bool{
	429: true,
	502: true,
	503: true,
	504: true,
}

// Retriable reports whether an error is transient. AuthError is never
// retriable; neither is a client-side HTTP fault like a 400.
func Retriable(err error) bool {
	var authErr *flowerrors.AuthError
	if errors.As(err, &authErr) {
		return false
	}

	var netErr *flowerrors.NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var httpErr *flowerrors.HTTPError
	if errors.As(err, &httpErr) {
		return retriableStatuses[httpErr.Status]
	}

	return false
}

type retrying struct {
	next   Doer
	policy RetryPolicy
	log    *logger.Logger
}

var _ Doer = (*retrying)(nil)

// NewRetrying wraps a Doer with the retry policy. The wrapper is stateless
// across calls and safe for concurrent use.
func NewRetrying(next Doer, policy RetryPolicy, log *logger.Logger) Doer {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 500 * time.Millisecond
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = policy.BaseDelay
	}
	return &retrying{next: next, policy: policy, log: log}
}

func (r *retrying) Do(ctx context.Context, method string, path string, query url.Values, body any) ([]byte, error) {
	delay := r.policy.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		data, err := r.next.Do(ctx, method, path, query, body)
		if err == nil {
			return data, nil
		}
		if !Retriable(err) {
			return nil, err
		}
		lastErr = err

		if attempt == r.policy.MaxAttempts {
			break
		}

		r.log.WithFields(map[string]any{
			"method":  method,
			"path":    path,
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn(fmt.Sprintf("transient failure, retrying: %v", err))

		select {
		case <-ctx.Done():
			return nil, flowerrors.NewNetworkError(method+" "+path, ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if delay > r.policy.MaxDelay {
			delay = r.policy.MaxDelay
		}
	}

	return nil, flowerrors.NewRetryExhaustedError(r.policy.MaxAttempts, lastErr)
}
