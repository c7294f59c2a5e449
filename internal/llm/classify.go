package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Failure is how the retry layer treats an error from a provider.
type Failure int

const (
	FailureUnknown     Failure = iota // unrecognised; retried
	FailureCanceled                   // the caller gave up
	FailureRateLimited                // 429; retried, honouring Retry-After
	FailureUnavailable                // 5xx or transport; retried
	FailureRejected                   // other 4xx; retrying cannot help
	FailureInvalid                    // output broke the schema; retried once
	FailureTruncated                  // output hit MaxTokens
)

func (f Failure) String() string {
	switch f {
	case FailureCanceled:
		return "canceled"
	case FailureRateLimited:
		return "rate_limited"
	case FailureUnavailable:
		return "unavailable"
	case FailureRejected:
		return "rejected"
	case FailureInvalid:
		return "invalid"
	case FailureTruncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// Classify sorts err into a Failure.
func Classify(err error) Failure {
	var (
		rl    *ErrRateLimit
		down  *ErrProviderUnavailable
		inv   *ErrInvalidResponse
		trunc *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return FailureUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.As(err, &trunc):
		return FailureTruncated
	case errors.As(err, &inv):
		return FailureInvalid
	case errors.As(err, &rl):
		return FailureRateLimited
	case errors.As(err, &down):
		if down.Status >= 400 && down.Status < 500 {
			return FailureRejected
		}
		return FailureUnavailable
	default:
		return FailureUnknown
	}
}

// ErrRateLimit is a 429. RetryAfter is zero when the provider sent no
// hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable is any other failed call. Status is the HTTP
// status, or 0 when the request never got an answer.
type ErrProviderUnavailable struct {
	Status int
	Err    error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Err == nil:
		return "model provider unavailable"
	case e.Status > 0:
		return fmt.Sprintf("model provider returned %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse carries output that failed schema validation.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded carries output cut off at MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated at max tokens"
}

// statusError wraps an SDK error that carried an HTTP status. hdr may be
// nil when the SDK does not expose the response.
func statusError(status int, hdr http.Header, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: retryAfter(hdr, time.Now()), Err: err}
	}
	return &ErrProviderUnavailable{Status: status, Err: err}
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP
// date.
func retryAfter(hdr http.Header, now time.Time) time.Duration {
	v := hdr.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
