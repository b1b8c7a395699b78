package telegram

import (
	"fmt"
	"net/http"
	"time"

	"relaybot/internal/retry"
)

// APIError is a Telegram API-level failure (ok=false response). Its retry
// classification follows the HTTP-style error code Telegram returns:
// 401/403 can never succeed on retry, 429 carries a server-demanded wait,
// 5xx is transient.
type APIError struct {
	Method         string
	Code           int
	Description    string
	RetryAfterSecs int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

func (e *APIError) RetryKind() retry.Kind {
	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return retry.Permanent
	case e.Code == http.StatusTooManyRequests:
		return retry.RateLimited
	case e.Code >= 500:
		return retry.Recoverable
	default:
		return retry.Unknown
	}
}

func (e *APIError) RetryAfter() time.Duration {
	return time.Duration(e.RetryAfterSecs) * time.Second
}

// TransportError is a failure below the API level: DNS, dial, timeout,
// connection reset, or an unreadable response body. Always recoverable.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) RetryKind() retry.Kind { return retry.Recoverable }

func (e *TransportError) RetryAfter() time.Duration { return 0 }
