package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies extraction failures so callers can decide between
// retrying, surfacing configuration problems, and giving up.
type Kind string

const (
	// KindCredentialMissing means no API key was configured at all.
	KindCredentialMissing Kind = "credential_missing"
	// KindCredentialInvalid means the service rejected the API key.
	KindCredentialInvalid Kind = "credential_invalid"
	// KindNetworkError covers timeouts and transport failures.
	KindNetworkError Kind = "network_error"
	// KindRateLimited means the service throttled the request.
	KindRateLimited Kind = "rate_limited"
	// KindQuotaExceeded means the account's quota is spent; retrying
	// within the same run will not help.
	KindQuotaExceeded Kind = "quota_exceeded"
	// KindServiceUnavailable covers 5xx and overload responses.
	KindServiceUnavailable Kind = "service_unavailable"
	// KindContentTooLong means the batch exceeded the model's input
	// limit.
	KindContentTooLong Kind = "content_too_long"
	// KindUnknown is everything the classifier does not recognize.
	KindUnknown Kind = "unknown"
)

// Error wraps an extraction failure with its classification.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient enough that a
// retry with backoff might succeed. Only throttling and transport
// failures qualify; credential, quota and content-size failures will
// fail the same way every time.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindNetworkError
}

// Classify wraps err in an *Error with the Kind inferred from the
// error text. The Gemini SDK surfaces service failures as formatted
// strings rather than typed sentinels, so classification is marker
// matching on the message. If err is already an *Error it is returned
// unchanged.
func Classify(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindNetworkError, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key not valid", "api_key_invalid", "invalid api key", "permission_denied", "unauthenticated"):
		return &Error{Kind: KindCredentialInvalid, Err: err}
	case containsAny(msg, "quota exceeded", "exceeded your current quota", "insufficient quota"):
		return &Error{Kind: KindQuotaExceeded, Err: err}
	case containsAny(msg, "429", "resource_exhausted", "rate limit", "too many requests"):
		return &Error{Kind: KindRateLimited, Err: err}
	case containsAny(msg, "token count", "input too long", "exceeds the maximum", "request payload size"):
		return &Error{Kind: KindContentTooLong, Err: err}
	case containsAny(msg, "503", "unavailable", "overloaded", "500", "internal error"):
		return &Error{Kind: KindServiceUnavailable, Err: err}
	case containsAny(msg, "connection refused", "connection reset", "no such host", "timeout", "deadline exceeded", "broken pipe", "eof"):
		return &Error{Kind: KindNetworkError, Err: err}
	default:
		return &Error{Kind: KindUnknown, Err: err}
	}
}

func containsAny(msg string, markers ...string) bool {
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
