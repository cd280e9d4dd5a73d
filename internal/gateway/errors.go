package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/bobmcallan/hubgate/internal/tools"
)

// Error is a classified dispatch error. Adapters return it to control the
// envelope kind; anything else is classified by Classify.
type Error struct {
	Kind       string
	Message    string
	RetryAfter int // seconds, only meaningful for KindRateLimited
	Cause      error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a classified error.
func NewError(kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Retryable reports whether the error kind is worth retrying locally.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTimeout
}

// Classify maps an arbitrary handler error into an error envelope.
// Typed *Error values pass through; validation errors map to
// InvalidArguments; context expiry maps to Timeout; everything else is an
// upstream failure with the reported detail preserved.
func Classify(err error) Envelope {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		env := Failure(gwErr.Kind, gwErr.Message)
		env.RetryAfter = gwErr.RetryAfter
		return env
	}

	var valErr *tools.ValidationError
	if errors.As(err, &valErr) {
		return Failure(KindInvalidArguments, strings.Join(valErr.Violations, "; "))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Failure(KindTimeout, "request timed out before the upstream call completed")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Failure(KindTimeout, err.Error())
	}

	return Failure(KindUpstreamFailure, err.Error())
}
