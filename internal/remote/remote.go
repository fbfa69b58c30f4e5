// Package remote classifies failures from hosted speech and language services.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrServiceUnavailable reports a transport or service-side failure.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrTimeout reports that a request exceeded its configured deadline.
	ErrTimeout = errors.New("service timeout")
	// ErrMissingCredential reports that no API key was available.
	ErrMissingCredential = errors.New("missing credential")
)

// Error wraps a backend failure with its classified kind.
type Error struct {
	Service string
	Kind    error
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Service, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Service, e.Kind, e.Cause)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// MissingCredential builds the error returned when envName is unset.
func MissingCredential(service string, envName string) error {
	return &Error{
		Service: service,
		Kind:    ErrMissingCredential,
		Cause:   fmt.Errorf("environment variable %s is not set", envName),
	}
}

// Classify maps a raw client error to ErrTimeout or ErrServiceUnavailable.
//
// ctx is the request context; a context deadline always classifies as timeout.
func Classify(ctx context.Context, service string, err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}
	if IsTimeout(ctx, err) {
		return &Error{Service: service, Kind: ErrTimeout, Cause: err}
	}
	return &Error{Service: service, Kind: ErrServiceUnavailable, Cause: err}
}

// IsTimeout reports deadline-style failures from either ctx or the transport.
func IsTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
