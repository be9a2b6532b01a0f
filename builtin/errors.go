package builtin

import (
	"errors"
	"fmt"

	"fastedge.dev/hostapi"
)

// Kind classifies a failure surfaced to guest code.
type Kind int

const (
	// HostError is a transient host-side failure. Retrying is a guest decision.
	HostError Kind = iota
	// ArgumentError is a malformed or missing guest argument.
	ArgumentError
	// CapabilityError is an unknown or denied resource, or an invalidated handle.
	CapabilityError
)

func (k Kind) String() string {
	switch k {
	case ArgumentError:
		return "ArgumentError"
	case CapabilityError:
		return "CapabilityError"
	default:
		return "HostError"
	}
}

// Error is a failure with an explicit kind, for cases the hostapi sentinels don't cover.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Argumentf returns an ArgumentError.
func Argumentf(format string, args ...any) error {
	return &Error{Kind: ArgumentError, Msg: fmt.Sprintf(format, args...)}
}

// Classify maps an error returned by a handler to the kind of guest exception it becomes.
// Unrecognised errors are treated as host failures.
func Classify(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	switch {
	case errors.Is(err, hostapi.ErrNameNotFound),
		errors.Is(err, hostapi.ErrCapabilityDenied),
		errors.Is(err, hostapi.ErrInvalidHandle):
		return CapabilityError
	}
	return HostError
}

// Code is the machine-readable `code` carried by guest CapabilityError and HostError objects.
func Code(err error) string {
	switch {
	case errors.Is(err, hostapi.ErrNameNotFound):
		return "ERR_NAME_NOT_FOUND"
	case errors.Is(err, hostapi.ErrCapabilityDenied):
		return "ERR_CAPABILITY_DENIED"
	case errors.Is(err, hostapi.ErrInvalidHandle):
		return "ERR_INVALID_HANDLE"
	case errors.Is(err, hostapi.ErrHostUnavailable):
		return "ERR_HOST_UNAVAILABLE"
	}
	return "ERR_HOST"
}
