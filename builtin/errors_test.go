package builtin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"fastedge.dev/hostapi"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
		code string
	}{
		{fmt.Errorf("open: %w", hostapi.ErrNameNotFound), CapabilityError, "ERR_NAME_NOT_FOUND"},
		{hostapi.ErrCapabilityDenied, CapabilityError, "ERR_CAPABILITY_DENIED"},
		{hostapi.ErrInvalidHandle, CapabilityError, "ERR_INVALID_HANDLE"},
		{fmt.Errorf("%w: disk on fire", hostapi.ErrHostUnavailable), HostError, "ERR_HOST_UNAVAILABLE"},
		{errors.New("something else"), HostError, "ERR_HOST"},
		{Argumentf("key must be a string"), ArgumentError, "ERR_HOST"},
	}

	for _, c := range cases {
		assert.Equal(t, c.kind, Classify(c.err), c.err.Error())
		assert.Equal(t, c.code, Code(c.err), c.err.Error())
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: ArgumentError, Msg: "name", Err: errors.New("can not be empty")}
	assert.Equal(t, "name: can not be empty", err.Error())
	assert.Equal(t, "bare", (&Error{Msg: "bare"}).Error())
	assert.Equal(t, "ArgumentError", ArgumentError.String())
	assert.Equal(t, "CapabilityError", CapabilityError.String())
	assert.Equal(t, "HostError", HostError.String())
}
