package errors

import (
	"fmt"
	"testing"

	stdErrors "errors"

	"github.com/stretchr/testify/assert"
)

func TestIsFaultClassifiesAllVariants(t *testing.T) {
	cases := []error{
		NewMisuseError("fmi2Instantiate", fmt.Errorf("null instance_name")),
		NewTransportError("send", fmt.Errorf("connection reset")),
		NewSubprocessError("recv", 1, false, nil),
		NewDecodeError("decode reply", 12, 3, 7, fmt.Errorf("unexpected tag")),
		NewBackendStatusError("fmi2DoStep", 2),
		NewFatalShimError("GetString", fmt.Errorf("interior NUL byte")),
	}
	for _, err := range cases {
		assert.True(t, IsFault(err), "expected %v to be a fault", err)
	}
	assert.False(t, IsFault(nil))
	assert.False(t, IsFault(fmt.Errorf("plain error")))
}

func TestWrappedFaultIsStillClassified(t *testing.T) {
	base := NewTransportError("recv", fmt.Errorf("eof"))
	wrapped := fmt.Errorf("dispatch failed: %w", base)
	assert.True(t, IsFault(wrapped))

	var te *TransportError
	assert.True(t, stdErrors.As(wrapped, &te))
	assert.Equal(t, "recv", te.Op)
}

func TestIsSubprocessDeath(t *testing.T) {
	err := NewSubprocessError("send_and_recv", 137, true, nil)
	assert.True(t, IsSubprocessDeath(err))
	assert.False(t, IsSubprocessDeath(NewTransportError("x", nil)))
}

func TestIsFatal(t *testing.T) {
	err := NewFatalShimError("GetString", fmt.Errorf("interior NUL byte"))
	assert.True(t, IsFatal(err))
	assert.False(t, IsFatal(NewMisuseError("x", nil)))
}

func TestBackendStatusErrorMessage(t *testing.T) {
	err := NewBackendStatusError("fmi3GetFloat64", 4)
	assert.Contains(t, err.Error(), "status 4")
	assert.Contains(t, err.Error(), "fmi3GetFloat64")
}
