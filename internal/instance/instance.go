// Package instance implements the per-instance state every FMI call funnels
// through: the dispatcher handle, string/binary return buffers, the cached
// do-step status, and the last-successful-simulation-time.
package instance

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/unifmu/unifmu-go/internal/dispatcher"
	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
	"github.com/unifmu/unifmu-go/internal/fmilog"
	"github.com/unifmu/unifmu-go/internal/logger"
	"github.com/unifmu/unifmu-go/internal/wire"
)

// Instance wraps a Dispatcher with the buffers and cached values spec.md 3
// assigns to the instance handle. Not shareable across threads: each
// instance is serially used by its creating host (spec.md 3).
type Instance struct {
	// DiagnosticID is a per-instance correlation ID, logged by Dispatch on a
	// reply variant mismatch; it is not the FMI GUID (that is backend-supplied and carried in Instantiate
	// commands), purely a local disambiguator when a host runs several
	// instances in one process.
	DiagnosticID string
	Name         string

	disp *dispatcher.Dispatcher
	log  *fmilog.Logger

	stringBuffer []string
	binaryBuffer [][]byte

	hasLastSuccessfulTime bool
	lastSuccessfulTime    float64
	cachedDoStepStatus    int32
	doomed                bool
}

// New wraps a dispatcher already connected to a live (or remote) backend.
func New(name string, disp *dispatcher.Dispatcher, log *fmilog.Logger) *Instance {
	id := uuid.NewString()
	return &Instance{DiagnosticID: id, Name: name, disp: disp, log: log}
}

// Doomed reports whether a prior call observed the backend die; per spec.md
// 5, "subsequent FMI calls on it will continue to fail with Error."
func (i *Instance) Doomed() bool { return i.doomed }

// Dispatch is the single funnel every FMI call uses (spec.md 4.E): send the
// command, receive the reply, and project it onto the expected concrete
// type. A reply of the wrong concrete type is a protocol error (spec.md 3
// invariant ii) and surfaces as a TransportError.
func Dispatch[R wire.Reply](i *Instance, cmd wire.Command) (R, error) {
	var zero R
	if i.doomed {
		return zero, unifmuerrors.NewSubprocessError("dispatch", -1, false, fmt.Errorf("instance is doomed: backend previously died"))
	}
	reply, err := i.disp.SendAndRecv(cmd)
	if err != nil {
		if unifmuerrors.IsSubprocessDeath(err) {
			i.doomed = true
		}
		return zero, err
	}
	projected, ok := reply.(R)
	if !ok {
		wantType := reflect.TypeOf(zero).String()
		gotType := reflect.TypeOf(reply).String()
		logger.Error("reply variant mismatch", "instance_id", i.DiagnosticID, "want", wantType, "got", gotType)
		return zero, unifmuerrors.NewTransportError("dispatch", fmt.Errorf("reply variant mismatch: want %s, got %s", wantType, gotType))
	}
	return projected, nil
}

// RecordDoStepResult updates last-successful-time per spec.md 3 invariant
// iii: present only when the last DoStep returned Ok or Warning.
func (i *Instance) RecordDoStepResult(status int32, currentTime, stepSize float64) {
	i.cachedDoStepStatus = status
	if status == 0 /* Ok */ || status == 1 /* Warning */ {
		i.lastSuccessfulTime = currentTime + stepSize
		i.hasLastSuccessfulTime = true
	} else {
		i.hasLastSuccessfulTime = false
	}
}

// LastSuccessfulTime returns the cached value and whether it is present.
func (i *Instance) LastSuccessfulTime() (float64, bool) { return i.lastSuccessfulTime, i.hasLastSuccessfulTime }

// CachedDoStepStatus returns the most recent DoStep status, for
// GetStatus(DoStepStatus) (spec.md 4.G).
func (i *Instance) CachedDoStepStatus() int32 { return i.cachedDoStepStatus }

// SetStringBuffer replaces the instance's string-return buffer, overwritten
// on every GetString call (spec.md 3 invariant iv). Returns a FatalShimError
// if any value contains an interior NUL byte (cannot be represented in the
// C ABI).
func (i *Instance) SetStringBuffer(values []string) error {
	for idx, v := range values {
		for _, r := range v {
			if r == 0 {
				return unifmuerrors.NewFatalShimError("GetString", fmt.Errorf("value %d contains an interior NUL byte", idx))
			}
		}
	}
	i.stringBuffer = values
	return nil
}

// StringBuffer returns the current string-return buffer; valid until the
// next FMI call on this instance (spec.md 3 invariant iv).
func (i *Instance) StringBuffer() []string { return i.stringBuffer }

// SetBinaryBuffer replaces the instance's binary-return buffer (spec.md 3
// invariant v, same lifetime rule as the string buffer).
func (i *Instance) SetBinaryBuffer(values [][]byte) { i.binaryBuffer = values }

// BinaryBuffer returns the current binary-return buffer.
func (i *Instance) BinaryBuffer() [][]byte { return i.binaryBuffer }

// Logger exposes the per-instance FMI callback logger.
func (i *Instance) Logger() *fmilog.Logger { return i.log }

// Drop sends a best-effort FreeInstance command and releases the dispatcher.
// Errors during drop must not propagate to the host (spec.md 4.E).
func (i *Instance) Drop(fmi3 bool) {
	tag := uint32(wire.TagFmi2FreeInstance)
	if fmi3 {
		tag = wire.TagFmi3FreeInstance
	}
	if !i.doomed {
		_, _ = Dispatch[*wire.StatusReply](i, wire.NewSimpleCmd(tag))
	}
	_ = i.disp.Close()
}
