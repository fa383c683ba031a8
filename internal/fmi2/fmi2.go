// Package fmi2 implements the pure-Go half of the FMI 2.0 Co-Simulation
// shim: validation, marshalling, and command dispatch. It has no cgo
// dependency so it is directly unit-testable; cmd/unifmu-shim is the thin
// C-ABI layer that calls into it.
package fmi2

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/unifmu/unifmu-go/internal/backend"
	"github.com/unifmu/unifmu-go/internal/config"
	"github.com/unifmu/unifmu-go/internal/dispatcher"
	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
	"github.com/unifmu/unifmu-go/internal/fmilog"
	"github.com/unifmu/unifmu-go/internal/instance"
	"github.com/unifmu/unifmu-go/internal/logger"
	"github.com/unifmu/unifmu-go/internal/transport"
	"github.com/unifmu/unifmu-go/internal/wire"
)

// Status mirrors the fmi2Status enum.
type Status int32

const (
	OK Status = iota
	Warning
	Discard
	Error
	Fatal
)

// TypesPlatform and Version are the fixed strings fmi2GetTypesPlatform and
// fmi2GetVersion return (spec.md 4.G, invariant 6).
const (
	TypesPlatform = "default"
	Version       = "2.0"
)

// StatusKind mirrors fmi2StatusKind. Only DoStepStatus and LastSuccessfulTime
// are supported (spec.md 4.G); the others are present to name the full enum.
type StatusKind int32

const (
	DoStepStatusKind StatusKind = iota
	PendingStatusKind
	LastSuccessfulTimeKind
	TerminatedKind
)

// Handle is the opaque instance returned by Instantiate.
type Handle struct {
	inst *instance.Instance
}

// InstantiateParams carries fmi2Instantiate's parameters.
type InstantiateParams struct {
	InstanceName     string
	GUID             string
	ResourceLocation string
	FMUType          string
	Visible          bool
	LoggingOn        bool
}

// resolveResourcePath accepts either a bare filesystem path or a file: URI,
// per spec.md 4.H's "may be a URI or a bare path" note, applied here too
// since the FMI 2 and 3 resource-location encodings are identical in
// practice.
func resolveResourcePath(location string) (string, error) {
	if !strings.Contains(location, "://") {
		return location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("malformed resource location: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported resource location scheme %q", u.Scheme)
	}
	return u.Path, nil
}

// Instantiate implements fmi2Instantiate: validates arguments, resolves the
// resource path, loads launch.toml, spawns the backend, performs the
// handshake, and forwards the Instantiate command. Any failure logs a
// structured error and returns a nil handle (spec.md 4.G).
func Instantiate(p InstantiateParams, logCallback fmilog.Callback) (*Handle, error) {
	if p.InstanceName == "" || p.ResourceLocation == "" {
		err := unifmuerrors.NewMisuseError("fmi2Instantiate", fmt.Errorf("instance_name and resource_location must be non-empty"))
		logger.Error("fmi2Instantiate rejected", "error", err)
		return nil, err
	}
	if !utf8.ValidString(p.InstanceName) || !utf8.ValidString(p.ResourceLocation) {
		err := unifmuerrors.NewMisuseError("fmi2Instantiate", fmt.Errorf("instance_name and resource_location must be valid UTF-8"))
		logger.Error("fmi2Instantiate rejected", "error", err)
		return nil, err
	}
	if p.FMUType != "CoSimulation" {
		err := unifmuerrors.NewMisuseError("fmi2Instantiate", fmt.Errorf("only CoSimulation is supported, got %q", p.FMUType))
		logger.Error("fmi2Instantiate rejected", "error", err)
		return nil, err
	}

	resourceDir, err := resolveResourcePath(p.ResourceLocation)
	if err != nil {
		wrapped := unifmuerrors.NewMisuseError("fmi2Instantiate", err)
		logger.Error("fmi2Instantiate: invalid resource_location", "error", wrapped)
		return nil, wrapped
	}

	cfg, err := config.Load(resourceDir)
	if err != nil {
		logger.Error("fmi2Instantiate: failed to load launch.toml", "error", err)
		return nil, err
	}
	argv, err := cfg.ForThisOS()
	if err != nil {
		logger.Error("fmi2Instantiate: no launch command for this OS", "error", err)
		return nil, err
	}

	sock, err := transport.Bind("127.0.0.1")
	if err != nil {
		logger.Error("fmi2Instantiate: failed to bind transport", "error", err)
		return nil, err
	}
	sup, err := backend.SpawnLocal(backend.LaunchParams{
		Command:      argv,
		ResourceDir:  resourceDir,
		Endpoint:     sock.Endpoint(),
		Port:         sock.Port(),
		GUID:         p.GUID,
		InstanceName: p.InstanceName,
		Visible:      p.Visible,
		FMUType:      p.FMUType,
	})
	if err != nil {
		_ = sock.Close()
		logger.Error("fmi2Instantiate: failed to spawn backend", "error", err)
		return nil, err
	}

	instLog := logger.WithEndpoint(logger.WithInstance(logger.Logger(), p.InstanceName, p.InstanceName), sock.Endpoint())

	// The informational [timeout].launch value never aborts the handshake
	// wait (spec.md 5 has no application-level timeout); it only logs a
	// warning if the backend is slow, per SPEC_FULL.md 6.
	var handshakeTimer *time.Timer
	if cfg.TimeoutSpec.Launch > 0 {
		d := time.Duration(cfg.TimeoutSpec.Launch) * time.Millisecond
		handshakeTimer = time.AfterFunc(d, func() {
			instLog.Warn("fmi2Instantiate: backend has not completed handshake within configured launch timeout", "timeout_ms", cfg.TimeoutSpec.Launch)
		})
	}

	disp := dispatcher.New(sock, sup)
	err = disp.AwaitHandshake()
	if handshakeTimer != nil {
		handshakeTimer.Stop()
	}
	if err != nil {
		_ = disp.Close()
		instLog.Error("fmi2Instantiate: handshake failed", "error", err)
		return nil, err
	}
	instLog.Info("backend handshake complete")

	fmiLog := fmilog.New(p.InstanceName, p.LoggingOn, logCallback)
	inst := instance.New(p.InstanceName, disp, fmiLog)

	reply, err := instance.Dispatch[*wire.StatusReply](inst, &wire.Fmi2InstantiateCmd{
		InstanceName: p.InstanceName,
		Guid:         p.GUID,
		ResourcePath: resourceDir,
		Visible:      p.Visible,
		LoggingOn:    p.LoggingOn,
	})
	if err != nil {
		logger.Error("fmi2Instantiate: backend rejected Instantiate command", "error", err)
		inst.Drop(false)
		return nil, err
	}
	if reply.Status != int32(OK) {
		err := unifmuerrors.NewBackendStatusError("fmi2Instantiate", int(reply.Status))
		logger.Error("fmi2Instantiate: backend returned non-OK status", "status", reply.Status)
		inst.Drop(false)
		return nil, err
	}

	return &Handle{inst: inst}, nil
}

func (h *Handle) dispatchStatus(op string, cmd wire.Command) Status {
	reply, err := instance.Dispatch[*wire.StatusReply](h.inst, cmd)
	if err != nil {
		logger.Error(op+": dispatch failed", "error", err)
		return Error
	}
	return Status(reply.Status)
}

// SetDebugLogging updates the local category filter (spec.md 4.F) and
// forwards the request to the backend.
func (h *Handle) SetDebugLogging(loggingOn bool, categories []string) Status {
	h.inst.Logger().SetDebugLogging(loggingOn, categories)
	cmd := wire.NewFmi2SetDebugLoggingCmd()
	cmd.LoggingOn = loggingOn
	cmd.Categories = categories
	return h.dispatchStatus("fmi2SetDebugLogging", cmd)
}

func (h *Handle) SetupExperiment(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) Status {
	return h.dispatchStatus("fmi2SetupExperiment", &wire.Fmi2SetupExperimentCmd{
		ToleranceDefined: toleranceDefined,
		Tolerance:        tolerance,
		StartTime:        startTime,
		StopTimeDefined:  stopTimeDefined,
		StopTime:         stopTime,
	})
}

func (h *Handle) EnterInitializationMode() Status {
	return h.dispatchStatus("fmi2EnterInitializationMode", wire.NewSimpleCmd(wire.TagFmi2EnterInitializationMode))
}
func (h *Handle) ExitInitializationMode() Status {
	return h.dispatchStatus("fmi2ExitInitializationMode", wire.NewSimpleCmd(wire.TagFmi2ExitInitializationMode))
}
func (h *Handle) Terminate() Status {
	return h.dispatchStatus("fmi2Terminate", wire.NewSimpleCmd(wire.TagFmi2Terminate))
}
func (h *Handle) Reset() Status {
	return h.dispatchStatus("fmi2Reset", wire.NewSimpleCmd(wire.TagFmi2Reset))
}
func (h *Handle) CancelStep() Status {
	return h.dispatchStatus("fmi2CancelStep", wire.NewSimpleCmd(wire.TagFmi2CancelStep))
}

// DoStep forwards (current_time, step_size, no_set_state_prior) and, on
// Ok/Warning, records last-successful-time on the instance (spec.md 4.G,
// invariant 1).
func (h *Handle) DoStep(currentTime, stepSize float64, noSetStatePrior bool) Status {
	reply, err := instance.Dispatch[*wire.StatusReply](h.inst, wire.NewFmi2DoStepCmd(currentTime, stepSize, noSetStatePrior))
	if err != nil {
		logger.Error("fmi2DoStep: dispatch failed", "error", err)
		return Error
	}
	h.inst.RecordDoStepResult(reply.Status, currentTime, stepSize)
	return Status(reply.Status)
}

func (h *Handle) getScalars(op string, kind wire.ScalarKind, refs []uint32) ([]wire.ScalarValue, Status) {
	reply, err := instance.Dispatch[*wire.GetScalarReply](h.inst, wire.NewFmi2GetCmd(refs, kind))
	if err != nil {
		logger.Error(op+": dispatch failed", "error", err)
		return nil, Error
	}
	return reply.Values, Status(reply.Status)
}

// GetReal/GetInteger/GetBoolean leave the caller's buffer untouched (return
// nil) when the reply carries only a status (spec.md 4.G).
func (h *Handle) GetReal(refs []uint32) ([]float64, Status) {
	values, status := h.getScalars("fmi2GetReal", wire.KindFMI2Real, refs)
	if len(values) == 0 {
		return nil, status
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.F64
	}
	return out, status
}

func (h *Handle) GetInteger(refs []uint32) ([]int32, Status) {
	values, status := h.getScalars("fmi2GetInteger", wire.KindFMI2Integer, refs)
	if len(values) == 0 {
		return nil, status
	}
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v.I64)
	}
	return out, status
}

// GetBoolean returns Go bools; the C ABI's int (nonzero=true) conversion
// happens at the cmd/unifmu-shim edge, not here (spec.md 4.G).
func (h *Handle) GetBoolean(refs []uint32) ([]bool, Status) {
	values, status := h.getScalars("fmi2GetBoolean", wire.KindFMI2Boolean, refs)
	if len(values) == 0 {
		return nil, status
	}
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v.B
	}
	return out, status
}

// GetString rebuilds the instance's string-return buffer (spec.md 3
// invariant iv); the caller reads it back via the returned Handle's
// instance after checking the status.
func (h *Handle) GetString(refs []uint32) Status {
	values, status := h.getScalars("fmi2GetString", wire.KindFMI2String, refs)
	if len(values) == 0 {
		return status
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = v.S
	}
	if err := h.inst.SetStringBuffer(strs); err != nil {
		logger.Error("fmi2GetString: cannot represent value in C ABI", "error", err)
		return Fatal
	}
	return status
}

// StringBuffer exposes the rebuilt string-return buffer after a successful
// GetString.
func (h *Handle) StringBuffer() []string { return h.inst.StringBuffer() }

func (h *Handle) SetReal(refs []uint32, values []float64) Status {
	vals := make([]wire.ScalarValue, len(values))
	for i, v := range values {
		vals[i] = wire.FromFloat64(v)
	}
	return h.dispatchStatus("fmi2SetReal", wire.NewFmi2SetCmd(refs, wire.KindFMI2Real, vals))
}

func (h *Handle) SetInteger(refs []uint32, values []int32) Status {
	vals := make([]wire.ScalarValue, len(values))
	for i, v := range values {
		vals[i] = wire.FromInt(int64(v))
	}
	return h.dispatchStatus("fmi2SetInteger", wire.NewFmi2SetCmd(refs, wire.KindFMI2Integer, vals))
}

func (h *Handle) SetBoolean(refs []uint32, values []bool) Status {
	vals := make([]wire.ScalarValue, len(values))
	for i, v := range values {
		vals[i] = wire.FromBool(v)
	}
	return h.dispatchStatus("fmi2SetBoolean", wire.NewFmi2SetCmd(refs, wire.KindFMI2Boolean, vals))
}

// SetString applies UTF-8 validation to incoming strings (spec.md 4.G).
func (h *Handle) SetString(refs []uint32, values []string) Status {
	for i, v := range values {
		if !utf8.ValidString(v) {
			logger.Error("fmi2SetString: invalid UTF-8", "index", i)
			return Error
		}
	}
	vals := make([]wire.ScalarValue, len(values))
	for i, v := range values {
		vals[i] = wire.FromString(v)
	}
	return h.dispatchStatus("fmi2SetString", wire.NewFmi2SetCmd(refs, wire.KindFMI2String, vals))
}

func (h *Handle) GetDirectionalDerivative(unknownRefs, knownRefs []uint32, knownDerivatives []float64) ([]float64, Status) {
	reply, err := instance.Dispatch[*wire.GetScalarReply](h.inst, &wire.DirectionalDerivativeCmd{
		UnknownRefs:      unknownRefs,
		KnownRefs:        knownRefs,
		KnownDerivatives: knownDerivatives,
	})
	if err != nil {
		logger.Error("fmi2GetDirectionalDerivative: dispatch failed", "error", err)
		return nil, Error
	}
	if len(reply.Values) == 0 {
		return nil, Status(reply.Status)
	}
	out := make([]float64, len(reply.Values))
	for i, v := range reply.Values {
		out[i] = v.F64
	}
	return out, Status(reply.Status)
}

func (h *Handle) SetRealInputDerivatives(refs, orders []uint32, values []float64) Status {
	return h.dispatchStatus("fmi2SetRealInputDerivatives", &wire.RealInputDerivativesCmd{Refs: refs, Orders: orders, Values: values})
}

func (h *Handle) GetRealOutputDerivatives(refs, orders []uint32) ([]float64, Status) {
	reply, err := instance.Dispatch[*wire.GetScalarReply](h.inst, &wire.RealOutputDerivativesCmd{Refs: refs, Orders: orders})
	if err != nil {
		logger.Error("fmi2GetRealOutputDerivatives: dispatch failed", "error", err)
		return nil, Error
	}
	if len(reply.Values) == 0 {
		return nil, Status(reply.Status)
	}
	out := make([]float64, len(reply.Values))
	for i, v := range reply.Values {
		out[i] = v.F64
	}
	return out, Status(reply.Status)
}

// SavedState is the opaque FMU-state handle GetFMUstate/DeSerializeFMUstate
// hand back to the caller.
type SavedState struct {
	bytes []byte
}

func (h *Handle) GetFMUstate() (*SavedState, Status) {
	reply, err := instance.Dispatch[*wire.FMUStateReply](h.inst, wire.NewGetFMUStateCmd(false))
	if err != nil {
		logger.Error("fmi2GetFMUstate: dispatch failed", "error", err)
		return nil, Error
	}
	if Status(reply.Status) > Warning {
		return nil, Status(reply.Status)
	}
	return &SavedState{bytes: reply.Bytes}, Status(reply.Status)
}

func (h *Handle) SetFMUstate(s *SavedState) Status {
	if s == nil {
		logger.Error("fmi2SetFMUstate: null saved-state pointer")
		return Error
	}
	return h.dispatchStatus("fmi2SetFMUstate", wire.NewSetFMUStateCmd(false, s.bytes))
}

// FreeFMUstate tolerates a null saved-state pointer: Ok with a warning log,
// no dispatch (spec.md 4.G, invariant 9).
func (h *Handle) FreeFMUstate(s *SavedState) Status {
	if s == nil {
		logger.Warn("fmi2FreeFMUstate: null saved-state pointer, no-op")
		return OK
	}
	return h.dispatchStatus("fmi2FreeFMUstate", wire.NewFreeFMUStateCmd(false))
}

func (h *Handle) SerializedFMUstateSize(s *SavedState) (int, Status) {
	if s == nil {
		logger.Error("fmi2SerializedFMUstateSize: null saved-state pointer")
		return 0, Error
	}
	return len(s.bytes), OK
}

// SerializeFMUstate copies bytes into a caller buffer after checking its
// capacity is sufficient; an undersized buffer is an Error, not a truncation
// (spec.md 4.G).
func (h *Handle) SerializeFMUstate(s *SavedState, bufLen int) ([]byte, Status) {
	if s == nil {
		logger.Error("fmi2SerializeFMUstate: null saved-state pointer")
		return nil, Error
	}
	if bufLen < len(s.bytes) {
		logger.Error("fmi2SerializeFMUstate: buffer too small", "need", len(s.bytes), "have", bufLen)
		return nil, Error
	}
	return s.bytes, OK
}

func (h *Handle) DeSerializeFMUstate(buf []byte) (*SavedState, Status) {
	reply, err := instance.Dispatch[*wire.FMUStateReply](h.inst, wire.NewDeSerializeFMUStateCmd(false, buf))
	if err != nil {
		logger.Error("fmi2DeSerializeFMUstate: dispatch failed", "error", err)
		return nil, Error
	}
	return &SavedState{bytes: reply.Bytes}, Status(reply.Status)
}

// GetStatus supports only DoStepStatus (spec.md 4.G).
func (h *Handle) GetStatus(kind StatusKind) (Status, Status) {
	if kind != DoStepStatusKind {
		logger.Error("fmi2GetStatus: unsupported status kind", "kind", kind)
		return 0, Error
	}
	return Status(h.inst.CachedDoStepStatus()), OK
}

// GetRealStatus supports only LastSuccessfulTime (spec.md 4.G).
func (h *Handle) GetRealStatus(kind StatusKind) (float64, Status) {
	if kind != LastSuccessfulTimeKind {
		logger.Error("fmi2GetRealStatus: unsupported status kind", "kind", kind)
		return 0, Error
	}
	t, ok := h.inst.LastSuccessfulTime()
	if !ok {
		return 0, Discard
	}
	return t, OK
}

// GetIntegerStatus/GetBooleanStatus/GetStringStatus are not implemented by
// the backend protocol (spec.md 9, Open Question 1): log and return Discard.
func (h *Handle) GetIntegerStatus(kind StatusKind) (int32, Status) {
	logger.Error("fmi2GetIntegerStatus: not implemented", "kind", kind)
	return 0, Discard
}
func (h *Handle) GetBooleanStatus(kind StatusKind) (bool, Status) {
	logger.Error("fmi2GetBooleanStatus: not implemented", "kind", kind)
	return false, Discard
}
func (h *Handle) GetStringStatus(kind StatusKind) (string, Status) {
	logger.Error("fmi2GetStringStatus: not implemented", "kind", kind)
	return "", Discard
}

// FreeInstance sends a best-effort FreeInstance command and tears down the
// dispatcher (spec.md 4.E).
func (h *Handle) FreeInstance() { h.inst.Drop(false) }

// DiagnosticID exposes the instance's log-correlation identifier.
func (h *Handle) DiagnosticID() string { return h.inst.DiagnosticID }
