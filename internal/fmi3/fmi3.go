// Package fmi3 implements the pure-Go half of the FMI 3.0 Co-Simulation
// shim, the FMI3 analogue of internal/fmi2 (spec.md 4.H: "Differences from
// 4.G"). Anything not called out as different here behaves exactly like
// internal/fmi2.
package fmi3

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

// Status mirrors the FMI3 status space: Ok/Warning/Discard/Error/Fatal.
type Status int32

const (
	OK Status = iota
	Warning
	Discard
	Error
	Fatal
)

// normalizeStatus maps an out-of-range backend status integer to Fatal and
// logs it, per spec.md 4.H: "An out-of-range status integer from the backend
// is mapped to Fatal and logged."
func normalizeStatus(op string, raw int32) Status {
	if raw < int32(OK) || raw > int32(Fatal) {
		logger.Error(op+": backend reported out-of-range status", "status", raw)
		return Fatal
	}
	return Status(raw)
}

// Version is the fixed string fmi3GetVersion returns (spec.md 4.G invariant
// 7, carried into 4.H: "fmi3GetVersion returns 3.0").
const Version = "3.0"

// StatusKind mirrors fmi3StatusKind; only DoStepStatus and LastSuccessfulTime
// are supported, same restriction as FMI2 (spec.md 4.G, carried unchanged
// into 4.H).
type StatusKind int32

const (
	DoStepStatusKind StatusKind = iota
	PendingStatusKind
	LastSuccessfulTimeKind
	TerminatedKind
)

// Qualifier mirrors the small enum accompanying interval/shift queries.
type Qualifier int32

const (
	QualifierNotYetKnown Qualifier = iota
	QualifierUnchanged
	QualifierChanged
)

// Handle is the opaque instance returned by InstantiateCoSimulation.
type Handle struct {
	inst *instance.Instance
}

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

// InstantiateCoSimulationParams carries fmi3InstantiateCoSimulation's
// parameters.
type InstantiateCoSimulationParams struct {
	InstanceName       string
	InstantiationToken string
	ResourceLocation   string
	Visible            bool
	LoggingOn          bool
	EventModeUsed      bool
	EarlyReturnAllowed bool
}

// InstantiateCoSimulation implements fmi3InstantiateCoSimulation: resource
// paths may be a `file:` URI or a bare path, both accepted (spec.md 4.H).
func InstantiateCoSimulation(p InstantiateCoSimulationParams, logCallback fmilog.Callback) (*Handle, error) {
	if p.InstanceName == "" || p.ResourceLocation == "" {
		err := unifmuerrors.NewMisuseError("fmi3InstantiateCoSimulation", fmt.Errorf("instance_name and resource_location must be non-empty"))
		logger.Error("fmi3InstantiateCoSimulation rejected", "error", err)
		return nil, err
	}
	if !utf8.ValidString(p.InstanceName) || !utf8.ValidString(p.ResourceLocation) {
		err := unifmuerrors.NewMisuseError("fmi3InstantiateCoSimulation", fmt.Errorf("instance_name and resource_location must be valid UTF-8"))
		logger.Error("fmi3InstantiateCoSimulation rejected", "error", err)
		return nil, err
	}

	resourceDir, err := resolveResourcePath(p.ResourceLocation)
	if err != nil {
		wrapped := unifmuerrors.NewMisuseError("fmi3InstantiateCoSimulation", err)
		logger.Error("fmi3InstantiateCoSimulation: invalid resource_location", "error", wrapped)
		return nil, wrapped
	}

	cfg, err := config.Load(resourceDir)
	if err != nil {
		logger.Error("fmi3InstantiateCoSimulation: failed to load launch.toml", "error", err)
		return nil, err
	}
	argv, err := cfg.ForThisOS()
	if err != nil {
		logger.Error("fmi3InstantiateCoSimulation: no launch command for this OS", "error", err)
		return nil, err
	}

	sock, err := transport.Bind("127.0.0.1")
	if err != nil {
		logger.Error("fmi3InstantiateCoSimulation: failed to bind transport", "error", err)
		return nil, err
	}
	sup, err := backend.SpawnLocal(backend.LaunchParams{
		Command:      argv,
		ResourceDir:  resourceDir,
		Endpoint:     sock.Endpoint(),
		Port:         sock.Port(),
		GUID:         p.InstantiationToken,
		InstanceName: p.InstanceName,
		Visible:      p.Visible,
		FMUType:      "CoSimulation",
	})
	if err != nil {
		_ = sock.Close()
		logger.Error("fmi3InstantiateCoSimulation: failed to spawn backend", "error", err)
		return nil, err
	}

	instLog := logger.WithEndpoint(logger.WithInstance(logger.Logger(), p.InstanceName, p.InstanceName), sock.Endpoint())

	var handshakeTimer *time.Timer
	if cfg.TimeoutSpec.Launch > 0 {
		d := time.Duration(cfg.TimeoutSpec.Launch) * time.Millisecond
		handshakeTimer = time.AfterFunc(d, func() {
			instLog.Warn("fmi3InstantiateCoSimulation: backend has not completed handshake within configured launch timeout", "timeout_ms", cfg.TimeoutSpec.Launch)
		})
	}

	disp := dispatcher.New(sock, sup)
	err = disp.AwaitHandshake()
	if handshakeTimer != nil {
		handshakeTimer.Stop()
	}
	if err != nil {
		_ = disp.Close()
		instLog.Error("fmi3InstantiateCoSimulation: handshake failed", "error", err)
		return nil, err
	}
	instLog.Info("backend handshake complete")

	fmiLog := fmilog.New(p.InstanceName, p.LoggingOn, logCallback)
	inst := instance.New(p.InstanceName, disp, fmiLog)

	reply, err := instance.Dispatch[*wire.StatusReply](inst, &wire.Fmi3InstantiateCmd{
		InstanceName:       p.InstanceName,
		InstantiationToken: p.InstantiationToken,
		ResourcePath:       resourceDir,
		Visible:            p.Visible,
		LoggingOn:          p.LoggingOn,
		EventModeUsed:      p.EventModeUsed,
		EarlyReturnAllowed: p.EarlyReturnAllowed,
	})
	if err != nil {
		logger.Error("fmi3InstantiateCoSimulation: backend rejected Instantiate command", "error", err)
		inst.Drop(true)
		return nil, err
	}
	if Status(reply.Status) != OK {
		err := unifmuerrors.NewBackendStatusError("fmi3InstantiateCoSimulation", int(reply.Status))
		logger.Error("fmi3InstantiateCoSimulation: backend returned non-OK status", "status", reply.Status)
		inst.Drop(true)
		return nil, err
	}

	return &Handle{inst: inst}, nil
}

// InstantiateModelExchange and InstantiateScheduledExecution immediately log
// an error and return null: only Co-Simulation is implemented (spec.md 4.H).
func InstantiateModelExchange(instanceName string) (*Handle, error) {
	err := unifmuerrors.NewMisuseError("fmi3InstantiateModelExchange", fmt.Errorf("model-exchange instantiation is not supported"))
	logger.Error("fmi3InstantiateModelExchange rejected", "instance", instanceName, "error", err)
	return nil, err
}

func InstantiateScheduledExecution(instanceName string) (*Handle, error) {
	err := unifmuerrors.NewMisuseError("fmi3InstantiateScheduledExecution", fmt.Errorf("scheduled-execution instantiation is not supported"))
	logger.Error("fmi3InstantiateScheduledExecution rejected", "instance", instanceName, "error", err)
	return nil, err
}

func (h *Handle) dispatchStatus(op string, cmd wire.Command) Status {
	reply, err := instance.Dispatch[*wire.StatusReply](h.inst, cmd)
	if err != nil {
		logger.Error(op+": dispatch failed", "error", err)
		return Error
	}
	return normalizeStatus(op, reply.Status)
}

func (h *Handle) SetDebugLogging(loggingOn bool, categories []string) Status {
	h.inst.Logger().SetDebugLogging(loggingOn, categories)
	cmd := wire.NewFmi3SetDebugLoggingCmd()
	cmd.LoggingOn = loggingOn
	cmd.Categories = categories
	return h.dispatchStatus("fmi3SetDebugLogging", cmd)
}

func (h *Handle) EnterInitializationMode(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) Status {
	return h.dispatchStatus("fmi3EnterInitializationMode", &wire.Fmi3EnterInitCmd{
		ToleranceDefined: toleranceDefined,
		Tolerance:        tolerance,
		StartTime:        startTime,
		StopTimeDefined:  stopTimeDefined,
		StopTime:         stopTime,
	})
}

func (h *Handle) ExitInitializationMode() Status {
	return h.dispatchStatus("fmi3ExitInitializationMode", wire.NewSimpleCmd(wire.TagFmi3ExitInitializationMode))
}
func (h *Handle) Terminate() Status {
	return h.dispatchStatus("fmi3Terminate", wire.NewSimpleCmd(wire.TagFmi3Terminate))
}
func (h *Handle) Reset() Status {
	return h.dispatchStatus("fmi3Reset", wire.NewSimpleCmd(wire.TagFmi3Reset))
}
func (h *Handle) EnterEventMode() Status {
	return h.dispatchStatus("fmi3EnterEventMode", wire.NewSimpleCmd(wire.TagFmi3EnterEventMode))
}
func (h *Handle) EnterStepMode() Status {
	return h.dispatchStatus("fmi3EnterStepMode", wire.NewSimpleCmd(wire.TagFmi3EnterStepMode))
}
func (h *Handle) EnterConfigurationMode() Status {
	return h.dispatchStatus("fmi3EnterConfigurationMode", wire.NewSimpleCmd(wire.TagFmi3EnterConfigurationMode))
}
func (h *Handle) ExitConfigurationMode() Status {
	return h.dispatchStatus("fmi3ExitConfigurationMode", wire.NewSimpleCmd(wire.TagFmi3ExitConfigurationMode))
}

// DoStepResult carries the status plus the four extra booleans and the
// last-successful-time spec.md 4.H describes. Whether each is actually
// written to a C out-pointer (and the null-pointer-is-a-warning resolution
// of Open Question 2) is cmd/unifmu-shim's concern via WriteOptionalBool /
// WriteOptionalFloat64 below; this type carries the full backend-reported
// picture regardless of what the caller asked for.
type DoStepResult struct {
	Status                Status
	EventHandlingNeeded   bool
	TerminateRequested    bool
	EarlyReturn           bool
	LastSuccessfulTime    float64
	HasLastSuccessfulTime bool
}

func (h *Handle) DoStep(currentTime, stepSize float64, noSetStatePrior bool) DoStepResult {
	reply, err := instance.Dispatch[*wire.DoStepReply](h.inst, wire.NewFmi3DoStepCmd(currentTime, stepSize, noSetStatePrior))
	if err != nil {
		logger.Error("fmi3DoStep: dispatch failed", "error", err)
		return DoStepResult{Status: Error}
	}
	status := normalizeStatus("fmi3DoStep", reply.Status)
	h.inst.RecordDoStepResult(reply.Status, currentTime, stepSize)
	return DoStepResult{
		Status:                status,
		EventHandlingNeeded:   reply.EventHandlingNeeded,
		TerminateRequested:    reply.TerminateRequested,
		EarlyReturn:           reply.EarlyReturn,
		LastSuccessfulTime:    reply.LastSuccessfulTime,
		HasLastSuccessfulTime: reply.HasLastSuccessfulTime,
	}
}

// UpdateDiscreteStatesResult carries the five booleans and the float64
// spec.md 4.H describes for fmi3UpdateDiscreteStates.
type UpdateDiscreteStatesResult struct {
	Status                            Status
	DiscreteStatesNeedUpdate          bool
	TerminateSimulation               bool
	NominalsOfContinuousStatesChanged bool
	ValuesOfContinuousStatesChanged   bool
	NextEventTimeDefined              bool
	NextEventTime                     float64
}

func (h *Handle) UpdateDiscreteStates() UpdateDiscreteStatesResult {
	reply, err := instance.Dispatch[*wire.UpdateDiscreteStatesReply](h.inst, wire.NewSimpleCmd(wire.TagFmi3UpdateDiscreteStates))
	if err != nil {
		logger.Error("fmi3UpdateDiscreteStates: dispatch failed", "error", err)
		return UpdateDiscreteStatesResult{Status: Error}
	}
	return UpdateDiscreteStatesResult{
		Status:                            normalizeStatus("fmi3UpdateDiscreteStates", reply.Status),
		DiscreteStatesNeedUpdate:          reply.DiscreteStatesNeedUpdate,
		TerminateSimulation:               reply.TerminateSimulation,
		NominalsOfContinuousStatesChanged: reply.NominalsOfContinuousStatesChanged,
		ValuesOfContinuousStatesChanged:   reply.ValuesOfContinuousStatesChanged,
		NextEventTimeDefined:              reply.NextEventTimeDefined,
		NextEventTime:                     reply.NextEventTime,
	}
}

// WriteOptionalBool writes *out = v iff out is non-nil; otherwise it logs a
// warning instead of failing, the Open Question 2 resolution (spec.md 9): "a
// null out-pointer is a warning ... callers may legitimately ignore these
// flags." cmd/unifmu-shim calls this once per optional DoStep/
// UpdateDiscreteStates out-parameter with the C pointer converted to *bool.
func WriteOptionalBool(op string, out *bool, v bool) {
	if out == nil {
		logger.Warn(op + ": out-pointer is null, skipping write")
		return
	}
	*out = v
}

// WriteOptionalFloat64 is WriteOptionalBool's Float64 counterpart, used for
// last_successful_time / next_event_time.
func WriteOptionalFloat64(op string, out *float64, defined bool, v float64) {
	if !defined {
		return
	}
	if out == nil {
		logger.Warn(op + ": out-pointer is null, skipping write")
		return
	}
	*out = v
}

func (h *Handle) getScalars(op string, kind wire.ScalarKind, refs []uint32) ([]wire.ScalarValue, Status) {
	reply, err := instance.Dispatch[*wire.GetScalarReply](h.inst, wire.NewFmi3GetCmd(refs, kind))
	if err != nil {
		logger.Error(op+": dispatch failed", "error", err)
		return nil, Error
	}
	return reply.Values, normalizeStatus(op, reply.Status)
}

func getTyped[T any](h *Handle, op string, kind wire.ScalarKind, refs []uint32, conv func(wire.ScalarValue) T) ([]T, Status) {
	values, status := h.getScalars(op, kind, refs)
	if len(values) == 0 {
		return nil, status
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = conv(v)
	}
	return out, status
}

func setTyped[T any](h *Handle, op string, kind wire.ScalarKind, refs []uint32, values []T, conv func(T) wire.ScalarValue) Status {
	vals := make([]wire.ScalarValue, len(values))
	for i, v := range values {
		vals[i] = conv(v)
	}
	return h.dispatchStatus(op, wire.NewFmi3SetCmd(refs, kind, vals))
}

func (h *Handle) GetFloat32(refs []uint32) ([]float32, Status) {
	return getTyped(h, "fmi3GetFloat32", wire.KindFloat32, refs, func(v wire.ScalarValue) float32 { return v.F32 })
}
func (h *Handle) SetFloat32(refs []uint32, values []float32) Status {
	return setTyped(h, "fmi3SetFloat32", wire.KindFloat32, refs, values, wire.FromFloat32)
}
func (h *Handle) GetFloat64(refs []uint32) ([]float64, Status) {
	return getTyped(h, "fmi3GetFloat64", wire.KindFloat64, refs, func(v wire.ScalarValue) float64 { return v.F64 })
}
func (h *Handle) SetFloat64(refs []uint32, values []float64) Status {
	return setTyped(h, "fmi3SetFloat64", wire.KindFloat64, refs, values, wire.FromFloat64)
}

func (h *Handle) GetInt8(refs []uint32) ([]int8, Status) {
	return getTyped(h, "fmi3GetInt8", wire.KindInt8, refs, func(v wire.ScalarValue) int8 { return int8(v.I64) })
}
func (h *Handle) SetInt8(refs []uint32, values []int8) Status {
	return setTyped(h, "fmi3SetInt8", wire.KindInt8, refs, values, func(v int8) wire.ScalarValue { return wire.FromInt(int64(v)) })
}
func (h *Handle) GetInt16(refs []uint32) ([]int16, Status) {
	return getTyped(h, "fmi3GetInt16", wire.KindInt16, refs, func(v wire.ScalarValue) int16 { return int16(v.I64) })
}
func (h *Handle) SetInt16(refs []uint32, values []int16) Status {
	return setTyped(h, "fmi3SetInt16", wire.KindInt16, refs, values, func(v int16) wire.ScalarValue { return wire.FromInt(int64(v)) })
}
func (h *Handle) GetInt32(refs []uint32) ([]int32, Status) {
	return getTyped(h, "fmi3GetInt32", wire.KindInt32, refs, func(v wire.ScalarValue) int32 { return int32(v.I64) })
}
func (h *Handle) SetInt32(refs []uint32, values []int32) Status {
	return setTyped(h, "fmi3SetInt32", wire.KindInt32, refs, values, func(v int32) wire.ScalarValue { return wire.FromInt(int64(v)) })
}
func (h *Handle) GetInt64(refs []uint32) ([]int64, Status) {
	return getTyped(h, "fmi3GetInt64", wire.KindInt64, refs, func(v wire.ScalarValue) int64 { return v.I64 })
}
func (h *Handle) SetInt64(refs []uint32, values []int64) Status {
	return setTyped(h, "fmi3SetInt64", wire.KindInt64, refs, values, wire.FromInt)
}

func (h *Handle) GetUInt8(refs []uint32) ([]uint8, Status) {
	return getTyped(h, "fmi3GetUInt8", wire.KindUInt8, refs, func(v wire.ScalarValue) uint8 { return uint8(v.U64) })
}
func (h *Handle) SetUInt8(refs []uint32, values []uint8) Status {
	return setTyped(h, "fmi3SetUInt8", wire.KindUInt8, refs, values, func(v uint8) wire.ScalarValue { return wire.FromUint(uint64(v)) })
}
func (h *Handle) GetUInt16(refs []uint32) ([]uint16, Status) {
	return getTyped(h, "fmi3GetUInt16", wire.KindUInt16, refs, func(v wire.ScalarValue) uint16 { return uint16(v.U64) })
}
func (h *Handle) SetUInt16(refs []uint32, values []uint16) Status {
	return setTyped(h, "fmi3SetUInt16", wire.KindUInt16, refs, values, func(v uint16) wire.ScalarValue { return wire.FromUint(uint64(v)) })
}
func (h *Handle) GetUInt32(refs []uint32) ([]uint32, Status) {
	return getTyped(h, "fmi3GetUInt32", wire.KindUInt32, refs, func(v wire.ScalarValue) uint32 { return uint32(v.U64) })
}
func (h *Handle) SetUInt32(refs []uint32, values []uint32) Status {
	return setTyped(h, "fmi3SetUInt32", wire.KindUInt32, refs, values, func(v uint32) wire.ScalarValue { return wire.FromUint(uint64(v)) })
}
func (h *Handle) GetUInt64(refs []uint32) ([]uint64, Status) {
	return getTyped(h, "fmi3GetUInt64", wire.KindUInt64, refs, func(v wire.ScalarValue) uint64 { return v.U64 })
}
func (h *Handle) SetUInt64(refs []uint32, values []uint64) Status {
	return setTyped(h, "fmi3SetUInt64", wire.KindUInt64, refs, values, wire.FromUint)
}

func (h *Handle) GetBoolean(refs []uint32) ([]bool, Status) {
	return getTyped(h, "fmi3GetBoolean", wire.KindBoolean, refs, func(v wire.ScalarValue) bool { return v.B })
}
func (h *Handle) SetBoolean(refs []uint32, values []bool) Status {
	return setTyped(h, "fmi3SetBoolean", wire.KindBoolean, refs, values, wire.FromBool)
}

// GetString rebuilds the instance's string-return buffer (same lifetime rule
// as FMI2, spec.md 3 invariant iv).
func (h *Handle) GetString(refs []uint32) Status {
	values, status := h.getScalars("fmi3GetString", wire.KindString, refs)
	if len(values) == 0 {
		return status
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = v.S
	}
	if err := h.inst.SetStringBuffer(strs); err != nil {
		logger.Error("fmi3GetString: cannot represent value in C ABI", "error", err)
		return Fatal
	}
	return status
}

func (h *Handle) StringBuffer() []string { return h.inst.StringBuffer() }

func (h *Handle) SetString(refs []uint32, values []string) Status {
	for i, v := range values {
		if !utf8.ValidString(v) {
			logger.Error("fmi3SetString: invalid UTF-8", "index", i)
			return Error
		}
	}
	return setTyped(h, "fmi3SetString", wire.KindString, refs, values, wire.FromString)
}

// GetBinary rebuilds the instance's binary-return buffer (spec.md 3
// invariant v). The wire reply's per-element Lengths field is redundant with
// this codec's own length-delimited byte encoding and is not consulted here.
func (h *Handle) GetBinary(refs []uint32) Status {
	values, status := h.getScalars("fmi3GetBinary", wire.KindBinary, refs)
	if len(values) == 0 {
		return status
	}
	bins := make([][]byte, len(values))
	for i, v := range values {
		bins[i] = v.Bin
	}
	h.inst.SetBinaryBuffer(bins)
	return status
}

func (h *Handle) BinaryBuffer() [][]byte { return h.inst.BinaryBuffer() }

func (h *Handle) SetBinary(refs []uint32, values [][]byte) Status {
	return setTyped(h, "fmi3SetBinary", wire.KindBinary, refs, values, wire.FromBinary)
}

func (h *Handle) GetClock(refs []uint32) ([]bool, Status) {
	reply, err := instance.Dispatch[*wire.ClockReply](h.inst, wire.NewFmi3GetClockCmd(refs))
	if err != nil {
		logger.Error("fmi3GetClock: dispatch failed", "error", err)
		return nil, Error
	}
	if len(reply.Bools) == 0 {
		return nil, normalizeStatus("fmi3GetClock", reply.Status)
	}
	return reply.Bools, normalizeStatus("fmi3GetClock", reply.Status)
}

func (h *Handle) SetClock(refs []uint32, values []bool) Status {
	return h.dispatchStatus("fmi3SetClock", wire.NewFmi3SetClockCmd(refs, values))
}

func (h *Handle) getIntervalOrShift(op string, cmd *wire.ClockCmd) ([]wire.ScalarValue, []Qualifier, Status) {
	reply, err := instance.Dispatch[*wire.ClockReply](h.inst, cmd)
	if err != nil {
		logger.Error(op+": dispatch failed", "error", err)
		return nil, nil, Error
	}
	quals := make([]Qualifier, len(reply.Qualifiers))
	for i, q := range reply.Qualifiers {
		quals[i] = Qualifier(q)
	}
	return reply.Values, quals, normalizeStatus(op, reply.Status)
}

// GetIntervalDecimal returns, per reference, the interval (seconds) and its
// qualifier.
func (h *Handle) GetIntervalDecimal(refs []uint32) ([]float64, []Qualifier, Status) {
	values, quals, status := h.getIntervalOrShift("fmi3GetIntervalDecimal", wire.NewFmi3GetIntervalDecimalCmd(refs))
	if len(values) == 0 {
		return nil, quals, status
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.F64
	}
	return out, quals, status
}

// GetIntervalFraction returns, per reference, the interval as a UInt64
// counter and its qualifier. This shim carries the counter only, a
// simplification from the FMI3 standard's separate (counter, resolution)
// pair -- no component needs sub-fraction resolution, and the two-array
// shape would duplicate ClockReply's single value array for no behavioral
// gain here.
func (h *Handle) GetIntervalFraction(refs []uint32) ([]uint64, []Qualifier, Status) {
	values, quals, status := h.getIntervalOrShift("fmi3GetIntervalFraction", wire.NewFmi3GetIntervalFractionCmd(refs))
	if len(values) == 0 {
		return nil, quals, status
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = v.U64
	}
	return out, quals, status
}

func (h *Handle) GetShiftDecimal(refs []uint32) ([]float64, Status) {
	values, _, status := h.getIntervalOrShift("fmi3GetShiftDecimal", wire.NewFmi3GetShiftDecimalCmd(refs))
	if len(values) == 0 {
		return nil, status
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.F64
	}
	return out, status
}

func (h *Handle) GetShiftFraction(refs []uint32) ([]uint64, Status) {
	values, _, status := h.getIntervalOrShift("fmi3GetShiftFraction", wire.NewFmi3GetShiftFractionCmd(refs))
	if len(values) == 0 {
		return nil, status
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = v.U64
	}
	return out, status
}

// SavedState is the opaque FMU-state handle for FMI3, distinct from
// internal/fmi2's type of the same name (no FMI-version crossover is ever
// needed: an instance is either FMI2 or FMI3 for its whole lifetime).
type SavedState struct {
	bytes []byte
}

func (h *Handle) GetFMUstate() (*SavedState, Status) {
	reply, err := instance.Dispatch[*wire.FMUStateReply](h.inst, wire.NewGetFMUStateCmd(true))
	if err != nil {
		logger.Error("fmi3GetFMUstate: dispatch failed", "error", err)
		return nil, Error
	}
	status := normalizeStatus("fmi3GetFMUstate", reply.Status)
	if status > Warning {
		return nil, status
	}
	return &SavedState{bytes: reply.Bytes}, status
}

func (h *Handle) SetFMUstate(s *SavedState) Status {
	if s == nil {
		logger.Error("fmi3SetFMUstate: null saved-state pointer")
		return Error
	}
	return h.dispatchStatus("fmi3SetFMUstate", wire.NewSetFMUStateCmd(true, s.bytes))
}

func (h *Handle) FreeFMUstate(s *SavedState) Status {
	if s == nil {
		logger.Warn("fmi3FreeFMUstate: null saved-state pointer, no-op")
		return OK
	}
	return h.dispatchStatus("fmi3FreeFMUstate", wire.NewFreeFMUStateCmd(true))
}

func (h *Handle) SerializedFMUstateSize(s *SavedState) (int, Status) {
	if s == nil {
		logger.Error("fmi3SerializedFMUstateSize: null saved-state pointer")
		return 0, Error
	}
	return len(s.bytes), OK
}

func (h *Handle) SerializeFMUstate(s *SavedState, bufLen int) ([]byte, Status) {
	if s == nil {
		logger.Error("fmi3SerializeFMUstate: null saved-state pointer")
		return nil, Error
	}
	if bufLen < len(s.bytes) {
		logger.Error("fmi3SerializeFMUstate: buffer too small", "need", len(s.bytes), "have", bufLen)
		return nil, Error
	}
	return s.bytes, OK
}

func (h *Handle) DeSerializeFMUstate(buf []byte) (*SavedState, Status) {
	reply, err := instance.Dispatch[*wire.FMUStateReply](h.inst, wire.NewDeSerializeFMUStateCmd(true, buf))
	if err != nil {
		logger.Error("fmi3DeSerializeFMUstate: dispatch failed", "error", err)
		return nil, Error
	}
	return &SavedState{bytes: reply.Bytes}, normalizeStatus("fmi3DeSerializeFMUstate", reply.Status)
}

func (h *Handle) GetStatus(kind StatusKind) (Status, Status) {
	if kind != DoStepStatusKind {
		logger.Error("fmi3GetStatus: unsupported status kind", "kind", kind)
		return 0, Error
	}
	return Status(h.inst.CachedDoStepStatus()), OK
}

func (h *Handle) GetRealStatus(kind StatusKind) (float64, Status) {
	if kind != LastSuccessfulTimeKind {
		logger.Error("fmi3GetRealStatus: unsupported status kind", "kind", kind)
		return 0, Error
	}
	t, ok := h.inst.LastSuccessfulTime()
	if !ok {
		return 0, Discard
	}
	return t, OK
}

// GetIntegerStatus/GetBooleanStatus/GetStringStatus are not implemented by
// the backend protocol, same as FMI2 (spec.md 9, Open Question 1): log and
// return Discard.
func (h *Handle) GetIntegerStatus(kind StatusKind) (int32, Status) {
	logger.Error("fmi3GetInt32Status: not implemented", "kind", kind)
	return 0, Discard
}
func (h *Handle) GetBooleanStatus(kind StatusKind) (bool, Status) {
	logger.Error("fmi3GetBooleanStatus: not implemented", "kind", kind)
	return false, Discard
}
func (h *Handle) GetStringStatus(kind StatusKind) (string, Status) {
	logger.Error("fmi3GetStringStatus: not implemented", "kind", kind)
	return "", Discard
}

func (h *Handle) unsupported(op string) Status {
	logger.Error(op + ": not supported by this shim")
	return Error
}

// GetDirectionalDerivative, GetAdjointDerivative, event indicators, variable-
// dependency queries, and continuous-state nominals uniformly log and return
// Error -- explicitly unsupported per spec.md 4.H.
func (h *Handle) GetDirectionalDerivative(unknownRefs, knownRefs []uint32, seed []float64) ([]float64, Status) {
	return nil, h.unsupported("fmi3GetDirectionalDerivative")
}
func (h *Handle) GetAdjointDerivative(unknownRefs, knownRefs []uint32, seed []float64) ([]float64, Status) {
	return nil, h.unsupported("fmi3GetAdjointDerivative")
}
func (h *Handle) GetEventIndicators() ([]float64, Status) {
	return nil, h.unsupported("fmi3GetEventIndicators")
}
func (h *Handle) GetNumberOfVariableDependencies(valueRef uint32) (int, Status) {
	return 0, h.unsupported("fmi3GetNumberOfVariableDependencies")
}
func (h *Handle) GetVariableDependencies(valueRef uint32) Status {
	return h.unsupported("fmi3GetVariableDependencies")
}
func (h *Handle) GetNominalsOfContinuousStates() ([]float64, Status) {
	return nil, h.unsupported("fmi3GetNominalsOfContinuousStates")
}

// FreeInstance sends a best-effort FreeInstance command and tears down the
// dispatcher.
func (h *Handle) FreeInstance() { h.inst.Drop(true) }

func (h *Handle) DiagnosticID() string { return h.inst.DiagnosticID }
