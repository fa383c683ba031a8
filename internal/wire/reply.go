package wire

// Reply tag numbers, independent namespace from Command tags (decoded from a
// separate map, so no collision risk even though the integers overlap).
const (
	TagReplyEmpty = iota + 1
	TagReplyStatus
	TagReplyGetScalar
	TagReplyDoStep
	TagReplyUpdateDiscreteStates
	TagReplyFMUState
	TagReplyGetClock
	TagReplyGetInterval
	TagReplyGetShift
)

// EmptyReply acknowledges a command that has no payload beyond "it happened"
// (used only where the spec does not even require a status, none presently --
// kept for forward compatibility with future void commands).
type EmptyReply struct{}

func (r *EmptyReply) ReplyTag() uint32          { return TagReplyEmpty }
func (r *EmptyReply) encodePayload() []byte      { return nil }
func (r *EmptyReply) decodePayload([]byte) error { return nil }

// StatusReply is the single-integer-status reply shared by every command
// whose only output is success/failure: SetDebugLogging, SetupExperiment,
// EnterInitializationMode, ExitInitializationMode, Terminate, Reset,
// FreeInstance, CancelStep, SetXXX, SetClock, mode-transition commands, and
// FMUstate Set/Free.
type StatusReply struct {
	Status int32
}

func (r *StatusReply) ReplyTag() uint32     { return TagReplyStatus }
func (r *StatusReply) encodePayload() []byte { return putInt32(nil, 1, r.Status) }
func (r *StatusReply) decodePayload(buf []byte) error {
	return decodeFields(buf, func(f field, _ int) error {
		if f.num == 1 {
			r.Status = f.asInt32()
		}
		return nil
	})
}
func NewStatusReply(status int32) *StatusReply { return &StatusReply{Status: status} }

// GetScalarReply answers every typed Get command: a status plus, when the
// status permits it (spec.md 4.H: "A status of Discard or worse suppresses
// copying of typed reply payloads"), the parallel value array.
type GetScalarReply struct {
	Status int32
	Kind   ScalarKind
	Values []ScalarValue
	// Lengths carries per-element byte lengths for Binary values (spec.md 3
	// invariant vi); unused for every other kind.
	Lengths []uint32
}

func (r *GetScalarReply) ReplyTag() uint32 { return TagReplyGetScalar }
func (r *GetScalarReply) encodePayload() []byte {
	var b []byte
	b = putInt32(b, 1, r.Status)
	b = putUint32(b, 2, uint32(r.Kind))
	for _, v := range r.Values {
		b = putScalar(b, 3, r.Kind, v)
	}
	for _, l := range r.Lengths {
		b = putUint32(b, 4, l)
	}
	return b
}
func (r *GetScalarReply) decodePayload(buf []byte) error {
	return decodeFields(buf, func(f field, _ int) error {
		switch f.num {
		case 1:
			r.Status = f.asInt32()
		case 2:
			r.Kind = ScalarKind(f.asUint32())
		case 3:
			r.Values = append(r.Values, scalarFromField(r.Kind, f))
		case 4:
			r.Lengths = append(r.Lengths, f.asUint32())
		}
		return nil
	})
}

// DoStepReply carries the status plus, for FMI3 only, the four extra
// booleans and the last-successful-time that spec.md 4.H describes ("each is
// written to its out-parameter only if the pointer is non-null"). Only FMI3's
// DoStep uses this reply; FMI2's DoStep is answered with a StatusReply, and
// the shim computes last-successful-time itself from (current_time +
// step_size) per spec.md 4.G rather than reading it from the wire.
type DoStepReply struct {
	Status               int32
	EventHandlingNeeded  bool
	TerminateRequested   bool
	EarlyReturn          bool
	LastSuccessfulTime   float64
	HasLastSuccessfulTime bool
}

func (r *DoStepReply) ReplyTag() uint32 { return TagReplyDoStep }
func (r *DoStepReply) encodePayload() []byte {
	var b []byte
	b = putInt32(b, 1, r.Status)
	b = putBool(b, 2, r.EventHandlingNeeded)
	b = putBool(b, 3, r.TerminateRequested)
	b = putBool(b, 4, r.EarlyReturn)
	if r.HasLastSuccessfulTime {
		b = putFloat64(b, 5, r.LastSuccessfulTime)
	}
	return b
}
func (r *DoStepReply) decodePayload(buf []byte) error {
	return decodeFields(buf, func(f field, _ int) error {
		switch f.num {
		case 1:
			r.Status = f.asInt32()
		case 2:
			r.EventHandlingNeeded = f.asBool()
		case 3:
			r.TerminateRequested = f.asBool()
		case 4:
			r.EarlyReturn = f.asBool()
		case 5:
			r.LastSuccessfulTime = f.asFloat64()
			r.HasLastSuccessfulTime = true
		}
		return nil
	})
}

// UpdateDiscreteStatesReply carries the five booleans and the float64 that
// spec.md 4.H describes for fmi3UpdateDiscreteStates, each independently
// optional so the shim can honor the null-out-pointer-is-a-warning
// resolution of the corresponding Open Question (spec.md 9).
type UpdateDiscreteStatesReply struct {
	Status                         int32
	DiscreteStatesNeedUpdate       bool
	TerminateSimulation            bool
	NominalsOfContinuousStatesChanged bool
	ValuesOfContinuousStatesChanged  bool
	NextEventTimeDefined           bool
	NextEventTime                  float64
}

func (r *UpdateDiscreteStatesReply) ReplyTag() uint32 { return TagReplyUpdateDiscreteStates }
func (r *UpdateDiscreteStatesReply) encodePayload() []byte {
	var b []byte
	b = putInt32(b, 1, r.Status)
	b = putBool(b, 2, r.DiscreteStatesNeedUpdate)
	b = putBool(b, 3, r.TerminateSimulation)
	b = putBool(b, 4, r.NominalsOfContinuousStatesChanged)
	b = putBool(b, 5, r.ValuesOfContinuousStatesChanged)
	b = putBool(b, 6, r.NextEventTimeDefined)
	b = putFloat64(b, 7, r.NextEventTime)
	return b
}
func (r *UpdateDiscreteStatesReply) decodePayload(buf []byte) error {
	return decodeFields(buf, func(f field, _ int) error {
		switch f.num {
		case 1:
			r.Status = f.asInt32()
		case 2:
			r.DiscreteStatesNeedUpdate = f.asBool()
		case 3:
			r.TerminateSimulation = f.asBool()
		case 4:
			r.NominalsOfContinuousStatesChanged = f.asBool()
		case 5:
			r.ValuesOfContinuousStatesChanged = f.asBool()
		case 6:
			r.NextEventTimeDefined = f.asBool()
		case 7:
			r.NextEventTime = f.asFloat64()
		}
		return nil
	})
}

// FMUStateReply answers GetFMUstate and DeSerializeFMUstate alike with a
// status plus the serialized state bytes. SerializeFMUstate and
// SerializedFMUstateSize are answered by the shim from those saved bytes
// without a round trip.
type FMUStateReply struct {
	Status int32
	Bytes  []byte
}

func (r *FMUStateReply) ReplyTag() uint32 { return TagReplyFMUState }
func (r *FMUStateReply) encodePayload() []byte {
	var b []byte
	b = putInt32(b, 1, r.Status)
	if r.Bytes != nil {
		b = putBytes(b, 2, r.Bytes)
	}
	return b
}
func (r *FMUStateReply) decodePayload(buf []byte) error {
	return decodeFields(buf, func(f field, _ int) error {
		switch f.num {
		case 1:
			r.Status = f.asInt32()
		case 2:
			r.Bytes = append([]byte(nil), f.data...)
		}
		return nil
	})
}

// ClockReply answers GetClock (parallel boolean array) and the four
// interval/shift query families (parallel value array plus qualifier array).
type ClockReply struct {
	Status     int32
	Bools      []bool
	Values     []ScalarValue
	Kind       ScalarKind // value kind for interval/shift decimal vs fraction
	Qualifiers []uint32
}

func (r *ClockReply) ReplyTag() uint32 { return TagReplyGetClock }
func (r *ClockReply) encodePayload() []byte {
	var b []byte
	b = putInt32(b, 1, r.Status)
	for _, v := range r.Bools {
		b = putBool(b, 2, v)
	}
	b = putUint32(b, 3, uint32(r.Kind))
	for _, v := range r.Values {
		b = putScalar(b, 4, r.Kind, v)
	}
	for _, q := range r.Qualifiers {
		b = putUint32(b, 5, q)
	}
	return b
}
func (r *ClockReply) decodePayload(buf []byte) error {
	return decodeFields(buf, func(f field, _ int) error {
		switch f.num {
		case 1:
			r.Status = f.asInt32()
		case 2:
			r.Bools = append(r.Bools, f.asBool())
		case 3:
			r.Kind = ScalarKind(f.asUint32())
		case 4:
			r.Values = append(r.Values, scalarFromField(r.Kind, f))
		case 5:
			r.Qualifiers = append(r.Qualifiers, f.asUint32())
		}
		return nil
	})
}

func init() {
	registerReply(TagReplyEmpty, func() Reply { return &EmptyReply{} })
	registerReply(TagReplyStatus, func() Reply { return &StatusReply{} })
	registerReply(TagReplyGetScalar, func() Reply { return &GetScalarReply{} })
	registerReply(TagReplyDoStep, func() Reply { return &DoStepReply{} })
	registerReply(TagReplyUpdateDiscreteStates, func() Reply { return &UpdateDiscreteStatesReply{} })
	registerReply(TagReplyFMUState, func() Reply { return &FMUStateReply{} })
	registerReply(TagReplyGetClock, func() Reply { return &ClockReply{} })
	registerReply(TagReplyGetInterval, func() Reply { return &ClockReply{} })
	registerReply(TagReplyGetShift, func() Reply { return &ClockReply{} })
}
