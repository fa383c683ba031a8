package fmi3

import (
	"encoding/binary"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifmu/unifmu-go/internal/backend"
	"github.com/unifmu/unifmu-go/internal/dispatcher"
	"github.com/unifmu/unifmu-go/internal/fmilog"
	"github.com/unifmu/unifmu-go/internal/instance"
	"github.com/unifmu/unifmu-go/internal/transport"
	"github.com/unifmu/unifmu-go/internal/wire"
)

func newTestHandle(t *testing.T) (*Handle, net.Conn) {
	t.Helper()
	sock, err := transport.Bind("127.0.0.1")
	require.NoError(t, err)

	sup, err := backend.SpawnLocal(backend.LaunchParams{
		Command:     []string{"sleep", "5"},
		ResourceDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { sup.Kill() })

	d := dispatcher.New(sock, sup)
	t.Cleanup(func() { d.Close() })

	conn, err := net.DialTimeout("tcp", sock.Endpoint()[len("tcp://"):], time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	writeFramed(t, conn, wire.EncodeHandshakeReply(wire.HandshakeReply{Status: 0}))
	require.NoError(t, d.AwaitHandshake())

	inst := instance.New("adder", d, fmilog.New("adder", true, nil))
	return &Handle{inst: inst}, conn
}

func writeFramed(t *testing.T, conn net.Conn, payload []byte) {
	t.Helper()
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	_, err := conn.Write(hdr[:])
	require.NoError(t, err)
	_, err = conn.Write(payload)
	require.NoError(t, err)
}

func readFramed(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var hdr [4]byte
	_, err := io.ReadFull(conn, hdr[:])
	require.NoError(t, err)
	n := binary.BigEndian.Uint32(hdr[:])
	buf := make([]byte, n)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	return buf
}

func TestDoStepCarriesExtraBooleansAndLastSuccessfulTime(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.DoStepReply{
			Status:                int32(OK),
			EventHandlingNeeded:   true,
			TerminateRequested:    false,
			EarlyReturn:           true,
			LastSuccessfulTime:    0.02,
			HasLastSuccessfulTime: true,
		}))
	}()
	res := h.DoStep(0, 0.02, false)
	assert.Equal(t, OK, res.Status)
	assert.True(t, res.EventHandlingNeeded)
	assert.False(t, res.TerminateRequested)
	assert.True(t, res.EarlyReturn)
	assert.True(t, res.HasLastSuccessfulTime)
	assert.InDelta(t, 0.02, res.LastSuccessfulTime, 1e-9)

	tm, ok := h.inst.LastSuccessfulTime()
	assert.True(t, ok)
	assert.InDelta(t, 0.02, tm, 1e-9)
}

func TestDoStepReportsOutOfRangeStatusAsFatal(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.DoStepReply{Status: 99}))
	}()
	res := h.DoStep(0, 0.01, false)
	assert.Equal(t, Fatal, res.Status)
}

func TestUpdateDiscreteStatesProjectsAllFields(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.UpdateDiscreteStatesReply{
			Status:                   int32(OK),
			DiscreteStatesNeedUpdate: true,
			TerminateSimulation:      false,
			NextEventTimeDefined:     true,
			NextEventTime:            1.5,
		}))
	}()
	res := h.UpdateDiscreteStates()
	assert.Equal(t, OK, res.Status)
	assert.True(t, res.DiscreteStatesNeedUpdate)
	assert.True(t, res.NextEventTimeDefined)
	assert.InDelta(t, 1.5, res.NextEventTime, 1e-9)
}

func TestWriteOptionalBoolSkipsNilOutPointer(t *testing.T) {
	WriteOptionalBool("fmi3DoStep/terminate", nil, true)
}

func TestWriteOptionalBoolWritesThroughNonNilOutPointer(t *testing.T) {
	var out bool
	WriteOptionalBool("fmi3DoStep/terminate", &out, true)
	assert.True(t, out)
}

func TestWriteOptionalFloat64SkipsUndefinedValue(t *testing.T) {
	var out float64 = -1
	WriteOptionalFloat64("fmi3UpdateDiscreteStates/nextEventTime", &out, false, 42)
	assert.Equal(t, -1.0, out)
}

func TestWriteOptionalFloat64WritesThroughNonNilOutPointer(t *testing.T) {
	var out float64
	WriteOptionalFloat64("fmi3UpdateDiscreteStates/nextEventTime", &out, true, 42)
	assert.Equal(t, 42.0, out)
}

func TestGetFloat64CopiesValuesOnSuccess(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.GetScalarReply{
			Status: int32(OK), Kind: wire.KindFloat64,
			Values: []wire.ScalarValue{wire.FromFloat64(3.5)},
		}))
	}()
	values, status := h.GetFloat64([]uint32{0})
	assert.Equal(t, OK, status)
	assert.Equal(t, []float64{3.5}, values)
}

func TestGetInt8LeavesBufferUntouchedOnStatusOnly(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.GetScalarReply{Status: int32(Discard)}))
	}()
	values, status := h.GetInt8([]uint32{0})
	assert.Nil(t, values)
	assert.Equal(t, Discard, status)
}

func TestSetUInt32RoundTripsThroughWire(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(wire.NewStatusReply(int32(OK))))
	}()
	status := h.SetUInt32([]uint32{0}, []uint32{7})
	assert.Equal(t, OK, status)
}

func TestGetStringRebuildsInstanceBuffer(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.GetScalarReply{
			Status: int32(OK), Kind: wire.KindString,
			Values: []wire.ScalarValue{wire.FromString("hello")},
		}))
	}()
	status := h.GetString([]uint32{0})
	assert.Equal(t, OK, status)
	assert.Equal(t, []string{"hello"}, h.StringBuffer())
}

func TestGetBinaryRebuildsInstanceBuffer(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.GetScalarReply{
			Status: int32(OK), Kind: wire.KindBinary,
			Values: []wire.ScalarValue{wire.FromBinary([]byte{1, 2, 3})},
		}))
	}()
	status := h.GetBinary([]uint32{0})
	assert.Equal(t, OK, status)
	assert.Equal(t, [][]byte{{1, 2, 3}}, h.BinaryBuffer())
}

func TestGetClockReturnsBooleanArray(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.ClockReply{
			Status: int32(OK), Bools: []bool{true, false},
		}))
	}()
	values, status := h.GetClock([]uint32{0, 1})
	assert.Equal(t, OK, status)
	assert.Equal(t, []bool{true, false}, values)
}

func TestGetIntervalDecimalReturnsValueAndQualifier(t *testing.T) {
	h, conn := newTestHandle(t)
	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(&wire.ClockReply{
			Status: int32(OK), Kind: wire.KindFloat64,
			Values:     []wire.ScalarValue{wire.FromFloat64(0.1)},
			Qualifiers: []uint32{uint32(QualifierChanged)},
		}))
	}()
	values, quals, status := h.GetIntervalDecimal([]uint32{0})
	assert.Equal(t, OK, status)
	assert.Equal(t, []float64{0.1}, values)
	assert.Equal(t, []Qualifier{QualifierChanged}, quals)
}

func TestGetStatusSupportsOnlyDoStepStatus(t *testing.T) {
	h, _ := newTestHandle(t)
	_, status := h.GetStatus(PendingStatusKind)
	assert.Equal(t, Error, status)
}

func TestGetRealStatusReturnsDiscardBeforeFirstSuccessfulDoStep(t *testing.T) {
	h, _ := newTestHandle(t)
	_, status := h.GetRealStatus(LastSuccessfulTimeKind)
	assert.Equal(t, Discard, status)
}

func TestUnsupportedFeaturesLogAndReturnError(t *testing.T) {
	h, _ := newTestHandle(t)
	_, status := h.GetDirectionalDerivative(nil, nil, nil)
	assert.Equal(t, Error, status)
	_, status = h.GetEventIndicators()
	assert.Equal(t, Error, status)
	_, status = h.GetNominalsOfContinuousStates()
	assert.Equal(t, Error, status)
}

func TestSerializeFMUstateRejectsUndersizedBuffer(t *testing.T) {
	h, _ := newTestHandle(t)
	s := &SavedState{bytes: []byte("hello")}
	_, status := h.SerializeFMUstate(s, 2)
	assert.Equal(t, Error, status)
}

func TestFreeFMUstateOnNullIsNoop(t *testing.T) {
	h, _ := newTestHandle(t)
	status := h.FreeFMUstate(nil)
	assert.Equal(t, OK, status)
}

func TestInstantiateModelExchangeIsRejected(t *testing.T) {
	_, err := InstantiateModelExchange("adder")
	assert.Error(t, err)
}

func TestInstantiateScheduledExecutionIsRejected(t *testing.T) {
	_, err := InstantiateScheduledExecution("adder")
	assert.Error(t, err)
}

func TestInstantiateCoSimulationRejectsEmptyInstanceName(t *testing.T) {
	_, err := InstantiateCoSimulation(InstantiateCoSimulationParams{ResourceLocation: "/tmp"}, nil)
	assert.Error(t, err)
}

func TestInstantiateCoSimulationFailsWithoutLaunchToml(t *testing.T) {
	dir := t.TempDir()
	_, err := InstantiateCoSimulation(InstantiateCoSimulationParams{InstanceName: "adder", ResourceLocation: dir}, nil)
	assert.Error(t, err)
}

func TestInstantiateCoSimulationResolvesFileURIThenFailsOnMissingCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launch.toml"), []byte("[command]\n"), 0o644))
	_, err := InstantiateCoSimulation(InstantiateCoSimulationParams{InstanceName: "adder", ResourceLocation: "file://" + dir}, nil)
	assert.Error(t, err)
}
