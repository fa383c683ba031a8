package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip_Instantiate(t *testing.T) {
	cmd := &Fmi2InstantiateCmd{
		InstanceName: "adder",
		Guid:         "{guid}",
		ResourcePath: "/tmp/fmu/resources",
		Visible:      true,
		LoggingOn:    false,
	}
	encoded := EncodeCommand(cmd)
	decoded, err := DecodeCommand(encoded)
	require.NoError(t, err)
	got, ok := decoded.(*Fmi2InstantiateCmd)
	require.True(t, ok)
	assert.Equal(t, cmd, got)
}

func TestCommandRoundTrip_ScalarArraySet(t *testing.T) {
	cmd := NewFmi2SetCmd([]uint32{0, 1}, KindFMI2Real, []ScalarValue{FromFloat64(1.0), FromFloat64(2.0)})
	decoded, err := DecodeCommand(EncodeCommand(cmd))
	require.NoError(t, err)
	got := decoded.(*ScalarArrayCmd)
	assert.Equal(t, cmd.ValueRefs, got.ValueRefs)
	assert.Equal(t, cmd.Values, got.Values)
	assert.True(t, got.IsSet)
}

func TestCommandRoundTrip_DoStep(t *testing.T) {
	cmd := NewFmi3DoStepCmd(1.0, 0.01, false)
	decoded, err := DecodeCommand(EncodeCommand(cmd))
	require.NoError(t, err)
	got := decoded.(*DoStepCmd)
	assert.Equal(t, 1.0, got.CurrentTime)
	assert.Equal(t, 0.01, got.StepSize)
	assert.Equal(t, uint32(TagFmi3DoStep), got.CommandTag())
}

func TestReplyRoundTrip_GetScalar(t *testing.T) {
	reply := &GetScalarReply{
		Status: 0,
		Kind:   KindFloat64,
		Values: []ScalarValue{FromFloat64(2.0)},
	}
	decoded, err := DecodeReply(EncodeReply(reply))
	require.NoError(t, err)
	got := decoded.(*GetScalarReply)
	assert.Equal(t, reply.Status, got.Status)
	assert.Equal(t, reply.Values, got.Values)
}

func TestReplyRoundTrip_DoStep(t *testing.T) {
	reply := &DoStepReply{
		Status:                0,
		EventHandlingNeeded:   true,
		EarlyReturn:           false,
		HasLastSuccessfulTime: true,
		LastSuccessfulTime:    1.5,
	}
	decoded, err := DecodeReply(EncodeReply(reply))
	require.NoError(t, err)
	got := decoded.(*DoStepReply)
	assert.Equal(t, reply, got)
}

func TestHandshakeReplyRoundTrip(t *testing.T) {
	h := HandshakeReply{Status: 0}
	decoded, err := DecodeHandshakeReply(EncodeHandshakeReply(h))
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestDecodeCommand_RejectsEmptyEnvelope(t *testing.T) {
	_, err := DecodeCommand(nil)
	assert.Error(t, err)
}

func TestDecodeCommand_RejectsUnknownTag(t *testing.T) {
	bogus := putBytes(nil, 9999, []byte("x"))
	_, err := DecodeCommand(bogus)
	assert.Error(t, err)
}

func TestDecodeCommand_RejectsMultipleVariants(t *testing.T) {
	var b []byte
	b = putBytes(b, TagFmi2Terminate, nil)
	b = putBytes(b, TagFmi2Reset, nil)
	_, err := DecodeCommand(b)
	assert.Error(t, err)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestFrameMessagePrependsLength(t *testing.T) {
	payload := EncodeCommand(NewSimpleCmd(TagFmi2Terminate))
	framed := FrameMessage(payload)
	assert.Len(t, framed, 4+len(payload))
}
