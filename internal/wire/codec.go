package wire

import "encoding/binary"

// Command is a tagged command variant sent from the shim to the backend.
type Command interface {
	CommandTag() uint32
	encodePayload() []byte
	decodePayload([]byte) error
}

// Reply is a tagged reply variant sent from the backend to the shim.
type Reply interface {
	ReplyTag() uint32
	encodePayload() []byte
	decodePayload([]byte) error
}

// commandFactories and replyFactories implement the tag -> decoder registry
// mirroring the teacher's rpc.Dispatcher handler table, but built once at
// init() instead of at runtime registration.
var commandFactories = map[uint32]func() Command{}
var replyFactories = map[uint32]func() Reply{}

func registerCommand(tag uint32, factory func() Command) { commandFactories[tag] = factory }
func registerReply(tag uint32, factory func() Reply) { replyFactories[tag] = factory }

// EncodeCommand wraps a Command in the one-of envelope: a single length-
// delimited field whose field number is the command's tag.
func EncodeCommand(c Command) []byte {
	return putBytes(nil, c.CommandTag(), c.encodePayload())
}

// EncodeReply wraps a Reply in the one-of envelope, symmetric to EncodeCommand.
func EncodeReply(r Reply) []byte {
	return putBytes(nil, r.ReplyTag(), r.encodePayload())
}

// DecodeCommand decodes exactly one populated variant; zero or more than one
// populated field is a protocol error.
func DecodeCommand(buf []byte) (Command, error) {
	var found Command
	count := 0
	err := decodeFields(buf, func(f field, offset int) error {
		count++
		if count > 1 {
			return errDecode(offset, "more than one populated command variant")
		}
		if f.wt != wireBytes {
			return errDecode(offset, "command envelope field must be length-delimited")
		}
		factory, ok := commandFactories[f.num]
		if !ok {
			return errDecode(offset, "unknown command tag")
		}
		c := factory()
		if err := c.decodePayload(f.data); err != nil {
			return err
		}
		found = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errDecode(0, "empty command envelope")
	}
	return found, nil
}

// DecodeReply mirrors DecodeCommand for the Reply union.
func DecodeReply(buf []byte) (Reply, error) {
	var found Reply
	count := 0
	err := decodeFields(buf, func(f field, offset int) error {
		count++
		if count > 1 {
			return errDecode(offset, "more than one populated reply variant")
		}
		if f.wt != wireBytes {
			return errDecode(offset, "reply envelope field must be length-delimited")
		}
		factory, ok := replyFactories[f.num]
		if !ok {
			return errDecode(offset, "unknown reply tag")
		}
		r := factory()
		if err := r.decodePayload(f.data); err != nil {
			return err
		}
		found = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errDecode(0, "empty reply envelope")
	}
	return found, nil
}

// HandshakeReply is sent once by the backend, before any Command, to signal
// it is ready to serve. It is a bare status integer, not itself a member of
// the Reply one-of (spec.md 3: "a single integer status code sent first").
type HandshakeReply struct {
	Status int32
}

func EncodeHandshakeReply(h HandshakeReply) []byte {
	return putInt32(nil, 1, h.Status)
}

func DecodeHandshakeReply(buf []byte) (HandshakeReply, error) {
	var h HandshakeReply
	seen := false
	err := decodeFields(buf, func(f field, offset int) error {
		if f.num == 1 {
			h.Status = f.asInt32()
			seen = true
		}
		return nil
	})
	if err != nil {
		return HandshakeReply{}, err
	}
	if !seen {
		return HandshakeReply{}, errDecode(0, "missing handshake status field")
	}
	return h, nil
}

// FrameMessage implements the length-delimited TCP message framing
// mentioned in spec.md 6 ("Framing is length-delimited by the transport
// itself"): a uint32 big-endian length prefix followed by the envelope
// bytes produced by Encode{Command,Reply}.
func FrameMessage(payload []byte) []byte {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	out := make([]byte, 0, 4+len(payload))
	out = append(out, hdr[:]...)
	return append(out, payload...)
}
