package wire

import (
	"encoding/binary"
	"math"
)

// Field wire types, matching the protocol-buffers wire format this codec is
// modeled on (spec.md 4.A: "equivalent to protocol buffers").
const (
	wireVarint   = 0
	wireFixed64  = 1
	wireBytes    = 2
	wireFixed32  = 5
)

func putTag(buf []byte, field uint32, wireType uint8) []byte {
	return binary.AppendUvarint(buf, uint64(field)<<3|uint64(wireType))
}

func putVarint(buf []byte, field uint32, v uint64) []byte {
	buf = putTag(buf, field, wireVarint)
	return binary.AppendUvarint(buf, v)
}

func putBool(buf []byte, field uint32, v bool) []byte {
	if v {
		return putVarint(buf, field, 1)
	}
	return putVarint(buf, field, 0)
}

func putInt32(buf []byte, field uint32, v int32) []byte { return putVarint(buf, field, uint64(uint32(v))) }
func putUint32(buf []byte, field uint32, v uint32) []byte { return putVarint(buf, field, uint64(v)) }

func putFloat64(buf []byte, field uint32, v float64) []byte {
	buf = putTag(buf, field, wireFixed64)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	return append(buf, tmp[:]...)
}

func putFloat32(buf []byte, field uint32, v float32) []byte {
	buf = putTag(buf, field, wireFixed32)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	return append(buf, tmp[:]...)
}

func putBytes(buf []byte, field uint32, v []byte) []byte {
	buf = putTag(buf, field, wireBytes)
	buf = binary.AppendUvarint(buf, uint64(len(v)))
	return append(buf, v...)
}

func putString(buf []byte, field uint32, v string) []byte { return putBytes(buf, field, []byte(v)) }

// field is one decoded (field-number, wire-type, payload) record.
type field struct {
	num  uint32
	wt   uint8
	u64  uint64 // varint / fixed64 / fixed32 raw bits
	data []byte // bytes payload (wireBytes only)
}

// decodeFields walks a flat record of tag/value pairs, yielding one field at
// a time. Passes each field's starting byte offset to visit so callers can
// report offsets in decode errors.
func decodeFields(buf []byte, visit func(f field, offset int) error) error {
	off := 0
	for off < len(buf) {
		start := off
		key, n := binary.Uvarint(buf[off:])
		if n <= 0 {
			return errDecode(start, "malformed field tag")
		}
		off += n
		num := uint32(key >> 3)
		wt := uint8(key & 0x7)
		var f field
		f.num, f.wt = num, wt
		switch wt {
		case wireVarint:
			v, n := binary.Uvarint(buf[off:])
			if n <= 0 {
				return errDecode(off, "malformed varint")
			}
			f.u64 = v
			off += n
		case wireFixed64:
			if off+8 > len(buf) {
				return errDecode(off, "truncated fixed64")
			}
			f.u64 = binary.LittleEndian.Uint64(buf[off : off+8])
			off += 8
		case wireFixed32:
			if off+4 > len(buf) {
				return errDecode(off, "truncated fixed32")
			}
			f.u64 = uint64(binary.LittleEndian.Uint32(buf[off : off+4]))
			off += 4
		case wireBytes:
			l, n := binary.Uvarint(buf[off:])
			if n <= 0 {
				return errDecode(off, "malformed length")
			}
			off += n
			if off+int(l) > len(buf) {
				return errDecode(off, "truncated bytes payload")
			}
			f.data = buf[off : off+int(l)]
			off += int(l)
		default:
			return errDecode(start, "unsupported wire type")
		}
		if err := visit(f, start); err != nil {
			return err
		}
	}
	return nil
}

func (f field) asFloat64() float64 { return math.Float64frombits(f.u64) }
func (f field) asFloat32() float32 { return math.Float32frombits(uint32(f.u64)) }
func (f field) asInt32() int32     { return int32(uint32(f.u64)) }
func (f field) asUint32() uint32   { return uint32(f.u64) }
func (f field) asBool() bool       { return f.u64 != 0 }
func (f field) asString() string   { return string(f.data) }
