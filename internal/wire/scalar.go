package wire

import "fmt"

// ScalarKind identifies which FMI primitive type a typed Get/Set command or
// reply carries. Folding every FMI2/FMI3 typed variant (GetReal, GetFloat32,
// GetInt8, ...) into one family keyed by ScalarKind is the wire-level
// counterpart of the generic dispatch used in internal/fmi2 and
// internal/fmi3 -- one struct instead of ~30 near-duplicates.
type ScalarKind uint32

const (
	KindFloat32 ScalarKind = iota + 1
	KindFloat64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindBoolean
	KindString
	KindBinary
	// FMI 2 has no distinct float width split; Real/Integer map onto Float64/Int32.
	KindFMI2Real    = KindFloat64
	KindFMI2Integer = KindInt32
	KindFMI2Boolean = KindBoolean
	KindFMI2String  = KindString
)

func (k ScalarKind) String() string {
	switch k {
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	default:
		return fmt.Sprintf("ScalarKind(%d)", uint32(k))
	}
}

// ScalarValue boxes one value of any ScalarKind so arrays of mixed-but-
// homogeneous-per-message values can flow through a single Go slice type.
// Exactly one field is meaningful, selected by the enclosing message's kind.
type ScalarValue struct {
	F32 float32
	F64 float64
	I64 int64  // holds Int8/16/32/64 sign-extended
	U64 uint64 // holds UInt8/16/32/64
	B   bool
	S   string
	Bin []byte
}

func FromFloat32(v float32) ScalarValue { return ScalarValue{F32: v} }
func FromFloat64(v float64) ScalarValue { return ScalarValue{F64: v} }
func FromInt(v int64) ScalarValue       { return ScalarValue{I64: v} }
func FromUint(v uint64) ScalarValue     { return ScalarValue{U64: v} }
func FromBool(v bool) ScalarValue       { return ScalarValue{B: v} }
func FromString(v string) ScalarValue   { return ScalarValue{S: v} }
func FromBinary(v []byte) ScalarValue   { return ScalarValue{Bin: v} }

func putScalar(buf []byte, field uint32, kind ScalarKind, v ScalarValue) []byte {
	switch kind {
	case KindFloat32:
		return putFloat32(buf, field, v.F32)
	case KindFloat64:
		return putFloat64(buf, field, v.F64)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return putVarint(buf, field, uint64(v.I64))
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return putVarint(buf, field, v.U64)
	case KindBoolean:
		return putBool(buf, field, v.B)
	case KindString:
		return putString(buf, field, v.S)
	case KindBinary:
		return putBytes(buf, field, v.Bin)
	default:
		return buf
	}
}

func scalarFromField(kind ScalarKind, f field) ScalarValue {
	switch kind {
	case KindFloat32:
		return ScalarValue{F32: f.asFloat32()}
	case KindFloat64:
		return ScalarValue{F64: f.asFloat64()}
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return ScalarValue{I64: int64(f.u64)}
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return ScalarValue{U64: f.u64}
	case KindBoolean:
		return ScalarValue{B: f.asBool()}
	case KindString:
		return ScalarValue{S: f.asString()}
	case KindBinary:
		return ScalarValue{Bin: append([]byte(nil), f.data...)}
	default:
		return ScalarValue{}
	}
}
