package wire

import "fmt"

// DecodeError carries the byte offset at which decoding failed and a
// human-readable reason. It does not record the expected tag as a field.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wire: decode error at offset %d: %s", e.Offset, e.Reason)
}

func errDecode(offset int, reason string) error {
	return &DecodeError{Offset: offset, Reason: reason}
}
