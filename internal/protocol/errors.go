package protocol

import (
	"errors"
	"fmt"
)

// ErrBadMagic reports a buffer that does not begin with the 0x02 frame
// marker. This is a framing failure, not a field validation failure: nothing
// past the first byte is interpreted.
var ErrBadMagic = errors.New("protocol: bad frame magic")

// FrameErrorKind identifies which decode-time check failed.
type FrameErrorKind int

const (
	// CommandMismatch means the command id did not match the expected message type.
	CommandMismatch FrameErrorKind = iota
	// LengthMismatch means the payload-length code did not match the
	// constant (or formula, for variable-length messages) for the type.
	LengthMismatch
	// FieldConstantMismatch means a fixed payload field did not carry its
	// protocol-defined literal value.
	FieldConstantMismatch
	// ChecksumMismatch means the trailing checksum byte did not equal the
	// XOR of the frame's command, length, and payload bytes.
	ChecksumMismatch
)

func (k FrameErrorKind) String() string {
	switch k {
	case CommandMismatch:
		return "command mismatch"
	case LengthMismatch:
		return "length mismatch"
	case FieldConstantMismatch:
		return "field constant mismatch"
	case ChecksumMismatch:
		return "checksum mismatch"
	default:
		return fmt.Sprintf("FrameErrorKind(%d)", int(k))
	}
}

// FrameError is a decode-time validation failure. The four checks are
// independent; Kind names the one that failed.
type FrameError struct {
	Kind FrameErrorKind
	Got  uint64
	Want uint64
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("protocol: %s: got 0x%x, want 0x%x", e.Kind, e.Got, e.Want)
}

// IsKind reports whether err is (or wraps) a FrameError of the given kind.
func IsKind(err error, kind FrameErrorKind) bool {
	var fe *FrameError
	return errors.As(err, &fe) && fe.Kind == kind
}
