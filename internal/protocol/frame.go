package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Frame layout: [0x02][command:u16 BE][length code:u8][payload...][checksum:u8].
// The checksum is the XOR of every byte from the command id through the end of
// the payload. The length code is protocol-defined and not always a literal
// byte count (the samples response encodes 14 + 2*sample_count).
const (
	Magic      = 0x02
	HeaderSize = 4 // magic + command + length code
)

// Command ids. Lock and unlock share an id and differ only in their payload
// constant; the handshake request and response likewise share an id.
const (
	CmdBootRequest         uint16 = 0x4004
	CmdBootResponse        uint16 = 0x4084
	CmdBootConfirmRequest  uint16 = 0x4000
	CmdBootConfirmResponse uint16 = 0x4080
	CmdLock                uint16 = 0xa236
	CmdLockResponse        uint16 = 0xa0f9
	CmdHandshake           uint16 = 0x4003
	CmdBroadcast           uint16 = 0xa013
	CmdUpdateTime          uint16 = 0x4022
	CmdUpdateTimeResponse  uint16 = 0x40a2
	CmdSamples             uint16 = 0x4024
	CmdSamplesResponse     uint16 = 0x40a4
	CmdSchedule            uint16 = 0x4023
)

// Fixed frame sizes the session reads in one shot. Variable-length frames
// (broadcast, samples response) are read in two phases instead.
const (
	AckFrameSize           = 6
	BootResponseSize       = 27
	UpdateTimeResponseSize = 8
)

// Remaining returns how many bytes are still on the wire after a 4-byte
// frame header: the declared payload plus the trailing checksum byte.
func Remaining(header []byte) int {
	return int(header[3]) + 1
}

// Command returns the command id carried by a frame header (or any complete
// frame).
func Command(frame []byte) uint16 {
	return binary.BigEndian.Uint16(frame[1:3])
}

// encoder serializes one frame. The magic byte bypasses the checksum filter;
// everything else is written through it, so Sum is the checksum once the
// payload is done.
type encoder struct {
	buf bytes.Buffer
	cw  *ChecksumWriter
}

func newEncoder(command uint16, lengthCode byte) *encoder {
	e := &encoder{}
	e.buf.WriteByte(Magic)
	e.cw = &ChecksumWriter{W: &e.buf}
	e.u16(command)
	e.u8(lengthCode)
	return e
}

func (e *encoder) u8(v byte) {
	e.cw.Write([]byte{v})
}

func (e *encoder) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.cw.Write(b[:])
}

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.cw.Write(b[:])
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.cw.Write(b[:])
}

// u32le writes the protocol's lone little-endian scalar shape, the 32-bit
// time fields.
func (e *encoder) u32le(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.cw.Write(b[:])
}

func (e *encoder) u16le(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.cw.Write(b[:])
}

func (e *encoder) raw(p []byte) {
	e.cw.Write(p)
}

// finish appends the checksum captured from the filter and returns the wire
// bytes. The checksum byte is written to the buffer directly so it does not
// fold into its own value.
func (e *encoder) finish() []byte {
	e.buf.WriteByte(e.cw.Sum())
	return e.buf.Bytes()
}

// decoder deserializes one frame from an exact byte buffer. Errors are
// sticky: the first failed check wins and later reads are no-ops, which keeps
// the four validation failures independently observable.
type decoder struct {
	cr  *ChecksumReader
	err error
}

// newDecoder validates the magic and command id, then returns the decoder
// and the frame's declared length code for the caller to check against its
// type's constant or formula.
func newDecoder(frame []byte, command uint16) (*decoder, byte, error) {
	if len(frame) == 0 || frame[0] != Magic {
		return nil, 0, ErrBadMagic
	}
	d := &decoder{cr: &ChecksumReader{R: bytes.NewReader(frame[1:])}}
	cmd := d.u16()
	if d.err == nil && cmd != command {
		return nil, 0, &FrameError{Kind: CommandMismatch, Got: uint64(cmd), Want: uint64(command)}
	}
	lengthCode := d.u8()
	if d.err != nil {
		return nil, 0, d.err
	}
	return d, lengthCode, nil
}

// expectLength records a LengthMismatch when the frame's declared length code
// differs from the value the message type requires.
func (d *decoder) expectLength(got, want byte) {
	if d.err == nil && got != want {
		d.err = &FrameError{Kind: LengthMismatch, Got: uint64(got), Want: uint64(want)}
	}
}

func (d *decoder) read(p []byte) {
	if d.err != nil {
		return
	}
	if _, err := io.ReadFull(d.cr, p); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		d.err = err
	}
}

func (d *decoder) u8() byte {
	var b [1]byte
	d.read(b[:])
	return b[0]
}

func (d *decoder) u16() uint16 {
	var b [2]byte
	d.read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

func (d *decoder) u32() uint32 {
	var b [4]byte
	d.read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

func (d *decoder) u64() uint64 {
	var b [8]byte
	d.read(b[:])
	return binary.BigEndian.Uint64(b[:])
}

func (d *decoder) u32le() uint32 {
	var b [4]byte
	d.read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func (d *decoder) u16le() uint16 {
	var b [2]byte
	d.read(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

// expectU8 reads one byte that the protocol fixes to a literal value.
func (d *decoder) expectU8(want byte) {
	got := d.u8()
	if d.err == nil && got != want {
		d.err = &FrameError{Kind: FieldConstantMismatch, Got: uint64(got), Want: uint64(want)}
	}
}

func (d *decoder) expectU16(want uint16) {
	got := d.u16()
	if d.err == nil && got != want {
		d.err = &FrameError{Kind: FieldConstantMismatch, Got: uint64(got), Want: uint64(want)}
	}
}

func (d *decoder) expectU32(want uint32) {
	got := d.u32()
	if d.err == nil && got != want {
		d.err = &FrameError{Kind: FieldConstantMismatch, Got: uint64(got), Want: uint64(want)}
	}
}

// finish reads the trailing checksum byte and compares it against the
// reader's lagged accumulator, which at this point holds the XOR of every
// byte before the checksum itself.
func (d *decoder) finish() error {
	got := d.u8()
	if d.err != nil {
		return d.err
	}
	if want := d.cr.Sum(); got != want {
		return &FrameError{Kind: ChecksumMismatch, Got: uint64(got), Want: uint64(want)}
	}
	return nil
}
