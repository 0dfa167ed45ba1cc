package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestRemaining(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   int
	}{
		{
			name:   "empty payload still carries a checksum",
			header: []byte{0x02, 0x40, 0x04, 0x00},
			want:   1,
		},
		{
			name:   "ack frame",
			header: []byte{0x02, 0xa0, 0xf9, 0x01},
			want:   2,
		},
		{
			// A samples response header with length code 0x12
			// (two samples) leaves 19 bytes on the wire.
			name:   "samples response with two samples",
			header: []byte{0x02, 0x40, 0xa4, 0x12},
			want:   19,
		},
		{
			name:   "broadcast",
			header: []byte{0x02, 0xa0, 0x13, 0x0b},
			want:   12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.header); got != tt.want {
				t.Errorf("Remaining(% 02x) = %d, want %d", tt.header, got, tt.want)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	header := []byte{0x02, 0xa0, 0x13, 0x0b}
	if got := Command(header); got != CmdBroadcast {
		t.Errorf("Command() = 0x%04x, want 0x%04x", got, CmdBroadcast)
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	// A lock response with its length code changed from 0x01 to 0x02 and
	// the checksum re-derived so only the length is wrong.
	frame := []byte{0x02, 0xa0, 0xf9, 0x02, 0x00, 0x58 ^ 0x01 ^ 0x02}

	_, err := DecodeLockResponse(frame)
	if !IsKind(err, LengthMismatch) {
		t.Errorf("decode error = %v, want length mismatch", err)
	}
}

func TestDecodeFieldConstantMismatch(t *testing.T) {
	// A boot confirm response whose fixed 0x10 payload byte reads 0x11,
	// checksum re-derived so only the field constant is wrong.
	frame := []byte{0x02, 0x40, 0x80, 0x01, 0x11, 0xd1 ^ 0x10 ^ 0x11}

	_, err := DecodeBootConfirmResponse(frame)
	if !IsKind(err, FieldConstantMismatch) {
		t.Errorf("decode error = %v, want field constant mismatch", err)
	}
}

func TestDecodeVariableLengthMismatch(t *testing.T) {
	// A samples response whose length code disagrees with 14+2*n must be
	// rejected even when the checksum is consistent.
	m := SamplesResponse{
		NetworkID: 0x0001,
		ChannelID: 0x0000,
		Samples:   []uint16{0x0001, 0x0002},
	}
	frame := m.Encode()
	frame[3]++                // declared length no longer matches sample count
	frame[len(frame)-1] ^= 0x12 ^ frame[3] // keep the checksum consistent

	_, err := DecodeSamplesResponse(frame)
	if !IsKind(err, LengthMismatch) {
		t.Errorf("decode error = %v, want length mismatch", err)
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	full := BootResponse{DeviceID: 1}.Encode()

	for _, n := range []int{1, 3, 4, 10, len(full) - 1} {
		if _, err := DecodeBootResponse(full[:n]); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("decode of %d-byte prefix: error = %v, want unexpected EOF", n, err)
		}
	}
}

func TestSamplesRoundTripCounts(t *testing.T) {
	// sample_count is derived from the slice on encode and drives both the
	// length code and the decode loop, so the invariant holds by
	// construction for any count.
	for _, n := range []int{0, 1, 7, 120} {
		samples := make([]uint16, n)
		for i := range samples {
			samples[i] = uint16(i * 3)
		}
		m := SamplesResponse{NetworkID: 0x215a, ChannelID: 1, Time: 0x12345678, Samples: samples}

		frame := m.Encode()
		if got, want := frame[3], byte(14+2*n); got != want {
			t.Fatalf("n=%d: length code = 0x%02x, want 0x%02x", n, got, want)
		}

		decoded, err := DecodeSamplesResponse(frame)
		if err != nil {
			t.Fatalf("n=%d: decode error = %v", n, err)
		}
		if len(decoded.Samples) != n {
			t.Errorf("n=%d: decoded %d samples", n, len(decoded.Samples))
		}
	}
}

func TestFrameErrorKindString(t *testing.T) {
	kinds := map[FrameErrorKind]string{
		CommandMismatch:       "command mismatch",
		LengthMismatch:        "length mismatch",
		FieldConstantMismatch: "field constant mismatch",
		ChecksumMismatch:      "checksum mismatch",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
