package protocol

import (
	"bytes"
	"reflect"
	"testing"
)

// catalogVectors holds one known-good wire capture per message type. The
// response vectors are real captures from the dongle; the request vectors are
// the bytes the original client is known to emit.
var catalogVectors = []struct {
	name   string
	wire   []byte
	encode func() []byte
	decode func([]byte) (any, error)
	want   any
}{
	{
		name:   "boot request",
		wire:   []byte{0x02, 0x40, 0x04, 0x00, 0x44},
		encode: BootRequest{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeBootRequest(b) },
		want:   &BootRequest{},
	},
	{
		name: "boot response",
		wire: []byte{
			0x02, 0x40, 0x84, 0x16, 0x01, 0x00, 0x00, 0x87, 0x03,
			0x00, 0x30, 0x00, 0x33, 0x83, 0x69, 0x9a, 0x0b, 0x2f,
			0x00, 0x00, 0x00, 0x58, 0x4f, 0x80, 0x0a, 0x1c, 0x81,
		},
		encode: BootResponse{
			Data:     [12]byte{0x01, 0x00, 0x00, 0x87, 0x03, 0x00, 0x30, 0x00, 0x33, 0x83, 0x69, 0x9a},
			DeviceID: 0x0b2f000000584f80,
			Data2:    0x0a1c,
		}.Encode,
		decode: func(b []byte) (any, error) { return DecodeBootResponse(b) },
		want: &BootResponse{
			Data:     [12]byte{0x01, 0x00, 0x00, 0x87, 0x03, 0x00, 0x30, 0x00, 0x33, 0x83, 0x69, 0x9a},
			DeviceID: 0x0b2f000000584f80,
			Data2:    0x0a1c,
		},
	},
	{
		name:   "boot confirm request",
		wire:   []byte{0x02, 0x40, 0x00, 0x00, 0x40},
		encode: BootConfirmRequest{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeBootConfirmRequest(b) },
		want:   &BootConfirmRequest{},
	},
	{
		name:   "boot confirm response",
		wire:   []byte{0x02, 0x40, 0x80, 0x01, 0x10, 0xd1},
		encode: BootConfirmResponse{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeBootConfirmResponse(b) },
		want:   &BootConfirmResponse{},
	},
	{
		name:   "unlock request",
		wire:   []byte{0x02, 0xa2, 0x36, 0x04, 0xfc, 0xff, 0x90, 0x01, 0x02},
		encode: UnlockRequest{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeUnlockRequest(b) },
		want:   &UnlockRequest{},
	},
	{
		name:   "lock request",
		wire:   []byte{0x02, 0xa2, 0x36, 0x04, 0xfc, 0xff, 0x00, 0x01, 0x92},
		encode: LockRequest{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeLockRequest(b) },
		want:   &LockRequest{},
	},
	{
		name:   "lock response",
		wire:   []byte{0x02, 0xa0, 0xf9, 0x01, 0x00, 0x58},
		encode: LockResponse{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeLockResponse(b) },
		want:   &LockResponse{},
	},
	{
		name:   "handshake request",
		wire:   []byte{0x02, 0x40, 0x03, 0x04, 0x00, 0x01, 0x05, 0x00, 0x43},
		encode: HandshakeRequest{NetworkID: 0x0001}.Encode,
		decode: func(b []byte) (any, error) { return DecodeHandshakeRequest(b) },
		want:   &HandshakeRequest{NetworkID: 0x0001},
	},
	{
		name:   "handshake response",
		wire:   []byte{0x02, 0x40, 0x03, 0x01, 0x00, 0x42},
		encode: HandshakeResponse{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeHandshakeResponse(b) },
		want:   &HandshakeResponse{},
	},
	{
		name: "broadcast",
		wire: []byte{
			0x02, 0xa0, 0x13, 0x0b, 0x01, 0x02, 0x01, 0x02,
			0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x01, 0xb2,
		},
		encode: Broadcast{NetworkID: 0x0102, DeviceID: 0x0102030405060708, Data: 0x01}.Encode,
		decode: func(b []byte) (any, error) { return DecodeBroadcast(b) },
		want:   &Broadcast{NetworkID: 0x0102, DeviceID: 0x0102030405060708, Data: 0x01},
	},
	{
		name:   "update time request",
		wire:   []byte{0x02, 0x40, 0x22, 0x06, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x65},
		encode: UpdateTimeRequest{NetworkID: 0x0001, Time: 0x00000000}.Encode,
		decode: func(b []byte) (any, error) { return DecodeUpdateTimeRequest(b) },
		want:   &UpdateTimeRequest{NetworkID: 0x0001, Time: 0x00000000},
	},
	{
		name:   "update time ack",
		wire:   []byte{0x02, 0x40, 0x22, 0x01, 0x00, 0x63},
		encode: UpdateTimeAck{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeUpdateTimeAck(b) },
		want:   &UpdateTimeAck{},
	},
	{
		name:   "update time response",
		wire:   []byte{0x02, 0x40, 0xa2, 0x03, 0x01, 0x02, 0x00, 0xe2},
		encode: UpdateTimeResponse{NetworkID: 0x0102}.Encode,
		decode: func(b []byte) (any, error) { return DecodeUpdateTimeResponse(b) },
		want:   &UpdateTimeResponse{NetworkID: 0x0102},
	},
	{
		name:   "samples request",
		wire:   []byte{0x02, 0x40, 0x24, 0x06, 0x00, 0x02, 0x00, 0x01, 0x0a, 0x00, 0x6b},
		encode: SamplesRequest{NetworkID: 0x0002, ChannelID: 0x0001}.Encode,
		decode: func(b []byte) (any, error) { return DecodeSamplesRequest(b) },
		want:   &SamplesRequest{NetworkID: 0x0002, ChannelID: 0x0001},
	},
	{
		name:   "samples ack",
		wire:   []byte{0x02, 0x40, 0x24, 0x01, 0x00, 0x65},
		encode: SamplesAck{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeSamplesAck(b) },
		want:   &SamplesAck{},
	},
	{
		name: "samples response",
		wire: []byte{
			0x02, 0x40, 0xa4, 0x12, 0x01, 0x02,
			0x01, 0x02, 0x01, 0x02, 0x01, 0x02,
			0x03, 0x04, 0x02, 0x02, 0x00, 0x00,
			0x01, 0x00, 0x02, 0x00, 0xf2,
		},
		encode: SamplesResponse{
			NetworkID:         0x0102,
			ChannelID:         0x0102,
			Data:              0x0102,
			Time:              0x04030201,
			StoredSampleCount: [3]byte{0x02, 0x00, 0x00},
			Samples:           []uint16{0x0001, 0x0002},
		}.Encode,
		decode: func(b []byte) (any, error) { return DecodeSamplesResponse(b) },
		want: &SamplesResponse{
			NetworkID:         0x0102,
			ChannelID:         0x0102,
			Data:              0x0102,
			Time:              0x04030201,
			StoredSampleCount: [3]byte{0x02, 0x00, 0x00},
			Samples:           []uint16{0x0001, 0x0002},
		},
	},
	{
		name: "schedule request",
		wire: func() []byte {
			wire := []byte{0x02, 0x40, 0x23, 0x3b, 0x00, 0x02, 0x01}
			wire = append(wire, make([]byte, ScheduleSize)...)
			return append(wire, 0x5b)
		}(),
		encode: ScheduleRequest{NetworkID: 0x0002, ChannelID: 0x01}.Encode,
		decode: func(b []byte) (any, error) { return DecodeScheduleRequest(b) },
		want:   &ScheduleRequest{NetworkID: 0x0002, ChannelID: 0x01},
	},
	{
		name:   "schedule response",
		wire:   []byte{0x02, 0x40, 0x23, 0x01, 0x00, 0x62},
		encode: ScheduleResponse{}.Encode,
		decode: func(b []byte) (any, error) { return DecodeScheduleResponse(b) },
		want:   &ScheduleResponse{},
	},
}

func TestCatalogWireVectors(t *testing.T) {
	for _, tt := range catalogVectors {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.encode()
			if !bytes.Equal(encoded, tt.wire) {
				t.Errorf("Encode() = % 02x, want % 02x", encoded, tt.wire)
			}

			got, err := tt.decode(tt.wire)
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decode = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCatalogChecksumRejected(t *testing.T) {
	// Flipping only the trailing checksum byte must fail the checksum
	// check and nothing else.
	for _, tt := range catalogVectors {
		t.Run(tt.name, func(t *testing.T) {
			poisoned := append([]byte(nil), tt.wire...)
			poisoned[len(poisoned)-1]++

			_, err := tt.decode(poisoned)
			if err == nil {
				t.Fatal("decode succeeded on corrupted checksum")
			}
			if !IsKind(err, ChecksumMismatch) {
				t.Errorf("decode error = %v, want checksum mismatch", err)
			}
		})
	}
}

func TestCatalogCommandRejected(t *testing.T) {
	// Corrupt the command id but re-derive the checksum so the command id
	// is the only invalid thing in the frame. The command check must fire
	// independently of checksum validation.
	for _, tt := range catalogVectors {
		t.Run(tt.name, func(t *testing.T) {
			poisoned := append([]byte(nil), tt.wire...)
			poisoned[1]++
			poisoned[2]++
			last := len(poisoned) - 1
			poisoned[last] ^= tt.wire[1] ^ poisoned[1] ^ tt.wire[2] ^ poisoned[2]

			_, err := tt.decode(poisoned)
			if err == nil {
				t.Fatal("decode succeeded on corrupted command id")
			}
			if !IsKind(err, CommandMismatch) {
				t.Errorf("decode error = %v, want command mismatch", err)
			}
		})
	}
}

func TestCatalogBadMagicRejected(t *testing.T) {
	for _, tt := range catalogVectors {
		t.Run(tt.name, func(t *testing.T) {
			poisoned := append([]byte(nil), tt.wire...)
			poisoned[0] = 0x03

			if _, err := tt.decode(poisoned); err != ErrBadMagic {
				t.Errorf("decode error = %v, want ErrBadMagic", err)
			}
		})
	}
}
