// Package protocol implements the Modlet dongle's binary serial protocol.
//
// This package handles encoding, decoding, and validation of the checksummed
// frames exchanged with the USB dongle. It is pure codec: it never touches a
// transport.
//
// # Frame Format
//
// Every message is one frame:
//   - Magic byte: 0x02
//   - Command id: 2 bytes (big-endian)
//   - Payload length code: 1 byte
//   - Payload: variable length
//   - Checksum: 1 byte, XOR of every byte from the command id through the
//     end of the payload (the magic byte and the checksum itself are
//     excluded)
//
// The length code is usually the payload byte count, but it is a protocol
// value, not a derived one: the samples response declares 14 + 2*n for n
// samples. All payload fields are big-endian except the 32-bit time fields
// (update-time request, samples response) and the sample values, which are
// little-endian.
//
// # Message Catalog
//
// Each wire shape has its own type. Requests and responses expose only their
// variable fields; fixed payload bytes and length codes are baked in by
// Encode and verified by the Decode functions. Decoding distinguishes four
// independent validation failures via FrameError: command id, length code,
// fixed field value, and checksum. A buffer that does not start with the
// 0x02 magic fails outright with ErrBadMagic.
//
// # Variable-Length Frames
//
// The broadcast and samples-response frames cannot be read with a single
// fixed-size receive. Callers read the 4-byte header first, then
// Remaining(header) more bytes, and decode the concatenation:
//
//	header, _ := transport.Receive(protocol.HeaderSize)
//	rest, _ := transport.Receive(protocol.Remaining(header))
//	resp, err := protocol.DecodeSamplesResponse(append(header, rest...))
package protocol
