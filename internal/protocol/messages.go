package protocol

// The message catalog. Each type carries only its semantically meaningful
// fields; protocol constants (fixed payload bytes, length codes) are filled
// in at encode time and verified at decode time. All multi-byte fields are
// big-endian except the 32-bit time fields and the sample values, which the
// device sends little-endian.

// BootRequest asks the dongle to (re)start its firmware session.
type BootRequest struct{}

func (BootRequest) Encode() []byte {
	return newEncoder(CmdBootRequest, 0x00).finish()
}

func DecodeBootRequest(frame []byte) (*BootRequest, error) {
	d, lc, err := newDecoder(frame, CmdBootRequest)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &BootRequest{}, nil
}

// BootResponse carries the dongle's identity. Data and Data2 are opaque
// firmware fields observed on the wire but not interpreted.
type BootResponse struct {
	Data     [12]byte
	DeviceID uint64
	Data2    uint16
}

func (m BootResponse) Encode() []byte {
	e := newEncoder(CmdBootResponse, 0x16)
	e.raw(m.Data[:])
	e.u64(m.DeviceID)
	e.u16(m.Data2)
	return e.finish()
}

func DecodeBootResponse(frame []byte) (*BootResponse, error) {
	d, lc, err := newDecoder(frame, CmdBootResponse)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x16)
	var m BootResponse
	d.read(m.Data[:])
	m.DeviceID = d.u64()
	m.Data2 = d.u16()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// BootConfirmRequest acknowledges the boot response.
type BootConfirmRequest struct{}

func (BootConfirmRequest) Encode() []byte {
	return newEncoder(CmdBootConfirmRequest, 0x00).finish()
}

func DecodeBootConfirmRequest(frame []byte) (*BootConfirmRequest, error) {
	d, lc, err := newDecoder(frame, CmdBootConfirmRequest)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &BootConfirmRequest{}, nil
}

// BootConfirmResponse completes the boot handshake.
type BootConfirmResponse struct{}

func (BootConfirmResponse) Encode() []byte {
	e := newEncoder(CmdBootConfirmResponse, 0x01)
	e.u8(0x10)
	return e.finish()
}

func DecodeBootConfirmResponse(frame []byte) (*BootConfirmResponse, error) {
	d, lc, err := newDecoder(frame, CmdBootConfirmResponse)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x01)
	d.expectU8(0x10)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &BootConfirmResponse{}, nil
}

// UnlockRequest opens the network for commissioning new devices.
type UnlockRequest struct{}

func (UnlockRequest) Encode() []byte {
	e := newEncoder(CmdLock, 0x04)
	e.u32(0xfcff9001)
	return e.finish()
}

func DecodeUnlockRequest(frame []byte) (*UnlockRequest, error) {
	d, lc, err := newDecoder(frame, CmdLock)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x04)
	d.expectU32(0xfcff9001)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &UnlockRequest{}, nil
}

// LockRequest closes the network again after commissioning.
type LockRequest struct{}

func (LockRequest) Encode() []byte {
	e := newEncoder(CmdLock, 0x04)
	e.u32(0xfcff0001)
	return e.finish()
}

func DecodeLockRequest(frame []byte) (*LockRequest, error) {
	d, lc, err := newDecoder(frame, CmdLock)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x04)
	d.expectU32(0xfcff0001)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &LockRequest{}, nil
}

// LockResponse acknowledges both lock and unlock requests.
type LockResponse struct{}

func (LockResponse) Encode() []byte {
	e := newEncoder(CmdLockResponse, 0x01)
	e.u8(0x00)
	return e.finish()
}

func DecodeLockResponse(frame []byte) (*LockResponse, error) {
	d, lc, err := newDecoder(frame, CmdLockResponse)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x01)
	d.expectU8(0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &LockResponse{}, nil
}

// HandshakeRequest selects the network that subsequent commands address.
type HandshakeRequest struct {
	NetworkID uint16
}

func (m HandshakeRequest) Encode() []byte {
	e := newEncoder(CmdHandshake, 0x04)
	e.u16(m.NetworkID)
	e.u16(0x0500)
	return e.finish()
}

func DecodeHandshakeRequest(frame []byte) (*HandshakeRequest, error) {
	d, lc, err := newDecoder(frame, CmdHandshake)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x04)
	var m HandshakeRequest
	m.NetworkID = d.u16()
	d.expectU16(0x0500)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// HandshakeResponse acknowledges a network selection.
type HandshakeResponse struct{}

func (HandshakeResponse) Encode() []byte {
	e := newEncoder(CmdHandshake, 0x01)
	e.u8(0x00)
	return e.finish()
}

func DecodeHandshakeResponse(frame []byte) (*HandshakeResponse, error) {
	d, lc, err := newDecoder(frame, CmdHandshake)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x01)
	d.expectU8(0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &HandshakeResponse{}, nil
}

// Broadcast is the unsolicited frame an uncommissioned device emits while the
// network is unlocked. It is the only message the dongle originates without a
// request.
type Broadcast struct {
	NetworkID uint16
	DeviceID  uint64
	Data      uint8
}

func (m Broadcast) Encode() []byte {
	e := newEncoder(CmdBroadcast, 0x0b)
	e.u16(m.NetworkID)
	e.u64(m.DeviceID)
	e.u8(m.Data)
	return e.finish()
}

func DecodeBroadcast(frame []byte) (*Broadcast, error) {
	d, lc, err := newDecoder(frame, CmdBroadcast)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x0b)
	var m Broadcast
	m.NetworkID = d.u16()
	m.DeviceID = d.u64()
	m.Data = d.u8()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateTimeRequest pushes the host clock to a network. Time is seconds since
// the Unix epoch, truncated to the protocol's 32-bit little-endian field.
type UpdateTimeRequest struct {
	NetworkID uint16
	Time      uint32
}

func (m UpdateTimeRequest) Encode() []byte {
	e := newEncoder(CmdUpdateTime, 0x06)
	e.u16(m.NetworkID)
	e.u32le(m.Time)
	return e.finish()
}

func DecodeUpdateTimeRequest(frame []byte) (*UpdateTimeRequest, error) {
	d, lc, err := newDecoder(frame, CmdUpdateTime)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x06)
	var m UpdateTimeRequest
	m.NetworkID = d.u16()
	m.Time = d.u32le()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateTimeAck is the immediate acknowledgement of an UpdateTimeRequest,
// followed on the wire by an UpdateTimeResponse.
type UpdateTimeAck struct{}

func (UpdateTimeAck) Encode() []byte {
	e := newEncoder(CmdUpdateTime, 0x01)
	e.u8(0x00)
	return e.finish()
}

func DecodeUpdateTimeAck(frame []byte) (*UpdateTimeAck, error) {
	d, lc, err := newDecoder(frame, CmdUpdateTime)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x01)
	d.expectU8(0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &UpdateTimeAck{}, nil
}

// UpdateTimeResponse confirms the time update for a network.
type UpdateTimeResponse struct {
	NetworkID uint16
}

func (m UpdateTimeResponse) Encode() []byte {
	e := newEncoder(CmdUpdateTimeResponse, 0x03)
	e.u16(m.NetworkID)
	e.u8(0x00)
	return e.finish()
}

func DecodeUpdateTimeResponse(frame []byte) (*UpdateTimeResponse, error) {
	d, lc, err := newDecoder(frame, CmdUpdateTimeResponse)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x03)
	var m UpdateTimeResponse
	m.NetworkID = d.u16()
	d.expectU8(0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// SamplesRequest asks one channel (socket) for its buffered power samples.
type SamplesRequest struct {
	NetworkID uint16
	ChannelID uint16
}

func (m SamplesRequest) Encode() []byte {
	e := newEncoder(CmdSamples, 0x06)
	e.u16(m.NetworkID)
	e.u16(m.ChannelID)
	e.u16(0x0a00)
	return e.finish()
}

func DecodeSamplesRequest(frame []byte) (*SamplesRequest, error) {
	d, lc, err := newDecoder(frame, CmdSamples)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x06)
	var m SamplesRequest
	m.NetworkID = d.u16()
	m.ChannelID = d.u16()
	d.expectU16(0x0a00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// SamplesAck is the immediate acknowledgement of a SamplesRequest; the
// samples themselves follow in a variable-length SamplesResponse.
type SamplesAck struct{}

func (SamplesAck) Encode() []byte {
	e := newEncoder(CmdSamples, 0x01)
	e.u8(0x00)
	return e.finish()
}

func DecodeSamplesAck(frame []byte) (*SamplesAck, error) {
	d, lc, err := newDecoder(frame, CmdSamples)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x01)
	d.expectU8(0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &SamplesAck{}, nil
}

// SamplesResponse is the variable-length reply carrying buffered samples.
// Its length code is 14 + 2*n for n samples; the on-wire sample count is
// derived from Samples on encode and must satisfy the length formula on
// decode. Time and the sample values are little-endian.
type SamplesResponse struct {
	NetworkID         uint16
	ChannelID         uint16
	Data              uint16
	Time              uint32
	StoredSampleCount [3]byte
	Samples           []uint16
}

func (m SamplesResponse) Encode() []byte {
	n := len(m.Samples)
	e := newEncoder(CmdSamplesResponse, byte(14+2*n))
	e.u16(m.NetworkID)
	e.u16(m.ChannelID)
	e.u16(m.Data)
	e.u32le(m.Time)
	e.u8(byte(n))
	e.raw(m.StoredSampleCount[:])
	for _, s := range m.Samples {
		e.u16le(s)
	}
	return e.finish()
}

func DecodeSamplesResponse(frame []byte) (*SamplesResponse, error) {
	d, lc, err := newDecoder(frame, CmdSamplesResponse)
	if err != nil {
		return nil, err
	}
	var m SamplesResponse
	m.NetworkID = d.u16()
	m.ChannelID = d.u16()
	m.Data = d.u16()
	m.Time = d.u32le()
	count := d.u8()
	d.expectLength(lc, 14+2*count)
	d.read(m.StoredSampleCount[:])
	if d.err == nil {
		m.Samples = make([]uint16, count)
		for i := range m.Samples {
			m.Samples[i] = d.u16le()
		}
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ScheduleSize is the device's native weekly program buffer length.
const ScheduleSize = 56

// ScheduleRequest programs one channel's on/off schedule.
type ScheduleRequest struct {
	NetworkID uint16
	ChannelID uint8
	Schedule  [ScheduleSize]byte
}

func (m ScheduleRequest) Encode() []byte {
	e := newEncoder(CmdSchedule, 0x3b)
	e.u16(m.NetworkID)
	e.u8(m.ChannelID)
	e.raw(m.Schedule[:])
	return e.finish()
}

func DecodeScheduleRequest(frame []byte) (*ScheduleRequest, error) {
	d, lc, err := newDecoder(frame, CmdSchedule)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x3b)
	var m ScheduleRequest
	m.NetworkID = d.u16()
	m.ChannelID = d.u8()
	d.read(m.Schedule[:])
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ScheduleResponse acknowledges a schedule write.
type ScheduleResponse struct{}

func (ScheduleResponse) Encode() []byte {
	e := newEncoder(CmdSchedule, 0x01)
	e.u8(0x00)
	return e.finish()
}

func DecodeScheduleResponse(frame []byte) (*ScheduleResponse, error) {
	d, lc, err := newDecoder(frame, CmdSchedule)
	if err != nil {
		return nil, err
	}
	d.expectLength(lc, 0x01)
	d.expectU8(0x00)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &ScheduleResponse{}, nil
}
