package dongle

import (
	"time"

	"go.uber.org/zap"

	"github.com/hacklet/hacklet/internal/logging"
	"github.com/hacklet/hacklet/internal/protocol"
)

// SwitchState selects one of the two constant schedule profiles a socket can
// be programmed with.
type SwitchState int

const (
	AlwaysOn SwitchState = iota
	AlwaysOff
)

func (s SwitchState) String() string {
	switch s {
	case AlwaysOn:
		return "on"
	case AlwaysOff:
		return "off"
	default:
		return "unknown"
	}
}

// DongleID identifies a commissioned device: the device's 64-bit hardware id
// and the 16-bit network it was admitted to.
type DongleID struct {
	Device  uint64
	Network uint16
}

// CommissionState tags the outcome of a commissioning attempt.
type CommissionState int

const (
	// Unknown means no device announced itself before the deadline.
	Unknown CommissionState = iota
	// NotCommissioned exists for API completeness; the commissioning flow
	// never produces it.
	NotCommissioned
	// Commissioned means a device was found and admitted.
	Commissioned
)

// CommissionStatus is the result of Commission. ID is meaningful only when
// State is Commissioned.
type CommissionStatus struct {
	State CommissionState
	ID    DongleID
}

// commissionTimeout bounds how long Commission listens for a device
// broadcast before giving up.
const commissionTimeout = 30 * time.Second

// Dongle is one synchronous session against the USB dongle. It owns the
// Transport for its lifetime; operations must not be invoked concurrently.
type Dongle struct {
	transport Transport
	log       *zap.Logger
	now       func() time.Time
	deadline  time.Duration
	closed    bool
}

// Open performs the mandatory boot handshake over an already-open transport
// and returns a ready session. On any failure the transport is closed before
// returning.
func Open(t Transport) (*Dongle, error) {
	d := &Dongle{
		transport: t,
		log:       logging.GetLogger(),
		now:       time.Now,
		deadline:  commissionTimeout,
	}
	if err := d.boot(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.bootConfirm(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the transport. It is idempotent and best-effort: errors
// from the underlying close are suppressed.
func (d *Dongle) Close() {
	if d.closed {
		return
	}
	d.closed = true
	_ = d.transport.Close()
}

// SelectNetwork establishes which network subsequent commands address. The
// protocol is otherwise stateless per exchange; the network id is resent on
// every command.
func (d *Dongle) SelectNetwork(network uint16) error {
	d.log.Debug("selecting network", zap.Uint16("network", network))
	frame, err := d.exchange("select network", protocol.HandshakeRequest{NetworkID: network}.Encode(), protocol.AckFrameSize)
	if err != nil {
		return err
	}
	if _, err := protocol.DecodeHandshakeResponse(frame); err != nil {
		return &SessionError{Op: "select network", Err: err}
	}
	return nil
}

// Switch programs the socket's schedule to one of the two constant profiles,
// turning it permanently on or off.
func (d *Dongle) Switch(network uint16, socket uint8, state SwitchState) error {
	d.log.Debug("switching socket",
		zap.Uint16("network", network),
		zap.Uint8("socket", socket),
		zap.Stringer("state", state))

	req := protocol.ScheduleRequest{
		NetworkID: network,
		ChannelID: socket,
		Schedule:  scheduleProfile(state),
	}
	frame, err := d.exchange("switch", req.Encode(), protocol.AckFrameSize)
	if err != nil {
		return err
	}
	if _, err := protocol.DecodeScheduleResponse(frame); err != nil {
		return &SessionError{Op: "switch", Err: err}
	}
	return nil
}

// RequestSamples reads the buffered power samples for one channel. The
// dongle acknowledges the request with a fixed-size frame, then sends the
// samples in a variable-length frame.
func (d *Dongle) RequestSamples(network, channel uint16) ([]uint16, error) {
	d.log.Debug("requesting samples",
		zap.Uint16("network", network),
		zap.Uint16("channel", channel))

	req := protocol.SamplesRequest{NetworkID: network, ChannelID: channel}
	ack, err := d.exchange("request samples", req.Encode(), protocol.AckFrameSize)
	if err != nil {
		return nil, err
	}
	if _, err := protocol.DecodeSamplesAck(ack); err != nil {
		return nil, &SessionError{Op: "request samples", Err: err}
	}

	frame, err := d.readFrame()
	if err != nil {
		return nil, &SessionError{Op: "request samples", Err: err}
	}
	resp, err := protocol.DecodeSamplesResponse(frame)
	if err != nil {
		return nil, &SessionError{Op: "request samples", Err: err}
	}
	return resp.Samples, nil
}

// UnlockNetwork opens the network so new devices may announce themselves.
func (d *Dongle) UnlockNetwork() error {
	d.log.Debug("unlocking network")
	frame, err := d.exchange("unlock network", protocol.UnlockRequest{}.Encode(), protocol.AckFrameSize)
	if err != nil {
		return err
	}
	if _, err := protocol.DecodeLockResponse(frame); err != nil {
		return &SessionError{Op: "unlock network", Err: err}
	}
	return nil
}

// LockNetwork closes the network to new devices.
func (d *Dongle) LockNetwork() error {
	d.log.Debug("locking network")
	frame, err := d.exchange("lock network", protocol.LockRequest{}.Encode(), protocol.AckFrameSize)
	if err != nil {
		return err
	}
	if _, err := protocol.DecodeLockResponse(frame); err != nil {
		return &SessionError{Op: "lock network", Err: err}
	}
	return nil
}

// Commission unlocks the network and listens for a device broadcast until
// the deadline. On success it pushes the host clock to the device's network,
// re-locks the network, and reports the discovered identity. If no valid
// broadcast arrives in time the result is Unknown.
func (d *Dongle) Commission() (CommissionStatus, error) {
	d.log.Info("listening for devices")

	if err := d.UnlockNetwork(); err != nil {
		return CommissionStatus{}, err
	}

	deadline := d.now().Add(d.deadline)
	for d.now().Before(deadline) {
		d.log.Debug("waiting for broadcast")

		header, err := d.transport.Receive(protocol.HeaderSize)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return CommissionStatus{}, &SessionError{Op: "commission", Err: err}
		}
		rest, err := d.transport.Receive(protocol.Remaining(header))
		if err != nil {
			return CommissionStatus{}, &SessionError{Op: "commission", Err: err}
		}
		frame := append(header, rest...)

		if protocol.Command(frame) != protocol.CmdBroadcast {
			continue
		}
		bc, err := protocol.DecodeBroadcast(frame)
		if err != nil {
			return CommissionStatus{}, &SessionError{Op: "commission", Err: err}
		}
		d.log.Debug("found device",
			zap.Uint64("device", bc.DeviceID),
			zap.Uint16("network", bc.NetworkID))

		// The wire time field is 32 bits; the truncation is part of
		// the protocol. A clock before the epoch just skips the sync.
		if ts := d.now().Unix(); ts >= 0 {
			if err := d.updateTime(bc.NetworkID, uint32(ts)); err != nil {
				return CommissionStatus{}, err
			}
		}

		if err := d.LockNetwork(); err != nil {
			return CommissionStatus{}, err
		}
		return CommissionStatus{
			State: Commissioned,
			ID:    DongleID{Device: bc.DeviceID, Network: bc.NetworkID},
		}, nil
	}

	// TODO: the network stays unlocked when no broadcast arrives before
	// the deadline; callers that care must lock it themselves.
	return CommissionStatus{State: Unknown}, nil
}

func (d *Dongle) boot() error {
	d.log.Debug("sending boot request")
	frame, err := d.exchange("boot", protocol.BootRequest{}.Encode(), protocol.BootResponseSize)
	if err != nil {
		return err
	}
	resp, err := protocol.DecodeBootResponse(frame)
	if err != nil {
		return &SessionError{Op: "boot", Err: err}
	}
	d.log.Debug("dongle booted", zap.Uint64("device", resp.DeviceID))
	return nil
}

func (d *Dongle) bootConfirm() error {
	d.log.Debug("sending boot confirmation")
	frame, err := d.exchange("boot confirm", protocol.BootConfirmRequest{}.Encode(), protocol.AckFrameSize)
	if err != nil {
		return err
	}
	if _, err := protocol.DecodeBootConfirmResponse(frame); err != nil {
		return &SessionError{Op: "boot confirm", Err: err}
	}
	return nil
}

// updateTime pushes the host clock to a network: an ack frame first, then an
// 8-byte confirmation.
func (d *Dongle) updateTime(network uint16, ts uint32) error {
	d.log.Debug("updating device time", zap.Uint16("network", network), zap.Uint32("time", ts))

	req := protocol.UpdateTimeRequest{NetworkID: network, Time: ts}
	ack, err := d.exchange("update time", req.Encode(), protocol.AckFrameSize)
	if err != nil {
		return err
	}
	if _, err := protocol.DecodeUpdateTimeAck(ack); err != nil {
		return &SessionError{Op: "update time", Err: err}
	}

	frame, err := d.transport.Receive(protocol.UpdateTimeResponseSize)
	if err != nil {
		return &SessionError{Op: "update time", Err: err}
	}
	if _, err := protocol.DecodeUpdateTimeResponse(frame); err != nil {
		return &SessionError{Op: "update time", Err: err}
	}
	return nil
}

// exchange transmits one encoded request and reads a fixed-size response
// frame.
func (d *Dongle) exchange(op string, req []byte, respSize int) ([]byte, error) {
	n, err := d.transport.Transmit(req)
	if err != nil {
		return nil, &SessionError{Op: op, Err: err}
	}
	d.log.Debug("wrote request", zap.String("op", op), zap.Int("bytes", n))

	frame, err := d.transport.Receive(respSize)
	if err != nil {
		return nil, &SessionError{Op: op, Err: err}
	}
	return frame, nil
}

// readFrame performs the two-phase read for variable-length frames: a 4-byte
// header, then the payload and checksum it declares.
func (d *Dongle) readFrame() ([]byte, error) {
	header, err := d.transport.Receive(protocol.HeaderSize)
	if err != nil {
		return nil, err
	}
	rest, err := d.transport.Receive(protocol.Remaining(header))
	if err != nil {
		return nil, err
	}
	return append(header, rest...), nil
}

// scheduleProfile builds the 56-byte schedule buffer for a switch state.
// These are the only two schedule programs the driver ever writes: a
// degenerate always-on and always-off rendering of the device's native
// weekly schedule encoding.
func scheduleProfile(state SwitchState) [protocol.ScheduleSize]byte {
	var schedule [protocol.ScheduleSize]byte
	fill := byte(0xff)
	marker := byte(0xa5)
	if state == AlwaysOff {
		fill = 0x7f
		marker = 0x25
	}
	for i := range schedule {
		schedule[i] = fill
	}
	schedule[5] = marker
	return schedule
}
