package serialport

import (
	"errors"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"github.com/hacklet/hacklet/internal/logging"
)

// The dongle enumerates as an FTDI adapter with a vendor-specific product
// id.
const (
	VendorID  = "0403"
	ProductID = "8C81"
)

const (
	baudRate = 115200

	// idleTimeout bounds a single wait for the first byte of a read;
	// receiveDeadline bounds one whole Receive call once bytes have
	// started arriving.
	idleTimeout     = 5 * time.Second
	receiveDeadline = 30 * time.Second
)

// ErrNotFound means no attached USB serial adapter matched the dongle's
// vendor and product ids.
var ErrNotFound = errors.New("no dongle found (FTDI 0403:8c81)")

// Port is the serial transport to the dongle. It is exclusively owned by
// one session and not safe for concurrent use.
type Port struct {
	port   serial.Port
	log    *zap.Logger
	closed bool
}

// Open locates the dongle among the attached USB serial adapters and opens
// it, configured the way the firmware expects: 115200 8N1, no flow control,
// DTR and RTS asserted. Stale bytes in the receive buffer are discarded.
func Open() (*Port, error) {
	return OpenPath("")
}

// OpenPath opens the dongle at an explicit device path, skipping USB
// discovery. An empty path falls back to discovery.
func OpenPath(path string) (*Port, error) {
	log := logging.GetLogger()

	if path == "" {
		var err error
		path, err = findDongle(log)
		if err != nil {
			return nil, err
		}
	}

	log.Debug("opening serial port", zap.String("port", path))
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, &PortError{Op: "open", Err: err}
	}

	if err := configure(port); err != nil {
		_ = port.Close()
		return nil, err
	}
	return &Port{port: port, log: log}, nil
}

func configure(port serial.Port) error {
	if err := port.SetDTR(true); err != nil {
		return &PortError{Op: "set dtr", Err: err}
	}
	if err := port.SetRTS(true); err != nil {
		return &PortError{Op: "set rts", Err: err}
	}
	if err := port.SetReadTimeout(idleTimeout); err != nil {
		return &PortError{Op: "set read timeout", Err: err}
	}
	// The dongle may have queued broadcasts while unplugged from any
	// session; they would desync the first exchange.
	if err := port.ResetInputBuffer(); err != nil {
		return &PortError{Op: "purge", Err: err}
	}
	return nil
}

func findDongle(log *zap.Logger) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", &PortError{Op: "list", Err: err}
	}
	log.Debug("enumerated serial ports", zap.Int("count", len(ports)))

	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		log.Debug("found usb serial port",
			zap.String("port", p.Name),
			zap.String("vid", p.VID),
			zap.String("pid", p.PID))
		if strings.EqualFold(p.VID, VendorID) && strings.EqualFold(p.PID, ProductID) {
			return p.Name, nil
		}
	}
	return "", &PortError{Op: "list", Err: ErrNotFound}
}

// Transmit writes one encoded frame to the dongle.
func (p *Port) Transmit(buf []byte) (int, error) {
	logging.LogRawBytes("TX", buf)
	n, err := p.port.Write(buf)
	if err != nil {
		return n, &PortError{Op: "write", Err: err}
	}
	return n, nil
}

// Receive blocks until exactly n bytes have arrived. It fails with a
// timeout error when the line stays idle, or when a started frame does not
// complete within the overall deadline.
func (p *Port) Receive(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	deadline := time.Now().Add(receiveDeadline)

	for read < n {
		m, err := p.port.Read(buf[read:])
		if err != nil {
			return nil, &PortError{Op: "read", Err: err}
		}
		if m == 0 {
			// The read timeout expired with no data.
			if read == 0 {
				return nil, &PortError{Op: "read", Err: errors.New("idle timeout"), timeout: true}
			}
			if time.Now().After(deadline) {
				return nil, &PortError{Op: "read", Err: errors.New("receive deadline exceeded"), timeout: true}
			}
			continue
		}
		read += m
	}

	logging.LogRawBytes("RX", buf)
	return buf, nil
}

// Close releases the port. It is idempotent and best-effort.
func (p *Port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Debug("closing serial port")
	_ = p.port.Close()
	return nil
}
