package serialport

import "fmt"

// PortError reports a failure of the underlying serial channel: device
// listing, opening, configuration, or I/O. Timeouts are I/O failures too;
// Timeout distinguishes them so the commissioning poll loop can keep
// waiting.
type PortError struct {
	Op      string
	Err     error
	timeout bool
}

func (e *PortError) Error() string {
	return fmt.Sprintf("serialport: %s: %v", e.Op, e.Err)
}

func (e *PortError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was an expired receive deadline.
func (e *PortError) Timeout() bool {
	return e.timeout
}
