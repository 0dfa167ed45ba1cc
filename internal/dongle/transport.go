package dongle

import "errors"

// Transport is an already-open, exclusive, blocking byte channel to the
// dongle. Receive returns exactly n bytes or an error; a timeout surfaces as
// an error whose chain implements Timeout() bool.
type Transport interface {
	Transmit(p []byte) (int, error)
	Receive(n int) ([]byte, error)
	Close() error
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
