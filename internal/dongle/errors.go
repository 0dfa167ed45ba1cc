package dongle

import "fmt"

// SessionError wraps a transport or codec failure raised during a session
// operation. A session that returned one is unusable: the in-flight exchange
// aborted and the stream position against the dongle is unknown.
type SessionError struct {
	Op  string // the session operation that failed
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("dongle: %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
