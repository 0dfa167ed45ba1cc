package protocol

import "io"

// ChecksumWriter is a transparent write filter that XORs every byte passing
// through it. The frame encoder writes the command id, length code, and
// payload through this filter, captures Sum, and appends it as the trailing
// checksum byte. The magic byte is written outside the filter: it is a fixed
// framing marker, not covered by the checksum.
type ChecksumWriter struct {
	W   io.Writer
	sum byte
}

func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := cw.W.Write(p)
	for _, b := range p[:n] {
		cw.sum ^= b
	}
	return n, err
}

// Sum returns the XOR of every byte written so far.
func (cw *ChecksumWriter) Sum() byte { return cw.sum }

// ChecksumReader is the read-side counterpart. The trailing checksum byte
// arrives through the same stream and must not contribute to the value it is
// validated against, so the reader keeps two accumulators and lags by one
// byte: after any byte is read, Sum reports the XOR of every byte strictly
// before it. At the moment the checksum byte itself has been read, Sum equals
// the expected checksum regardless of the checksum byte's own value.
type ChecksumReader struct {
	R     io.Reader
	prev  byte // XOR of all bytes read, excluding the most recent
	total byte // XOR of all bytes read
}

func (cr *ChecksumReader) Read(p []byte) (int, error) {
	n, err := cr.R.Read(p)
	for _, b := range p[:n] {
		cr.prev = cr.total
		cr.total ^= b
	}
	return n, err
}

// Sum returns the XOR of every byte read so far except the most recent one.
func (cr *ChecksumReader) Sum() byte { return cr.prev }
