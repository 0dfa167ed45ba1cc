// Package dongle drives one USB dongle session: the boot handshake, network
// selection, socket switching, sample reads, and device commissioning.
//
// A session owns its Transport exclusively and is strictly synchronous: every
// operation sends at most one request frame and blocks until the expected
// response bytes arrive or the transport times out. Any transport or codec
// failure leaves the session unusable; callers must discard it and open a new
// one. There are no retries.
package dongle
