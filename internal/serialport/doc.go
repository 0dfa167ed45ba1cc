// Package serialport opens and drives the dongle's FTDI USB-serial adapter.
// It is the one Transport implementation; the session consumes it purely as
// a blocking byte channel.
package serialport
