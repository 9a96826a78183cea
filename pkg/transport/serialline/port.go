// Package serialline opens the node's uplink serial port.
package serialline

import (
	"io"

	"go.bug.st/serial"
)

// DefaultBaud is the uplink bit rate.
const DefaultBaud = 115200

// Open opens the serial device with 8N1 framing at the given baud
// rate. The returned port is an io.ReadWriteCloser suitable for a
// node.LineReader and a proto.Emitter.
func Open(device string, baud int) (io.ReadWriteCloser, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(device, mode)
}
