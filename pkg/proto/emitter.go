package proto

import (
	"io"
	"strconv"

	"github.com/golang/glog"
)

// Emitter formats outbound lines into a reusable scratch buffer and
// writes them to the uplink. It is owned by the dispatch loop; a single
// writer, so no locking.
type Emitter struct {
	w   io.Writer
	buf []byte
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w, buf: make([]byte, 0, 64)}
}

// Event writes "EVT:<type>[:<data>...]\n".
func (e *Emitter) Event(typ string, data ...string) error {
	e.buf = append(e.buf[:0], "EVT:"...)
	e.buf = append(e.buf, typ...)
	for _, d := range data {
		e.buf = append(e.buf, ':')
		e.buf = append(e.buf, d...)
	}
	return e.send()
}

// EventID writes "EVT:<type>:<id>[:<data>]\n" for 1-indexed unit ids.
func (e *Emitter) EventID(typ string, id int, data ...string) error {
	e.buf = append(e.buf[:0], "EVT:"...)
	e.buf = append(e.buf, typ...)
	e.buf = append(e.buf, ':')
	e.buf = strconv.AppendInt(e.buf, int64(id), 10)
	for _, d := range data {
		e.buf = append(e.buf, ':')
		e.buf = append(e.buf, d...)
	}
	return e.send()
}

// Ack writes "ACK:<type>\n".
func (e *Emitter) Ack(typ string) error {
	e.buf = append(e.buf[:0], "ACK:"...)
	e.buf = append(e.buf, typ...)
	return e.send()
}

// Raw writes a preformatted line, e.g. LinePong.
func (e *Emitter) Raw(line string) error {
	e.buf = append(e.buf[:0], line...)
	return e.send()
}

func (e *Emitter) send() error {
	if glog.V(2) {
		glog.Infof("SND %q", e.buf)
	}
	e.buf = append(e.buf, '\n')
	_, err := e.w.Write(e.buf)
	return err
}
