package node

import (
	"context"
	"io"

	fx "github.com/courierbots/courier.go/pkg/framework"
)

// LineCap is the inbound line buffer capacity. Bytes beyond it are
// dropped, so an unterminated runaway line is absorbed by truncation
// instead of growing without bound.
const LineCap = 64

// LineReader accumulates bytes from the uplink into protocol lines and
// posts each completed line to the loop. Reading blocks in its own
// goroutine; the loop only ever sees whole lines.
type LineReader struct {
	// Closer, when set, is closed on context cancellation to unblock
	// the pending Read (serial ports and sockets need this).
	Closer io.Closer

	r    io.Reader
	post fx.LinePoster

	buf []byte
}

// NewLineReader creates a LineReader posting to post.
func NewLineReader(r io.Reader, post fx.LinePoster) *LineReader {
	return &LineReader{r: r, post: post, buf: make([]byte, 0, LineCap)}
}

// Name implements framework.Named.
func (lr *LineReader) Name() string {
	return "uplink-reader"
}

// Run implements framework.Runnable.
func (lr *LineReader) Run(ctx context.Context) error {
	read := func() error {
		chunk := make([]byte, 256)
		for {
			n, err := lr.r.Read(chunk)
			if n > 0 {
				lr.Feed(chunk[:n])
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
	if lr.Closer != nil {
		return fx.RunWithContextCloser(ctx, lr.Closer, read)
	}
	return fx.RunWithContext(ctx, read)
}

// Feed consumes raw uplink bytes. Split out from Run so the framing
// rules are testable without goroutines.
func (lr *LineReader) Feed(data []byte) {
	for _, c := range data {
		switch c {
		case '\n':
			line := make([]byte, len(lr.buf))
			copy(line, lr.buf)
			lr.buf = lr.buf[:0]
			lr.post.PostLine(line)
		case '\r':
			// swallowed, the terminator is '\n'
		default:
			if len(lr.buf) < LineCap-1 {
				lr.buf = append(lr.buf, c)
			}
		}
	}
}
