package mqtt

import (
	"bytes"
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/courierbots/courier.go/pkg/framework"
)

// Bridge connects a node to a broker. It never bypasses the dispatch
// loop: inbound broker lines are posted like serial bytes, outbound
// lines are mirrored only after the uplink write.
type Bridge struct {
	queue  *Queue
	nodeID string
	post   fx.LinePoster
}

// NewBridge creates a Bridge for the node with the given id.
func NewBridge(brokerURL, nodeID string, post fx.LinePoster) (*Bridge, error) {
	queue, err := NewQueue(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Bridge{queue: queue, nodeID: nodeID, post: post}, nil
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "mqtt-bridge"
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	token := b.queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	defer b.queue.Close()

	b.queue.Sub(b.nodeID+"/cmd", func(topic string, payload []byte) {
		for _, line := range bytes.Split(payload, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			cp := make([]byte, len(line))
			copy(cp, line)
			b.post.PostLine(cp)
		}
	})

	<-ctx.Done()
	return ctx.Err()
}

// MirrorWriter returns a writer that republishes every complete line
// written through it on <node>/evt. Wire it behind the uplink with an
// io.MultiWriter; it is used from the loop goroutine only.
func (b *Bridge) MirrorWriter() io.Writer {
	return &mirror{bridge: b}
}

type mirror struct {
	bridge *Bridge
	buf    []byte
}

// Write implements io.Writer. Partial lines are held until their
// terminator arrives.
func (m *mirror) Write(p []byte) (int, error) {
	m.buf = append(m.buf, p...)
	for {
		i := bytes.IndexByte(m.buf, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := m.buf[:i]
		if len(line) > 0 {
			glog.V(3).Infof("mirror %q", line)
			m.bridge.queue.Pub(m.bridge.nodeID+"/evt", append([]byte(nil), line...))
		}
		m.buf = m.buf[i+1:]
	}
}
