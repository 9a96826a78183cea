package node

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/courierbots/courier.go/pkg/cargo"
	"github.com/courierbots/courier.go/pkg/drive"
	"github.com/courierbots/courier.go/pkg/hal"
)

type harness struct {
	board *hal.SimBoard
	out   bytes.Buffer
	node  *Node
	now   time.Time
}

func newHarness() *harness {
	h := &harness{board: hal.NewSimBoard(), now: time.Unix(3000, 0)}
	h.node = New(h.board, &h.out, h.now)
	return h
}

func (h *harness) line(s string) {
	h.node.HandleLine([]byte(s), h.now)
}

// iterate mimics one loop pass: safeguard then updates.
func (h *harness) iterate(step time.Duration) {
	h.now = h.now.Add(step)
	h.node.safeguard(fakeCtx{h.now})
	h.node.Drive.Update(h.now)
	h.node.Cargo.Update(h.now)
	h.node.Panel.Update(h.now)
}

type fakeCtx struct {
	t time.Time
}

func (c fakeCtx) Time() time.Time          { return c.t }
func (c fakeCtx) Context() context.Context { return context.Background() }
func (c fakeCtx) TakeLines() [][]byte      { return nil }

func TestBootState(t *testing.T) {
	h := newHarness()
	require.False(t, h.node.Drive.IsMoving())
	require.Equal(t, cargo.LockedAngle, h.board.LockAngle(1))
	require.Equal(t, cargo.LockedAngle, h.board.LockAngle(2))
	require.Equal(t, "ROBOT ONLINE", h.board.Row(0))
}

func TestMoveCommandAck(t *testing.T) {
	h := newHarness()
	h.line("MOV:FWD:1500")
	require.Equal(t, "ACK:MOV\n", h.out.String())

	h.iterate(drive.RampInterval)
	require.Equal(t, hal.DriveState{Dir: hal.Forward, Level: 1}, h.board.Drive(hal.Left))
	require.Equal(t, hal.DriveState{Dir: hal.Forward, Level: 1}, h.board.Drive(hal.Right))
}

func TestMoveStopImmediate(t *testing.T) {
	h := newHarness()
	h.line("MOV:BCK:0")
	for i := 0; i < 10; i++ {
		h.iterate(drive.RampInterval)
	}
	require.True(t, h.node.Drive.IsMoving())

	h.line("MOV:STP:0")
	require.False(t, h.node.Drive.IsMoving(), "STP kills power without ramping")
	require.Equal(t, hal.DriveState{}, h.board.Drive(hal.Left))
}

func TestSpinCommands(t *testing.T) {
	h := newHarness()
	h.line("MOV:LFT:0")
	h.iterate(drive.RampInterval)
	require.Equal(t, hal.Backward, h.board.Drive(hal.Left).Dir)
	require.Equal(t, hal.Forward, h.board.Drive(hal.Right).Dir)

	h.line("MOV:RGT:0")
	h.iterate(drive.RampInterval)
	require.Equal(t, hal.Forward, h.board.Drive(hal.Left).Dir)
	require.Equal(t, hal.Backward, h.board.Drive(hal.Right).Dir)
}

func TestServoCommand(t *testing.T) {
	h := newHarness()
	h.line("SRV:1:OPEN")
	require.Equal(t, cargo.OpenAngle, h.board.LockAngle(1))
	require.Equal(t, "ACK:SRV\n", h.out.String())

	h.out.Reset()
	h.line("SRV:1:CLOSE")
	require.Equal(t, cargo.LockedAngle, h.board.LockAngle(1))
	require.Equal(t, "ACK:SRV\n", h.out.String())

	// out-of-range id still acks, never crashes
	h.out.Reset()
	h.line("SRV:9:OPEN")
	require.Equal(t, "ACK:SRV\n", h.out.String())
}

func TestDisplayCommand(t *testing.T) {
	h := newHarness()
	h.line("LCD:1:ETA 12:30")
	require.Equal(t, "ETA 12:30", h.board.Row(1), "display text keeps embedded delimiters")
	require.Empty(t, h.out.String(), "LCD is not acked")

	h.line("LCD:CLS:")
	require.Equal(t, "", h.board.Row(1))
}

func TestPing(t *testing.T) {
	h := newHarness()
	h.line("SYS:PING")
	require.Equal(t, "SYS:PONG\n", h.out.String())
}

func TestMalformedLinesDropped(t *testing.T) {
	h := newHarness()
	h.line("BADLINE")
	h.line("")
	h.line(":::")
	h.line("NOP:PE") // structurally fine, unknown type
	require.Empty(t, h.out.String(), "no ack, no fault")
	require.False(t, h.node.Drive.IsMoving())
}

func TestWatchdogTripsOnceWhileMoving(t *testing.T) {
	h := newHarness()
	h.node.SetWatchdogTimeout(20 * drive.RampInterval)
	h.line("MOV:FWD:0")
	h.out.Reset()

	var faults int
	for i := 0; i < 60; i++ {
		h.iterate(drive.RampInterval)
		faults = strings.Count(h.out.String(), "ERR:TIMEOUT\n")
	}
	require.Equal(t, 1, faults, "exactly one fault per silence episode")
	require.False(t, h.node.Drive.IsMoving())
	require.Equal(t, hal.DriveState{Dir: hal.Neutral, Level: 0}, h.board.Drive(hal.Left))
	require.Equal(t, "ALARM: CMD LOST", h.board.Row(0))
}

func TestWatchdogIgnoredWhileIdle(t *testing.T) {
	h := newHarness()
	h.node.SetWatchdogTimeout(5 * drive.RampInterval)
	for i := 0; i < 30; i++ {
		h.iterate(drive.RampInterval)
	}
	require.Empty(t, h.out.String(), "no spurious fault while idle")
}

func TestWatchdogRecovery(t *testing.T) {
	h := newHarness()
	h.node.SetWatchdogTimeout(10 * drive.RampInterval)
	h.line("MOV:FWD:0")
	for i := 0; i < 30; i++ {
		h.iterate(drive.RampInterval)
	}
	require.Contains(t, h.out.String(), "ERR:TIMEOUT\n")

	// a fresh valid command re-arms the link and does not re-emit
	h.out.Reset()
	h.line("MOV:FWD:0")
	for i := 0; i < 8; i++ {
		h.iterate(drive.RampInterval)
	}
	require.NotContains(t, h.out.String(), "ERR:TIMEOUT")
	require.True(t, h.node.Drive.IsMoving())
}

func TestMalformedLineDoesNotFeedWatchdog(t *testing.T) {
	h := newHarness()
	h.node.SetWatchdogTimeout(10 * drive.RampInterval)
	h.line("MOV:FWD:0")
	h.out.Reset()

	for i := 0; i < 30; i++ {
		h.line("GARBAGE")
		h.iterate(drive.RampInterval)
	}
	require.Contains(t, h.out.String(), "ERR:TIMEOUT\n", "garbage does not reset the watchdog")
}

func TestTimedMoveEmitsDone(t *testing.T) {
	h := newHarness()
	h.line("MOV:FWD:100")
	h.out.Reset()

	deadline := h.now.Add(100 * time.Millisecond)
	for h.now.Before(deadline) {
		h.iterate(drive.RampInterval)
		if h.now.Before(deadline) {
			require.NotContains(t, h.out.String(), "MOVE_DONE")
		}
	}
	h.iterate(drive.RampInterval)
	require.Contains(t, h.out.String(), "EVT:MOVE_DONE\n")
}

func TestLineReaderFraming(t *testing.T) {
	var posted [][]byte
	lr := NewLineReader(nil, posterFunc(func(line []byte) {
		posted = append(posted, line)
	}))

	lr.Feed([]byte("MOV:FW"))
	require.Empty(t, posted, "incomplete line held back")
	lr.Feed([]byte("D:200\r\nSYS:PING\n"))
	require.Equal(t, [][]byte{[]byte("MOV:FWD:200"), []byte("SYS:PING")}, posted)
}

func TestLineReaderOverflowTruncates(t *testing.T) {
	var posted [][]byte
	lr := NewLineReader(nil, posterFunc(func(line []byte) {
		posted = append(posted, line)
	}))

	long := strings.Repeat("x", 3*LineCap)
	lr.Feed([]byte(long + "\n"))
	require.Len(t, posted, 1)
	require.Len(t, posted[0], LineCap-1, "overflow absorbed by truncation")

	// the reader keeps working after an overflow
	lr.Feed([]byte("SYS:PING\n"))
	require.Equal(t, []byte("SYS:PING"), posted[1])
}

type posterFunc func([]byte)

func (f posterFunc) PostLine(line []byte) { f(line) }
