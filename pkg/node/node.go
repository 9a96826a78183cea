// Package node composes the actuator node: it routes decoded commands
// to the drive, cargo and panel controllers, arms the link watchdog,
// and registers everything on the dispatch loop in the mandated
// sense -> safeguard -> actuate order.
package node

import (
	"io"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/courierbots/courier.go/pkg/cargo"
	"github.com/courierbots/courier.go/pkg/drive"
	fx "github.com/courierbots/courier.go/pkg/framework"
	"github.com/courierbots/courier.go/pkg/hal"
	"github.com/courierbots/courier.go/pkg/proto"
	"github.com/courierbots/courier.go/pkg/ui"
)

// WatchdogTimeout is the longest the command link may stay silent
// while the robot is moving before the node fails safe.
const WatchdogTimeout = 2 * time.Second

// Node owns the controllers and the watchdog state.
type Node struct {
	board  hal.Board
	events *proto.Emitter

	Drive *drive.Controller
	Cargo *cargo.Manager
	Panel *ui.Panel

	timeout   time.Duration
	lastValid time.Time
}

// New creates a Node in the safe boot state: motors stopped, boxes
// locked, watchdog reset to now.
func New(board hal.Board, uplink io.Writer, now time.Time) *Node {
	events := proto.NewEmitter(uplink)
	n := &Node{
		board:     board,
		events:    events,
		Drive:     drive.New(board, events),
		Cargo:     cargo.NewManager(board, events, cargo.DefaultBoxCount),
		Panel:     ui.NewPanel(board, events),
		timeout:   WatchdogTimeout,
		lastValid: now,
	}
	n.Panel.Display(0, "ROBOT ONLINE")
	return n
}

// AddToLoop implements framework.LoopAdder.
func (n *Node) AddToLoop(l *fx.Loop) {
	l.At(fx.PhaseSense, fx.ControlFunc(n.dispatch))
	l.At(fx.PhaseSafeguard, fx.ControlFunc(n.safeguard))
	l.At(fx.PhaseActuate, n.Drive, n.Cargo, n.Panel)
}

func (n *Node) dispatch(cc fx.ControlContext) error {
	for _, line := range cc.TakeLines() {
		n.HandleLine(line, cc.Time())
	}
	return nil
}

// HandleLine decodes one inbound line and routes it. A structurally
// valid line refreshes the watchdog before semantic routing; malformed
// lines are dropped without an ack, which is how upstream notices.
func (n *Node) HandleLine(line []byte, now time.Time) {
	cmd := proto.Parse(line)
	if !cmd.Valid {
		glog.V(2).Infof("drop malformed line %q", line)
		return
	}
	if glog.V(2) {
		glog.Infof("RCV %q", line)
	}
	n.lastValid = now

	switch cmd.Type {
	case proto.TypeMove:
		n.handleMove(cmd, now)
	case proto.TypeServo:
		id, _ := strconv.Atoi(cmd.Action)
		n.Cargo.SetBoxState(id, cmd.Value != proto.ValueOpen)
		n.events.Ack(proto.TypeServo)
	case proto.TypeDisplay:
		if cmd.Action == proto.ActionClear {
			n.Panel.Clear()
		} else {
			row, _ := strconv.Atoi(cmd.Action)
			n.Panel.Display(row, cmd.Value)
		}
		// no ack, keeps the bus quiet
	case proto.TypeSystem:
		if cmd.Action == proto.ActionPing {
			n.events.Raw(proto.LinePong)
		}
	default:
		glog.V(1).Infof("unknown command type %q", cmd.Type)
	}
}

func (n *Node) handleMove(cmd proto.Command, now time.Time) {
	ms, _ := strconv.Atoi(cmd.Value)
	duration := time.Duration(ms) * time.Millisecond
	switch cmd.Action {
	case proto.ActionForward:
		n.Drive.Move(now, hal.Forward, hal.Forward, drive.DefaultSpeed, duration)
	case proto.ActionBackward:
		n.Drive.Move(now, hal.Backward, hal.Backward, drive.DefaultSpeed, duration)
	case proto.ActionLeft:
		n.Drive.Move(now, hal.Backward, hal.Forward, drive.DefaultSpeed, duration)
	case proto.ActionRight:
		n.Drive.Move(now, hal.Forward, hal.Backward, drive.DefaultSpeed, duration)
	case proto.ActionStop:
		n.Drive.Stop(true)
	}
	n.events.Ack(proto.TypeMove)
}

// safeguard trips the watchdog when the link has been silent past the
// timeout while the robot is moving: immediate stop plus a fault line.
// The stop itself re-arms the check, so exactly one fault is emitted
// per silence episode, and the next valid command recovers the link.
func (n *Node) safeguard(cc fx.ControlContext) error {
	now := cc.Time()
	if now.Sub(n.lastValid) <= n.timeout || !n.Drive.IsMoving() {
		return nil
	}
	glog.Warningf("command link silent for %v while moving, stopping", now.Sub(n.lastValid))
	n.Drive.Stop(true)
	n.Panel.Display(0, "ALARM: CMD LOST")
	n.events.Raw(proto.LineTimeout)
	return nil
}

// SetWatchdogTimeout overrides the watchdog timeout.
func (n *Node) SetWatchdogTimeout(d time.Duration) {
	n.timeout = d
}
