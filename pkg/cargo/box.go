// Package cargo manages the lockable storage compartments: lock servo
// state, debounced door switches, and tamper detection.
package cargo

import (
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/courierbots/courier.go/pkg/hal"
	"github.com/courierbots/courier.go/pkg/proto"
)

// Lock servo positions in degrees.
const (
	OpenAngle   = 0
	LockedAngle = 90
)

// DebounceHold is how long a raw door reading must stay stable before
// a state change is accepted.
const DebounceHold = 50 * time.Millisecond

// Box is one physical compartment. The lock actuator has no feedback:
// Open and Close always succeed and only record intent, which is
// exactly what makes a door opening while locked a tamper signal.
type Box struct {
	id     int
	board  hal.Board
	events *proto.Emitter

	locked     bool
	doorClosed bool
	lastRaw    bool
	lastChange time.Time
}

func newBox(id int, board hal.Board, events *proto.Emitter) *Box {
	b := &Box{id: id, board: board, events: events}
	b.Close()
	// seed the debounced state from the boot reading, no event
	b.doorClosed = board.ReadDoorSwitch(id)
	b.lastRaw = b.doorClosed
	return b
}

// ID returns the 1-indexed compartment id.
func (b *Box) ID() int {
	return b.id
}

// Open commands the lock servo to the open position.
func (b *Box) Open() {
	b.board.SetLockAngle(b.id, OpenAngle)
	b.locked = false
}

// Close commands the lock servo to the locked position.
func (b *Box) Close() {
	b.board.SetLockAngle(b.id, LockedAngle)
	b.locked = true
}

// IsLocked reports the commanded lock state.
func (b *Box) IsLocked() bool {
	return b.locked
}

// IsDoorClosed reports the debounced door state.
func (b *Box) IsDoorClosed() bool {
	return b.doorClosed
}

// Update polls the door switch once. A change is accepted only after
// the raw reading has stayed stable for DebounceHold. An accepted
// transition emits EVT:LMT:<id>:<0|1>; a door opening while the box is
// commanded locked additionally raises the forced-entry alarm. The
// alarm must never be suppressed.
func (b *Box) Update(now time.Time) {
	raw := b.board.ReadDoorSwitch(b.id)
	if raw != b.lastRaw {
		b.lastRaw = raw
		b.lastChange = now
		return
	}
	if raw == b.doorClosed || now.Sub(b.lastChange) < DebounceHold {
		return
	}

	b.doorClosed = raw
	state := "0"
	if raw {
		state = "1"
	}
	b.events.EventID(proto.EventDoor, b.id, state)

	if !raw && b.locked {
		glog.Warningf("box %d forced open while locked", b.id)
		b.events.Event(proto.EventAlarm, proto.AlarmBoxForced, strconv.Itoa(b.id))
	}
}
