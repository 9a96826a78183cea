package cargo

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/courierbots/courier.go/pkg/hal"
	"github.com/courierbots/courier.go/pkg/proto"
)

type harness struct {
	board *hal.SimBoard
	out   bytes.Buffer
	mgr   *Manager
	now   time.Time
}

func newHarness(boxes int) *harness {
	h := &harness{board: hal.NewSimBoard(), now: time.Unix(2000, 0)}
	h.mgr = NewManager(h.board, proto.NewEmitter(&h.out), boxes)
	return h
}

// settle advances past the debounce hold with stable readings.
func (h *harness) settle() {
	h.mgr.Update(h.now) // observe the raw change
	h.now = h.now.Add(DebounceHold)
	h.mgr.Update(h.now) // accept it
}

func TestBootStateLocked(t *testing.T) {
	h := newHarness(2)
	require.Equal(t, LockedAngle, h.board.LockAngle(1))
	require.Equal(t, LockedAngle, h.board.LockAngle(2))
	require.True(t, h.mgr.Box(1).IsLocked())
	require.True(t, h.mgr.Box(1).IsDoorClosed())
	require.Empty(t, h.out.String(), "boot reading seeds state without events")
}

func TestSetBoxState(t *testing.T) {
	h := newHarness(2)
	h.mgr.SetBoxState(2, false)
	require.Equal(t, OpenAngle, h.board.LockAngle(2))
	require.False(t, h.mgr.Box(2).IsLocked())
	require.Equal(t, LockedAngle, h.board.LockAngle(1), "other box untouched")

	h.mgr.SetBoxState(2, true)
	require.Equal(t, LockedAngle, h.board.LockAngle(2))
	require.True(t, h.mgr.Box(2).IsLocked())
}

func TestSetBoxStateOutOfRange(t *testing.T) {
	h := newHarness(2)
	h.mgr.SetBoxState(0, false)
	h.mgr.SetBoxState(3, false)
	h.mgr.SetBoxState(-1, true)
	require.Equal(t, LockedAngle, h.board.LockAngle(1))
	require.Equal(t, LockedAngle, h.board.LockAngle(2))
	require.Nil(t, h.mgr.Box(3))
}

func TestDoorEventAfterUnlock(t *testing.T) {
	h := newHarness(1)
	h.mgr.SetBoxState(1, false)
	h.board.SetDoorClosed(1, false)
	h.settle()

	require.Equal(t, "EVT:LMT:1:0\n", h.out.String(), "normal open emits only the door event")

	h.out.Reset()
	h.board.SetDoorClosed(1, true)
	h.settle()
	require.Equal(t, "EVT:LMT:1:1\n", h.out.String())
}

func TestForcedOpenAlarm(t *testing.T) {
	h := newHarness(2)
	// lock command stands, yet the door opens
	h.board.SetDoorClosed(2, false)
	h.settle()

	require.Equal(t, "EVT:LMT:2:0\nEVT:ALARM:BOX_FORCED:2\n", h.out.String())

	// closing again is a plain door event
	h.out.Reset()
	h.board.SetDoorClosed(2, true)
	h.settle()
	require.Equal(t, "EVT:LMT:2:1\n", h.out.String())
}

func TestDebounceSuppressesBounce(t *testing.T) {
	h := newHarness(1)
	h.mgr.SetBoxState(1, false)

	// a toggle shorter than the hold window never surfaces
	h.board.SetDoorClosed(1, false)
	h.mgr.Update(h.now)
	h.now = h.now.Add(DebounceHold / 5)
	h.mgr.Update(h.now)
	h.board.SetDoorClosed(1, true)
	h.now = h.now.Add(DebounceHold / 5)
	h.mgr.Update(h.now)
	h.now = h.now.Add(DebounceHold)
	h.mgr.Update(h.now)

	require.Empty(t, h.out.String())
	require.True(t, h.mgr.Box(1).IsDoorClosed())
}

func TestDebounceHoldRestartsOnChange(t *testing.T) {
	h := newHarness(1)
	h.mgr.SetBoxState(1, false)

	h.board.SetDoorClosed(1, false)
	h.mgr.Update(h.now)
	// stable but short of the hold window: not yet accepted
	h.now = h.now.Add(DebounceHold - time.Millisecond)
	h.mgr.Update(h.now)
	require.Empty(t, h.out.String())

	h.now = h.now.Add(time.Millisecond)
	h.mgr.Update(h.now)
	require.Equal(t, "EVT:LMT:1:0\n", h.out.String())
}
