package cargo

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/courierbots/courier.go/pkg/framework"
	"github.com/courierbots/courier.go/pkg/hal"
	"github.com/courierbots/courier.go/pkg/proto"
)

// DefaultBoxCount is the number of compartments on the stock robot.
const DefaultBoxCount = 2

// Manager orchestrates all boxes on the robot.
type Manager struct {
	boxes []*Box
}

// NewManager creates count boxes, all locked.
func NewManager(board hal.Board, events *proto.Emitter, count int) *Manager {
	m := &Manager{}
	for i := 1; i <= count; i++ {
		m.boxes = append(m.boxes, newBox(i, board, events))
	}
	return m
}

// SetBoxState locks or opens the box with the given 1-indexed id.
// An id outside the valid range is a no-op, never a crash.
func (m *Manager) SetBoxState(id int, locked bool) {
	if id < 1 || id > len(m.boxes) {
		glog.V(1).Infof("ignore box state for unknown id %d", id)
		return
	}
	if locked {
		m.boxes[id-1].Close()
	} else {
		m.boxes[id-1].Open()
	}
}

// Box returns the box with the given 1-indexed id, or nil.
func (m *Manager) Box(id int) *Box {
	if id < 1 || id > len(m.boxes) {
		return nil
	}
	return m.boxes[id-1]
}

// Update polls every box once.
func (m *Manager) Update(now time.Time) {
	for _, b := range m.boxes {
		b.Update(now)
	}
}

// Control implements framework.Controller.
func (m *Manager) Control(cc fx.ControlContext) error {
	m.Update(cc.Time())
	return nil
}
