// Package drive implements the differential drive controller: ramped
// drive levels, timed and indefinite moves, and immediate emergency
// stop. Motion is open loop; ramping is the only mechanism limiting
// current draw, so every level change goes through Update.
package drive

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/courierbots/courier.go/pkg/framework"
	"github.com/courierbots/courier.go/pkg/hal"
	"github.com/courierbots/courier.go/pkg/proto"
)

// RampInterval is the minimum time between successive one-unit drive
// level changes per side.
const RampInterval = 2 * time.Millisecond

// DefaultSpeed is the target drive level used for MOV commands.
const DefaultSpeed = 200

// MaxLevel is the highest drive level.
const MaxLevel = 255

type side struct {
	current int
	target  int
	dir     hal.Direction
}

// Controller owns the two drive outputs. All methods must be called
// from the dispatch loop goroutine.
type Controller struct {
	board  hal.Board
	events *proto.Emitter

	sides    [hal.SideCount]side
	deadline time.Time
	lastRamp time.Time
}

// New creates a Controller with the drivetrain stopped.
func New(board hal.Board, events *proto.Emitter) *Controller {
	c := &Controller{board: board, events: events}
	c.Stop(true)
	return c
}

// Move sets both sides' targets and directions. A positive duration
// schedules a soft stop at now+duration; zero means the move runs
// until an explicit stop or a newer move. Any prior deadline is
// overwritten.
func (c *Controller) Move(now time.Time, leftDir, rightDir hal.Direction, speed int, duration time.Duration) {
	if speed < 0 {
		speed = 0
	} else if speed > MaxLevel {
		speed = MaxLevel
	}
	c.sides[hal.Left].dir = leftDir
	c.sides[hal.Left].target = speed
	c.sides[hal.Right].dir = rightDir
	c.sides[hal.Right].target = speed
	if duration > 0 {
		c.deadline = now.Add(duration)
	} else {
		c.deadline = time.Time{}
	}
	glog.V(1).Infof("move l=%d r=%d speed=%d duration=%v", leftDir, rightDir, speed, duration)
}

// Stop clears both targets and any pending deadline. With immediate
// set it also snaps the current levels to zero and writes the neutral
// drive state synchronously; this is the only path that bypasses
// ramping, reserved for safety stops.
func (c *Controller) Stop(immediate bool) {
	for i := range c.sides {
		c.sides[i].target = 0
	}
	c.deadline = time.Time{}
	if immediate {
		for i := range c.sides {
			c.sides[i].current = 0
			c.sides[i].dir = hal.Neutral
			c.board.SetDrive(hal.Side(i), hal.Neutral, 0)
		}
	}
}

// IsMoving reports whether either side's drive level is nonzero.
func (c *Controller) IsMoving() bool {
	return c.sides[hal.Left].current > 0 || c.sides[hal.Right].current > 0
}

// Update services the move timer and the ramp. Must be called every
// loop iteration. A lapsed deadline performs a soft stop, so a
// timer-triggered stop decelerates exactly like an explicit one.
func (c *Controller) Update(now time.Time) {
	if !c.deadline.IsZero() && !now.Before(c.deadline) {
		for i := range c.sides {
			c.sides[i].target = 0
		}
		c.deadline = time.Time{}
		c.events.Event(proto.EventMoveDone)
	}

	if now.Sub(c.lastRamp) < RampInterval {
		return
	}
	c.lastRamp = now
	for i := range c.sides {
		s := &c.sides[i]
		if s.current < s.target {
			s.current++
		} else if s.current > s.target {
			s.current--
		}
		c.board.SetDrive(hal.Side(i), s.dir, s.current)
	}
}

// Control implements framework.Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	c.Update(cc.Time())
	return nil
}

// Level returns the current drive level of one side.
func (c *Controller) Level(s hal.Side) int {
	return c.sides[s].current
}
