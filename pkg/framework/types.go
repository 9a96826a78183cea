package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Phase identifies a slot in the fixed iteration order of a Loop.
// Within one iteration every controller in PhaseSense runs before any
// controller in PhaseSafeguard, which runs before any in PhaseActuate.
// The order is a hard contract: inbound input must be fully routed
// before the safety checks see it, and actuator state must advance
// exactly once per iteration regardless of input volume.
type Phase int

const (
	// PhaseSense drains and routes inbound input.
	PhaseSense Phase = iota
	// PhaseSafeguard evaluates safety conditions on the routed state.
	PhaseSafeguard
	// PhaseActuate advances controller state machines and writes outputs.
	PhaseActuate

	phaseCount
)

// Controller defines the per-iteration controlling logic.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of the current iteration.
// All controllers in one iteration observe the same timestamp.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// TakeLines removes and returns the inbound lines collected before
	// this iteration started. At most one controller should call it.
	TakeLines() [][]byte
}

// LinePoster accepts inbound protocol lines for a future iteration.
type LinePoster interface {
	PostLine(line []byte)
}
