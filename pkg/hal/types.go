// Package hal defines the hardware seam between the control logic and
// the physical board. Control packages hold a Board and never touch
// pins, which keeps every state machine testable without hardware.
package hal

// Side identifies a drive side of the differential drivetrain.
type Side int

// Drive sides.
const (
	Left Side = iota
	Right

	// SideCount is the number of drive sides.
	SideCount
)

// String implements fmt.Stringer.
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Direction is the commanded rotation of one drive side.
type Direction int

// Directions.
const (
	Backward Direction = -1
	Neutral  Direction = 0
	Forward  Direction = 1
)

// Board is the set of hardware resources owned by the node. Every
// output is written by exactly one controller; implementations backed
// by real transports must be safe for use from the dispatch loop
// goroutine only.
type Board interface {
	// SetDrive writes direction and drive level [0,255] for one side.
	SetDrive(side Side, dir Direction, level int)
	// SetLockAngle writes the lock servo angle for a 1-indexed box.
	SetLockAngle(id int, angle int)
	// ReadDoorSwitch reads the door switch for a 1-indexed box.
	// True means the door is closed.
	ReadDoorSwitch(id int) bool

	// Display writes text to a display row.
	Display(row int, text string)
	// ClearDisplay clears the display.
	ClearDisplay()

	// ReadKey polls the keypad; ok is false when no key is pending.
	ReadKey() (key byte, ok bool)
	// ReadTag polls the RFID reader; ok is false when no tag is pending.
	ReadTag() (tag string, ok bool)
}
