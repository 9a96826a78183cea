package hal

import "sync"

// DriveState is the last drive output written for one side.
type DriveState struct {
	Dir   Direction
	Level int
}

// SimBoard is an in-memory Board. It records every output and lets a
// test (or the -board sim daemon mode) script sensor inputs. All
// methods are safe for concurrent use so tests can drive inputs while
// the loop runs.
type SimBoard struct {
	mu      sync.Mutex
	drive   [SideCount]DriveState
	angles  map[int]int
	doors   map[int]bool
	rows    map[int]string
	keys    []byte
	tags    []string
	cleared int
}

// NewSimBoard creates a SimBoard with all doors closed.
func NewSimBoard() *SimBoard {
	return &SimBoard{
		angles: make(map[int]int),
		doors:  make(map[int]bool),
		rows:   make(map[int]string),
	}
}

// SetDrive implements Board.
func (b *SimBoard) SetDrive(side Side, dir Direction, level int) {
	b.mu.Lock()
	b.drive[side] = DriveState{Dir: dir, Level: level}
	b.mu.Unlock()
}

// SetLockAngle implements Board.
func (b *SimBoard) SetLockAngle(id int, angle int) {
	b.mu.Lock()
	b.angles[id] = angle
	b.mu.Unlock()
}

// ReadDoorSwitch implements Board. Doors default to closed.
func (b *SimBoard) ReadDoorSwitch(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	closed, ok := b.doors[id]
	if !ok {
		return true
	}
	return closed
}

// Display implements Board.
func (b *SimBoard) Display(row int, text string) {
	b.mu.Lock()
	b.rows[row] = text
	b.mu.Unlock()
}

// ClearDisplay implements Board.
func (b *SimBoard) ClearDisplay() {
	b.mu.Lock()
	b.rows = make(map[int]string)
	b.cleared++
	b.mu.Unlock()
}

// ReadKey implements Board.
func (b *SimBoard) ReadKey() (byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.keys) == 0 {
		return 0, false
	}
	key := b.keys[0]
	b.keys = b.keys[1:]
	return key, true
}

// ReadTag implements Board.
func (b *SimBoard) ReadTag() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tags) == 0 {
		return "", false
	}
	tag := b.tags[0]
	b.tags = b.tags[1:]
	return tag, true
}

// Drive returns the last drive output for a side.
func (b *SimBoard) Drive(side Side) DriveState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drive[side]
}

// LockAngle returns the last servo angle written for a box.
func (b *SimBoard) LockAngle(id int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.angles[id]
}

// Row returns the current display text of a row.
func (b *SimBoard) Row(row int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows[row]
}

// ClearCount returns how many times the display was cleared.
func (b *SimBoard) ClearCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cleared
}

// SetDoorClosed scripts the raw door switch reading for a box.
func (b *SimBoard) SetDoorClosed(id int, closed bool) {
	b.mu.Lock()
	b.doors[id] = closed
	b.mu.Unlock()
}

// PressKey queues a keypad press.
func (b *SimBoard) PressKey(key byte) {
	b.mu.Lock()
	b.keys = append(b.keys, key)
	b.mu.Unlock()
}

// PresentTag queues an RFID tag read.
func (b *SimBoard) PresentTag(tag string) {
	b.mu.Lock()
	b.tags = append(b.tags, tag)
	b.mu.Unlock()
}
