package proto

import "bytes"

// Command types.
const (
	TypeMove    = "MOV"
	TypeServo   = "SRV"
	TypeDisplay = "LCD"
	TypeSystem  = "SYS"
)

// Move actions.
const (
	ActionForward  = "FWD"
	ActionBackward = "BCK"
	ActionLeft     = "LFT"
	ActionRight    = "RGT"
	ActionStop     = "STP"
)

// Display and system actions.
const (
	ActionClear = "CLS"
	ActionPing  = "PING"
)

// ValueOpen unlocks a box; any other SRV value locks it.
const ValueOpen = "OPEN"

// Event types.
const (
	EventMoveDone = "MOVE_DONE"
	EventDoor     = "LMT"
	EventAlarm    = "ALARM"
	EventKey      = "KEY"
	EventTag      = "RFD"
)

// AlarmBoxForced is the EVT:ALARM data for a tampered compartment.
const AlarmBoxForced = "BOX_FORCED"

// Bare reply lines.
const (
	LinePong    = "SYS:PONG"
	LineTimeout = "ERR:TIMEOUT"
)

// Field capacities, in bytes. Oversized fields are truncated on parse.
const (
	TypeCap   = 7
	ActionCap = 11
	ValueCap  = 31
)

// Command is one parsed inbound line. It is immutable once produced
// and consumed exactly once by the dispatcher.
type Command struct {
	Type   string
	Action string
	Value  string
	Valid  bool
}

// Parse splits a line (terminator already stripped) on its first two
// ':' delimiters. The value is the remainder and may itself contain
// ':' or spaces, e.g. display text. A missing type or action makes the
// command invalid; a missing value does not (SYS:PING carries none).
func Parse(line []byte) Command {
	var cmd Command
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return cmd
	}

	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return cmd
	}
	typ, rest := line[:i], line[i+1:]

	var action, value []byte
	if j := bytes.IndexByte(rest, ':'); j >= 0 {
		action, value = rest[:j], rest[j+1:]
	} else {
		action = rest
	}
	if len(typ) == 0 || len(action) == 0 {
		return cmd
	}

	cmd.Type = truncate(typ, TypeCap)
	cmd.Action = truncate(action, ActionCap)
	cmd.Value = truncate(value, ValueCap)
	cmd.Valid = true
	return cmd
}

// truncate performs a saturating copy into a bounded string.
func truncate(b []byte, max int) string {
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
