// Package ui services the operator panel: a 16x2 character display
// plus keypad and RFID polling forwarded upstream as events.
package ui

import (
	"time"

	fx "github.com/courierbots/courier.go/pkg/framework"
	"github.com/courierbots/courier.go/pkg/hal"
	"github.com/courierbots/courier.go/pkg/proto"
)

// Display geometry.
const (
	Rows = 2
	Cols = 16
)

// Panel owns the display output and the keypad/RFID input surfaces.
type Panel struct {
	board  hal.Board
	events *proto.Emitter
}

// NewPanel creates a Panel.
func NewPanel(board hal.Board, events *proto.Emitter) *Panel {
	return &Panel{board: board, events: events}
}

// Display writes text to a row, truncated to the display width.
// An out-of-range row is ignored.
func (p *Panel) Display(row int, text string) {
	if row < 0 || row >= Rows {
		return
	}
	if len(text) > Cols {
		text = text[:Cols]
	}
	p.board.Display(row, text)
}

// Clear clears the display.
func (p *Panel) Clear() {
	p.board.ClearDisplay()
}

// Update polls the keypad and the RFID reader once. Each pending input
// is forwarded verbatim as an event line.
func (p *Panel) Update(now time.Time) {
	if key, ok := p.board.ReadKey(); ok {
		p.events.Event(proto.EventKey, string(key))
	}
	if tag, ok := p.board.ReadTag(); ok {
		p.events.Event(proto.EventTag, tag)
	}
}

// Control implements framework.Controller.
func (p *Panel) Control(cc fx.ControlContext) error {
	p.Update(cc.Time())
	return nil
}
