package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/courierbots/courier.go/pkg/hal"
	"github.com/courierbots/courier.go/pkg/proto"
)

func newPanel() (*Panel, *hal.SimBoard, *bytes.Buffer) {
	board := hal.NewSimBoard()
	var out bytes.Buffer
	return NewPanel(board, proto.NewEmitter(&out)), board, &out
}

func TestDisplayTruncation(t *testing.T) {
	p, board, _ := newPanel()
	p.Display(0, "PARCEL FOR UNIT 2204 ARRIVING")
	require.Equal(t, "PARCEL FOR UNIT ", board.Row(0))

	p.Display(1, "OK")
	require.Equal(t, "OK", board.Row(1))
}

func TestDisplayRowRange(t *testing.T) {
	p, board, _ := newPanel()
	p.Display(-1, "nope")
	p.Display(2, "nope")
	require.Equal(t, "", board.Row(0))
	require.Equal(t, "", board.Row(1))
}

func TestClear(t *testing.T) {
	p, board, _ := newPanel()
	p.Display(0, "hello")
	p.Clear()
	require.Equal(t, "", board.Row(0))
	require.Equal(t, 1, board.ClearCount())
}

func TestKeyAndTagEvents(t *testing.T) {
	p, board, out := newPanel()
	now := time.Unix(0, 0)

	p.Update(now)
	require.Empty(t, out.String(), "no pending input, no events")

	board.PressKey('7')
	board.PresentTag("04-A2-FF-11")
	p.Update(now)
	p.Update(now)
	require.Equal(t, "EVT:KEY:7\nEVT:RFD:04-A2-FF-11\n", out.String())
}
