package proto

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		expect Command
	}{
		{
			name:   "move forward",
			line:   "MOV:FWD:1500",
			expect: Command{Type: "MOV", Action: "FWD", Value: "1500", Valid: true},
		},
		{
			name:   "servo open",
			line:   "SRV:1:OPEN",
			expect: Command{Type: "SRV", Action: "1", Value: "OPEN", Valid: true},
		},
		{
			name:   "value is optional",
			line:   "SYS:PING",
			expect: Command{Type: "SYS", Action: "PING", Valid: true},
		},
		{
			name:   "value keeps embedded delimiters",
			line:   "LCD:0:ETA 12:30 Bay:2",
			expect: Command{Type: "LCD", Action: "0", Value: "ETA 12:30 Bay:2", Valid: true},
		},
		{
			name:   "value keeps spaces",
			line:   "LCD:1:Hi there",
			expect: Command{Type: "LCD", Action: "1", Value: "Hi there", Valid: true},
		},
		{
			name:   "trailing CR stripped",
			line:   "MOV:STP:0\r",
			expect: Command{Type: "MOV", Action: "STP", Value: "0", Valid: true},
		},
		{
			name: "no delimiter",
			line: "BADLINE",
		},
		{
			name: "empty line",
			line: "",
		},
		{
			name: "missing type",
			line: ":FWD:100",
		},
		{
			name: "missing action",
			line: "MOV:",
		},
		{
			name:   "empty value after delimiter",
			line:   "MOV:STP:",
			expect: Command{Type: "MOV", Action: "STP", Valid: true},
		},
		{
			name:   "oversized fields truncate",
			line:   strings.Repeat("T", 10) + ":" + strings.Repeat("A", 20) + ":" + strings.Repeat("v", 40),
			expect: Command{Type: strings.Repeat("T", 7), Action: strings.Repeat("A", 11), Value: strings.Repeat("v", 31), Valid: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, Parse([]byte(tc.line)))
		})
	}
}

func TestEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	require.NoError(t, e.Event(EventDoor, "1", "1"))
	require.Equal(t, "EVT:LMT:1:1\n", buf.String())

	buf.Reset()
	require.NoError(t, e.Event(EventMoveDone))
	require.Equal(t, "EVT:MOVE_DONE\n", buf.String())

	buf.Reset()
	require.NoError(t, e.EventID(EventDoor, 2, "0"))
	require.Equal(t, "EVT:LMT:2:0\n", buf.String())

	buf.Reset()
	require.NoError(t, e.Ack(TypeMove))
	require.Equal(t, "ACK:MOV\n", buf.String())

	buf.Reset()
	require.NoError(t, e.Raw(LinePong))
	require.Equal(t, "SYS:PONG\n", buf.String())
}

func TestEmitterWriteError(t *testing.T) {
	e := NewEmitter(failWriter{})
	require.Error(t, e.Ack(TypeMove))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}
