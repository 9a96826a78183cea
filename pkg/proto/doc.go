// Package proto implements the ASCII line protocol spoken between the
// actuator node and the brain.
package proto

// One command or event per line, ':'-delimited, terminated by a single
// line break:
//
//	inbound:  TYPE:ACTION[:VALUE]   e.g. MOV:FWD:1500, SRV:1:OPEN, SYS:PING
//	outbound: ACK:TYPE, EVT:TYPE[:DATA1[:DATA2]], SYS:PONG, ERR:TIMEOUT
//
// Fields have fixed capacities carried over from the node's firmware
// heritage; oversized fields are truncated, never rejected.
//
// Producer: node firmware
// Consumer: brain (planning process)
