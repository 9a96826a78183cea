// Package firmata implements hal.Board on top of a Firmata-speaking
// microcontroller attached over USB, using gobot's firmata platform.
package firmata

import (
	"github.com/golang/glog"
	"gobot.io/x/gobot/drivers/gpio"
	"gobot.io/x/gobot/platforms/firmata"

	"github.com/courierbots/courier.go/pkg/hal"
)

// Pin assignments for the stock carrier board (L298N drive, two lock
// servos, two door switches).
var (
	drivePins = [hal.SideCount]struct{ en, in1, in2 string }{
		{en: "10", in1: "22", in2: "23"},
		{en: "9", in1: "24", in2: "25"},
	}
	servoPins = []string{"6", "7"}
	limitPins = []string{"40", "41"}
)

// Board implements hal.Board over Firmata.
type Board struct {
	adaptor *firmata.Adaptor

	drives [hal.SideCount]drivePinSet
	servos []*gpio.DirectPinDriver
	limits []*gpio.DirectPinDriver

	lastDoor []bool
}

type drivePinSet struct {
	en, in1, in2 *gpio.DirectPinDriver
}

// New connects to the board at the given serial device.
func New(device string) (*Board, error) {
	adaptor := firmata.NewAdaptor(device)
	if err := adaptor.Connect(); err != nil {
		return nil, err
	}
	b := &Board{adaptor: adaptor}
	for side := hal.Side(0); side < hal.SideCount; side++ {
		pins := drivePins[side]
		b.drives[side] = drivePinSet{
			en:  gpio.NewDirectPinDriver(adaptor, pins.en),
			in1: gpio.NewDirectPinDriver(adaptor, pins.in1),
			in2: gpio.NewDirectPinDriver(adaptor, pins.in2),
		}
	}
	for _, pin := range servoPins {
		b.servos = append(b.servos, gpio.NewDirectPinDriver(adaptor, pin))
	}
	for _, pin := range limitPins {
		b.limits = append(b.limits, gpio.NewDirectPinDriver(adaptor, pin))
		b.lastDoor = append(b.lastDoor, true)
	}
	return b, nil
}

// Close disconnects from the board.
func (b *Board) Close() error {
	return b.adaptor.Finalize()
}

// SetDrive implements hal.Board. The H-bridge direction pins are set
// first, then the enable pin's PWM level.
func (b *Board) SetDrive(side hal.Side, dir hal.Direction, level int) {
	pins := b.drives[side]
	var in1, in2 byte
	switch {
	case dir > 0:
		in1 = 1
	case dir < 0:
		in2 = 1
	}
	b.write(pins.in1.DigitalWrite(in1))
	b.write(pins.in2.DigitalWrite(in2))
	b.write(pins.en.PwmWrite(clampByte(level)))
}

// SetLockAngle implements hal.Board.
func (b *Board) SetLockAngle(id int, angle int) {
	if id < 1 || id > len(b.servos) {
		return
	}
	b.write(b.servos[id-1].ServoWrite(clampByte(angle)))
}

// ReadDoorSwitch implements hal.Board. The switch pulls the pin low
// when the door is closed; a read failure repeats the last reading so
// a transient Firmata hiccup never looks like a door edge.
func (b *Board) ReadDoorSwitch(id int) bool {
	if id < 1 || id > len(b.limits) {
		return true
	}
	val, err := b.limits[id-1].DigitalRead()
	if err != nil {
		glog.V(2).Infof("door switch %d read: %v", id, err)
		return b.lastDoor[id-1]
	}
	closed := val == 0
	b.lastDoor[id-1] = closed
	return closed
}

// Display implements hal.Board. The stock carrier board drives its LCD
// from the node host, not over Firmata, so this logs only.
func (b *Board) Display(row int, text string) {
	glog.V(1).Infof("display[%d] %q", row, text)
}

// ClearDisplay implements hal.Board.
func (b *Board) ClearDisplay() {
	glog.V(1).Info("display cleared")
}

// ReadKey implements hal.Board. No keypad is reachable over Firmata.
func (b *Board) ReadKey() (byte, bool) {
	return 0, false
}

// ReadTag implements hal.Board. No RFID reader is reachable over Firmata.
func (b *Board) ReadTag() (string, bool) {
	return "", false
}

func (b *Board) write(err error) {
	if err != nil {
		glog.Warningf("pin write: %v", err)
	}
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
