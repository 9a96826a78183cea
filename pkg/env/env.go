// Package env provides common configuration for node binaries.
package env

import (
	"flag"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// Config holds the options shared by the node binaries.
type Config struct {
	// Device is the uplink serial device, or "-" for stdio.
	Device string
	// Baud is the uplink bit rate.
	Baud int
	// Listen, when set, serves the line protocol over websocket at
	// this address instead of opening a serial device.
	Listen string
	// Board selects the hardware backend: "firmata" or "sim".
	Board string
	// BoardDevice is the serial device of the Firmata board.
	BoardDevice string
	// MQTTBrokerURL, when set, enables the broker bridge.
	// e.g. mqtt://host:port/courier/
	MQTTBrokerURL string
	// NodeID identifies this node in broker topics.
	NodeID string
}

var defaultConfig = Config{
	Device:      "-",
	Board:       "sim",
	BoardDevice: "/dev/ttyACM0",
}

func init() {
	if val := os.Getenv("COURIER_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("COURIER_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	defaultConfig.NodeID = MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Uplink serial device, - for stdio")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Uplink baud rate, 0 for default")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Serve uplink over websocket at this address")
	flag.StringVar(&defaultConfig.Board, "board", defaultConfig.Board, "Hardware backend: firmata or sim")
	flag.StringVar(&defaultConfig.BoardDevice, "board-device", defaultConfig.BoardDevice, "Firmata board serial device")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.NodeID, "id", defaultConfig.NodeID, "Node ID")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// MachineID retrieves the unique ID identifying the machine.
func MachineID() string {
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "courier"
	}
	return id
}
