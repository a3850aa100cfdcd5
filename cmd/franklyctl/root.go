package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/franklyfw/franklyfw/flash"
	"github.com/franklyfw/franklyfw/transport"
	"github.com/franklyfw/franklyfw/transport/can"
	"github.com/franklyfw/franklyfw/transport/serial"
	"github.com/franklyfw/franklyfw/transport/sim"
)

var (
	transportType string
	ifaceName     string
	nodeID        uint8
	logLevel      string
)

// nodeWasSet reports whether --node was passed explicitly, vs. left at
// its zero-value default.
func nodeWasSet() bool {
	return rootCmd.PersistentFlags().Changed("node")
}

var rootCmd = &cobra.Command{
	Use:   "franklyctl",
	Short: "Discover and flash Frankly bootloader devices",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&transportType, "type", "serial", "transport type: serial, can, or sim")
	rootCmd.PersistentFlags().StringVar(&ifaceName, "interface", "", "transport interface (serial device path or CAN interface name)")
	rootCmd.PersistentFlags().Uint8Var(&nodeID, "node", 0, "node id to address (on serial it is only the id search reports; the sim device answers on it)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(searchCmd, scanCmd, eraseCmd, flashCmd, resetCmd)
}

func parseLogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// openTransport constructs and opens the transport named by --type.
func openTransport() (transport.Transport, error) {
	var node *uint8
	if nodeWasSet() {
		node = &nodeID
	}

	var t transport.Transport
	switch transportType {
	case "serial":
		t = serial.New()
	case "can":
		t = can.New()
	case "sim":
		t = sim.New(demoSimDevice())
	default:
		return nil, fmt.Errorf("unknown transport type %q (want serial, can, or sim)", transportType)
	}

	if err := t.Open(ifaceName, node); err != nil {
		return nil, errors.Wrapf(err, "open %s transport", transportType)
	}

	if nodeWasSet() {
		if err := t.SetMode(transport.NodeMode(nodeID)); err != nil {
			return nil, errors.Wrap(err, "set addressed mode")
		}
	}
	return t, nil
}

// demoSimDevice builds a representative simulated device for --type sim,
// used to exercise the CLI without real hardware attached.
func demoSimDevice() *sim.Device {
	desc, err := flash.NewDesc(0x08000000, 1024, 64, 8)
	if err != nil {
		panic(err)
	}
	return sim.NewDevice(sim.Config{
		Identity: sim.Identity{
			VID: 0xCAFE, PID: 0x0001, PRD: 1,
			UID1: 0x00000001, UID2: 0x00000002, UID3: 0x00000003, UID4: 0x00000004,
			BootloaderVersion: 0x00010000,
		},
		Desc: desc,
		Node: nodeID,
	})
}
