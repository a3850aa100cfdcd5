package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franklyfw/franklyfw/device"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the device out of the bootloader",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTransport()
		if err != nil {
			return err
		}
		defer t.Close()

		dev := device.New(t, device.WithLogger(newLogrusAdapter(parseLogLevel())))
		if err := dev.Reset(); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Println("reset sent")
		return nil
	},
}
