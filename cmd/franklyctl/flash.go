package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/franklyfw/franklyfw/device"
	"github.com/franklyfw/franklyfw/hexfile"
	"github.com/franklyfw/franklyfw/progress"
)

var hexFilePath string

var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Flash an Intel HEX firmware image to the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hexFilePath == "" {
			return fmt.Errorf("--hex-file is required")
		}

		fw, err := hexfile.Parse(hexFilePath)
		if err != nil {
			return fmt.Errorf("parse firmware: %w", err)
		}

		t, err := openTransport()
		if err != nil {
			return err
		}
		defer t.Close()

		logger := newLogrusAdapter(parseLogLevel())
		bar := progressbar.Default(-1, "flashing")
		dev := device.New(t,
			device.WithLogger(logger),
			device.WithProgress(func(u progress.Update) {
				if u.Kind != progress.KindFlash {
					return
				}
				if bar.GetMax() <= 0 {
					bar.ChangeMax(u.Flash.TotalPages)
				}
				_ = bar.Set(u.Flash.PageIndex)
			}),
		)

		if _, err := dev.Init(); err != nil {
			return fmt.Errorf("initialize device: %w", err)
		}
		if err := dev.Flash(fw); err != nil {
			return fmt.Errorf("flash: %w", err)
		}
		fmt.Println()
		fmt.Println("flash complete")

		if err := dev.StartApp(); err != nil {
			return fmt.Errorf("start application: %w", err)
		}
		return nil
	},
}

func init() {
	flashCmd.Flags().StringVar(&hexFilePath, "hex-file", "", "path to the Intel HEX firmware image")
}
