package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/franklyfw/franklyfw/device"
	"github.com/franklyfw/franklyfw/progress"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase every application-section page on the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTransport()
		if err != nil {
			return err
		}
		defer t.Close()

		logger := newLogrusAdapter(parseLogLevel())
		bar := progressbar.Default(-1, "erasing")
		dev := device.New(t,
			device.WithLogger(logger),
			device.WithProgress(func(u progress.Update) {
				if u.Kind != progress.KindErase {
					return
				}
				if bar.GetMax() <= 0 {
					bar.ChangeMax(u.Erase.TotalPages)
				}
				_ = bar.Set(u.Erase.PageCount)
			}),
		)

		if _, err := dev.Init(); err != nil {
			return fmt.Errorf("initialize device: %w", err)
		}
		if err := dev.Erase(); err != nil {
			return fmt.Errorf("erase: %w", err)
		}
		fmt.Println()
		fmt.Println("erase complete")
		return nil
	},
}
