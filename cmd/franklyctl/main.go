// Command franklyctl is a host-side tool for talking to Frankly
// bootloader devices: discovering them, erasing flash, and flashing an
// Intel HEX firmware image, per spec §6.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
