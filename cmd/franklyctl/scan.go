package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franklyfw/franklyfw/device"
	"github.com/franklyfw/franklyfw/transport"
)

// scanCmd discovers responding nodes like searchCmd, then initializes
// each one in turn to print its identity and 128-bit UID.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover devices on the transport and print their identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTransport()
		if err != nil {
			return err
		}
		defer t.Close()

		ids, err := t.ScanNetwork()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no devices responded")
			return nil
		}

		for _, id := range ids {
			if err := t.SetMode(transport.NodeMode(id)); err != nil {
				return err
			}

			dev := device.New(t)
			identity, err := dev.Init()
			if err != nil {
				fmt.Printf("node %d: %v\n", id, err)
				continue
			}
			uid, err := dev.Identify()
			if err != nil {
				fmt.Printf("node %d: %v\n", id, err)
				continue
			}
			fmt.Printf("node %d: vid=0x%04X pid=0x%04X prd=0x%08X uid=%s\n",
				id, identity.VID, identity.PID, identity.PRD, uid)
		}
		return nil
	},
}
