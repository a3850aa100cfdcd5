package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Scan the transport for responding device node ids",
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
			fmt.Printf("node %d\n", id)
		}
		return nil
	},
}
