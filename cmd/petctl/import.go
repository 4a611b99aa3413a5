package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a progress snapshot from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload []byte
		var err error
		if len(args) == 1 {
			payload, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
		} else {
			payload, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		svc, done, err := newService()
		if err != nil {
			return err
		}
		defer done()

		if err := svc.Import(payload); err != nil {
			return err
		}
		if _, _, err := svc.Export(); err != nil {
			return fmt.Errorf("persisting imported snapshot: %w", err)
		}
		fmt.Println("Snapshot imported.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
