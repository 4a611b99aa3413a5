package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved progress snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := newService()
		if err != nil {
			return err
		}
		defer done()

		blob, persisted, err := svc.Export()
		if err != nil {
			return fmt.Errorf("exporting snapshot: %w", err)
		}
		if !persisted {
			fmt.Fprintln(os.Stderr, "warning: snapshot could not be persisted locally")
		}

		if exportOut == "" {
			fmt.Println(string(blob))
			return nil
		}
		if err := os.WriteFile(exportOut, blob, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOut, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote snapshot to %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the snapshot to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
