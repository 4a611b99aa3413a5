package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <player>",
	Short: "Show a player's recorded progress history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := newService()
		if err != nil {
			return err
		}
		defer done()

		records, err := svc.History(args[0], historyLimit)
		if err != nil {
			return fmt.Errorf("getting history: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No history yet. Run 'petctl progress' first.")
			return nil
		}

		fmt.Printf("%-20s %10s %10s\n", "When", "Pets", "Hours")
		for _, r := range records {
			fmt.Printf("%-20s %10d %10.0f\n", r.UpdatedAt.Format("2006-01-02 15:04"), r.PetCount, r.PetHours)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 25, "Maximum number of records to show")
	rootCmd.AddCommand(historyCmd)
}
