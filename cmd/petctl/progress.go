package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress <player>",
	Short: "Fetch and show a player's pet progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := newService()
		if err != nil {
			return err
		}
		defer done()

		prog, err := svc.RefreshPlayer(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching progress: %w", err)
		}

		cat := svc.Catalog()
		fmt.Printf("Player: %s\n\n", prog.Player)
		fmt.Printf("  Pets:  %d / %d\n", prog.PetCount, cat.TotalPets())
		printMiniBar(prog.PetCount, cat.TotalPets(), 30)
		fmt.Printf("  Hours: %.0f / %.0f\n", prog.PetHours, cat.TotalHours())
		printMiniBar(int(prog.PetHours), int(cat.TotalHours()), 30)

		fmt.Println("\nMissing:")
		missing := 0
		for _, name := range cat.PetNames() {
			if prog.Pets[name] < 1 {
				fmt.Printf("  %s\n", name)
				missing++
			}
		}
		if missing == 0 {
			fmt.Println("  none, congratulations")
		}
		return nil
	},
}

func printMiniBar(used, total, width int) {
	if total <= 0 {
		return
	}
	pct := float64(used) / float64(total)
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	fmt.Printf("  [%s] %.0f%%\n", bar, pct*100)
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
