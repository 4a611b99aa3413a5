package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <player>",
	Short: "Pre-fill kill counts from the official hiscores",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := newService()
		if err != nil {
			return err
		}
		defer done()

		seeded, err := svc.SeedFromHiscores(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("seeding kill counts: %w", err)
		}
		if len(seeded) == 0 {
			fmt.Println("No boss kill counts found on the hiscores.")
			return nil
		}

		type row struct{ pet, channel, kc string }
		var rows []row
		for k, v := range seeded {
			rows = append(rows, row{k.Pet, k.Channel, v})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].pet != rows[j].pet {
				return rows[i].pet < rows[j].pet
			}
			return rows[i].channel < rows[j].channel
		})

		fmt.Printf("%-30s %-12s %10s\n", "Pet", "Channel", "KC")
		for _, r := range rows {
			fmt.Printf("%-30s %-12s %10s\n", r.pet, r.channel, r.kc)
		}
		return nil
	},
	Args: cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
