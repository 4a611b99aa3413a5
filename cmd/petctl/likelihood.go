package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var likelihoodCmd = &cobra.Command{
	Use:   "likelihood <pet> [kc | channel=kc ...]",
	Short: "Compute the drop likelihood for a pet from kill counts",
	Long: `Compute how many expected drops a pet's kill counts have consumed.

Simple pets take a bare kill count:

  petctl likelihood Hellpuppy 4500

Pets with split drop tables take channel=kc pairs:

  petctl likelihood "Lil' zik" normal=1000 hardMode=300`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := newService()
		if err != nil {
			return err
		}
		defer done()

		pet := args[0]
		cat := svc.Catalog()
		if !cat.Known(pet) {
			return fmt.Errorf("unknown pet %q", pet)
		}

		for _, arg := range args[1:] {
			channel, kc := "", arg
			if i := strings.IndexByte(arg, '='); i >= 0 {
				channel, kc = arg[:i], arg[i+1:]
			}
			svc.SetRateInput(pet, channel, kc)
		}

		res := svc.Likelihood(pet)
		if !res.HasData {
			fmt.Println("No rate data for these inputs.")
			return nil
		}
		fmt.Printf("%s: %s (%s)\n", pet, res.Display, res.Band)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(likelihoodCmd)
}
