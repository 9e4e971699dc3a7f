package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the opponent catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDEPTH\tRANDOM\tAGGR\tDEF\tTACT\tDELAY")
		for _, p := range corechess.Profiles() {
			b := p.Behavior
			fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%s-%s\n",
				p.ID, p.Name, b.SearchDepth,
				float64(b.Randomness), float64(b.Aggression), float64(b.Defensive), float64(b.Tactical),
				b.MoveDelay.Min, b.MoveDelay.Max)
		}
		_ = w.Flush()
	},
}
