package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/park285/Cheese-chess-arena/internal/obslog"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "chess-arena",
	Short:         "Play chess against the Cheese arena opponents",
	Long:          "chess-arena serves the arena game API and runs engine matches from the command line.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := obslog.InitFromEnv(); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(selfplayCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(probeCmd)
}
