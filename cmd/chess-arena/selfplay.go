package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-arena/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-arena/internal/msgcat"
	"github.com/park285/Cheese-chess-arena/internal/obslog"
	svcchess "github.com/park285/Cheese-chess-arena/internal/service/chess"
)

var selfplayCmd = &cobra.Command{
	Use:   "selfplay",
	Short: "Play one engine-vs-engine game and print its PGN",
	Args:  cobra.NoArgs,
	RunE:  runSelfPlay,
}

var (
	spWhite    string
	spBlack    string
	spFEN      string
	spMaxPlies int
	spSeed     int64
	spVerbose  bool
)

func init() {
	selfplayCmd.Flags().StringVar(&spWhite, "white", "warrior", "profile playing white")
	selfplayCmd.Flags().StringVar(&spBlack, "black", "warrior", "profile playing black")
	selfplayCmd.Flags().StringVar(&spFEN, "fen", "", "start position (default: standard)")
	selfplayCmd.Flags().IntVar(&spMaxPlies, "max-plies", 300, "stop unfinished after this many plies")
	selfplayCmd.Flags().Int64Var(&spSeed, "seed", 0, "random seed (0 = clock)")
	selfplayCmd.Flags().BoolVarP(&spVerbose, "verbose", "v", false, "log every engine decision")
}

func runSelfPlay(cmd *cobra.Command, args []string) error {
	logger := zap.NewNop()
	if spVerbose {
		logger = obslog.L()
	}
	res, err := svcchess.SelfPlay(cmd.Context(), svcchess.SelfPlayOptions{
		White:    spWhite,
		Black:    spBlack,
		FEN:      spFEN,
		MaxPlies: spMaxPlies,
		Seed:     spSeed,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.PGN)
	fmt.Fprintln(out)

	catalog, err := msgcat.New("")
	if err != nil {
		return err
	}
	formatter := chesspresenter.NewFormatter(catalog, logger)
	fmt.Fprintln(out, formatter.SelfPlay(res.White.Name, res.Black.Name, res.Outcome, res.Method, res.Plies))
	return nil
}
