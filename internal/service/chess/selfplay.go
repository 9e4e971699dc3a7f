package chess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
	"github.com/park285/Cheese-chess-arena/internal/chess/rules"
)

const (
	defaultSelfPlayPlies = 300
	methodPlyLimit       = "PlyLimit"
)

type SelfPlayOptions struct {
	White    string
	Black    string
	FEN      string
	MaxPlies int
	// Seed zero draws from the clock.
	Seed        int64
	TopFraction float64
	ScoreMargin float64
	Logger      *zap.Logger
}

type SelfPlayResult struct {
	White       corechess.Profile
	Black       corechess.Profile
	Outcome     string
	Method      string
	Plies       int
	MovesUCI    []string
	MovesSAN    []string
	ECOCode     string
	ECOTitle    string
	Fallbacks   int
	RandomMoves int
	PGN         string
}

// SelfPlay pits two profiles against each other on a local board. Games that
// reach MaxPlies stop unfinished with outcome "*".
func SelfPlay(ctx context.Context, opts SelfPlayOptions) (*SelfPlayResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	white, err := corechess.GetProfile(defaultString(opts.White, corechess.DefaultProfileID))
	if err != nil {
		return nil, fmt.Errorf("white: %w", err)
	}
	black, err := corechess.GetProfile(defaultString(opts.Black, corechess.DefaultProfileID))
	if err != nil {
		return nil, fmt.Errorf("black: %w", err)
	}
	maxPlies := opts.MaxPlies
	if maxPlies <= 0 {
		maxPlies = defaultSelfPlayPlies
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fraction := opts.TopFraction
	if fraction <= 0 || fraction > 1 {
		fraction = corechess.DefaultTopFraction
	}
	margin := opts.ScoreMargin
	if margin < 0 {
		margin = corechess.DefaultScoreMargin
	}

	startFEN := strings.TrimSpace(opts.FEN)
	board := rules.New()
	if startFEN != "" {
		if board, err = rules.FromFEN(startFEN); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStart, err)
		}
	}

	engines := map[corechess.Color]*corechess.Engine{}
	for i, side := range []struct {
		color   corechess.Color
		profile corechess.Profile
	}{{corechess.White, white}, {corechess.Black, black}} {
		eng := corechess.NewEngine(side.profile,
			corechess.WithLogger(logger.Named("engine").With(zap.String("side", side.color.Name()))),
			corechess.WithTopFraction(fraction),
			corechess.WithScoreMargin(margin),
		)
		eng.SetRandomSeed(seed + int64(i))
		engines[side.color] = eng
	}

	res := &SelfPlayResult{White: white, Black: black}
	for ply := 0; ply < maxPlies && !board.Finished(); ply++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		color := board.SideToMove()
		sel := engines[color].SelectMoveDetailed(board, color)
		if !sel.OK {
			break
		}
		mv, err := board.PlayUCI(sel.Move.UCI())
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", sel.Move.UCI(), err)
		}
		res.MovesUCI = append(res.MovesUCI, mv.UCI())
		res.MovesSAN = append(res.MovesSAN, mv.Notation)
		if sel.Fallback {
			res.Fallbacks++
		}
		if sel.Random {
			res.RandomMoves++
		}
	}

	res.Plies = len(res.MovesUCI)
	res.Outcome = board.Outcome()
	res.Method = board.Method()
	if !board.Finished() {
		res.Method = methodPlyLimit
	}
	res.ECOCode, res.ECOTitle = ecoLabel(startFEN, board)
	res.PGN = buildPGN(pgnHeaders{
		White:       white.Name,
		Black:       black.Name,
		Date:        time.Now(),
		Result:      res.Outcome,
		Termination: res.Method,
		FEN:         startFEN,
		ECO:         res.ECOCode,
		Opening:     res.ECOTitle,
	}, res.MovesSAN)

	logger.Info("self-play finished",
		zap.String("white", white.ID),
		zap.String("black", black.ID),
		zap.String("outcome", res.Outcome),
		zap.String("method", res.Method),
		zap.Int("plies", res.Plies),
		zap.Int64("seed", seed),
	)
	return res, nil
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
