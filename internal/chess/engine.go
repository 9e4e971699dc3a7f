package chess

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Engine struct {
	profile     Profile
	scorer      Scorer
	logger      *zap.Logger
	randMu      sync.Mutex
	rand        *rand.Rand
	topFraction float64
	scoreMargin float64
}

type Option func(*Engine)

func WithScorer(s Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

func WithTopFraction(f float64) Option {
	return func(e *Engine) {
		if f > 0 && f <= 1 {
			e.topFraction = f
		}
	}
}

// WithScoreMargin sets how far below the best score a move may fall and still
// be picked. Zero disables the margin filter.
func WithScoreMargin(m float64) Option {
	return func(e *Engine) {
		if m >= 0 {
			e.scoreMargin = m
		}
	}
}

func NewEngine(p Profile, opts ...Option) *Engine {
	e := &Engine{
		profile:     p,
		logger:      zap.NewNop(),
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		topFraction: DefaultTopFraction,
		scoreMargin: DefaultScoreMargin,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.scorer == nil {
		e.scorer = NewEvaluator(p.Behavior)
	}
	return e
}

func (e *Engine) Profile() Profile {
	return e.profile
}

type Selection struct {
	Move       Move
	OK         bool
	Random     bool
	Fallback   bool
	Candidates int
}

func (e *Engine) SelectMove(board Rules, color Color) (Move, bool) {
	sel := e.SelectMoveDetailed(board, color)
	return sel.Move, sel.OK
}

// SelectMoveDetailed never panics and never returns a move that is not legal
// for color on board. Board state is unchanged on return.
func (e *Engine) SelectMoveDetailed(board Rules, color Color) (sel Selection) {
	if board == nil {
		return Selection{}
	}
	rng := e.random()
	var legal []Move
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("chess move selection panicked",
				zap.String("profile", e.profile.ID),
				zap.String("color", color.Name()),
				zap.Any("panic", rec),
			)
			// empty when enumeration itself panicked
			sel = fallbackSelection(legal, rng)
		}
	}()

	legal = LegalMovesFor(board, color)
	if len(legal) == 0 {
		return Selection{}
	}

	if rng.Float64() < float64(e.profile.Behavior.Randomness) {
		return Selection{
			Move:       legal[rng.Intn(len(legal))],
			OK:         true,
			Random:     true,
			Candidates: len(legal),
		}
	}

	scored, err := e.scoreAll(board, legal, color)
	if err != nil {
		e.logger.Warn("chess move evaluation failed",
			zap.Error(err),
			zap.String("profile", e.profile.ID),
			zap.String("color", color.Name()),
			zap.Int("legal_moves", len(legal)),
		)
		return fallbackSelection(legal, rng)
	}

	rankMoves(scored)
	choice, err := SelectCandidate(scored, e.topFraction, e.scoreMargin, rng)
	if err != nil {
		return fallbackSelection(legal, rng)
	}
	return e.revalidate(board, color, choice, rng)
}

func (e *Engine) scoreAll(board Rules, legal []Move, color Color) ([]Move, error) {
	depth := e.profile.Behavior.SearchDepth
	scored := make([]Move, len(legal))
	for i, m := range legal {
		s, err := e.scorer.Score(board, m, color, depth)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", m.UCI(), err)
		}
		m.Score = s
		scored[i] = m
	}
	return scored, nil
}

func (e *Engine) revalidate(board Rules, color Color, choice Move, rng *rand.Rand) Selection {
	fresh := LegalMovesFor(board, color)
	for _, m := range fresh {
		if m.Same(choice) {
			return Selection{Move: choice, OK: true, Candidates: len(fresh)}
		}
	}
	e.logger.Warn("chess move went stale before return",
		zap.String("profile", e.profile.ID),
		zap.String("move", choice.UCI()),
		zap.Int("legal_moves", len(fresh)),
	)
	return fallbackSelection(fresh, rng)
}

func fallbackSelection(legal []Move, rng *rand.Rand) Selection {
	if len(legal) == 0 {
		return Selection{}
	}
	return Selection{
		Move:       legal[rng.Intn(len(legal))],
		OK:         true,
		Fallback:   true,
		Candidates: len(legal),
	}
}

// MoveDelay samples the advisory thinking time for the active profile.
func (e *Engine) MoveDelay() time.Duration {
	return SampleDelay(e.profile.Behavior.MoveDelay, e.random())
}

func (e *Engine) random() *rand.Rand {
	e.randMu.Lock()
	seed := e.rand.Int63()
	e.randMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (e *Engine) SetRandomSeed(seed int64) {
	e.randMu.Lock()
	e.rand = rand.New(rand.NewSource(seed))
	e.randMu.Unlock()
}
