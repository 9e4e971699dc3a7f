package rules

import (
	"math"
	"math/rand"
	"testing"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
)

func deterministic(id string, seed int64) *corechess.Engine {
	p := corechess.Lookup(id)
	p.Behavior.Randomness = 0
	return corechess.NewEngine(p, corechess.WithRand(rand.New(rand.NewSource(seed))))
}

func TestSelectOpeningMoveIsLegalAndLeavesBoard(t *testing.T) {
	b := New()
	fen := b.FEN()
	legal := b.LegalMoves()
	for _, id := range []string{"iniciado", "warrior", "maestro"} {
		p := corechess.Lookup(id)
		p.Behavior.Randomness = 0
		p.Behavior.SearchDepth = 1
		e := corechess.NewEngine(p, corechess.WithRand(rand.New(rand.NewSource(1))))
		got, ok := e.SelectMove(b, corechess.White)
		if !ok {
			t.Fatalf("%s: expected an opening move", id)
		}
		if _, found := findMove(legal, got.UCI()); !found {
			t.Fatalf("%s: %s is not one of the 20 opening moves", id, got.UCI())
		}
		if b.FEN() != fen || b.Depth() != 0 {
			t.Fatalf("%s: board changed by selection", id)
		}
	}
}

func TestSelectCheckmateInOne(t *testing.T) {
	for _, p := range corechess.Profiles() {
		for seed := int64(0); seed < 5; seed++ {
			b := mustBoard(t, "e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6")
			fen := b.FEN()
			got, ok := deterministic(p.ID, seed).SelectMove(b, corechess.White)
			if !ok {
				t.Fatalf("%s: expected a move", p.ID)
			}
			if !got.Checkmate || got.UCI() != "h5f7" {
				t.Fatalf("%s seed %d: expected Qxf7#, got %s", p.ID, seed, got.Notation)
			}
			if b.FEN() != fen {
				t.Fatalf("%s: board changed by lookahead", p.ID)
			}
		}
	}
}

func TestSelectKeepsQueenCaptureInTopSlice(t *testing.T) {
	b := mustBoard(t, "e2e4", "e7e6", "g1f3", "d8g5")
	slice := int(math.Ceil(float64(len(b.LegalMoves())) * corechess.DefaultTopFraction))
	e := deterministic("maestro", 3)
	const draws = 600
	hits := 0
	for i := 0; i < draws; i++ {
		got, ok := e.SelectMove(b, corechess.White)
		if !ok {
			t.Fatalf("expected a move")
		}
		if got.UCI() == "f3g5" {
			hits++
		}
	}
	want := draws / slice
	if hits < want/2 || hits > want*2 {
		t.Fatalf("queen capture chosen %d/%d times, expected about %d from a top slice of %d", hits, draws, want, slice)
	}
}

func TestSelectWinsUndefendedQueenWithMargin(t *testing.T) {
	hits, total := 0, 0
	for _, p := range corechess.Profiles() {
		for seed := int64(0); seed < 10; seed++ {
			b := mustBoard(t, "e2e4", "e7e6", "g1f3", "d8g5")
			p.Behavior.Randomness = 0
			e := corechess.NewEngine(p,
				corechess.WithRand(rand.New(rand.NewSource(seed))),
				corechess.WithScoreMargin(25),
			)
			got, ok := e.SelectMove(b, corechess.White)
			if !ok {
				t.Fatalf("%s: expected a move", p.ID)
			}
			total++
			if got.UCI() == "f3g5" {
				hits++
			}
		}
	}
	if hits*10 < total*8 {
		t.Fatalf("queen capture chosen %d/%d times", hits, total)
	}
}

func TestSelectWithNoLegalMoves(t *testing.T) {
	b := mustBoard(t, "f2f3", "e7e5", "g2g4", "d8h4")
	if _, ok := deterministic("maestro", 1).SelectMove(b, corechess.White); ok {
		t.Fatalf("expected no move for a mated side")
	}
}

func TestSelectForWrongSide(t *testing.T) {
	b := New()
	if _, ok := deterministic("warrior", 1).SelectMove(b, corechess.Black); ok {
		t.Fatalf("black has no legal moves while white is on turn")
	}
}

type explodingScorer struct{ calls int }

func (s *explodingScorer) Score(r corechess.Rules, m corechess.Move, _ corechess.Color, _ int) (float64, error) {
	s.calls++
	var score float64
	_ = corechess.Trial(r, m, func(corechess.Rules) error {
		if s.calls > 3 {
			panic("lookahead exploded")
		}
		score = 1
		return nil
	})
	return score, nil
}

func TestSelectDegradesOnEvaluatorPanic(t *testing.T) {
	b := mustBoard(t, "e2e4", "e7e5")
	fen := b.FEN()
	legal := b.LegalMoves()
	e := corechess.NewEngine(corechess.Lookup("maestro"),
		corechess.WithScorer(&explodingScorer{}),
		corechess.WithRand(rand.New(rand.NewSource(2))),
	)
	e.SetRandomSeed(2)
	sel := e.SelectMoveDetailed(b, corechess.White)
	if !sel.OK {
		t.Fatalf("expected a fallback move")
	}
	if _, found := findMove(legal, sel.Move.UCI()); !found {
		t.Fatalf("fallback %s is not legal", sel.Move.UCI())
	}
	if b.FEN() != fen || b.Depth() != 0 {
		t.Fatalf("trial move leaked after panic")
	}
}
