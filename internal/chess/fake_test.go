package chess

import "errors"

type fakeRules struct {
	side    Color
	moves   []Move
	replies []Move
	pieces  map[Square]Piece
	check   bool
	attacks map[Square][]Square

	stack    []Move
	applies  int
	undos    int
	failNext bool
	// stale replaces the move list after the first enumeration.
	stale []Move
	calls int
}

func (f *fakeRules) LegalMoves() []Move {
	if len(f.stack) > 0 {
		return append([]Move(nil), f.replies...)
	}
	f.calls++
	if f.stale != nil && f.calls > 1 {
		return append([]Move(nil), f.stale...)
	}
	return append([]Move(nil), f.moves...)
}

func (f *fakeRules) LegalMovesFrom(sq Square) []Move {
	var out []Move
	for _, m := range f.LegalMoves() {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeRules) PieceAt(sq Square) Piece {
	return f.pieces[sq]
}

func (f *fakeRules) SideToMove() Color {
	if len(f.stack)%2 == 1 {
		return f.side.Other()
	}
	return f.side
}

func (f *fakeRules) InCheck() bool { return f.check && len(f.stack) == 0 }

func (f *fakeRules) Apply(m Move) error {
	if f.failNext {
		return errors.New("apply refused")
	}
	f.applies++
	f.stack = append(f.stack, m)
	return nil
}

func (f *fakeRules) Undo() error {
	if len(f.stack) == 0 {
		return ErrNothingToUndo
	}
	f.undos++
	f.stack = f.stack[:len(f.stack)-1]
	return nil
}

func (f *fakeRules) AttacksFrom(sq Square) []Square {
	return f.attacks[sq]
}

func (f *fakeRules) Attackers(sq Square, by Color) []Square {
	var out []Square
	for from, targets := range f.attacks {
		p := f.pieces[from]
		if p.Empty() || p.Color != by {
			continue
		}
		for _, t := range targets {
			if t == sq {
				out = append(out, from)
			}
		}
	}
	return out
}

type panicScorer struct{}

func (panicScorer) Score(Rules, Move, Color, int) (float64, error) {
	panic("evaluator exploded")
}

type errScorer struct{}

func (errScorer) Score(Rules, Move, Color, int) (float64, error) {
	return 0, errors.New("broken heuristic")
}

func quietMoves(n int) []Move {
	out := make([]Move, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Move{
			From:  NewSquare(i%8, 1+i/8%2),
			To:    NewSquare(i%8, 3+i/8%2),
			Piece: Knight,
		})
	}
	return out
}
