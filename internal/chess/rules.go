package chess

import (
	"errors"
	"fmt"
)

var ErrNothingToUndo = errors.New("no trial move to undo")

// Rules is the board collaborator the selector ranks moves against.
// Implementations must make Undo restore the exact position that preceded the
// matching Apply.
type Rules interface {
	LegalMoves() []Move
	LegalMovesFrom(sq Square) []Move
	PieceAt(sq Square) Piece
	SideToMove() Color
	InCheck() bool
	Apply(m Move) error
	Undo() error
	AttacksFrom(sq Square) []Square
	Attackers(sq Square, by Color) []Square
}

// LegalMovesFor returns the legal moves of color, or nil when it is not that
// side's turn.
func LegalMovesFor(r Rules, color Color) []Move {
	if r == nil || r.SideToMove() != color {
		return nil
	}
	return r.LegalMoves()
}

// Trial applies m, runs fn on the resulting position and undoes m on every
// exit path, including a panic inside fn.
func Trial(r Rules, m Move, fn func(Rules) error) (err error) {
	if err := r.Apply(m); err != nil {
		return fmt.Errorf("trial apply %s: %w", m.UCI(), err)
	}
	defer func() {
		if undoErr := r.Undo(); undoErr != nil && err == nil {
			err = fmt.Errorf("trial undo %s: %w", m.UCI(), undoErr)
		}
	}()
	return fn(r)
}
