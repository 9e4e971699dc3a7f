package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	nchess "github.com/corentings/chess/v2"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
)

var ErrIllegalMove = errors.New("illegal chess move")

var uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// Board adapts a corentings game to corechess.Rules. Apply keeps the previous
// game on a stack so Undo restores it exactly.
type Board struct {
	game  *nchess.Game
	stack []*nchess.Game
	cache *mailbox
}

var _ corechess.Rules = (*Board)(nil)

func New() *Board {
	return &Board{game: nchess.NewGame()}
}

func FromGame(game *nchess.Game) *Board {
	if game == nil {
		return New()
	}
	return &Board{game: game}
}

func FromFEN(fen string) (*Board, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &Board{game: nchess.NewGame(opt)}, nil
}

// FromUCI replays moves from the standard starting position.
func FromUCI(moves ...string) (*Board, error) {
	b := New()
	for _, mv := range moves {
		if _, err := b.PlayUCI(mv); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Board) Game() *nchess.Game {
	return b.game
}

func (b *Board) position() *nchess.Position {
	return b.game.Position()
}

func (b *Board) board() *mailbox {
	if b.cache == nil {
		b.cache = mailboxOf(b.position())
	}
	return b.cache
}

func (b *Board) LegalMoves() []corechess.Move {
	if b.game.Outcome() != nchess.NoOutcome {
		return nil
	}
	pos := b.position()
	notation := nchess.UCINotation{}
	valid := b.game.ValidMoves()
	out := make([]corechess.Move, 0, len(valid))
	for i := range valid {
		mv, err := notation.Decode(pos, valid[i].String())
		if err != nil {
			continue
		}
		out = append(out, b.describe(pos, mv))
	}
	return out
}

func (b *Board) LegalMovesFrom(sq corechess.Square) []corechess.Move {
	var out []corechess.Move
	for _, m := range b.LegalMoves() {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

func (b *Board) PieceAt(sq corechess.Square) corechess.Piece {
	idx := sq.Index()
	if idx < 0 {
		return corechess.Piece{}
	}
	return b.board()[idx]
}

func (b *Board) SideToMove() corechess.Color {
	return toColor(b.position().Turn())
}

func (b *Board) InCheck() bool {
	return b.board().inCheck(b.SideToMove())
}

func (b *Board) AttacksFrom(sq corechess.Square) []corechess.Square {
	idx := sq.Index()
	if idx < 0 {
		return nil
	}
	return squaresOf(b.board().attacks(idx))
}

func (b *Board) Attackers(sq corechess.Square, by corechess.Color) []corechess.Square {
	idx := sq.Index()
	if idx < 0 {
		return nil
	}
	return squaresOf(b.board().attackers(idx, by))
}

func (b *Board) Apply(m corechess.Move) error {
	pos := b.position()
	mv, err := nchess.UCINotation{}.Decode(pos, m.UCI())
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIllegalMove, m.UCI(), err)
	}
	next := b.game.Clone()
	if err := next.Move(mv, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIllegalMove, m.UCI(), err)
	}
	b.stack = append(b.stack, b.game)
	b.game = next
	b.cache = nil
	return nil
}

func (b *Board) Undo() error {
	if len(b.stack) == 0 {
		return corechess.ErrNothingToUndo
	}
	last := len(b.stack) - 1
	b.game = b.stack[last]
	b.stack[last] = nil
	b.stack = b.stack[:last]
	b.cache = nil
	return nil
}

// Depth is the number of applied moves Undo can still revert.
func (b *Board) Depth() int {
	return len(b.stack)
}

// Decode reads UCI when the text has the coordinate shape and SAN otherwise,
// against the current position.
func (b *Board) Decode(text string) (corechess.Move, error) {
	mv, err := b.decode(text)
	if err != nil {
		return corechess.Move{}, err
	}
	return b.describe(b.position(), mv), nil
}

func (b *Board) decode(text string) (*nchess.Move, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty move", ErrIllegalMove)
	}
	// no SAN move has the coordinate shape
	if uciPattern.MatchString(strings.ToLower(trimmed)) {
		return b.decodeUCI(trimmed)
	}
	mv, err := nchess.AlgebraicNotation{}.Decode(b.position(), trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, trimmed)
	}
	return mv, nil
}

// decodeUCI accepts coordinate notation only. The SAN parser is lenient
// enough to read "g1f3" as a different pawn move.
func (b *Board) decodeUCI(text string) (*nchess.Move, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if !uciPattern.MatchString(lower) {
		return nil, fmt.Errorf("%w: not uci: %s", ErrIllegalMove, text)
	}
	valid := b.game.ValidMoves()
	for i := range valid {
		if valid[i].String() != lower {
			continue
		}
		mv, err := nchess.UCINotation{}.Decode(b.position(), lower)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrIllegalMove, lower)
		}
		return mv, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrIllegalMove, lower)
}

// Play commits a move permanently: it cannot be undone through Undo.
func (b *Board) Play(text string) (corechess.Move, error) {
	return b.commit(text, b.decode)
}

// PlayUCI commits a move given in coordinate notation only. Replays and
// engine moves go through here.
func (b *Board) PlayUCI(text string) (corechess.Move, error) {
	return b.commit(text, b.decodeUCI)
}

func (b *Board) commit(text string, decode func(string) (*nchess.Move, error)) (corechess.Move, error) {
	if b.game.Outcome() != nchess.NoOutcome {
		return corechess.Move{}, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	mv, err := decode(text)
	if err != nil {
		return corechess.Move{}, err
	}
	if !b.legal(mv) {
		return corechess.Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	described := b.describe(b.position(), mv)
	if err := b.game.Move(mv, nil); err != nil {
		return corechess.Move{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, text, err)
	}
	b.stack = nil
	b.cache = nil
	return described, nil
}

func (b *Board) legal(mv *nchess.Move) bool {
	for _, v := range b.game.ValidMoves() {
		if v.S1() == mv.S1() && v.S2() == mv.S2() && v.Promo() == mv.Promo() {
			return true
		}
	}
	return false
}

func (b *Board) Resign(color corechess.Color) {
	b.game.Resign(fromColor(color))
	b.stack = nil
}

func (b *Board) FEN() string {
	return b.game.FEN()
}

func (b *Board) Ply() int {
	return len(b.game.Moves())
}

// Finished reports whether the game has an outcome.
func (b *Board) Finished() bool {
	return b.game.Outcome() != nchess.NoOutcome
}

// Outcome is "1-0", "0-1", "1/2-1/2" or "*".
func (b *Board) Outcome() string {
	return b.game.Outcome().String()
}

func (b *Board) Method() string {
	return b.game.Method().String()
}

// Winner reports the winning side when the game is decided.
func (b *Board) Winner() (corechess.Color, bool) {
	switch b.game.Outcome() {
	case nchess.WhiteWon:
		return corechess.White, true
	case nchess.BlackWon:
		return corechess.Black, true
	}
	return corechess.White, false
}

func (b *Board) UCIHistory() []string {
	moves := b.game.Moves()
	out := make([]string, len(moves))
	for i, mv := range moves {
		out[i] = strings.ToLower(mv.String())
	}
	return out
}

func (b *Board) SANHistory() []string {
	positions := b.game.Positions()
	moves := b.game.Moves()
	out := make([]string, len(moves))
	notation := nchess.AlgebraicNotation{}
	for i, mv := range moves {
		if i < len(positions) {
			out[i] = notation.Encode(positions[i], mv)
		}
	}
	return out
}

// Material sums piece values per side.
func (b *Board) Material() (white, black int) {
	for _, p := range b.board() {
		if p.Empty() {
			continue
		}
		if p.Color == corechess.White {
			white += p.Kind.Value()
		} else {
			black += p.Kind.Value()
		}
	}
	return white, black
}

func (b *Board) describe(pos *nchess.Position, mv *nchess.Move) corechess.Move {
	mb := b.board()
	from := toSquare(mv.S1())
	to := toSquare(mv.S2())
	moved := mb[from.Index()]

	m := corechess.Move{
		From:  from,
		To:    to,
		Piece: moved.Kind,
	}
	uci := nchess.UCINotation{}.Encode(pos, mv)
	if len(uci) == 5 {
		m.Promotion = corechess.ParsePieceKind(uci[4:])
	}
	if target := mb[to.Index()]; !target.Empty() {
		m.Capture = true
		m.Captured = target.Kind
	} else if moved.Kind == corechess.Pawn && from.File() != to.File() {
		m.Capture = true
		m.Captured = corechess.Pawn
	}

	m.Check = mb.after(m).inCheck(moved.Color.Other())
	if m.Check {
		clone := b.game.Clone()
		if err := clone.Move(mv, nil); err == nil {
			m.Checkmate = len(clone.ValidMoves()) == 0
		}
	}
	m.Notation = nchess.AlgebraicNotation{}.Encode(pos, mv)
	return m
}

func toColor(c nchess.Color) corechess.Color {
	if c == nchess.Black {
		return corechess.Black
	}
	return corechess.White
}

func fromColor(c corechess.Color) nchess.Color {
	if c == corechess.Black {
		return nchess.Black
	}
	return nchess.White
}

func toKind(t nchess.PieceType) corechess.PieceKind {
	switch t {
	case nchess.Pawn:
		return corechess.Pawn
	case nchess.Knight:
		return corechess.Knight
	case nchess.Bishop:
		return corechess.Bishop
	case nchess.Rook:
		return corechess.Rook
	case nchess.Queen:
		return corechess.Queen
	case nchess.King:
		return corechess.King
	}
	return corechess.NoPiece
}

func toSquare(sq nchess.Square) corechess.Square {
	return corechess.NewSquare(int(sq.File()), int(sq.Rank()))
}
