package rules

import (
	nchess "github.com/corentings/chess/v2"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
)

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	diagonals   = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	orthogonals = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// mailbox is a plain 64-square copy of a position, a1 = 0, h8 = 63.
type mailbox [64]corechess.Piece

func mailboxOf(pos *nchess.Position) *mailbox {
	mb := &mailbox{}
	if pos == nil {
		return mb
	}
	board := pos.Board()
	if board == nil {
		return mb
	}
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece {
				continue
			}
			mb[int(rank)*8+int(file)] = corechess.Piece{
				Kind:  toKind(piece.Type()),
				Color: toColor(piece.Color()),
			}
		}
	}
	return mb
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// attacks lists the squares the piece on idx attacks, blockers included.
// Pawn pushes are not attacks.
func (mb *mailbox) attacks(idx int) []int {
	p := mb[idx]
	if p.Empty() {
		return nil
	}
	file, rank := idx%8, idx/8
	var out []int
	step := func(df, dr int) {
		if f, r := file+df, rank+dr; onBoard(f, r) {
			out = append(out, r*8+f)
		}
	}
	ray := func(df, dr int) {
		for f, r := file+df, rank+dr; onBoard(f, r); f, r = f+df, r+dr {
			out = append(out, r*8+f)
			if !mb[r*8+f].Empty() {
				return
			}
		}
	}

	switch p.Kind {
	case corechess.Pawn:
		dir := 1
		if p.Color == corechess.Black {
			dir = -1
		}
		step(-1, dir)
		step(1, dir)
	case corechess.Knight:
		for _, s := range knightSteps {
			step(s[0], s[1])
		}
	case corechess.King:
		for _, s := range kingSteps {
			step(s[0], s[1])
		}
	case corechess.Bishop:
		for _, d := range diagonals {
			ray(d[0], d[1])
		}
	case corechess.Rook:
		for _, d := range orthogonals {
			ray(d[0], d[1])
		}
	case corechess.Queen:
		for _, d := range diagonals {
			ray(d[0], d[1])
		}
		for _, d := range orthogonals {
			ray(d[0], d[1])
		}
	}
	return out
}

func (mb *mailbox) attackers(target int, by corechess.Color) []int {
	var out []int
	for i := 0; i < 64; i++ {
		p := mb[i]
		if p.Empty() || p.Color != by {
			continue
		}
		for _, sq := range mb.attacks(i) {
			if sq == target {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func (mb *mailbox) king(c corechess.Color) int {
	for i, p := range mb {
		if p.Kind == corechess.King && p.Color == c {
			return i
		}
	}
	return -1
}

func (mb *mailbox) inCheck(c corechess.Color) bool {
	k := mb.king(c)
	if k < 0 {
		return false
	}
	return len(mb.attackers(k, c.Other())) > 0
}

// after returns the position reached by m, including castling, en passant and
// promotion side effects.
func (mb *mailbox) after(m corechess.Move) *mailbox {
	next := *mb
	from, to := m.From.Index(), m.To.Index()
	if from < 0 || to < 0 {
		return &next
	}
	p := next[from]
	next[from] = corechess.Piece{}

	switch {
	case p.Kind == corechess.Pawn && m.From.File() != m.To.File() && mb[to].Empty():
		next[m.From.Rank()*8+m.To.File()] = corechess.Piece{}
	case p.Kind == corechess.King && m.To.File()-m.From.File() == 2:
		rank := m.From.Rank()
		next[rank*8+5] = next[rank*8+7]
		next[rank*8+7] = corechess.Piece{}
	case p.Kind == corechess.King && m.From.File()-m.To.File() == 2:
		rank := m.From.Rank()
		next[rank*8+3] = next[rank*8]
		next[rank*8] = corechess.Piece{}
	}

	if m.Promotion != corechess.NoPiece {
		p.Kind = m.Promotion
	}
	next[to] = p
	return &next
}

func squaresOf(idx []int) []corechess.Square {
	out := make([]corechess.Square, 0, len(idx))
	for _, i := range idx {
		out = append(out, corechess.SquareAt(i))
	}
	return out
}
