package chess

import (
	"fmt"
	"strings"
)

type Color int8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

func (c Color) Name() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// ParseColor accepts "w", "white", "b" and "black" in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color: %q", s)
}

type PieceKind int8

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceValues = [...]int{
	NoPiece: 0,
	Pawn:    1,
	Knight:  3,
	Bishop:  3,
	Rook:    5,
	Queen:   9,
	King:    0,
}

// Value is the material value used for capture scoring. The king is worth 0.
func (k PieceKind) Value() int {
	if k < 0 || int(k) >= len(pieceValues) {
		return 0
	}
	return pieceValues[k]
}

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	}
	return ""
}

func ParsePieceKind(s string) PieceKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p":
		return Pawn
	case "n":
		return Knight
	case "b":
		return Bishop
	case "r":
		return Rook
	case "q":
		return Queen
	case "k":
		return King
	}
	return NoPiece
}

type Piece struct {
	Kind  PieceKind
	Color Color
}

func (p Piece) Empty() bool {
	return p.Kind == NoPiece
}

// Square is an algebraic coordinate such as "e4".
type Square string

func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return ""
	}
	return Square([]byte{byte('a' + file), byte('1' + rank)})
}

func (s Square) Valid() bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// File is 0 for the a-file.
func (s Square) File() int {
	if !s.Valid() {
		return -1
	}
	return int(s[0] - 'a')
}

// Rank is 0 for the first rank.
func (s Square) Rank() int {
	if !s.Valid() {
		return -1
	}
	return int(s[1] - '1')
}

// Index maps a1..h8 onto 0..63, rank major.
func (s Square) Index() int {
	if !s.Valid() {
		return -1
	}
	return s.Rank()*8 + s.File()
}

func SquareAt(index int) Square {
	if index < 0 || index > 63 {
		return ""
	}
	return NewSquare(index%8, index/8)
}

type Move struct {
	From      Square
	To        Square
	Piece     PieceKind
	Captured  PieceKind
	Promotion PieceKind
	Notation  string
	Capture   bool
	Check     bool
	Checkmate bool
	Score     float64
}

// UCI renders the move as long algebraic text, e.g. "e7e8q".
func (m Move) UCI() string {
	return string(m.From) + string(m.To) + m.Promotion.String()
}

// Same reports whether both moves describe the same action on the board.
func (m Move) Same(other Move) bool {
	return m.From == other.From && m.To == other.To && m.Piece == other.Piece && m.Promotion == other.Promotion
}

func (m Move) String() string {
	if m.Notation != "" {
		return m.Notation
	}
	return m.UCI()
}
