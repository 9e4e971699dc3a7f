package chess

const (
	doubledPawnPenalty  = 0.5
	isolatedPawnPenalty = 0.5
	passedPawnStep      = 0.2
	kingAdvancePenalty  = 0.5
	kingShieldBonus     = 0.3
)

type boardSnapshot [64]Piece

func snapshot(r Rules) boardSnapshot {
	var b boardSnapshot
	for i := 0; i < 64; i++ {
		b[i] = r.PieceAt(SquareAt(i))
	}
	return b
}

func (b *boardSnapshot) at(file, rank int) Piece {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return Piece{}
	}
	return b[rank*8+file]
}

func (b *boardSnapshot) isPawn(file, rank int, color Color) bool {
	p := b.at(file, rank)
	return p.Kind == Pawn && p.Color == color
}

func pawnStructure(b boardSnapshot, color Color) float64 {
	var files [8]int
	for i, p := range b {
		if p.Kind == Pawn && p.Color == color {
			files[i%8]++
		}
	}

	score := 0.0
	for _, n := range files {
		if n > 1 {
			score -= doubledPawnPenalty * float64(n-1)
		}
	}

	for i, p := range b {
		if p.Kind != Pawn || p.Color != color {
			continue
		}
		file, rank := i%8, i/8
		left := file > 0 && files[file-1] > 0
		right := file < 7 && files[file+1] > 0
		if !left && !right {
			score -= isolatedPawnPenalty
		}
		if b.passed(file, rank, color) {
			advanced := rank - 1
			if color == Black {
				advanced = 6 - rank
			}
			score += passedPawnStep * float64(advanced)
		}
	}
	return score
}

// passed reports whether no enemy pawn stands ahead on the pawn's file or
// either neighbouring file.
func (b *boardSnapshot) passed(file, rank int, color Color) bool {
	step := 1
	if color == Black {
		step = -1
	}
	enemy := color.Other()
	for r := rank + step; r >= 0 && r <= 7; r += step {
		for f := file - 1; f <= file+1; f++ {
			if b.isPawn(f, r, enemy) {
				return false
			}
		}
	}
	return true
}

func kingSafety(b boardSnapshot, color Color) float64 {
	king := -1
	for i, p := range b {
		if p.Kind == King && p.Color == color {
			king = i
			break
		}
	}
	if king < 0 {
		return 0
	}
	file, rank := king%8, king/8

	score := 0.0
	if advance := abs(rank - backRank(color)); advance > 1 {
		score -= kingAdvancePenalty * float64(advance-1)
	}
	for df := -1; df <= 1; df++ {
		for dr := -1; dr <= 1; dr++ {
			if df == 0 && dr == 0 {
				continue
			}
			p := b.at(file+df, rank+dr)
			if !p.Empty() && p.Color == color {
				score += kingShieldBonus
			}
		}
	}
	return score
}
