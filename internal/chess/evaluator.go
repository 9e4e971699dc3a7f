package chess

const (
	captureWeight    = 10
	checkWeight      = 15
	checkmateWeight  = 1000
	centerBonus      = 2
	kingMovePenalty  = 5
	pawnAdvanceBonus = 1

	attackedEnemyWeight  = 2
	defendedFriendWeight = 1
	inCheckBonus         = 10
	interceptBonus       = 5
	aggressiveCheckBonus = 8
	promotionStep        = 0.5

	lookaheadWeight = 0.5
)

// Scorer ranks one candidate move for color. Higher is better.
type Scorer interface {
	Score(r Rules, m Move, color Color, depth int) (float64, error)
}

type Evaluator struct {
	behavior Behavior
}

func NewEvaluator(b Behavior) *Evaluator {
	return &Evaluator{behavior: b}
}

func (e *Evaluator) Score(r Rules, m Move, color Color, depth int) (float64, error) {
	score := quickScore(m) + positionalScore(m, color)
	score += e.defensive(r, m, color)
	score += e.aggressive(m, color)

	err := Trial(r, m, func(after Rules) error {
		score += e.tactical(after, m, color)
		if depth > 1 {
			score += lookaheadWeight * lookahead(after, color)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// quickScore covers the capture, check and checkmate terms.
func quickScore(m Move) float64 {
	score := 0.0
	if m.Capture {
		score += float64(m.Captured.Value() * captureWeight)
	}
	if m.Check {
		score += checkWeight
	}
	if m.Checkmate {
		score += checkmateWeight
	}
	return score
}

func positionalScore(m Move, color Color) float64 {
	score := 0.0
	if isCenter(m.To) {
		score += centerBonus
	}
	if m.Piece == Pawn {
		rank := m.To.Rank()
		if (color == White && rank >= 3) || (color == Black && rank <= 4) {
			score += pawnAdvanceBonus
		}
	}
	if m.Piece == King {
		score -= kingMovePenalty
	}
	return score
}

// tactical runs on the position after m: every occupied square the moved
// piece now attacks counts, enemies double.
func (e *Evaluator) tactical(after Rules, m Move, color Color) float64 {
	if e.behavior.Tactical == 0 {
		return 0
	}
	total := 0
	for _, sq := range after.AttacksFrom(m.To) {
		p := after.PieceAt(sq)
		if p.Empty() {
			continue
		}
		if p.Color == color {
			total += defendedFriendWeight
		} else {
			total += attackedEnemyWeight
		}
	}
	return float64(total) * float64(e.behavior.Tactical)
}

func (e *Evaluator) defensive(r Rules, m Move, color Color) float64 {
	if e.behavior.Defensive == 0 {
		return 0
	}
	total := 0
	if r.SideToMove() == color && r.InCheck() {
		total += inCheckBonus
	}
	if intercepts(r, m, color) {
		total += interceptBonus
	}
	return float64(total) * float64(e.behavior.Defensive)
}

func (e *Evaluator) aggressive(m Move, color Color) float64 {
	if e.behavior.Aggression == 0 {
		return 0
	}
	total := 0.0
	if m.Capture {
		total += float64(m.Captured.Value())
	}
	if m.Check {
		total += aggressiveCheckBonus
	}
	if m.Piece == Pawn {
		total += float64(8-promotionDistance(m.To, color)) * promotionStep
	}
	return total * float64(e.behavior.Aggression)
}

// intercepts reports whether m stops an enemy capture that is on the board
// right now: either m takes a piece that attacks one of ours, or m lands
// strictly between an enemy slider and the friendly piece it attacks.
func intercepts(r Rules, m Move, color Color) bool {
	enemy := color.Other()
	if m.Capture {
		if target := r.PieceAt(m.To); !target.Empty() && target.Color == enemy {
			for _, sq := range r.AttacksFrom(m.To) {
				if sq == m.From {
					continue
				}
				if p := r.PieceAt(sq); !p.Empty() && p.Color == color {
					return true
				}
			}
		}
	}
	for i := 0; i < 64; i++ {
		from := SquareAt(i)
		attacker := r.PieceAt(from)
		if attacker.Empty() || attacker.Color != enemy || !isSlider(attacker.Kind) {
			continue
		}
		for _, sq := range r.AttacksFrom(from) {
			if sq == m.From {
				continue
			}
			victim := r.PieceAt(sq)
			if victim.Empty() || victim.Color != color {
				continue
			}
			if between(from, sq, m.To) {
				return true
			}
		}
	}
	return false
}

func isSlider(k PieceKind) bool {
	return k == Bishop || k == Rook || k == Queen
}

// between reports whether c lies strictly inside the straight segment a-b.
func between(a, b, c Square) bool {
	df := sign(b.File() - a.File())
	dr := sign(b.Rank() - a.Rank())
	if df == 0 && dr == 0 {
		return false
	}
	if df != 0 && dr != 0 && abs(b.File()-a.File()) != abs(b.Rank()-a.Rank()) {
		return false
	}
	f, rk := a.File()+df, a.Rank()+dr
	for f != b.File() || rk != b.Rank() {
		if NewSquare(f, rk) == c {
			return true
		}
		f += df
		rk += dr
	}
	return false
}

// lookahead re-evaluates the position after a trial move from color's point
// of view and subtracts the opponent's most forcing reply.
func lookahead(after Rules, color Color) float64 {
	board := snapshot(after)
	sub := pawnStructure(board, color) + kingSafety(board, color)
	best := 0.0
	for _, reply := range after.LegalMoves() {
		if q := quickScore(reply); q > best {
			best = q
		}
	}
	return sub - best
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
