package chess

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

const (
	DefaultTopFraction = 0.3
	// DefaultScoreMargin leaves the margin filter off: the pick is uniform over
	// the whole top slice.
	DefaultScoreMargin = 0.0
)

// rankMoves sorts by score, best first. Equal scores keep enumeration order.
func rankMoves(scored []Move) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

// topSlice returns the leading ceil(n*fraction) moves, at least one. A
// positive margin further drops moves scoring more than margin below the
// best. Checkmates in the slice are forced: only they remain.
func topSlice(ranked []Move, fraction, margin float64) []Move {
	if len(ranked) == 0 {
		return nil
	}
	limit := int(math.Ceil(float64(len(ranked)) * fraction))
	if limit < 1 {
		limit = 1
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	top := ranked[:limit]

	forced := 0
	for _, m := range top {
		if m.Checkmate {
			forced++
		}
	}
	if forced > 0 {
		out := make([]Move, 0, forced)
		for _, m := range top {
			if m.Checkmate {
				out = append(out, m)
			}
		}
		return out
	}

	if margin > 0 {
		best := top[0].Score
		cut := len(top)
		for i, m := range top {
			if best-m.Score > margin {
				cut = i
				break
			}
		}
		top = top[:cut]
	}
	return top
}

func SelectCandidate(ranked []Move, fraction, margin float64, r *rand.Rand) (Move, error) {
	top := topSlice(ranked, fraction, margin)
	if len(top) == 0 {
		return Move{}, errors.New("no candidates to choose from")
	}
	return top[r.Intn(len(top))], nil
}
