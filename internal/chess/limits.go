package chess

import (
	"math/rand"
	"time"
)

// SampleDelay draws a uniform duration in [d.Min, d.Max].
func SampleDelay(d DelayRange, r *rand.Rand) time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	span := int64(d.Max - d.Min)
	return d.Min + time.Duration(r.Int63n(span+1))
}

// promotionDistance is the number of ranks a pawn of color on sq still has to
// travel.
func promotionDistance(sq Square, color Color) int {
	if color == White {
		return 7 - sq.Rank()
	}
	return sq.Rank()
}

func isCenter(sq Square) bool {
	switch sq {
	case "d4", "d5", "e4", "e5":
		return true
	}
	return false
}

func backRank(color Color) int {
	if color == White {
		return 0
	}
	return 7
}
