package chess

import (
	"fmt"
	"strings"
	"time"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
)

type pgnHeaders struct {
	White       string
	Black       string
	Date        time.Time
	Result      string
	Termination string
	FEN         string
	ECO         string
	Opening     string
}

// buildPGN writes an export-format PGN. A non-empty FEN adds SetUp/FEN tags and
// numbers moves from the side to move in that position.
func buildPGN(h pgnHeaders, movesSAN []string) string {
	var b strings.Builder
	date := h.Date
	if date.IsZero() {
		date = time.Now()
	}
	result := h.Result
	if result == "" {
		result = "*"
	}

	b.WriteString("[Event \"Cheese Arena\"]\n")
	b.WriteString("[Site \"Cheese\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(h.White)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(h.Black)))
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n", result))
	if strings.TrimSpace(h.ECO) != "" {
		b.WriteString(fmt.Sprintf("[ECO \"%s\"]\n", sanitizePGN(h.ECO)))
		if strings.TrimSpace(h.Opening) != "" {
			b.WriteString(fmt.Sprintf("[Opening \"%s\"]\n", sanitizePGN(h.Opening)))
		}
	}
	if strings.TrimSpace(h.Termination) != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(h.Termination))))
	}
	fullMove, blackFirst := 1, false
	if fen := strings.TrimSpace(h.FEN); fen != "" {
		b.WriteString("[SetUp \"1\"]\n")
		b.WriteString(fmt.Sprintf("[FEN \"%s\"]\n", sanitizePGN(fen)))
		fullMove, blackFirst = fenMoveNumber(fen)
	}
	b.WriteString("\n")

	i := 0
	if blackFirst && len(movesSAN) > 0 {
		b.WriteString(fmt.Sprintf("%d... %s ", fullMove, strings.TrimSpace(movesSAN[0])))
		fullMove++
		i = 1
	}
	for ; i < len(movesSAN); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", fullMove, strings.TrimSpace(movesSAN[i])))
		if i+1 < len(movesSAN) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(movesSAN[i+1]))
		}
		b.WriteString(" ")
		fullMove++
	}
	b.WriteString(result)
	return b.String()
}

// fenMoveNumber reads the side-to-move and fullmove fields of a FEN record.
func fenMoveNumber(fen string) (int, bool) {
	fields := strings.Fields(fen)
	blackFirst := len(fields) > 1 && fields[1] == "b"
	n := 1
	if len(fields) > 5 {
		if _, err := fmt.Sscanf(fields[5], "%d", &n); err != nil || n < 1 {
			n = 1
		}
	}
	return n, blackFirst
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}

// playerResult maps a PGN outcome to win/loss/draw from the player's side.
func playerResult(outcome string, player corechess.Color) string {
	switch outcome {
	case "1-0":
		if player == corechess.White {
			return "win"
		}
		return "loss"
	case "0-1":
		if player == corechess.Black {
			return "win"
		}
		return "loss"
	case "1/2-1/2":
		return "draw"
	default:
		return "unknown"
	}
}
