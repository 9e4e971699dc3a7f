package chesspresenter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
	"github.com/park285/Cheese-chess-arena/internal/msgcat"
	svc "github.com/park285/Cheese-chess-arena/internal/service/chess"
	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

// Error codes carried in chessdto.DomainError.
const (
	CodeGameNotFound     = "game_not_found"
	CodeRecordNotFound   = "record_not_found"
	CodePlayerNotFound   = "player_not_found"
	CodeProfileNotFound  = "profile_not_found"
	CodeInvalidMove      = "invalid_move"
	CodeNotYourTurn      = "not_your_turn"
	CodeGameFinished     = "game_finished"
	CodeUndoNotAvailable = "undo_not_available"
	CodeConcurrentUpdate = "concurrent_update"
	CodeInvalidStart     = "invalid_start"
	CodeInvalidRequest   = "invalid_request"
	CodeInternal         = "internal"
)

// ErrInvalidRequest marks malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// Formatter renders DTOs into player-facing text from the message catalog.
type Formatter struct {
	catalog *msgcat.Catalog
	logger  *zap.Logger
}

func NewFormatter(catalog *msgcat.Catalog, logger *zap.Logger) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Formatter{catalog: catalog, logger: logger}
}

func (f *Formatter) render(key string, data map[string]any) string {
	if f == nil || f.catalog == nil {
		return ""
	}
	text, err := f.catalog.Render(key, data)
	if err != nil {
		f.logger.Warn("message render failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return text
}

func profileName(p *chessdto.Profile) string {
	if p == nil {
		return "The engine"
	}
	return p.Name
}

func (f *Formatter) Start(summary *chessdto.MoveSummary) string {
	if summary == nil || summary.State == nil {
		return ""
	}
	return f.render("game.started", map[string]any{
		"Profile":   profileName(summary.State.Profile),
		"Color":     summary.State.PlayerColor,
		"EngineSAN": summary.EngineSAN,
	})
}

// Move describes the plies in summary, then the result when the game ended.
func (f *Formatter) Move(summary *chessdto.MoveSummary) string {
	if summary == nil || summary.State == nil {
		return ""
	}
	state := summary.State
	var parts []string
	name := profileName(state.Profile)
	switch {
	case summary.PlayerSAN != "" && summary.EngineSAN == "" && !summary.Finished:
		parts = append(parts, f.render("game.player_move", map[string]any{
			"PlayerSAN": summary.PlayerSAN,
			"Profile":   name,
		}))
	case summary.PlayerSAN != "":
		parts = append(parts, f.render("game.move", map[string]any{
			"PlayerSAN": summary.PlayerSAN,
			"EngineSAN": summary.EngineSAN,
			"Profile":   name,
			"InCheck":   state.InCheck,
		}))
	case summary.EngineSAN != "":
		parts = append(parts, f.render("game.engine_move", map[string]any{
			"EngineSAN": summary.EngineSAN,
			"Profile":   name,
			"InCheck":   state.InCheck,
		}))
	}
	if summary.Finished {
		parts = append(parts, f.Finished(state))
	}
	return joinNonEmpty(parts)
}

func (f *Formatter) Finished(state *chessdto.GameState) string {
	if state == nil {
		return ""
	}
	color, _ := corechess.ParseColor(state.PlayerColor)
	return f.render("game.finished", map[string]any{
		"Result":      resultWord(state.Outcome, color),
		"Outcome":     state.Outcome,
		"Method":      strings.ToLower(state.Method),
		"RecordID":    state.RecordID,
		"RatingDelta": state.RatingDelta,
	})
}

func (f *Formatter) Status(state *chessdto.GameState) string {
	if state == nil {
		return ""
	}
	if state.Status == "finished" {
		return f.Finished(state)
	}
	opening := ""
	if state.ECOCode != "" {
		opening = state.ECOCode + " " + state.ECOTitle
	}
	return f.render("game.status", map[string]any{
		"Profile":  profileName(state.Profile),
		"FullMove": len(state.MovesUCI)/2 + 1,
		"Turn":     capitalize(state.Turn),
		"InCheck":  state.InCheck,
		"Material": formatMaterial(state.Material),
		"Opening":  strings.TrimSpace(opening),
	})
}

func (f *Formatter) Undo(state *chessdto.GameState) string {
	if state == nil {
		return ""
	}
	return f.render("game.undo", map[string]any{"Plies": len(state.MovesUCI)})
}

func (f *Formatter) Hint(h *chessdto.Hint) string {
	if h == nil || h.MoveUCI == "" {
		return ""
	}
	return f.render("game.hint", map[string]any{"MoveSAN": h.MoveSAN, "MoveUCI": h.MoveUCI})
}

func (f *Formatter) History(games []*chessdto.ChessGame) string {
	if len(games) == 0 {
		return f.render("history.empty", nil)
	}
	return f.render("history.summary", map[string]any{"Count": len(games)})
}

func (f *Formatter) Game(g *chessdto.ChessGame) string {
	if g == nil {
		return ""
	}
	return f.render("history.game", map[string]any{
		"ID":       g.ID,
		"Result":   g.Result,
		"Profile":  corechess.Lookup(g.Profile).Name,
		"Plies":    len(g.MovesUCI),
		"Duration": formatGameDuration(time.Duration(g.DurationMS) * time.Millisecond),
	})
}

func (f *Formatter) Player(p *chessdto.PlayerProfile) string {
	if p == nil {
		return ""
	}
	return f.render("player.summary", map[string]any{
		"Rating":     p.Rating,
		"Wins":       p.Wins,
		"Losses":     p.Losses,
		"Draws":      p.Draws,
		"Games":      p.GamesPlayed,
		"Streak":     p.Streak,
		"StreakType": p.StreakType,
	})
}

func (f *Formatter) Profiles(list []*chessdto.Profile) string {
	if len(list) == 0 {
		return ""
	}
	return f.render("profiles.list", map[string]any{
		"Count": len(list),
		"First": list[0].Name,
		"Last":  list[len(list)-1].Name,
	})
}

func (f *Formatter) Profile(p *chessdto.Profile) string {
	if p == nil {
		return ""
	}
	return f.render("profiles.one", map[string]any{"Name": p.Name, "Description": p.Description})
}

func (f *Formatter) SelfPlay(white, black, outcome, method string, plies int) string {
	return f.render("selfplay.result", map[string]any{
		"White":   white,
		"Black":   black,
		"Outcome": outcome,
		"Method":  strings.ToLower(method),
		"Plies":   plies,
	})
}

// Error maps a service error to its code and message.
func (f *Formatter) Error(err error) chessdto.DomainError {
	code, retryable := errorCode(err)
	msg := f.render("errors."+code, nil)
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return chessdto.DomainError{Code: code, Message: msg, Retryable: retryable}
}

func errorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, svc.ErrGameNotFound):
		return CodeGameNotFound, false
	case errors.Is(err, svc.ErrRecordNotFound):
		return CodeRecordNotFound, false
	case errors.Is(err, svc.ErrPlayerNotFound):
		return CodePlayerNotFound, false
	case errors.Is(err, svc.ErrProfileNotFound):
		return CodeProfileNotFound, false
	case errors.Is(err, svc.ErrInvalidMove):
		return CodeInvalidMove, false
	case errors.Is(err, svc.ErrNotYourTurn):
		return CodeNotYourTurn, true
	case errors.Is(err, svc.ErrGameFinished):
		return CodeGameFinished, false
	case errors.Is(err, svc.ErrUndoNotAvailable):
		return CodeUndoNotAvailable, false
	case errors.Is(err, svc.ErrConcurrentUpdate):
		return CodeConcurrentUpdate, true
	case errors.Is(err, svc.ErrInvalidStart):
		return CodeInvalidStart, false
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest, false
	}
	return CodeInternal, true
}

func resultWord(outcome string, player corechess.Color) string {
	switch outcome {
	case "1/2-1/2":
		return "draw"
	case "1-0":
		if player == corechess.White {
			return "you win"
		}
		return "you lose"
	case "0-1":
		if player == corechess.Black {
			return "you win"
		}
		return "you lose"
	}
	return "unfinished"
}

func formatMaterial(score chessdto.MaterialScore) string {
	switch {
	case score.Diff > 0:
		return fmt.Sprintf("%d:%d (white +%d)", score.White, score.Black, score.Diff)
	case score.Diff < 0:
		return fmt.Sprintf("%d:%d (black +%d)", score.White, score.Black, -score.Diff)
	default:
		return fmt.Sprintf("%d:%d (even)", score.White, score.Black)
	}
}

func formatGameDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%02ds", m, s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinNonEmpty(parts []string) string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
