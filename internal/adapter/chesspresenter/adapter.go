package chesspresenter

import (
	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
	"github.com/park285/Cheese-chess-arena/internal/domain"
	svc "github.com/park285/Cheese-chess-arena/internal/service/chess"
	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

func ToDTOState(s *svc.GameState) *chessdto.GameState {
	if s == nil {
		return nil
	}
	return &chessdto.GameState{
		GameID:       s.GameID,
		Profile:      ToDTOProfile(s.Profile),
		PlayerColor:  s.PlayerColor.Name(),
		StartFEN:     s.StartFEN,
		MovesUCI:     append([]string{}, s.Moves...),
		MovesSAN:     append([]string{}, s.MovesSAN...),
		FEN:          s.FEN,
		Turn:         s.Turn.Name(),
		PlayerToMove: s.PlayerToMove(),
		InCheck:      s.InCheck,
		LegalMoves:   s.Legal,
		Status:       s.Status,
		Outcome:      s.Outcome,
		Method:       s.Method,
		ECOCode:      s.ECOCode,
		ECOTitle:     s.ECOTitle,
		LastMove:     s.LastMove,
		Material:     chessdto.MaterialScore{White: s.Material.White, Black: s.Material.Black, Diff: s.Material.Diff()},
		RecordID:     s.RecordID,
		RatingDelta:  s.RatingDelta,
		StartedAt:    s.StartedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func ToDTOMoveSummary(m *svc.MoveSummary) *chessdto.MoveSummary {
	if m == nil {
		return nil
	}
	return &chessdto.MoveSummary{
		State:         ToDTOState(m.State),
		PlayerSAN:     m.PlayerSAN,
		PlayerUCI:     m.PlayerUCI,
		EngineSAN:     m.EngineSAN,
		EngineUCI:     m.EngineUCI,
		EngineDelayMS: m.EngineDelay.Milliseconds(),
		Fallback:      m.Fallback,
		Finished:      m.Finished,
		RecordID:      m.GameID,
		RatingDelta:   m.RatingDelta,
	}
}

func ToDTOHint(h *svc.Hint) *chessdto.Hint {
	if h == nil {
		return nil
	}
	return &chessdto.Hint{MoveUCI: h.MoveUCI, MoveSAN: h.MoveSAN, Score: h.Score}
}

func ToDTOProfile(p corechess.Profile) *chessdto.Profile {
	if p.ID == "" {
		return nil
	}
	b := p.Behavior
	return &chessdto.Profile{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Insignia:    p.Insignia,
		Color:       p.Color,
		Behavior: chessdto.Behavior{
			MoveDelayMinMS: b.MoveDelay.Min.Milliseconds(),
			MoveDelayMaxMS: b.MoveDelay.Max.Milliseconds(),
			SearchDepth:    b.SearchDepth,
			Randomness:     float64(b.Randomness),
			Aggression:     float64(b.Aggression),
			Defensive:      float64(b.Defensive),
			Tactical:       float64(b.Tactical),
		},
	}
}

func ToDTOProfiles(list []corechess.Profile) []*chessdto.Profile {
	out := make([]*chessdto.Profile, 0, len(list))
	for _, p := range list {
		out = append(out, ToDTOProfile(p))
	}
	return out
}

func ToDTOGame(g *domain.ChessGame) *chessdto.ChessGame {
	if g == nil {
		return nil
	}
	return &chessdto.ChessGame{
		ID:              g.ID,
		GameUUID:        g.GameUUID,
		Profile:         g.Profile,
		PlayerColor:     g.PlayerColor,
		Result:          g.Result,
		Outcome:         g.Outcome,
		ResultMethod:    g.ResultMethod,
		MovesUCI:        append([]string{}, g.MovesUCI...),
		MovesSAN:        append([]string{}, g.MovesSAN...),
		PGN:             g.PGN,
		ECOCode:         g.ECOCode,
		ECOTitle:        g.ECOTitle,
		StartedAt:       g.StartedAt,
		EndedAt:         g.EndedAt,
		DurationMS:      g.Duration.Milliseconds(),
		EngineFallbacks: g.EngineFallbacks,
		RandomMoves:     g.RandomMoves,
	}
}

func ToDTOGames(games []*domain.ChessGame) []*chessdto.ChessGame {
	out := make([]*chessdto.ChessGame, 0, len(games))
	for _, g := range games {
		out = append(out, ToDTOGame(g))
	}
	return out
}

func ToDTOPlayer(p *domain.PlayerProfile) *chessdto.PlayerProfile {
	if p == nil {
		return nil
	}
	return &chessdto.PlayerProfile{
		PlayerID:     p.PlayerID,
		Rating:       p.Rating,
		GamesPlayed:  p.GamesPlayed,
		Wins:         p.Wins,
		Losses:       p.Losses,
		Draws:        p.Draws,
		Streak:       p.Streak,
		StreakType:   p.StreakType,
		LastProfile:  p.LastProfile,
		LastPlayedAt: p.LastPlayedAt,
	}
}
