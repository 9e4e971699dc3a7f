package chessdto

import "time"

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
	Diff  int `json:"diff"`
}

type GameState struct {
	GameID       string        `json:"game_id"`
	Profile      *Profile      `json:"profile,omitempty"`
	PlayerColor  string        `json:"player_color"`
	StartFEN     string        `json:"start_fen,omitempty"`
	MovesUCI     []string      `json:"moves_uci"`
	MovesSAN     []string      `json:"moves_san"`
	FEN          string        `json:"fen"`
	Turn         string        `json:"turn"`
	PlayerToMove bool          `json:"player_to_move"`
	InCheck      bool          `json:"in_check"`
	LegalMoves   int           `json:"legal_moves"`
	Status       string        `json:"status"`
	Outcome      string        `json:"outcome,omitempty"`
	Method       string        `json:"method,omitempty"`
	ECOCode      string        `json:"eco_code,omitempty"`
	ECOTitle     string        `json:"eco_title,omitempty"`
	LastMove     string        `json:"last_move,omitempty"`
	Material     MaterialScore `json:"material"`
	RecordID     int64         `json:"record_id,omitempty"`
	RatingDelta  int           `json:"rating_delta,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// StateResponse wraps a state change that has no move of its own, such as
// an undo or a resignation.
type StateResponse struct {
	State   *GameState `json:"state"`
	Message string     `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error DomainError `json:"error"`
}
