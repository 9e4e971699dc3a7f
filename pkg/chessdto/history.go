package chessdto

import "time"

type ChessGame struct {
	ID              int64     `json:"id"`
	GameUUID        string    `json:"game_uuid"`
	Profile         string    `json:"profile"`
	PlayerColor     string    `json:"player_color"`
	Result          string    `json:"result"`
	Outcome         string    `json:"outcome"`
	ResultMethod    string    `json:"result_method"`
	MovesUCI        []string  `json:"moves_uci"`
	MovesSAN        []string  `json:"moves_san"`
	PGN             string    `json:"pgn"`
	ECOCode         string    `json:"eco_code,omitempty"`
	ECOTitle        string    `json:"eco_title,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMS      int64     `json:"duration_ms"`
	EngineFallbacks int       `json:"engine_fallbacks"`
	RandomMoves     int       `json:"random_moves"`
	Message         string    `json:"message,omitempty"`
}

type HistoryResponse struct {
	Games   []*ChessGame `json:"games"`
	Message string       `json:"message,omitempty"`
}
