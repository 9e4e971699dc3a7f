package chessdto

// MoveSummary describes one request's worth of moves and the resulting state.
type MoveSummary struct {
	State         *GameState `json:"state"`
	PlayerSAN     string     `json:"player_san,omitempty"`
	PlayerUCI     string     `json:"player_uci,omitempty"`
	EngineSAN     string     `json:"engine_san,omitempty"`
	EngineUCI     string     `json:"engine_uci,omitempty"`
	EngineDelayMS int64      `json:"engine_delay_ms,omitempty"`
	Fallback      bool       `json:"fallback,omitempty"`
	Finished      bool       `json:"finished"`
	RecordID      int64      `json:"record_id,omitempty"`
	RatingDelta   int        `json:"rating_delta,omitempty"`
	Message       string     `json:"message,omitempty"`
}

type Hint struct {
	MoveUCI string  `json:"move_uci"`
	MoveSAN string  `json:"move_san"`
	Score   float64 `json:"score"`
	Message string  `json:"message,omitempty"`
}
