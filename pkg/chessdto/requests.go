package chessdto

type StartGameRequest struct {
	Profile string `json:"profile"`
	Color   string `json:"color"`
	FEN     string `json:"fen"`
}

type MoveRequest struct {
	Move string `json:"move"`
}

// SocketCommand is read from websocket clients. Type is "move", "state",
// "undo", "resign" or "hint".
type SocketCommand struct {
	Type string `json:"type"`
	Move string `json:"move,omitempty"`
}

// SocketEvent is pushed to websocket clients. Type is "state", "player_move",
// "engine_move", "hint" or "error".
type SocketEvent struct {
	Type    string       `json:"type"`
	Message string       `json:"message,omitempty"`
	Summary *MoveSummary `json:"summary,omitempty"`
	State   *GameState   `json:"state,omitempty"`
	Hint    *Hint        `json:"hint,omitempty"`
	Error   *DomainError `json:"error,omitempty"`
}
