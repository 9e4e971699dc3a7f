package domain

import "time"

// ChessGame is a finished game against the computer opponent.
type ChessGame struct {
	ID              int64
	GameUUID        string
	PlayerID        string
	Profile         string
	PlayerColor     string
	Result          string
	Outcome         string
	ResultMethod    string
	MovesUCI        []string
	MovesSAN        []string
	PGN             string
	ECOCode         string
	ECOTitle        string
	StartedAt       time.Time
	EndedAt         time.Time
	Duration        time.Duration
	EngineFallbacks int
	RandomMoves     int
}

type PlayerProfile struct {
	PlayerID         string
	PreferredProfile string
	Rating           int
	GamesPlayed      int
	Wins             int
	Losses           int
	Draws            int
	Streak           int
	StreakType       string
	LastProfile      string
	LastPlayedAt     time.Time
	UpdatedAt        time.Time
	CreatedAt        time.Time
}
