package chessdto

import "time"

// Profile is a computer opponent from the difficulty catalog.
type Profile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Insignia    string   `json:"insignia"`
	Color       string   `json:"color"`
	Behavior    Behavior `json:"behavior"`
}

type Behavior struct {
	MoveDelayMinMS int64   `json:"move_delay_min_ms"`
	MoveDelayMaxMS int64   `json:"move_delay_max_ms"`
	SearchDepth    int     `json:"search_depth"`
	Randomness     float64 `json:"randomness"`
	Aggression     float64 `json:"aggression"`
	Defensive      float64 `json:"defensive"`
	Tactical       float64 `json:"tactical"`
}

type ProfilesResponse struct {
	Profiles []*Profile `json:"profiles"`
	Message  string     `json:"message,omitempty"`
}

type PlayerProfile struct {
	PlayerID     string    `json:"player_id"`
	Rating       int       `json:"rating"`
	GamesPlayed  int       `json:"games_played"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Draws        int       `json:"draws"`
	Streak       int       `json:"streak"`
	StreakType   string    `json:"streak_type,omitempty"`
	LastProfile  string    `json:"last_profile,omitempty"`
	LastPlayedAt time.Time `json:"last_played_at"`
	Message      string    `json:"message,omitempty"`
}
