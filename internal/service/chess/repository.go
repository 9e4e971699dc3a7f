package chess

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/Cheese-chess-arena/internal/domain"
)

var ErrDuplicateGame = errors.New("chess game already exists")

type Repository interface {
	InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error)
	GetRecentGames(ctx context.Context, playerID string, limit int) ([]*domain.ChessGame, error)
	GetGame(ctx context.Context, id int64, playerID string) (*domain.ChessGame, error)
	GetGameByUUID(ctx context.Context, gameUUID string) (*domain.ChessGame, error)
	GetProfile(ctx context.Context, playerID string) (*domain.PlayerProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.PlayerProfile) error
}

const schema = `
CREATE TABLE IF NOT EXISTS arena_games (
	id BIGSERIAL PRIMARY KEY,
	game_uuid TEXT NOT NULL UNIQUE,
	player_id TEXT NOT NULL DEFAULT '',
	profile TEXT NOT NULL,
	player_color TEXT NOT NULL,
	result TEXT NOT NULL,
	outcome TEXT NOT NULL,
	result_method TEXT NOT NULL,
	moves_uci JSONB NOT NULL,
	moves_san JSONB NOT NULL,
	pgn TEXT NOT NULL,
	eco_code TEXT NOT NULL DEFAULT '',
	eco_title TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT,
	engine_fallbacks INT NOT NULL DEFAULT 0,
	random_moves INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS arena_games_player_ended ON arena_games (player_id, ended_at DESC);
CREATE TABLE IF NOT EXISTS arena_players (
	player_id TEXT PRIMARY KEY,
	preferred_profile TEXT NOT NULL DEFAULT '',
	rating INT NOT NULL,
	games_played INT NOT NULL DEFAULT 0,
	wins INT NOT NULL DEFAULT 0,
	losses INT NOT NULL DEFAULT 0,
	draws INT NOT NULL DEFAULT 0,
	streak INT NOT NULL DEFAULT 0,
	streak_type TEXT NOT NULL DEFAULT '',
	last_profile TEXT NOT NULL DEFAULT '',
	last_played_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

const gameColumns = `
			id,
			game_uuid,
			player_id,
			profile,
			player_color,
			result,
			outcome,
			result_method,
			moves_uci,
			moves_san,
			pgn,
			eco_code,
			eco_title,
			started_at,
			ended_at,
			duration_ms,
			engine_fallbacks,
			random_moves`

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// OpenPostgres opens and pings a lib/pq pool.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure arena schema: %w", err)
	}
	return nil
}

func (r *repository) InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error) {
	if game == nil {
		return 0, fmt.Errorf("nil chess game payload")
	}

	movesUCI, err := json.Marshal(game.MovesUCI)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(game.MovesSAN)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_san: %w", err)
	}

	const query = `
		INSERT INTO arena_games (
			game_uuid,
			player_id,
			profile,
			player_color,
			result,
			outcome,
			result_method,
			moves_uci,
			moves_san,
			pgn,
			eco_code,
			eco_title,
			started_at,
			ended_at,
			duration_ms,
			engine_fallbacks,
			random_moves
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (game_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		query,
		game.GameUUID,
		game.PlayerID,
		game.Profile,
		game.PlayerColor,
		game.Result,
		game.Outcome,
		game.ResultMethod,
		movesUCI,
		movesSAN,
		game.PGN,
		game.ECOCode,
		game.ECOTitle,
		game.StartedAt,
		game.EndedAt,
		game.Duration.Milliseconds(),
		game.EngineFallbacks,
		game.RandomMoves,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert chess game: %w", err)
	}
	return id.Int64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.ChessGame, error) {
	var (
		game         domain.ChessGame
		movesUCIJSON []byte
		movesSANJSON []byte
		durationMS   sql.NullInt64
	)
	if err := row.Scan(
		&game.ID,
		&game.GameUUID,
		&game.PlayerID,
		&game.Profile,
		&game.PlayerColor,
		&game.Result,
		&game.Outcome,
		&game.ResultMethod,
		&movesUCIJSON,
		&movesSANJSON,
		&game.PGN,
		&game.ECOCode,
		&game.ECOTitle,
		&game.StartedAt,
		&game.EndedAt,
		&durationMS,
		&game.EngineFallbacks,
		&game.RandomMoves,
	); err != nil {
		return nil, err
	}
	if durationMS.Valid {
		game.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	if err := json.Unmarshal(movesUCIJSON, &game.MovesUCI); err != nil {
		return nil, fmt.Errorf("unmarshal moves_uci: %w", err)
	}
	if err := json.Unmarshal(movesSANJSON, &game.MovesSAN); err != nil {
		return nil, fmt.Errorf("unmarshal moves_san: %w", err)
	}
	return &game, nil
}

func (r *repository) GetRecentGames(ctx context.Context, playerID string, limit int) ([]*domain.ChessGame, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + gameColumns + `
		FROM arena_games
		WHERE player_id = $1
		ORDER BY ended_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("select chess games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.ChessGame, 0, limit)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chess game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chess games: %w", err)
	}
	return games, nil
}

func (r *repository) GetGame(ctx context.Context, id int64, playerID string) (*domain.ChessGame, error) {
	query := `SELECT` + gameColumns + `
		FROM arena_games
		WHERE id = $1 AND player_id = $2`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select chess game: %w", err)
	}
	return game, nil
}

func (r *repository) GetGameByUUID(ctx context.Context, gameUUID string) (*domain.ChessGame, error) {
	query := `SELECT` + gameColumns + `
		FROM arena_games
		WHERE game_uuid = $1
		LIMIT 1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, gameUUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select chess game by uuid: %w", err)
	}
	return game, nil
}

func (r *repository) GetProfile(ctx context.Context, playerID string) (*domain.PlayerProfile, error) {
	const query = `
		SELECT
			player_id,
			preferred_profile,
			rating,
			games_played,
			wins,
			losses,
			draws,
			streak,
			streak_type,
			last_profile,
			last_played_at,
			updated_at,
			created_at
		FROM arena_players
		WHERE player_id = $1
		LIMIT 1`

	var (
		profile    domain.PlayerProfile
		lastPlayed sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&profile.PlayerID,
		&profile.PreferredProfile,
		&profile.Rating,
		&profile.GamesPlayed,
		&profile.Wins,
		&profile.Losses,
		&profile.Draws,
		&profile.Streak,
		&profile.StreakType,
		&profile.LastProfile,
		&lastPlayed,
		&profile.UpdatedAt,
		&profile.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select player profile: %w", err)
	}
	if lastPlayed.Valid {
		profile.LastPlayedAt = lastPlayed.Time
	}
	return &profile, nil
}

func (r *repository) UpsertProfile(ctx context.Context, profile *domain.PlayerProfile) error {
	if profile == nil {
		return fmt.Errorf("nil player profile payload")
	}
	const query = `
		INSERT INTO arena_players (
			player_id,
			preferred_profile,
			rating,
			games_played,
			wins,
			losses,
			draws,
			streak,
			streak_type,
			last_profile,
			last_played_at,
			updated_at,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (player_id)
		DO UPDATE SET
			preferred_profile = EXCLUDED.preferred_profile,
			rating = EXCLUDED.rating,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			draws = EXCLUDED.draws,
			streak = EXCLUDED.streak,
			streak_type = EXCLUDED.streak_type,
			last_profile = EXCLUDED.last_profile,
			last_played_at = EXCLUDED.last_played_at,
			updated_at = NOW()`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.PlayerID,
		profile.PreferredProfile,
		profile.Rating,
		profile.GamesPlayed,
		profile.Wins,
		profile.Losses,
		profile.Draws,
		profile.Streak,
		profile.StreakType,
		profile.LastProfile,
		profile.LastPlayedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert player profile: %w", err)
	}
	return nil
}
