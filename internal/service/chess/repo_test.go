package chess

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/Cheese-chess-arena/internal/domain"
)

func sampleGame(uuid, player string, ended time.Time) *domain.ChessGame {
	return &domain.ChessGame{
		GameUUID:     uuid,
		PlayerID:     player,
		Profile:      "warrior",
		PlayerColor:  "white",
		Result:       "win",
		Outcome:      "1-0",
		ResultMethod: "checkmate",
		MovesUCI:     []string{"e2e4", "e7e5"},
		MovesSAN:     []string{"e4", "e5"},
		PGN:          "1. e4 e5 1-0",
		StartedAt:    ended.Add(-time.Minute),
		EndedAt:      ended,
		Duration:     time.Minute,
	}
}

// exerciseRepository runs the behaviour every backend must share.
func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.InsertGame(ctx, sampleGame(fmt.Sprintf("g-%d", i), "alice", base.Add(time.Duration(i)*time.Hour)))
		if err != nil {
			t.Fatalf("InsertGame %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	if _, err := repo.InsertGame(ctx, sampleGame("g-other", "bob", base)); err != nil {
		t.Fatalf("InsertGame bob: %v", err)
	}
	if _, err := repo.InsertGame(ctx, sampleGame("g-1", "alice", base)); !errors.Is(err, ErrDuplicateGame) {
		t.Fatalf("expected ErrDuplicateGame, got %v", err)
	}

	recent, err := repo.GetRecentGames(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("GetRecentGames: %v", err)
	}
	var got []string
	for _, g := range recent {
		got = append(got, g.GameUUID)
	}
	if diff := cmp.Diff([]string{"g-2", "g-1"}, got); diff != "" {
		t.Fatalf("recent games mismatch (-want +got):\n%s", diff)
	}

	g, err := repo.GetGame(ctx, ids[0], "alice")
	if err != nil || g == nil {
		t.Fatalf("GetGame: %v %v", g, err)
	}
	want := sampleGame("g-0", "alice", base)
	want.ID = ids[0]
	if diff := cmp.Diff(want, g); diff != "" {
		t.Fatalf("stored game mismatch (-want +got):\n%s", diff)
	}
	if other, err := repo.GetGame(ctx, ids[0], "bob"); err != nil || other != nil {
		t.Fatalf("games must be scoped to their player, got %v %v", other, err)
	}
	if byUUID, err := repo.GetGameByUUID(ctx, "g-2"); err != nil || byUUID == nil || byUUID.ID != ids[2] {
		t.Fatalf("GetGameByUUID: %v %v", byUUID, err)
	}
	if missing, err := repo.GetGameByUUID(ctx, "nope"); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown uuid, got %v %v", missing, err)
	}

	if p, err := repo.GetProfile(ctx, "alice"); err != nil || p != nil {
		t.Fatalf("expected no profile yet, got %v %v", p, err)
	}
	profile := &domain.PlayerProfile{PlayerID: "alice", Rating: 1212, GamesPlayed: 1, Wins: 1, Streak: 1, StreakType: "win", LastProfile: "warrior", LastPlayedAt: base, UpdatedAt: base, CreatedAt: base}
	if err := repo.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	profile.Rating = 1230
	if err := repo.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile again: %v", err)
	}
	stored, err := repo.GetProfile(ctx, "alice")
	if err != nil || stored == nil {
		t.Fatalf("GetProfile: %v %v", stored, err)
	}
	if stored.Rating != 1230 || stored.Wins != 1 {
		t.Fatalf("unexpected profile %+v", stored)
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepositoryCopiesGames(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	game := sampleGame("g", "p", time.Now())
	if _, err := repo.InsertGame(ctx, game); err != nil {
		t.Fatalf("InsertGame: %v", err)
	}
	game.MovesUCI[0] = "a2a3"
	stored, _ := repo.GetGameByUUID(ctx, "g")
	if stored.MovesUCI[0] != "e2e4" {
		t.Fatalf("repository must not alias caller slices")
	}
}

func TestBadgerRepository(t *testing.T) {
	repo, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	exerciseRepository(t, repo)
}

func TestBadgerRepositoryReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := OpenBadger(dir)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	first, err := repo.InsertGame(ctx, sampleGame("a", "p", time.Now()))
	if err != nil {
		t.Fatalf("InsertGame: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	repo, err = OpenBadger(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	second, err := repo.InsertGame(ctx, sampleGame("b", "p", time.Now()))
	if err != nil {
		t.Fatalf("InsertGame after reopen: %v", err)
	}
	if second <= first {
		t.Fatalf("ids must keep increasing across reopen: %d then %d", first, second)
	}
	if _, err := repo.InsertGame(ctx, sampleGame("a", "p", time.Now())); !errors.Is(err, ErrDuplicateGame) {
		t.Fatalf("uuid index must survive reopen, got %v", err)
	}
}

func TestOpenBadgerRequiresDir(t *testing.T) {
	if _, err := OpenBadger("  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
