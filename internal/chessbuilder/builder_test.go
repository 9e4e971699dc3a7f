package chessbuilder

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/park285/Cheese-chess-arena/internal/config"
	"github.com/park285/Cheese-chess-arena/internal/service/cache"
	svcchess "github.com/park285/Cheese-chess-arena/internal/service/chess"
)

func baseConfig(redisURL string) *config.AppConfig {
	return &config.AppConfig{
		RedisURL:            redisURL,
		StoreBackend:        config.StoreMemory,
		ChessDefaultProfile: "lord",
		ChessSessionTTLSec:  60,
		ChessHistoryLimit:   5,
		ChessTopFraction:    0.3,
		ChessScoreMargin:    25,
		ChessRandomSeed:     11,
	}
}

func TestParseRedisURL(t *testing.T) {
	got, err := parseRedisURL("redis://:secret@cache.local:6380/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := &cache.CacheConfig{Host: "cache.local", Port: 6380, Password: "secret", DB: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	got, err = parseRedisURL("redis://localhost")
	if err != nil {
		t.Fatalf("parse default port: %v", err)
	}
	if got.Port != 6379 || got.DB != 0 {
		t.Fatalf("unexpected defaults %+v", got)
	}

	for _, bad := range []string{"http://localhost:6379", "redis://localhost:6379/x", "redis:///0"} {
		if _, err := parseRedisURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewWithMemoryStore(t *testing.T) {
	mr := miniredis.RunT(t)
	deps, err := New(context.Background(), baseConfig("redis://"+mr.Addr()+"/0"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	if deps.Service == nil || deps.Repo == nil || deps.Catalog == nil || deps.Formatter == nil {
		t.Fatalf("incomplete deps %+v", deps)
	}
	cfg := deps.Service.Config()
	if cfg.DefaultProfile != "lord" || cfg.HistoryLimit != 5 {
		t.Fatalf("service config not applied: %+v", cfg)
	}

	summary, err := deps.Service.StartGame(context.Background(), svcchess.StartRequest{PlayerID: "p1"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if summary.State.Profile.ID != "lord" {
		t.Fatalf("default profile not used: %s", summary.State.Profile.ID)
	}
}

func TestNewWithBadgerStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig("redis://" + mr.Addr())
	cfg.StoreBackend = config.StoreBadger
	cfg.BadgerDir = t.TempDir()

	deps, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := deps.Repo.(*svcchess.BadgerRepository); !ok {
		t.Fatalf("expected badger repository, got %T", deps.Repo)
	}
	if err := deps.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := deps.Close(); err != nil {
		t.Fatalf("second Close should be a no-op: %v", err)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := New(ctx, &config.AppConfig{}, nil); err == nil {
		t.Fatalf("expected error without REDIS_URL")
	}

	mr := miniredis.RunT(t)
	cfg := baseConfig("redis://" + mr.Addr())
	cfg.StoreBackend = config.StorePostgres
	if _, err := New(ctx, cfg, nil); err == nil {
		t.Fatalf("expected error for postgres without DATABASE_URL")
	}

	cfg = baseConfig("redis://" + mr.Addr())
	cfg.StoreBackend = "sqlite"
	if _, err := New(ctx, cfg, nil); err == nil {
		t.Fatalf("expected error for unknown store")
	}

	cfg = baseConfig("redis://" + mr.Addr())
	cfg.ChessDefaultProfile = "nobody"
	if _, err := New(ctx, cfg, nil); err == nil {
		t.Fatalf("expected error for unknown default profile")
	}
}
