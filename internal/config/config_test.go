package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "WS_ADDR", "REDIS_URL", "STORE_BACKEND", "CHESS_DEFAULT_PROFILE", "CHESS_SESSION_TTL", "CHESS_TOP_FRACTION", "CHESS_SCORE_MARGIN", "CHESS_RANDOM_SEED"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.WSAddr != ":8081" || cfg.StoreBackend != StoreMemory {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ChessDefaultProfile != "warrior" || cfg.SessionTTL() != time.Hour || cfg.ChessTopFraction != 0.3 || cfg.ChessScoreMargin != 0 {
		t.Fatalf("unexpected chess defaults %+v", cfg)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Fatalf("serve requires REDIS_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("STORE_BACKEND", "Badger")
	t.Setenv("BADGER_DIR", "/tmp/arena")
	t.Setenv("CHESS_DEFAULT_PROFILE", "Maestro")
	t.Setenv("CHESS_SESSION_TTL", "90")
	t.Setenv("CHESS_TOP_FRACTION", "0.5")
	t.Setenv("CHESS_RANDOM_SEED", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreBackend != StoreBadger || cfg.BadgerDir != "/tmp/arena" {
		t.Fatalf("unexpected store %+v", cfg)
	}
	if cfg.ChessDefaultProfile != "maestro" || cfg.SessionTTL() != 90*time.Second || cfg.ChessTopFraction != 0.5 || cfg.ChessRandomSeed != 42 {
		t.Fatalf("unexpected chess settings %+v", cfg)
	}
	if err := cfg.ValidateServe(); err != nil {
		t.Fatalf("ValidateServe: %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"backend":  {"STORE_BACKEND", "mongo"},
		"fraction": {"CHESS_TOP_FRACTION", "1.5"},
		"margin":   {"CHESS_SCORE_MARGIN", "-1"},
		"seed":     {"CHESS_RANDOM_SEED", "abc"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestValidateServePostgresNeedsURL(t *testing.T) {
	cfg := &AppConfig{RedisURL: "redis://x", StoreBackend: StorePostgres}
	if err := cfg.ValidateServe(); err == nil {
		t.Fatalf("expected DATABASE_URL error")
	}
}
