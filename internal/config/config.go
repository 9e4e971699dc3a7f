package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreBadger   = "badger"
)

type AppConfig struct {
	HTTPAddr string
	WSAddr   string

	RedisURL     string
	StoreBackend string
	DatabaseURL  string
	BadgerDir    string

	ChessDefaultProfile string
	ChessSessionTTLSec  int
	ChessHistoryLimit   int
	ChessTopFraction    float64
	ChessScoreMargin    float64
	ChessRandomSeed     int64

	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:            ":8080",
		WSAddr:              ":8081",
		StoreBackend:        StoreMemory,
		BadgerDir:           "data/badger",
		ChessDefaultProfile: "warrior",
		ChessSessionTTLSec:  3600,
		ChessHistoryLimit:   10,
		ChessTopFraction:    0.3,
		ChessScoreMargin:    0,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND"))); v != "" {
		cfg.StoreBackend = v
	}
	if v := strings.TrimSpace(os.Getenv("BADGER_DIR")); v != "" {
		cfg.BadgerDir = v
	}
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	// Chess specific
	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_PROFILE")); v != "" {
		cfg.ChessDefaultProfile = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessSessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessHistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_TOP_FRACTION")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return nil, fmt.Errorf("CHESS_TOP_FRACTION must be in (0,1]: %q", v)
		}
		cfg.ChessTopFraction = f
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SCORE_MARGIN")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("CHESS_SCORE_MARGIN must be >= 0: %q", v)
		}
		cfg.ChessScoreMargin = f
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_RANDOM_SEED")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CHESS_RANDOM_SEED must be an integer: %q", v)
		}
		cfg.ChessRandomSeed = n
	}

	switch cfg.StoreBackend {
	case StoreMemory, StorePostgres, StoreBadger:
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND: %s", cfg.StoreBackend)
	}

	return cfg, nil
}

// ValidateServe checks what the network server needs beyond Load.
func (c *AppConfig) ValidateServe() error {
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	if c.StoreBackend == StorePostgres && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres store")
	}
	if c.StoreBackend == StoreBadger && c.BadgerDir == "" {
		return errors.New("BADGER_DIR is required for the badger store")
	}
	return nil
}

func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.ChessSessionTTLSec) * time.Second
}
