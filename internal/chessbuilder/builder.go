package chessbuilder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-arena/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-arena/internal/config"
	"github.com/park285/Cheese-chess-arena/internal/msgcat"
	"github.com/park285/Cheese-chess-arena/internal/service/cache"
	svcchess "github.com/park285/Cheese-chess-arena/internal/service/chess"
)

type Deps struct {
	Service   *svcchess.Service
	Cache     *cache.CacheService
	Repo      svcchess.Repository
	Catalog   *msgcat.Catalog
	Formatter *chesspresenter.Formatter

	closers []func() error
}

// Close releases the store and the redis client, newest first.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for game sessions")
	}
	cconf, err := parseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	cacheSvc, err := cache.NewCacheService(*cconf, logger)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	return assemble(ctx, cfg, cacheSvc, logger)
}

// NewWithCache builds the dependency set around an existing redis-backed cache.
func NewWithCache(ctx context.Context, cfg *config.AppConfig, cacheSvc *cache.CacheService, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if cacheSvc == nil {
		return nil, fmt.Errorf("nil cache")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return assemble(ctx, cfg, cacheSvc, logger)
}

func assemble(ctx context.Context, cfg *config.AppConfig, cacheSvc *cache.CacheService, logger *zap.Logger) (*Deps, error) {
	deps := &Deps{Cache: cacheSvc}
	deps.closers = append(deps.closers, cacheSvc.Close)

	repo, closeRepo, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Repo = repo
	if closeRepo != nil {
		deps.closers = append(deps.closers, closeRepo)
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("load messages: %w", err)
	}
	deps.Catalog = catalog
	deps.Formatter = chesspresenter.NewFormatter(catalog, logger)

	svcCfg := svcchess.Config{
		DefaultProfile: cfg.ChessDefaultProfile,
		SessionTTL:     cfg.SessionTTL(),
		HistoryLimit:   cfg.ChessHistoryLimit,
		TopFraction:    cfg.ChessTopFraction,
		ScoreMargin:    cfg.ChessScoreMargin,
	}
	service, err := svcchess.NewService(cacheSvc, repo, svcCfg, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	if cfg.ChessRandomSeed != 0 {
		service.SetRandomSeed(cfg.ChessRandomSeed)
	}
	deps.Service = service

	logger.Info("chess service ready",
		zap.String("store", cfg.StoreBackend),
		zap.String("default_profile", service.Config().DefaultProfile),
		zap.Duration("session_ttl", service.Config().SessionTTL),
	)
	return deps, nil
}

func openStore(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (svcchess.Repository, func() error, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		db, err := svcchess.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := ensureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("using postgres store")
		return svcchess.NewRepository(db), db.Close, nil
	case config.StoreBadger:
		repo, err := svcchess.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using badger store", zap.String("dir", cfg.BadgerDir))
		return repo, repo.Close, nil
	case config.StoreMemory, "":
		logger.Warn("using in-memory store; finished games are lost on restart")
		return svcchess.NewMemoryRepository(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := svcchess.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func parseRedisURL(raw string) (*cache.CacheConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("missing redis host")
	}
	portStr := u.Port()
	if portStr == "" {
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &cache.CacheConfig{Host: host, Port: port, Password: pass, DB: db}, nil
}
