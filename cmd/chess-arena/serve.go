package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-arena/internal/chessbuilder"
	appcfg "github.com/park285/Cheese-chess-arena/internal/config"
	"github.com/park285/Cheese-chess-arena/internal/httpapi"
	"github.com/park285/Cheese-chess-arena/internal/obslog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API and the websocket play server",
	RunE:  runServe,
}

var serveOrigins []string

func init() {
	serveCmd.Flags().StringSliceVar(&serveOrigins, "ws-origin", nil, "extra allowed websocket origins (host patterns)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := chessbuilder.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("chess init error: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("close dependencies", zap.Error(err))
		}
	}()

	api := httpapi.NewServer(deps.Service, deps.Formatter, logger.Named("http"))
	sockets := httpapi.NewSocketServer(deps.Service, deps.Formatter, logger.Named("ws"),
		httpapi.WithOriginPatterns(serveOrigins...))

	errCh := make(chan error, 2)
	go func() { errCh <- api.ListenAndServe(ctx, cfg.HTTPAddr) }()
	go func() { errCh <- sockets.ListenAndServe(ctx, cfg.WSAddr) }()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			stop()
		}
	}
	logger.Info("arena stopped")
	return firstErr
}
