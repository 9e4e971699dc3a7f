package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-chess-arena/internal/adapter/chesspresenter"
	svcchess "github.com/park285/Cheese-chess-arena/internal/service/chess"
	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

const socketWriteTimeout = 5 * time.Second

// SocketServer streams a game over a websocket. Player moves are applied at
// once; the engine reply follows after the opponent's thinking pause.
type SocketServer struct {
	svc            *svcchess.Service
	formatter      *chesspresenter.Formatter
	logger         *zap.Logger
	originPatterns []string
	// engineDelay overrides the per-profile pause when set.
	engineDelay func(profileID string) time.Duration
}

type SocketOption func(*SocketServer)

func WithOriginPatterns(patterns ...string) SocketOption {
	return func(s *SocketServer) { s.originPatterns = patterns }
}

func WithEngineDelay(fn func(profileID string) time.Duration) SocketOption {
	return func(s *SocketServer) { s.engineDelay = fn }
}

func NewSocketServer(service *svcchess.Service, formatter *chesspresenter.Formatter, logger *zap.Logger, opts ...SocketOption) *SocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SocketServer{svc: service, formatter: formatter, logger: logger}
	s.engineDelay = service.DelayFor
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/games/{id}", s.serveGame)
	return mux
}

func (s *SocketServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("websocket shutdown", zap.Error(err))
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *SocketServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("websocket listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ctx, ln)
}

func (s *SocketServer) serveGame(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.PathValue("id"))
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		OriginPatterns:  s.originPatterns,
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	var writeMu sync.Mutex
	presenter := chesspresenter.NewPresenter(s.formatter, func(ctx context.Context, ev chessdto.SocketEvent) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		wctx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
		defer cancel()
		return wsjson.Write(wctx, conn, ev)
	})

	state, err := s.svc.State(ctx, gameID)
	if err != nil {
		_ = presenter.Error(ctx, err)
		conn.Close(websocket.StatusPolicyViolation, "unknown game")
		return
	}
	if err := presenter.State(ctx, chesspresenter.ToDTOState(state)); err != nil {
		return
	}

	log := s.logger.With(zap.String("game_id", gameID))
	log.Debug("websocket attached")
	for {
		var cmd chessdto.SocketCommand
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				log.Debug("websocket closed by client")
			} else if ctx.Err() == nil {
				log.Debug("websocket read", zap.Error(err))
			}
			return
		}
		if err := s.dispatch(ctx, presenter, gameID, cmd); err != nil {
			log.Debug("websocket write", zap.Error(err))
			return
		}
	}
}

// dispatch returns an error only when the connection is no longer usable.
func (s *SocketServer) dispatch(ctx context.Context, p *chesspresenter.Presenter, gameID string, cmd chessdto.SocketCommand) error {
	switch strings.ToLower(strings.TrimSpace(cmd.Type)) {
	case "move":
		return s.playMove(ctx, p, gameID, cmd.Move)
	case "state":
		state, err := s.svc.State(ctx, gameID)
		if err != nil {
			return p.Error(ctx, err)
		}
		return p.State(ctx, chesspresenter.ToDTOState(state))
	case "undo":
		state, err := s.svc.Undo(ctx, gameID)
		if err != nil {
			return p.Error(ctx, err)
		}
		return p.State(ctx, chesspresenter.ToDTOState(state))
	case "resign":
		state, err := s.svc.Resign(ctx, gameID)
		if err != nil {
			return p.Error(ctx, err)
		}
		return p.State(ctx, chesspresenter.ToDTOState(state))
	case "hint":
		hint, err := s.svc.Hint(ctx, gameID)
		if err != nil {
			return p.Error(ctx, err)
		}
		return p.Hint(ctx, chesspresenter.ToDTOHint(hint))
	}
	return p.Error(ctx, chesspresenter.ErrInvalidRequest)
}

func (s *SocketServer) playMove(ctx context.Context, p *chesspresenter.Presenter, gameID, move string) error {
	if strings.TrimSpace(move) == "" {
		return p.Error(ctx, chesspresenter.ErrInvalidRequest)
	}
	summary, err := s.svc.PlayerMove(ctx, gameID, move)
	if err != nil {
		return p.Error(ctx, err)
	}
	if err := p.PlayerMove(ctx, chesspresenter.ToDTOMoveSummary(summary)); err != nil {
		return err
	}
	if summary.Finished {
		return nil
	}

	delay := s.engineDelay(summary.State.Profile.ID)
	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	reply, err := s.svc.EngineMove(ctx, gameID)
	if err != nil {
		// the player may have undone or resigned from another tab meanwhile
		if errors.Is(err, svcchess.ErrNotYourTurn) || errors.Is(err, svcchess.ErrGameFinished) {
			return nil
		}
		return p.Error(ctx, err)
	}
	return p.EngineMove(ctx, chesspresenter.ToDTOMoveSummary(reply))
}
