package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-arena/internal/adapter/chesspresenter"
	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
	svcchess "github.com/park285/Cheese-chess-arena/internal/service/chess"
	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

// PlayerHeader identifies the caller. Anonymous requests may play but
// have no history.
const PlayerHeader = "X-Player-ID"

const maxBodySize = 16 << 10

type Server struct {
	svc       *svcchess.Service
	formatter *chesspresenter.Formatter
	logger    *zap.Logger
	http      *fasthttp.Server
}

func NewServer(service *svcchess.Service, formatter *chesspresenter.Formatter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: service, formatter: formatter, logger: logger}
	s.http = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "cheese-arena",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: maxBodySize,
	}
	return s
}

// Serve blocks until ctx is cancelled or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(ln) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.ShutdownWithContext(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}
	return <-errCh
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("http api listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ctx, ln)
}

// Handler routes the REST surface.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		s.route(ctx)
		s.logger.Debug("http request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	method := string(ctx.Method())
	parts := splitPath(string(ctx.Path()))

	switch {
	case len(parts) == 1 && parts[0] == "healthz":
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		return
	case len(parts) < 2 || parts[0] != "api":
		s.notFound(ctx)
		return
	}

	switch parts[1] {
	case "profiles":
		if method != fasthttp.MethodGet {
			s.methodNotAllowed(ctx)
			return
		}
		if len(parts) == 2 {
			s.handleProfiles(ctx)
			return
		}
		if len(parts) == 3 {
			s.handleProfile(ctx, parts[2])
			return
		}
	case "games":
		s.routeGames(ctx, method, parts[2:])
		return
	case "history":
		if method != fasthttp.MethodGet {
			s.methodNotAllowed(ctx)
			return
		}
		if len(parts) == 2 {
			s.handleHistory(ctx)
			return
		}
		if len(parts) == 3 {
			s.handleRecord(ctx, parts[2])
			return
		}
	case "player":
		if len(parts) == 2 && method == fasthttp.MethodGet {
			s.handlePlayer(ctx)
			return
		}
	}
	s.notFound(ctx)
}

func (s *Server) routeGames(ctx *fasthttp.RequestCtx, method string, rest []string) {
	switch len(rest) {
	case 0:
		if method == fasthttp.MethodPost {
			s.handleStart(ctx)
			return
		}
		s.methodNotAllowed(ctx)
		return
	case 1:
		if method == fasthttp.MethodGet {
			s.handleState(ctx, rest[0])
			return
		}
		s.methodNotAllowed(ctx)
		return
	case 2:
		id, action := rest[0], rest[1]
		want := fasthttp.MethodPost
		if action == "hint" {
			want = fasthttp.MethodGet
		}
		if method != want {
			s.methodNotAllowed(ctx)
			return
		}
		switch action {
		case "moves":
			s.handleMove(ctx, id)
		case "engine-move":
			s.handleEngineMove(ctx, id)
		case "undo":
			s.handleUndo(ctx, id)
		case "resign":
			s.handleResign(ctx, id)
		case "hint":
			s.handleHint(ctx, id)
		default:
			s.notFound(ctx)
		}
		return
	}
	s.notFound(ctx)
}

func (s *Server) handleProfiles(ctx *fasthttp.RequestCtx) {
	list := chesspresenter.ToDTOProfiles(corechess.Profiles())
	writeJSON(ctx, fasthttp.StatusOK, chessdto.ProfilesResponse{Profiles: list, Message: s.formatter.Profiles(list)})
}

func (s *Server) handleProfile(ctx *fasthttp.RequestCtx, id string) {
	p, err := corechess.GetProfile(id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOProfile(p))
}

func (s *Server) handleStart(ctx *fasthttp.RequestCtx) {
	var req chessdto.StartGameRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			s.writeError(ctx, chesspresenter.ErrInvalidRequest)
			return
		}
	}
	summary, err := s.svc.StartGame(ctx, svcchess.StartRequest{
		PlayerID: playerID(ctx),
		Profile:  req.Profile,
		Color:    req.Color,
		FEN:      req.FEN,
	})
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto := chesspresenter.ToDTOMoveSummary(summary)
	dto.Message = s.formatter.Start(dto)
	writeJSON(ctx, fasthttp.StatusCreated, dto)
}

func (s *Server) handleState(ctx *fasthttp.RequestCtx, id string) {
	state, err := s.svc.State(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOState(state))
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.MoveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || strings.TrimSpace(req.Move) == "" {
		s.writeError(ctx, chesspresenter.ErrInvalidRequest)
		return
	}
	summary, err := s.svc.Play(ctx, id, req.Move)
	s.writeSummary(ctx, summary, err)
}

func (s *Server) handleEngineMove(ctx *fasthttp.RequestCtx, id string) {
	summary, err := s.svc.EngineMove(ctx, id)
	s.writeSummary(ctx, summary, err)
}

func (s *Server) writeSummary(ctx *fasthttp.RequestCtx, summary *svcchess.MoveSummary, err error) {
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto := chesspresenter.ToDTOMoveSummary(summary)
	dto.Message = s.formatter.Move(dto)
	writeJSON(ctx, fasthttp.StatusOK, dto)
}

func (s *Server) handleUndo(ctx *fasthttp.RequestCtx, id string) {
	state, err := s.svc.Undo(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto := chesspresenter.ToDTOState(state)
	writeJSON(ctx, fasthttp.StatusOK, chessdto.StateResponse{State: dto, Message: s.formatter.Undo(dto)})
}

func (s *Server) handleResign(ctx *fasthttp.RequestCtx, id string) {
	state, err := s.svc.Resign(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto := chesspresenter.ToDTOState(state)
	writeJSON(ctx, fasthttp.StatusOK, chessdto.StateResponse{State: dto, Message: s.formatter.Finished(dto)})
}

func (s *Server) handleHint(ctx *fasthttp.RequestCtx, id string) {
	hint, err := s.svc.Hint(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto := chesspresenter.ToDTOHint(hint)
	dto.Message = s.formatter.Hint(dto)
	writeJSON(ctx, fasthttp.StatusOK, dto)
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx) {
	pid := playerID(ctx)
	if pid == "" {
		s.writeError(ctx, svcchess.ErrPlayerNotFound)
		return
	}
	limit := 0
	if raw := ctx.QueryArgs().Peek("limit"); len(raw) > 0 {
		n, err := strconv.Atoi(string(raw))
		if err != nil || n < 0 {
			s.writeError(ctx, chesspresenter.ErrInvalidRequest)
			return
		}
		limit = n
	}
	games, err := s.svc.History(ctx, pid, limit)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	list := chesspresenter.ToDTOGames(games)
	for _, g := range list {
		g.Message = s.formatter.Game(g)
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.HistoryResponse{Games: list, Message: s.formatter.History(list)})
}

func (s *Server) handleRecord(ctx *fasthttp.RequestCtx, raw string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(ctx, chesspresenter.ErrInvalidRequest)
		return
	}
	game, err := s.svc.Record(ctx, playerID(ctx), id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto := chesspresenter.ToDTOGame(game)
	dto.Message = s.formatter.Game(dto)
	writeJSON(ctx, fasthttp.StatusOK, dto)
}

func (s *Server) handlePlayer(ctx *fasthttp.RequestCtx) {
	pid := playerID(ctx)
	if pid == "" {
		s.writeError(ctx, svcchess.ErrPlayerNotFound)
		return
	}
	profile, err := s.svc.Player(ctx, pid)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	dto := chesspresenter.ToDTOPlayer(profile)
	dto.Message = s.formatter.Player(dto)
	writeJSON(ctx, fasthttp.StatusOK, dto)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error) {
	de := s.formatter.Error(err)
	status := StatusFor(de.Code)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("request failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
	}
	writeJSON(ctx, status, chessdto.ErrorResponse{Error: de})
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusNotFound, chessdto.ErrorResponse{
		Error: chessdto.DomainError{Code: "route_not_found", Message: "no such route"},
	})
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusMethodNotAllowed, chessdto.ErrorResponse{
		Error: chessdto.DomainError{Code: "method_not_allowed", Message: "method not allowed"},
	})
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case chesspresenter.CodeGameNotFound, chesspresenter.CodeRecordNotFound,
		chesspresenter.CodePlayerNotFound, chesspresenter.CodeProfileNotFound:
		return fasthttp.StatusNotFound
	case chesspresenter.CodeInvalidMove, chesspresenter.CodeInvalidStart:
		return fasthttp.StatusUnprocessableEntity
	case chesspresenter.CodeNotYourTurn, chesspresenter.CodeGameFinished,
		chesspresenter.CodeUndoNotAvailable, chesspresenter.CodeConcurrentUpdate:
		return fasthttp.StatusConflict
	case chesspresenter.CodeInvalidRequest:
		return fasthttp.StatusBadRequest
	}
	return fasthttp.StatusInternalServerError
}

func playerID(ctx *fasthttp.RequestCtx) string {
	return strings.TrimSpace(string(ctx.Request.Header.Peek(PlayerHeader)))
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(`{"error":{"code":"internal","message":"encode failed"}}`, fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
