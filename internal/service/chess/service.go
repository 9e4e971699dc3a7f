package chess

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/corentings/chess/v2/opening"
	"github.com/google/uuid"
	"go.uber.org/zap"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
	"github.com/park285/Cheese-chess-arena/internal/chess/rules"
	"github.com/park285/Cheese-chess-arena/internal/domain"
	"github.com/park285/Cheese-chess-arena/internal/service/cache"
)

var (
	ErrGameNotFound      = errors.New("chess game not found")
	ErrRecordNotFound    = errors.New("chess record not found")
	ErrPlayerNotFound    = errors.New("chess player not found")
	ErrInvalidMove       = errors.New("invalid chess move")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrGameFinished      = errors.New("chess game already finished")
	ErrUndoNotAvailable  = errors.New("no moves available to undo")
	ErrConcurrentUpdate  = errors.New("chess game updated concurrently")
	ErrInvalidStart      = errors.New("invalid start position")
	ErrProfileNotFound   = corechess.ErrProfileNotFound
	ErrServiceNotReady   = errors.New("chess service not initialized")
	ErrEngineUnavailable = errors.New("chess engine has no move")
)

const (
	defaultPlayerRating = 1200
	kFactor             = 24
	profileCacheTTL     = 6 * time.Hour
	maxHistoryLimit     = 50
	hintProfileID       = "maestro"
	methodResignation   = "Resignation"
)

var ecoBook = sync.OnceValue(opening.NewBookECO)

type Config struct {
	DefaultProfile string
	SessionTTL     time.Duration
	HistoryLimit   int
	TopFraction    float64
	ScoreMargin    float64
}

type Service struct {
	cache   *cache.CacheService
	repo    Repository
	cfg     Config
	engines map[string]*corechess.Engine
	hint    *corechess.Engine
	locks   *keyedMutex
	randMu  sync.Mutex
	rand    *rand.Rand
	now     func() time.Time
	logger  *zap.Logger
}

type StartRequest struct {
	PlayerID string
	Profile  string
	// Color is "white", "black" or "random"; empty means white.
	Color string
	FEN   string
}

type MaterialScore struct {
	White int
	Black int
}

func (m MaterialScore) Diff() int {
	return m.White - m.Black
}

type GameState struct {
	GameID      string
	PlayerID    string
	Profile     corechess.Profile
	PlayerColor corechess.Color
	StartFEN    string
	Moves       []string
	MovesSAN    []string
	FEN         string
	Turn        corechess.Color
	InCheck     bool
	Legal       int
	Status      string
	Outcome     string
	Method      string
	ECOCode     string
	ECOTitle    string
	LastMove    string
	Material    MaterialScore
	RecordID    int64
	RatingDelta int
	StartedAt   time.Time
	UpdatedAt   time.Time
}

func (g *GameState) Finished() bool {
	return g != nil && g.Status == statusFinished
}

// PlayerToMove reports whether the next ply belongs to the human side.
func (g *GameState) PlayerToMove() bool {
	return g != nil && !g.Finished() && g.Turn == g.PlayerColor
}

type MoveSummary struct {
	State       *GameState
	PlayerSAN   string
	PlayerUCI   string
	EngineSAN   string
	EngineUCI   string
	EngineDelay time.Duration
	Fallback    bool
	Random      bool
	Candidates  int
	Finished    bool
	GameID      int64
	RatingDelta int
}

type Hint struct {
	MoveUCI string
	MoveSAN string
	Score   float64
}

func NewService(cacheSvc *cache.CacheService, repo Repository, cfg Config, logger *zap.Logger) (*Service, error) {
	if cacheSvc == nil {
		return nil, fmt.Errorf("cache service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = maxHistoryLimit
	}
	if cfg.TopFraction <= 0 || cfg.TopFraction > 1 {
		cfg.TopFraction = corechess.DefaultTopFraction
	}
	if cfg.ScoreMargin < 0 {
		cfg.ScoreMargin = corechess.DefaultScoreMargin
	}
	if strings.TrimSpace(cfg.DefaultProfile) == "" {
		cfg.DefaultProfile = corechess.DefaultProfileID
	}
	if _, err := corechess.GetProfile(cfg.DefaultProfile); err != nil {
		return nil, fmt.Errorf("default profile: %w", err)
	}

	engineLogger := logger.Named("engine")
	engines := make(map[string]*corechess.Engine)
	for _, p := range corechess.Profiles() {
		engines[p.ID] = corechess.NewEngine(p,
			corechess.WithLogger(engineLogger.With(zap.String("profile", p.ID))),
			corechess.WithTopFraction(cfg.TopFraction),
			corechess.WithScoreMargin(cfg.ScoreMargin),
		)
	}

	hintProfile := corechess.Lookup(hintProfileID)
	hintProfile.Behavior.Randomness = 0
	hint := corechess.NewEngine(hintProfile,
		corechess.WithLogger(engineLogger.With(zap.String("profile", "hint"))),
		corechess.WithTopFraction(0.01),
		corechess.WithScoreMargin(0),
	)

	return &Service{
		cache:   cacheSvc,
		repo:    repo,
		cfg:     cfg,
		engines: engines,
		hint:    hint,
		locks:   newKeyedMutex(),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
		logger:  logger,
	}, nil
}

// SetRandomSeed makes color draws and every engine reproducible.
func (s *Service) SetRandomSeed(seed int64) {
	s.randMu.Lock()
	s.rand = rand.New(rand.NewSource(seed))
	s.randMu.Unlock()
	for i, p := range corechess.Profiles() {
		s.engines[p.ID].SetRandomSeed(seed + int64(i) + 1)
	}
	s.hint.SetRandomSeed(seed)
}

func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) ensureReady() error {
	if s == nil || s.cache == nil || s.repo == nil {
		return ErrServiceNotReady
	}
	return nil
}

func (s *Service) engineFor(profileID string) *corechess.Engine {
	if e, ok := s.engines[profileID]; ok {
		return e
	}
	return s.engines[corechess.Lookup(profileID).ID]
}

func (s *Service) pickColor(raw string) (corechess.Color, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return corechess.White, nil
	case "random":
		s.randMu.Lock()
		n := s.rand.Intn(2)
		s.randMu.Unlock()
		if n == 0 {
			return corechess.White, nil
		}
		return corechess.Black, nil
	}
	c, err := corechess.ParseColor(raw)
	if err != nil {
		return corechess.White, fmt.Errorf("%w: %v", ErrInvalidStart, err)
	}
	return c, nil
}

func (s *Service) StartGame(ctx context.Context, req StartRequest) (*MoveSummary, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	profileID := strings.TrimSpace(req.Profile)
	if profileID == "" {
		profileID = s.cfg.DefaultProfile
	}
	profile, err := corechess.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	color, err := s.pickColor(req.Color)
	if err != nil {
		return nil, err
	}

	now := s.now()
	payload := &sessionPayload{
		GameID:      uuid.NewString(),
		PlayerID:    strings.TrimSpace(req.PlayerID),
		Profile:     profile.ID,
		PlayerColor: color.String(),
		StartFEN:    strings.TrimSpace(req.FEN),
		Moves:       []string{},
		MovesSAN:    []string{},
		Status:      statusActive,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	board, err := replaySession(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStart, err)
	}
	if board.Finished() || len(board.LegalMoves()) == 0 {
		return nil, fmt.Errorf("%w: position has no legal moves", ErrInvalidStart)
	}

	sess := &session{payload: payload, board: board}
	summary := &MoveSummary{}
	if board.SideToMove() != color {
		if err := s.applyEngine(ctx, sess, summary); err != nil {
			return nil, err
		}
	}
	if err := s.saveSession(ctx, payload); err != nil {
		return nil, err
	}

	s.logger.Info("chess game started",
		zap.String("game_id", payload.GameID),
		zap.String("profile", profile.ID),
		zap.String("player_color", color.Name()),
		zap.Bool("custom_start", payload.StartFEN != ""),
	)
	return s.finishSummary(sess, summary), nil
}

// Play applies the player's move and, when the game continues, the engine
// reply, as one update.
func (s *Service) Play(ctx context.Context, gameID, moveInput string) (*MoveSummary, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	summary := &MoveSummary{}
	sess, err := s.mutate(ctx, gameID, func(sess *session) error {
		if err := s.applyPlayer(ctx, sess, moveInput, summary); err != nil {
			return err
		}
		if sess.payload.finished() {
			return nil
		}
		return s.applyEngine(ctx, sess, summary)
	})
	if err != nil {
		return nil, err
	}
	return s.finishSummary(sess, summary), nil
}

// PlayerMove applies only the player's move. The caller schedules EngineMove.
func (s *Service) PlayerMove(ctx context.Context, gameID, moveInput string) (*MoveSummary, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	summary := &MoveSummary{}
	sess, err := s.mutate(ctx, gameID, func(sess *session) error {
		return s.applyPlayer(ctx, sess, moveInput, summary)
	})
	if err != nil {
		return nil, err
	}
	return s.finishSummary(sess, summary), nil
}

func (s *Service) EngineMove(ctx context.Context, gameID string) (*MoveSummary, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	summary := &MoveSummary{}
	sess, err := s.mutate(ctx, gameID, func(sess *session) error {
		if sess.payload.finished() {
			return ErrGameFinished
		}
		if sess.board.SideToMove() == sess.payload.playerColor() {
			return ErrNotYourTurn
		}
		return s.applyEngine(ctx, sess, summary)
	})
	if err != nil {
		return nil, err
	}
	return s.finishSummary(sess, summary), nil
}

func (s *Service) applyPlayer(ctx context.Context, sess *session, moveInput string, summary *MoveSummary) error {
	p, b := sess.payload, sess.board
	if p.finished() {
		return ErrGameFinished
	}
	if b.SideToMove() != p.playerColor() {
		return ErrNotYourTurn
	}
	text := strings.TrimSpace(moveInput)
	if text == "" {
		return ErrInvalidMove
	}
	mv, err := b.Play(text)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMove, text)
	}
	summary.PlayerUCI = mv.UCI()
	summary.PlayerSAN = mv.Notation
	p.Moves = append(p.Moves, mv.UCI())
	p.MovesSAN = append(p.MovesSAN, mv.Notation)

	s.logger.Debug("chess player move",
		zap.String("game_id", p.GameID),
		zap.String("move_uci", mv.UCI()),
		zap.String("move_san", mv.Notation),
		zap.Int("ply", b.Ply()),
	)
	if b.Finished() {
		return s.finishGame(ctx, sess, summary)
	}
	return nil
}

func (s *Service) applyEngine(ctx context.Context, sess *session, summary *MoveSummary) error {
	p, b := sess.payload, sess.board
	eng := s.engineFor(p.Profile)
	color := b.SideToMove()
	sel := eng.SelectMoveDetailed(b, color)
	if !sel.OK {
		if b.Finished() {
			return s.finishGame(ctx, sess, summary)
		}
		s.logger.Error("chess engine found no move",
			zap.String("game_id", p.GameID),
			zap.String("fen", b.FEN()),
		)
		return ErrEngineUnavailable
	}

	mv, err := b.PlayUCI(sel.Move.UCI())
	if err != nil {
		return fmt.Errorf("apply engine move: %w", err)
	}
	p.Moves = append(p.Moves, mv.UCI())
	p.MovesSAN = append(p.MovesSAN, mv.Notation)
	if sel.Fallback {
		p.EngineFallbacks++
	}
	if sel.Random {
		p.RandomMoves++
	}

	summary.EngineUCI = mv.UCI()
	summary.EngineSAN = mv.Notation
	summary.EngineDelay = eng.MoveDelay()
	summary.Fallback = sel.Fallback
	summary.Random = sel.Random
	summary.Candidates = sel.Candidates

	s.logOpeningLabel(sess, mv, sel)
	if b.Finished() {
		return s.finishGame(ctx, sess, summary)
	}
	return nil
}

func (s *Service) logOpeningLabel(sess *session, mv corechess.Move, sel corechess.Selection) {
	code, title := ecoFor(sess)
	s.logger.Info("chess engine move",
		zap.String("game_id", sess.payload.GameID),
		zap.String("profile", sess.payload.Profile),
		zap.String("move_uci", mv.UCI()),
		zap.String("move_san", mv.Notation),
		zap.Float64("score", sel.Move.Score),
		zap.Bool("random", sel.Random),
		zap.Bool("fallback", sel.Fallback),
		zap.Int("candidates", sel.Candidates),
		zap.String("eco_code", code),
		zap.String("eco_title", title),
		zap.Int("ply", sess.board.Ply()),
	)
}

func ecoFor(sess *session) (string, string) {
	if sess == nil {
		return "", ""
	}
	return ecoLabel(sess.payload.StartFEN, sess.board)
}

// ecoLabel names the opening of games that began from the standard position.
func ecoLabel(startFEN string, board *rules.Board) (string, string) {
	if startFEN != "" || board == nil {
		return "", ""
	}
	book := ecoBook()
	if book == nil {
		return "", ""
	}
	if eco := book.Find(board.Game().Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}

func (s *Service) finishGame(ctx context.Context, sess *session, summary *MoveSummary) error {
	p, b := sess.payload, sess.board
	p.Status = statusFinished
	p.Outcome = b.Outcome()
	p.Method = b.Method()
	summary.Finished = true

	recordID, delta, err := s.persistFinishedGame(ctx, sess)
	if err != nil {
		return err
	}
	p.RecordID = recordID
	p.RatingDelta = delta
	summary.GameID = recordID
	summary.RatingDelta = delta

	s.logger.Info("chess game finished",
		zap.String("game_id", p.GameID),
		zap.String("profile", p.Profile),
		zap.String("outcome", p.Outcome),
		zap.String("method", p.Method),
		zap.Int64("record_id", recordID),
		zap.Int("rating_delta", delta),
	)
	return nil
}

func (s *Service) Resign(ctx context.Context, gameID string) (*GameState, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	sess, err := s.mutate(ctx, gameID, func(sess *session) error {
		if sess.payload.finished() {
			return ErrGameFinished
		}
		sess.board.Resign(sess.payload.playerColor())
		return s.finishGame(ctx, sess, &MoveSummary{})
	})
	if err != nil {
		return nil, err
	}
	return s.stateOf(sess), nil
}

// Undo takes back the player's most recent move together with any engine
// replies that followed it.
func (s *Service) Undo(ctx context.Context, gameID string) (*GameState, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	sess, err := s.mutate(ctx, gameID, func(sess *session) error {
		p := sess.payload
		if p.finished() {
			return ErrGameFinished
		}
		start, err := replaySession(&sessionPayload{StartFEN: p.StartFEN})
		if err != nil {
			return err
		}
		first := start.SideToMove()
		player := p.playerColor()
		cut := -1
		for i := len(p.Moves) - 1; i >= 0; i-- {
			mover := first
			if i%2 == 1 {
				mover = first.Other()
			}
			if mover == player {
				cut = i
				break
			}
		}
		if cut < 0 {
			return ErrUndoNotAvailable
		}
		p.Moves = append([]string(nil), p.Moves[:cut]...)
		p.MovesSAN = append([]string(nil), p.MovesSAN[:cut]...)
		board, err := replaySession(p)
		if err != nil {
			return err
		}
		sess.board = board
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("chess undo",
		zap.String("game_id", sess.payload.GameID),
		zap.Int("ply", sess.board.Ply()),
	)
	return s.stateOf(sess), nil
}

func (s *Service) State(ctx context.Context, gameID string) (*GameState, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	sess, err := s.loadSession(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.stateOf(sess), nil
}

// Hint asks the strongest profile, without randomness, for the player's move.
// The session is not modified.
func (s *Service) Hint(ctx context.Context, gameID string) (*Hint, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	sess, err := s.loadSession(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if sess.payload.finished() {
		return nil, ErrGameFinished
	}
	player := sess.payload.playerColor()
	if sess.board.SideToMove() != player {
		return nil, ErrNotYourTurn
	}
	sel := s.hint.SelectMoveDetailed(sess.board, player)
	if !sel.OK {
		return nil, ErrEngineUnavailable
	}
	return &Hint{MoveUCI: sel.Move.UCI(), MoveSAN: sel.Move.Notation, Score: sel.Move.Score}, nil
}

// DelayFor samples a thinking pause for profileID.
func (s *Service) DelayFor(profileID string) time.Duration {
	return s.engineFor(profileID).MoveDelay()
}

func (s *Service) History(ctx context.Context, playerID string, limit int) ([]*domain.ChessGame, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	return s.repo.GetRecentGames(ctx, strings.TrimSpace(playerID), limit)
}

func (s *Service) Record(ctx context.Context, playerID string, id int64) (*domain.ChessGame, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	game, err := s.repo.GetGame(ctx, id, strings.TrimSpace(playerID))
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrRecordNotFound
	}
	return game, nil
}

func (s *Service) Player(ctx context.Context, playerID string) (*domain.PlayerProfile, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	return s.fetchPlayer(ctx, strings.TrimSpace(playerID), true)
}

func (s *Service) stateOf(sess *session) *GameState {
	p, b := sess.payload, sess.board
	white, black := b.Material()
	state := &GameState{
		GameID:      p.GameID,
		PlayerID:    p.PlayerID,
		Profile:     corechess.Lookup(p.Profile),
		PlayerColor: p.playerColor(),
		StartFEN:    p.StartFEN,
		Moves:       append([]string(nil), p.Moves...),
		MovesSAN:    append([]string(nil), p.MovesSAN...),
		FEN:         b.FEN(),
		Turn:        b.SideToMove(),
		InCheck:     b.InCheck(),
		Status:      p.Status,
		Outcome:     p.Outcome,
		Method:      p.Method,
		Material:    MaterialScore{White: white, Black: black},
		RecordID:    p.RecordID,
		RatingDelta: p.RatingDelta,
		StartedAt:   p.StartedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if !p.finished() {
		state.Legal = len(b.LegalMoves())
	}
	if n := len(p.Moves); n > 0 {
		state.LastMove = p.Moves[n-1]
	}
	state.ECOCode, state.ECOTitle = ecoFor(sess)
	return state
}

func (s *Service) finishSummary(sess *session, summary *MoveSummary) *MoveSummary {
	summary.State = s.stateOf(sess)
	summary.Finished = summary.State.Finished()
	return summary
}

func (s *Service) persistFinishedGame(ctx context.Context, sess *session) (int64, int, error) {
	p := sess.payload
	now := s.now()
	player := p.playerColor()
	profile := corechess.Lookup(p.Profile)
	code, title := ecoFor(sess)

	white, black := "Player", profile.Name
	if player == corechess.Black {
		white, black = profile.Name, "Player"
	}
	record := &domain.ChessGame{
		GameUUID:     p.GameID,
		PlayerID:     p.PlayerID,
		Profile:      p.Profile,
		PlayerColor:  player.Name(),
		Result:       playerResult(p.Outcome, player),
		Outcome:      p.Outcome,
		ResultMethod: strings.ToLower(p.Method),
		MovesUCI:     append([]string(nil), p.Moves...),
		MovesSAN:     append([]string(nil), p.MovesSAN...),
		PGN: buildPGN(pgnHeaders{
			White:       white,
			Black:       black,
			Date:        p.StartedAt,
			Result:      p.Outcome,
			Termination: p.Method,
			FEN:         p.StartFEN,
			ECO:         code,
			Opening:     title,
		}, p.MovesSAN),
		ECOCode:         code,
		ECOTitle:        title,
		StartedAt:       p.StartedAt,
		EndedAt:         now,
		Duration:        now.Sub(p.StartedAt),
		EngineFallbacks: p.EngineFallbacks,
		RandomMoves:     p.RandomMoves,
	}

	id, err := s.repo.InsertGame(ctx, record)
	if errors.Is(err, ErrDuplicateGame) {
		existing, fetchErr := s.repo.GetGameByUUID(ctx, p.GameID)
		if fetchErr != nil || existing == nil {
			return 0, 0, err
		}
		return existing.ID, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	if p.PlayerID == "" {
		return id, 0, nil
	}
	stored, err := s.fetchPlayer(ctx, p.PlayerID, false)
	if err != nil && !errors.Is(err, ErrPlayerNotFound) {
		return id, 0, err
	}
	updated, delta := applyGameResult(stored, p.PlayerID, p.Profile, record.Result, now)
	if err := s.repo.UpsertProfile(ctx, updated); err != nil {
		return id, 0, err
	}
	s.cachePlayer(ctx, updated)
	return id, delta, nil
}

func playerCacheKey(playerID string) string {
	return "arena:player:" + playerID
}

func (s *Service) fetchPlayer(ctx context.Context, playerID string, allowCache bool) (*domain.PlayerProfile, error) {
	if playerID == "" {
		return nil, ErrPlayerNotFound
	}
	if allowCache {
		cached := &domain.PlayerProfile{}
		if err := s.cache.Get(ctx, playerCacheKey(playerID), cached); err != nil {
			s.logger.Warn("failed to read cached chess player", zap.Error(err))
		} else if cached.PlayerID != "" {
			return cached, nil
		}
	}
	stored, err := s.repo.GetProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrPlayerNotFound
	}
	s.cachePlayer(ctx, stored)
	return stored, nil
}

func (s *Service) cachePlayer(ctx context.Context, profile *domain.PlayerProfile) {
	if profile == nil {
		return
	}
	if err := s.cache.Set(ctx, playerCacheKey(profile.PlayerID), profile, profileCacheTTL); err != nil {
		s.logger.Warn("failed to cache chess player", zap.Error(err))
	}
}

func applyGameResult(profile *domain.PlayerProfile, playerID, profileID, result string, endedAt time.Time) (*domain.PlayerProfile, int) {
	if profile == nil {
		profile = &domain.PlayerProfile{
			PlayerID:  playerID,
			Rating:    defaultPlayerRating,
			CreatedAt: endedAt,
		}
	}
	prevRating := profile.Rating

	profile.GamesPlayed++
	profile.LastProfile = profileID
	profile.LastPlayedAt = endedAt
	profile.UpdatedAt = endedAt

	var score float64
	switch result {
	case "win":
		profile.Wins++
		score = 1.0
	case "loss":
		profile.Losses++
		score = 0.0
	default:
		result = "draw"
		profile.Draws++
		score = 0.5
	}

	if profile.StreakType == result {
		profile.Streak++
	} else {
		profile.Streak = 1
		profile.StreakType = result
	}

	engineRating := profileApproxRating(profileID)
	expected := 1 / (1 + math.Pow(10, float64(engineRating-profile.Rating)/400))
	newRating := float64(profile.Rating) + kFactor*(score-expected)
	profile.Rating = int(math.Round(newRating))

	return profile, profile.Rating - prevRating
}

func profileApproxRating(profileID string) int {
	switch strings.ToLower(strings.TrimSpace(profileID)) {
	case "iniciado":
		return 600
	case "acolito":
		return 800
	case "warrior":
		return 1000
	case "lord":
		return 1300
	case "darth":
		return 1600
	case "maestro":
		return 1900
	default:
		return 1200
	}
}
