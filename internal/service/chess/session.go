package chess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	corechess "github.com/park285/Cheese-chess-arena/internal/chess"
	"github.com/park285/Cheese-chess-arena/internal/chess/rules"
	"github.com/park285/Cheese-chess-arena/internal/service/cache"
)

const (
	statusActive   = "active"
	statusFinished = "finished"
)

type sessionPayload struct {
	GameID          string    `json:"game_id"`
	PlayerID        string    `json:"player_id,omitempty"`
	Profile         string    `json:"profile"`
	PlayerColor     string    `json:"player_color"`
	StartFEN        string    `json:"start_fen,omitempty"`
	Moves           []string  `json:"moves"`
	MovesSAN        []string  `json:"moves_san"`
	Status          string    `json:"status"`
	Outcome         string    `json:"outcome,omitempty"`
	Method          string    `json:"method,omitempty"`
	RecordID        int64     `json:"record_id,omitempty"`
	RatingDelta     int       `json:"rating_delta,omitempty"`
	EngineFallbacks int       `json:"engine_fallbacks,omitempty"`
	RandomMoves     int       `json:"random_moves,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *sessionPayload) playerColor() corechess.Color {
	c, err := corechess.ParseColor(p.PlayerColor)
	if err != nil {
		return corechess.White
	}
	return c
}

func (p *sessionPayload) finished() bool {
	return p.Status == statusFinished
}

// session is a payload together with the board replayed from it.
type session struct {
	payload *sessionPayload
	board   *rules.Board
}

func replaySession(payload *sessionPayload) (*rules.Board, error) {
	var (
		board *rules.Board
		err   error
	)
	if strings.TrimSpace(payload.StartFEN) != "" {
		board, err = rules.FromFEN(payload.StartFEN)
		if err != nil {
			return nil, err
		}
	} else {
		board = rules.New()
	}
	for _, mv := range payload.Moves {
		if _, err := board.PlayUCI(mv); err != nil {
			return nil, fmt.Errorf("replay move %s: %w", mv, err)
		}
	}
	// a resignation is not part of the move list
	if payload.finished() && !board.Finished() && payload.Method == methodResignation {
		board.Resign(payload.playerColor())
	}
	return board, nil
}

func sessionKey(gameID string) string {
	return "arena:game:" + strings.ToLower(strings.TrimSpace(gameID))
}

func (s *Service) loadSession(ctx context.Context, gameID string) (*session, error) {
	payload := &sessionPayload{}
	if err := s.cache.Get(ctx, sessionKey(gameID), payload); err != nil {
		return nil, err
	}
	if payload.GameID == "" {
		return nil, ErrGameNotFound
	}
	board, err := replaySession(payload)
	if err != nil {
		return nil, err
	}
	return &session{payload: payload, board: board}, nil
}

func (s *Service) saveSession(ctx context.Context, payload *sessionPayload) error {
	if payload == nil {
		return fmt.Errorf("cannot save nil chess session payload")
	}
	payload.UpdatedAt = s.now()
	return s.cache.Set(ctx, sessionKey(payload.GameID), payload, s.cfg.SessionTTL)
}

// mutate serialises writers of one game: in process through the keyed mutex
// and across instances through WATCH on the session key.
func (s *Service) mutate(ctx context.Context, gameID string, fn func(*session) error) (*session, error) {
	unlock := s.locks.Lock(sessionKey(gameID))
	defer unlock()

	var out *session
	err := s.cache.Update(ctx, sessionKey(gameID), s.cfg.SessionTTL, func(raw []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, ErrGameNotFound
		}
		payload := &sessionPayload{}
		if err := json.Unmarshal(raw, payload); err != nil {
			return nil, fmt.Errorf("decode chess session: %w", err)
		}
		board, err := replaySession(payload)
		if err != nil {
			return nil, err
		}
		sess := &session{payload: payload, board: board}
		if err := fn(sess); err != nil {
			return nil, err
		}
		payload.UpdatedAt = s.now()
		next, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode chess session: %w", err)
		}
		out = sess
		return next, nil
	})
	if errors.Is(err, cache.ErrConflict) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns its release func. Entries are
// dropped once nobody holds or waits on them.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
