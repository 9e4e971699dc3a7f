package chess

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/park285/Cheese-chess-arena/internal/domain"
)

// memrepo keeps everything in process. Used when no store is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	gamesByID     map[int64]*domain.ChessGame
	gamesByPlayer map[string][]*domain.ChessGame
	gamesByUUID   map[string]*domain.ChessGame

	profiles map[string]*domain.PlayerProfile
}

func NewMemoryRepository() Repository {
	return &memrepo{
		gamesByID:     make(map[int64]*domain.ChessGame),
		gamesByPlayer: make(map[string][]*domain.ChessGame),
		gamesByUUID:   make(map[string]*domain.ChessGame),
		profiles:      make(map[string]*domain.PlayerProfile),
	}
}

func (m *memrepo) InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error) {
	if game == nil {
		return 0, ErrDuplicateGame
	}
	key := strings.TrimSpace(game.GameUUID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.gamesByUUID[key]; exists {
		return 0, ErrDuplicateGame
	}

	m.nextID++
	id := m.nextID
	stored := cloneGame(game)
	stored.ID = id

	m.gamesByID[id] = stored
	m.gamesByUUID[key] = stored
	m.gamesByPlayer[game.PlayerID] = append(m.gamesByPlayer[game.PlayerID], stored)
	return id, nil
}

func (m *memrepo) GetRecentGames(ctx context.Context, playerID string, limit int) ([]*domain.ChessGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.gamesByPlayer[playerID]
	if len(list) == 0 {
		return []*domain.ChessGame{}, nil
	}
	items := make([]*domain.ChessGame, 0, len(list))
	for _, g := range list {
		items = append(items, cloneGame(g))
	}
	sortRecent(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GetGame(ctx context.Context, id int64, playerID string) (*domain.ChessGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gamesByID[id]
	if !ok || g.PlayerID != playerID {
		return nil, nil
	}
	return cloneGame(g), nil
}

func (m *memrepo) GetGameByUUID(ctx context.Context, gameUUID string) (*domain.ChessGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.gamesByUUID[strings.TrimSpace(gameUUID)]; ok {
		return cloneGame(g), nil
	}
	return nil, nil
}

func (m *memrepo) GetProfile(ctx context.Context, playerID string) (*domain.PlayerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[strings.TrimSpace(playerID)]; ok {
		dup := *p
		return &dup, nil
	}
	return nil, nil
}

func (m *memrepo) UpsertProfile(ctx context.Context, profile *domain.PlayerProfile) error {
	if profile == nil {
		return nil
	}
	dup := *profile
	m.mu.Lock()
	m.profiles[strings.TrimSpace(profile.PlayerID)] = &dup
	m.mu.Unlock()
	return nil
}

func cloneGame(g *domain.ChessGame) *domain.ChessGame {
	dup := *g
	dup.MovesUCI = append([]string(nil), g.MovesUCI...)
	dup.MovesSAN = append([]string(nil), g.MovesSAN...)
	return &dup
}

// sortRecent orders by EndedAt desc, then ID desc.
func sortRecent(items []*domain.ChessGame) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
}
