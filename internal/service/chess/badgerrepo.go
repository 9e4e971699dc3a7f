package chess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/park285/Cheese-chess-arena/internal/domain"
)

const (
	badgerSeqKey        = "seq:game"
	badgerGamePrefix    = "game:id:"
	badgerUUIDPrefix    = "game:uuid:"
	badgerPlayerPrefix  = "player:"
	badgerProfilePrefix = "profile:"
)

// BadgerRepository stores finished games in an embedded badger database.
// Recent games are indexed per player under a key that sorts by end time.
type BadgerRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func OpenBadger(dir string) (*BadgerRepository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("BADGER_DIR is required")
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	seq, err := db.GetSequence([]byte(badgerSeqKey), 64)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("badger sequence: %w", err)
	}
	return &BadgerRepository{db: db, seq: seq}, nil
}

func (b *BadgerRepository) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	if b.seq != nil {
		_ = b.seq.Release()
	}
	return b.db.Close()
}

func gameKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", badgerGamePrefix, id))
}

func uuidKey(gameUUID string) []byte {
	return []byte(badgerUUIDPrefix + strings.TrimSpace(gameUUID))
}

func playerPrefix(playerID string) []byte {
	return []byte(badgerPlayerPrefix + playerID + ":")
}

func playerIndexKey(game *domain.ChessGame) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%020d", badgerPlayerPrefix, game.PlayerID, game.EndedAt.UnixNano(), game.ID))
}

func (b *BadgerRepository) InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error) {
	if game == nil {
		return 0, fmt.Errorf("nil chess game payload")
	}

	next, err := b.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next game id: %w", err)
	}
	stored := cloneGame(game)
	// badger sequences start at zero
	stored.ID = int64(next) + 1

	data, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("marshal chess game: %w", err)
	}
	idRaw := []byte(fmt.Sprintf("%d", stored.ID))

	err = b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(uuidKey(game.GameUUID)); err == nil {
			return ErrDuplicateGame
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(gameKey(stored.ID), data); err != nil {
			return err
		}
		if err := txn.Set(uuidKey(game.GameUUID), idRaw); err != nil {
			return err
		}
		return txn.Set(playerIndexKey(stored), idRaw)
	})
	if errors.Is(err, ErrDuplicateGame) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert chess game: %w", err)
	}
	return stored.ID, nil
}

func loadGame(txn *badger.Txn, key []byte) (*domain.ChessGame, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	var game domain.ChessGame
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &game)
	}); err != nil {
		return nil, err
	}
	return &game, nil
}

func loadID(txn *badger.Txn, key []byte) (int64, error) {
	item, err := txn.Get(key)
	if err != nil {
		return 0, err
	}
	var id int64
	err = item.Value(func(val []byte) error {
		_, scanErr := fmt.Sscanf(string(val), "%d", &id)
		return scanErr
	})
	return id, err
}

func (b *BadgerRepository) GetRecentGames(ctx context.Context, playerID string, limit int) ([]*domain.ChessGame, error) {
	if limit <= 0 {
		limit = 10
	}
	games := make([]*domain.ChessGame, 0, limit)
	prefix := playerPrefix(playerID)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte(nil), prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(games) < limit; it.Next() {
			var id int64
			if err := it.Item().Value(func(val []byte) error {
				_, scanErr := fmt.Sscanf(string(val), "%d", &id)
				return scanErr
			}); err != nil {
				return err
			}
			game, err := loadGame(txn, gameKey(id))
			if err != nil {
				return err
			}
			games = append(games, game)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select chess games: %w", err)
	}
	return games, nil
}

func (b *BadgerRepository) GetGame(ctx context.Context, id int64, playerID string) (*domain.ChessGame, error) {
	var game *domain.ChessGame
	err := b.db.View(func(txn *badger.Txn) error {
		g, err := loadGame(txn, gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if g.PlayerID == playerID {
			game = g
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select chess game: %w", err)
	}
	return game, nil
}

func (b *BadgerRepository) GetGameByUUID(ctx context.Context, gameUUID string) (*domain.ChessGame, error) {
	var game *domain.ChessGame
	err := b.db.View(func(txn *badger.Txn) error {
		id, err := loadID(txn, uuidKey(gameUUID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		game, err = loadGame(txn, gameKey(id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("select chess game by uuid: %w", err)
	}
	return game, nil
}

func (b *BadgerRepository) GetProfile(ctx context.Context, playerID string) (*domain.PlayerProfile, error) {
	var profile *domain.PlayerProfile
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerProfilePrefix + strings.TrimSpace(playerID)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var p domain.PlayerProfile
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		}); err != nil {
			return err
		}
		profile = &p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select player profile: %w", err)
	}
	return profile, nil
}

func (b *BadgerRepository) UpsertProfile(ctx context.Context, profile *domain.PlayerProfile) error {
	if profile == nil {
		return fmt.Errorf("nil player profile payload")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal player profile: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerProfilePrefix+strings.TrimSpace(profile.PlayerID)), data)
	})
	if err != nil {
		return fmt.Errorf("upsert player profile: %w", err)
	}
	return nil
}
