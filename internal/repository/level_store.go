package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/ledger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	gamePrefix = []byte("g:")
	pendingKey = []byte("pending")
)

// LevelStore is an embedded ledger.Persister for single-node deployments.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens (or creates) the database at dir.
func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}

// gameRecord is the stored form of a game, handles included.
type gameRecord struct {
	ID              uint64         `json:"id"`
	Player1         common.Address `json:"player1"`
	Player2         common.Address `json:"player2"`
	Choice1         domain.Handle  `json:"choice1"`
	Choice2         domain.Handle  `json:"choice2"`
	Player1Made     bool           `json:"player1_made"`
	Player2Made     bool           `json:"player2_made"`
	Revealed        bool           `json:"revealed"`
	Result          domain.Result  `json:"result"`
	RevealedChoice1 domain.Move    `json:"revealed_choice1"`
	RevealedChoice2 domain.Move    `json:"revealed_choice2"`
	CreatedAt       time.Time      `json:"created_at"`
}

type pendingRecord struct {
	GameID      uint64           `json:"game_id"`
	Handles     [2]domain.Handle `json:"handles"`
	RequestedAt time.Time        `json:"requested_at"`
}

// Commit writes the change as one synced batch.
func (s *LevelStore) Commit(_ context.Context, ch ledger.Change) error {
	batch := new(leveldb.Batch)

	if g := ch.Game; g != nil {
		val, err := json.Marshal(gameRecord{
			ID:              g.ID,
			Player1:         g.Player1,
			Player2:         g.Player2,
			Choice1:         g.Choice1,
			Choice2:         g.Choice2,
			Player1Made:     g.Player1Made,
			Player2Made:     g.Player2Made,
			Revealed:        g.Revealed,
			Result:          g.Result,
			RevealedChoice1: g.RevealedChoice1,
			RevealedChoice2: g.RevealedChoice2,
			CreatedAt:       g.CreatedAt,
		})
		if err != nil {
			return err
		}
		batch.Put(gameKey(g.ID), val)
	}

	if ch.PendingSet {
		if p := ch.Pending; p != nil {
			val, err := json.Marshal(pendingRecord{GameID: p.GameID, Handles: p.Handles, RequestedAt: p.RequestedAt})
			if err != nil {
				return err
			}
			batch.Put(pendingKey, val)
		} else {
			batch.Delete(pendingKey)
		}
	}

	if batch.Len() == 0 {
		return nil
	}
	return s.db.Write(batch, &opt.WriteOptions{Sync: true})
}

// Load returns the games in id order and the pending request, if any.
func (s *LevelStore) Load(_ context.Context) ([]*domain.Game, *domain.PendingDecryption, error) {
	var games []*domain.Game

	it := s.db.NewIterator(util.BytesPrefix(gamePrefix), nil)
	defer it.Release()
	for it.Next() {
		var rec gameRecord
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, nil, err
		}
		games = append(games, &domain.Game{
			ID:              rec.ID,
			Player1:         rec.Player1,
			Player2:         rec.Player2,
			Choice1:         rec.Choice1,
			Choice2:         rec.Choice2,
			Player1Made:     rec.Player1Made,
			Player2Made:     rec.Player2Made,
			Revealed:        rec.Revealed,
			Result:          rec.Result,
			RevealedChoice1: rec.RevealedChoice1,
			RevealedChoice2: rec.RevealedChoice2,
			CreatedAt:       rec.CreatedAt,
		})
	}
	if err := it.Error(); err != nil {
		return nil, nil, err
	}

	val, err := s.db.Get(pendingKey, nil)
	if err == leveldb.ErrNotFound {
		return games, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var rec pendingRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, nil, err
	}
	return games, &domain.PendingDecryption{GameID: rec.GameID, Handles: rec.Handles, RequestedAt: rec.RequestedAt}, nil
}

// big-endian so iteration order is id order
func gameKey(id uint64) []byte {
	key := make([]byte, len(gamePrefix)+8)
	copy(key, gamePrefix)
	binary.BigEndian.PutUint64(key[len(gamePrefix):], id)
	return key
}
