package ledger

import (
	"iter"
	"time"

	"sealed_rps/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// GameStore owns game records and the per-player index. It is not safe for
// concurrent use on its own; Ledger serializes access.
type GameStore struct {
	games    map[uint64]*domain.Game
	byPlayer map[common.Address][]uint64
	counter  uint64
}

func NewGameStore() *GameStore {
	return &GameStore{
		games:    make(map[uint64]*domain.Game),
		byPlayer: make(map[common.Address][]uint64),
	}
}

// newGame validates participants and builds the next record without storing it.
func (s *GameStore) newGame(player1, player2 common.Address, now time.Time) (*domain.Game, error) {
	if player1 == player2 {
		return nil, ErrInvalidParticipant
	}
	return &domain.Game{
		ID:        s.counter + 1,
		Player1:   player1,
		Player2:   player2,
		Result:    domain.ResultPending,
		CreatedAt: now,
	}, nil
}

func (s *GameStore) insert(g *domain.Game) {
	s.games[g.ID] = g.Clone()
	s.byPlayer[g.Player1] = append(s.byPlayer[g.Player1], g.ID)
	s.byPlayer[g.Player2] = append(s.byPlayer[g.Player2], g.ID)
	if g.ID > s.counter {
		s.counter = g.ID
	}
}

// Get returns a snapshot of the game.
func (s *GameStore) Get(id uint64) (*domain.Game, error) {
	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

// PlayerGames yields the ids of games player takes part in, oldest first.
// The sequence is fixed at call time and can be ranged over repeatedly.
func (s *GameStore) PlayerGames(player common.Address) iter.Seq[uint64] {
	ids := s.byPlayer[player]
	return func(yield func(uint64) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

func (s *GameStore) Count() uint64 {
	return s.counter
}

func (s *GameStore) setChoice(id uint64, slot int, handle domain.Handle) {
	g := s.games[id]
	switch slot {
	case 1:
		g.Choice1 = handle
		g.Player1Made = true
	case 2:
		g.Choice2 = handle
		g.Player2Made = true
	}
}

func (s *GameStore) setRevealed(id uint64, move1, move2 domain.Move, result domain.Result) {
	g := s.games[id]
	g.RevealedChoice1 = move1
	g.RevealedChoice2 = move2
	g.Result = result
	g.Revealed = true
}
