package events

import (
	"context"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/logger"
)

// Store is where the journal keeps events.
type Store interface {
	Append(ctx context.Context, ev domain.Event) error
	ListByGame(ctx context.Context, gameID uint64, limit int) ([]domain.Event, error)
}

// Journal records every ledger event and serves a game's history.
type Journal struct {
	store Store
}

func NewJournal(store Store) *Journal {
	return &Journal{store: store}
}

// Handle is a bus subscriber. Failures are logged, not retried.
func (j *Journal) Handle(ctx context.Context, ev domain.Event) {
	if err := j.store.Append(ctx, ev); err != nil {
		logger.Error("journal append failed", "event_id", ev.ID, "type", ev.Type, "game_id", ev.GameID, "error", err)
	}
}

func (j *Journal) GameEvents(ctx context.Context, gameID uint64, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	return j.store.ListByGame(ctx, gameID, limit)
}
