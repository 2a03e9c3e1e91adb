package repository

import (
	"context"
	"encoding/json"

	"sealed_rps/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository is the Postgres journal of ledger events.
type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Append inserts an event. Replays of the same event id are ignored.
func (r *EventRepository) Append(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO ledger_events (id, game_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, int64(ev.GameID), string(ev.Type), payload, ev.At)
	return err
}

// ListByGame returns the game's events oldest first.
func (r *EventRepository) ListByGame(ctx context.Context, gameID uint64, limit int) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT payload
		FROM ledger_events
		WHERE game_id = $1
		ORDER BY seq
		LIMIT $2
	`, int64(gameID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ev domain.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
