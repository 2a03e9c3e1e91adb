package repository

import (
	"context"
	"sync"

	"sealed_rps/internal/domain"
)

// MemoryEventLog keeps the most recent events per game in memory. It is
// used when no database is configured.
type MemoryEventLog struct {
	mu      sync.RWMutex
	perGame int
	events  map[uint64][]domain.Event
}

func NewMemoryEventLog(perGame int) *MemoryEventLog {
	if perGame <= 0 {
		perGame = 64
	}
	return &MemoryEventLog{perGame: perGame, events: make(map[uint64][]domain.Event)}
}

func (m *MemoryEventLog) Append(_ context.Context, ev domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.events[ev.GameID], ev)
	if len(list) > m.perGame {
		list = list[len(list)-m.perGame:]
	}
	m.events[ev.GameID] = list
	return nil
}

func (m *MemoryEventLog) ListByGame(_ context.Context, gameID uint64, limit int) ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.events[gameID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]domain.Event, len(list))
	copy(out, list)
	return out, nil
}
