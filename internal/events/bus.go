package events

import (
	"context"
	"sync"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Published = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_published_total",
		Help: "Events accepted by the bus, by type",
	}, []string{"type"})
	Dropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_events_dropped_total",
		Help: "Events dropped because the bus buffer was full",
	})
)

func init() {
	prometheus.MustRegister(Published, Dropped)
}

// Handler consumes one event. Handlers run on the bus goroutine, one at a
// time, in publish order.
type Handler func(ctx context.Context, ev domain.Event)

type subscriber struct {
	name string
	fn   Handler
}

// Bus fans ledger events out to subscribers. Publish never blocks; when
// the buffer is full the event is dropped and counted.
type Bus struct {
	ch chan domain.Event

	mu   sync.RWMutex
	subs []subscriber
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Bus{ch: make(chan domain.Event, buffer)}
}

// Subscribe registers fn under name. Call it before Run.
func (b *Bus) Subscribe(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscriber{name: name, fn: fn})
}

// Publish implements ledger.Publisher.
func (b *Bus) Publish(ev domain.Event) {
	select {
	case b.ch <- ev:
		Published.WithLabelValues(string(ev.Type)).Inc()
	default:
		Dropped.Inc()
		logger.Error("event bus full, event dropped", "event_id", ev.ID, "type", ev.Type, "game_id", ev.GameID)
	}
}

// Run delivers events until ctx is done, then flushes what is buffered.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case ev := <-b.ch:
			b.dispatch(ctx, ev)
		case <-ctx.Done():
			b.drain()
			return
		}
	}
}

func (b *Bus) drain() {
	// subscribers get a live context for the flush
	ctx := context.Background()
	for {
		select {
		case ev := <-b.ch:
			b.dispatch(ctx, ev)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, ev domain.Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event subscriber panicked", "subscriber", s.name, "type", ev.Type, "panic", r)
				}
			}()
			s.fn(ctx, ev)
		}()
	}
}
