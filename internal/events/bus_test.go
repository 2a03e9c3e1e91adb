package events

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/repository"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus(16)

	var (
		mu  sync.Mutex
		got []uint64
	)
	done := make(chan struct{})
	bus.Subscribe("panics", func(context.Context, domain.Event) { panic("boom") })
	bus.Subscribe("collect", func(_ context.Context, ev domain.Event) {
		mu.Lock()
		got = append(got, ev.GameID)
		n := len(got)
		mu.Unlock()
		if n == 5 {
			close(done)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	for i := uint64(1); i <= 5; i++ {
		bus.Publish(domain.Event{Type: domain.EventGameCreated, GameID: i})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, got)
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := NewBus(1)
	var n int
	bus.Subscribe("count", func(context.Context, domain.Event) { n++ })

	bus.Publish(domain.Event{GameID: 1})
	bus.Publish(domain.Event{GameID: 2}) // buffer full, not running

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Run(ctx)

	require.Equal(t, 1, n)
}

func TestJournal_MemoryStore(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(repository.NewMemoryEventLog(0))

	p1 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	p2 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	j.Handle(ctx, domain.GameCreated(3, p1, p2))
	j.Handle(ctx, domain.ChoiceMade(3, p1))
	j.Handle(ctx, domain.ChoiceMade(4, p2))

	events, err := j.GameEvents(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.EventGameCreated, events[0].Type)
	require.Equal(t, domain.EventChoiceMade, events[1].Type)
}

// Runs only if REDIS_ADDR is set.
func TestRedisRelayIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	client, err := NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), db)
	require.NoError(t, err)
	defer client.Close()

	relay := NewRedisRelay(client, "sealed_rps:test:"+strconv.FormatInt(time.Now().UnixNano(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan domain.Event, 1)
	go func() {
		_ = relay.Follow(ctx, func(_ context.Context, ev domain.Event) {
			received <- ev
			cancel()
		})
	}()

	// give the subscription time to attach
	time.Sleep(200 * time.Millisecond)

	res := domain.ResultDraw
	ev := domain.Event{ID: "ev-1", Type: domain.EventGameRevealed, GameID: 9, Result: &res, Move1: domain.MoveRock, Move2: domain.MoveRock}
	relay.Handle(context.Background(), ev)

	select {
	case got := <-received:
		require.Equal(t, "ev-1", got.ID)
		require.Equal(t, domain.ResultDraw, *got.Result)
		require.Equal(t, domain.MoveRock, got.Move2)
	case <-time.After(4 * time.Second):
		t.Fatal("event not relayed")
	}
}
