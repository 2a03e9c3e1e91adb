package ws

import (
	"context"
	"sync"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Open event stream connections",
	})
	SlowClients = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_slow_clients_total",
		Help: "Connections closed because their send buffer was full",
	})
)

func init() {
	prometheus.MustRegister(Connections, SlowClients)
}

// Hub pushes ledger events to connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	Connections.Inc()
	logger.Debug("ws client registered", "address", c.label(), "clients", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		Connections.Dec()
		logger.Debug("ws client unregistered", "address", c.label())
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handle is a bus subscriber: it forwards ev to every interested client.
// A client that cannot keep up is disconnected.
func (h *Hub) Handle(_ context.Context, ev domain.Event) {
	msg := encode(Outbound{Type: MsgEvent, Event: &ev})

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		if !c.wants(ev) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		SlowClients.Inc()
		logger.Warn("ws client too slow, closing", "address", c.label())
		h.unregister(c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
		Connections.Dec()
	}
}
