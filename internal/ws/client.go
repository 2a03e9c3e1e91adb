package ws

import (
	"encoding/json"
	"sync"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 256
)

// Client is one event stream connection. An authenticated client follows
// its own games automatically; any client can watch games by id, and a
// client opened with all=true gets every event.
type Client struct {
	address *common.Address
	all     bool

	mu      sync.RWMutex
	watched map[uint64]struct{}

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

func NewClient(hub *Hub, conn *websocket.Conn, address *common.Address, all bool, games []uint64) *Client {
	c := &Client{
		address: address,
		all:     all,
		watched: make(map[uint64]struct{}, len(games)),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		hub:     hub,
	}
	for _, id := range games {
		c.watched[id] = struct{}{}
	}
	return c
}

// Run registers the client and blocks until the connection closes.
func (c *Client) Run() {
	c.hub.register(c)
	go c.writePump()

	c.reply(Outbound{Type: MsgReady})
	c.readPump()
}

func (c *Client) label() string {
	if c.address == nil {
		return "anonymous"
	}
	return c.address.Hex()
}

func (c *Client) watch(id uint64) {
	c.mu.Lock()
	c.watched[id] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) unwatch(id uint64) {
	c.mu.Lock()
	delete(c.watched, id)
	c.mu.Unlock()
}

// wants reports whether ev should be pushed to this client. A new game
// involving the client's address is added to its watch list.
func (c *Client) wants(ev domain.Event) bool {
	if c.address != nil && ev.Involves(*c.address) {
		if ev.Type == domain.EventGameCreated {
			c.watch(ev.GameID)
		}
		return true
	}
	if c.all {
		return true
	}
	c.mu.RLock()
	_, ok := c.watched[ev.GameID]
	c.mu.RUnlock()
	return ok
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "address", c.label(), "error", err)
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(Outbound{Type: MsgError, Message: "bad message"})
			continue
		}

		switch msg.Type {
		case MsgSubscribe:
			c.watch(msg.GameID)
			c.reply(Outbound{Type: MsgSubscribe, GameID: msg.GameID})
		case MsgUnsubscribe:
			c.unwatch(msg.GameID)
			c.reply(Outbound{Type: MsgUnsubscribe, GameID: msg.GameID})
		case MsgPing:
			c.reply(Outbound{Type: MsgPong})
		default:
			c.reply(Outbound{Type: MsgError, Message: "unknown type " + msg.Type})
		}
	}
}

// reply queues a direct answer; it is skipped if the buffer is full.
func (c *Client) reply(msg Outbound) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- encode(msg):
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "address", c.label(), "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
