package ws

import (
	"encoding/json"

	"sealed_rps/internal/domain"
)

// Inbound is any client → server message.
type Inbound struct {
	Type   string `json:"type"`
	GameID uint64 `json:"game_id,omitempty"`
}

// Outbound is any server → client message.
type Outbound struct {
	Type    string        `json:"type"`
	Event   *domain.Event `json:"event,omitempty"`
	GameID  uint64        `json:"game_id,omitempty"`
	Message string        `json:"message,omitempty"`
}

func encode(msg Outbound) []byte {
	b, _ := json.Marshal(msg)
	return b
}
