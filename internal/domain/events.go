package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType - тип события реестра
type EventType string

const (
	EventGameCreated         EventType = "GameCreated"
	EventChoiceMade          EventType = "ChoiceMade"
	EventDecryptionRequested EventType = "DecryptionRequested"
	EventGameRevealed        EventType = "GameRevealed"
	EventDecryptionReset     EventType = "DecryptionReset"
)

// Event is the common envelope for everything the ledger emits.
// Only the fields relevant to Type are set.
type Event struct {
	ID      string          `json:"id"`
	Type    EventType       `json:"type"`
	GameID  uint64          `json:"game_id"`
	Player1 *common.Address `json:"player1,omitempty"`
	Player2 *common.Address `json:"player2,omitempty"`
	Player  *common.Address `json:"player,omitempty"`
	Handles []Handle        `json:"handles,omitempty"`
	Result  *Result         `json:"result,omitempty"`
	Move1   Move            `json:"move1,omitempty"`
	Move2   Move            `json:"move2,omitempty"`
	Admin   *common.Address `json:"admin,omitempty"`
	At      time.Time       `json:"at"`
}

// Involves reports whether addr is named anywhere in the event.
func (e Event) Involves(addr common.Address) bool {
	for _, a := range []*common.Address{e.Player1, e.Player2, e.Player} {
		if a != nil && *a == addr {
			return true
		}
	}
	return false
}

func GameCreated(gameID uint64, player1, player2 common.Address) Event {
	return Event{Type: EventGameCreated, GameID: gameID, Player1: &player1, Player2: &player2}
}

func ChoiceMade(gameID uint64, player common.Address) Event {
	return Event{Type: EventChoiceMade, GameID: gameID, Player: &player}
}

func DecryptionRequested(gameID uint64, handles [2]Handle) Event {
	return Event{Type: EventDecryptionRequested, GameID: gameID, Handles: handles[:]}
}

func GameRevealed(gameID uint64, result Result, move1, move2 Move) Event {
	return Event{Type: EventGameRevealed, GameID: gameID, Result: &result, Move1: move1, Move2: move2}
}

func DecryptionReset(gameID uint64, admin common.Address) Event {
	return Event{Type: EventDecryptionReset, GameID: gameID, Admin: &admin}
}
