package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// HandleLength - размер ciphertext handle в байтах
const HandleLength = 32

// Handle is an opaque reference to an encrypted move. It can be verified
// but not decoded without the decryption oracle.
type Handle [HandleLength]byte

var ErrBadHandle = errors.New("handle must be 32 bytes of hex")

func HandleFromHex(s string) (Handle, error) {
	var h Handle
	b, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil || len(b) != HandleLength {
		return h, ErrBadHandle
	}
	copy(h[:], b)
	return h, nil
}

func (h Handle) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Handle) IsZero() bool {
	return h == Handle{}
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Handle) UnmarshalText(b []byte) error {
	parsed, err := HandleFromHex(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Result - итог раскрытой игры
type Result uint8

const (
	ResultPending Result = iota
	ResultDraw
	ResultPlayer1Wins
	ResultPlayer2Wins
)

var resultNames = [...]string{"pending", "draw", "player1_wins", "player2_wins"}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Result) UnmarshalText(b []byte) error {
	for i, name := range resultNames {
		if name == string(b) {
			*r = Result(i)
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", b)
}

// Move - открытое значение хода после расшифровки
type Move uint8

const (
	MoveNone Move = iota
	MoveRock
	MovePaper
	MoveScissors
)

var moveNames = [...]string{"none", "rock", "paper", "scissors"}

func (m Move) Valid() bool {
	return m >= MoveRock && m <= MoveScissors
}

func (m Move) String() string {
	if int(m) < len(moveNames) {
		return moveNames[m]
	}
	return fmt.Sprintf("move(%d)", uint8(m))
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(b []byte) error {
	for i, name := range moveNames {
		if name == string(b) {
			*m = Move(i)
			return nil
		}
	}
	return fmt.Errorf("unknown move %q", b)
}

// Game - запись игры в реестре. Choice1/Choice2 are never part of the
// public snapshot, participants read them through the choices endpoint.
type Game struct {
	ID              uint64         `json:"id"`
	Player1         common.Address `json:"player1"`
	Player2         common.Address `json:"player2"`
	Choice1         Handle         `json:"-"`
	Choice2         Handle         `json:"-"`
	Player1Made     bool           `json:"player1_made"`
	Player2Made     bool           `json:"player2_made"`
	Revealed        bool           `json:"revealed"`
	Result          Result         `json:"result"`
	RevealedChoice1 Move           `json:"revealed_choice1"`
	RevealedChoice2 Move           `json:"revealed_choice2"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Clone returns a copy that shares nothing with g.
func (g *Game) Clone() *Game {
	cp := *g
	return &cp
}

// Slot returns 1 or 2 for a participant and 0 for anyone else.
func (g *Game) Slot(player common.Address) int {
	switch player {
	case g.Player1:
		return 1
	case g.Player2:
		return 2
	default:
		return 0
	}
}

func (g *Game) IsPlayer(player common.Address) bool {
	return g.Slot(player) != 0
}

// Ready reports whether both players have committed and the game is still open.
func (g *Game) Ready() bool {
	return g.Player1Made && g.Player2Made && !g.Revealed
}

func (g *Game) Choices() [2]Handle {
	return [2]Handle{g.Choice1, g.Choice2}
}

// PendingDecryption - единственный незавершённый запрос на расшифровку
type PendingDecryption struct {
	GameID      uint64    `json:"game_id"`
	Handles     [2]Handle `json:"handles"`
	RequestedAt time.Time `json:"requested_at"`
}

func (p *PendingDecryption) Clone() *PendingDecryption {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
