package ledger

import (
	"errors"
	"fmt"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/fhe"
	"sealed_rps/internal/game"
)

// Coordinator runs the two-phase reveal. It holds a single decryption slot
// for the whole ledger: while one game is pending, every other game's reveal
// is refused with BusyError. There is no timeout; a request the oracle never
// answers stays pending until CompleteDecryption or an admin reset.
type Coordinator struct {
	store    *GameStore
	verifier DecryptionVerifier
	pending  *domain.PendingDecryption
}

func NewCoordinator(store *GameStore, verifier DecryptionVerifier) *Coordinator {
	return &Coordinator{store: store, verifier: verifier}
}

// Pending returns the outstanding request, or nil when idle.
func (c *Coordinator) Pending() *domain.PendingDecryption {
	return c.pending.Clone()
}

// checkRequest returns the request to record. A nil request with a nil
// error means the same game is already pending and the call is a no-op.
func (c *Coordinator) checkRequest(gameID uint64, now time.Time) (*domain.PendingDecryption, error) {
	g, err := c.store.Get(gameID)
	if err != nil {
		return nil, err
	}
	if !g.Ready() {
		return nil, ErrNotReady
	}

	if c.pending != nil {
		if c.pending.GameID == gameID {
			return nil, nil
		}
		return nil, &BusyError{GameID: c.pending.GameID}
	}

	return &domain.PendingDecryption{
		GameID:      gameID,
		Handles:     g.Choices(),
		RequestedAt: now,
	}, nil
}

func (c *Coordinator) applyRequest(p *domain.PendingDecryption) {
	c.pending = p.Clone()
}

// revelation is the outcome of a verified oracle callback.
type revelation struct {
	game   *domain.Game
	move1  domain.Move
	move2  domain.Move
	result domain.Result
}

func (c *Coordinator) checkCompletion(handles []domain.Handle, cleartexts, proof []byte) (*revelation, error) {
	if c.pending == nil {
		return nil, ErrNotPending
	}
	if len(handles) != 2 || handles[0] != c.pending.Handles[0] || handles[1] != c.pending.Handles[1] {
		return nil, ErrHandleMismatch
	}

	if err := c.verifier.VerifyDecryption(handles, cleartexts, proof); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	raw1, raw2, err := fhe.DecodeMoves(cleartexts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCleartext, err)
	}
	move1, move2 := domain.Move(raw1), domain.Move(raw2)

	result, err := game.Resolve(move1, move2)
	if err != nil {
		return nil, err
	}

	g, err := c.store.Get(c.pending.GameID)
	if err != nil {
		return nil, err
	}
	if g.Revealed {
		return nil, errors.New("pending game already revealed")
	}
	g.RevealedChoice1, g.RevealedChoice2 = move1, move2
	g.Result = result
	g.Revealed = true

	return &revelation{game: g, move1: move1, move2: move2, result: result}, nil
}

func (c *Coordinator) applyCompletion(r *revelation) {
	c.store.setRevealed(r.game.ID, r.move1, r.move2, r.result)
	c.pending = nil
}

func (c *Coordinator) clear() {
	c.pending = nil
}
