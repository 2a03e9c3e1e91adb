package ledger

import (
	"context"

	"sealed_rps/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// InputVerifier checks that a handle is a well-formed encryption produced
// for this ledger instance (contract) and the submitting user.
type InputVerifier interface {
	VerifyInput(handle domain.Handle, contract, user common.Address, proof []byte) error
}

// DecryptionVerifier checks that cleartexts are the decoding of handles.
type DecryptionVerifier interface {
	VerifyDecryption(handles []domain.Handle, cleartexts, proof []byte) error
}

// Change is one atomic unit of persisted state.
type Change struct {
	Game *domain.Game

	// PendingSet marks the decryption slot as written; Pending nil means idle.
	PendingSet bool
	Pending    *domain.PendingDecryption
}

// Persister stores committed changes. Commit must be all-or-nothing; the
// in-memory ledger only moves forward after it returns nil.
type Persister interface {
	Commit(ctx context.Context, ch Change) error
	Load(ctx context.Context) ([]*domain.Game, *domain.PendingDecryption, error)
}

// Publisher receives events in commit order. Publish is called with the
// ledger lock held, so implementations must hand off and return.
type Publisher interface {
	Publish(ev domain.Event)
}
