package ledger

import (
	"errors"
	"fmt"

	"sealed_rps/internal/game"
)

var (
	ErrInvalidParticipant = errors.New("invalid participant")
	ErrAlreadyChosen      = errors.New("choice already made")
	ErrNotReady           = errors.New("both players must make choices before reveal")
	ErrBusy               = errors.New("another decryption is in progress")
	ErrInvalidProof       = errors.New("invalid proof")
	ErrHandleMismatch     = errors.New("handles do not match pending decryption")
	ErrNotPending         = errors.New("no decryption pending")
	ErrNotFound           = errors.New("game not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCleartext   = errors.New("malformed cleartexts")
)

// BusyError names the game holding the decryption slot. It matches ErrBusy
// under errors.Is.
type BusyError struct {
	GameID uint64
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("another decryption is in progress for game %d", e.GameID)
}

func (e *BusyError) Is(target error) bool {
	return target == ErrBusy
}

// Code returns a stable short name for err, used in metrics and API replies.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidParticipant):
		return "invalid_participant"
	case errors.Is(err, ErrAlreadyChosen):
		return "already_chosen"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrInvalidProof):
		return "invalid_proof"
	case errors.Is(err, ErrHandleMismatch):
		return "handle_mismatch"
	case errors.Is(err, ErrNotPending):
		return "not_pending"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrInvalidCleartext):
		return "invalid_cleartext"
	case errors.Is(err, game.ErrInvalidMove):
		return "invalid_move"
	default:
		return "internal"
	}
}
