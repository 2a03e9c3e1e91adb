package ledger

import (
	"fmt"

	"sealed_rps/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// ChoiceVault admits encrypted moves, one per player per game.
type ChoiceVault struct {
	store    *GameStore
	verifier InputVerifier
	contract common.Address
}

func NewChoiceVault(store *GameStore, verifier InputVerifier, contract common.Address) *ChoiceVault {
	return &ChoiceVault{store: store, verifier: verifier, contract: contract}
}

// check validates a submission and returns the player's slot together with
// the record as it will look once the choice is stored. Nothing is mutated.
func (v *ChoiceVault) check(gameID uint64, player common.Address, handle domain.Handle, proof []byte) (int, *domain.Game, error) {
	g, err := v.store.Get(gameID)
	if err != nil {
		return 0, nil, err
	}

	slot := g.Slot(player)
	if slot == 0 {
		return 0, nil, ErrInvalidParticipant
	}
	if (slot == 1 && g.Player1Made) || (slot == 2 && g.Player2Made) {
		return 0, nil, ErrAlreadyChosen
	}

	if err := v.verifier.VerifyInput(handle, v.contract, player, proof); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	if slot == 1 {
		g.Choice1, g.Player1Made = handle, true
	} else {
		g.Choice2, g.Player2Made = handle, true
	}
	return slot, g, nil
}

func (v *ChoiceVault) apply(gameID uint64, slot int, handle domain.Handle) {
	v.store.setChoice(gameID, slot, handle)
}
