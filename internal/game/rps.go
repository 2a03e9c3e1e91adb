package game

import (
	"errors"
	"fmt"

	"sealed_rps/internal/domain"
)

var ErrInvalidMove = errors.New("invalid move value")

// Resolve maps two decrypted moves to the game result.
// Rock beats Scissors, Paper beats Rock, Scissors beats Paper.
func Resolve(move1, move2 domain.Move) (domain.Result, error) {
	if !move1.Valid() || !move2.Valid() {
		return domain.ResultPending, fmt.Errorf("%w: %d/%d", ErrInvalidMove, move1, move2)
	}

	if move1 == move2 {
		return domain.ResultDraw, nil
	}

	if beats(move1, move2) {
		return domain.ResultPlayer1Wins, nil
	}
	return domain.ResultPlayer2Wins, nil
}

func beats(a, b domain.Move) bool {
	switch a {
	case domain.MoveRock:
		return b == domain.MoveScissors
	case domain.MovePaper:
		return b == domain.MoveRock
	case domain.MoveScissors:
		return b == domain.MovePaper
	}
	return false
}
