package game

import "sealed_rps/internal/domain"

// MoveInfo describes a move for clients rendering choices.
type MoveInfo struct {
	Value       domain.Move `json:"value"`
	Code        uint8       `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
}

var catalogue = []MoveInfo{
	{Value: domain.MoveRock, Code: 1, Name: "Rock", Description: "Crushes Scissors"},
	{Value: domain.MovePaper, Code: 2, Name: "Paper", Description: "Covers Rock"},
	{Value: domain.MoveScissors, Code: 3, Name: "Scissors", Description: "Cuts Paper"},
}

var unknownMove = MoveInfo{Value: domain.MoveNone, Code: 0, Name: "Unknown", Description: "Waiting..."}

// Moves returns the playable moves in code order.
func Moves() []MoveInfo {
	out := make([]MoveInfo, len(catalogue))
	copy(out, catalogue)
	return out
}

// Describe returns the catalogue entry for m, or the Unknown entry.
func Describe(m domain.Move) MoveInfo {
	if m.Valid() {
		return catalogue[m-1]
	}
	return unknownMove
}
