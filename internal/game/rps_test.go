package game

import (
	"errors"
	"testing"

	"sealed_rps/internal/domain"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		a, b domain.Move
		want domain.Result
	}{
		{domain.MoveRock, domain.MoveRock, domain.ResultDraw},
		{domain.MovePaper, domain.MovePaper, domain.ResultDraw},
		{domain.MoveScissors, domain.MoveScissors, domain.ResultDraw},
		{domain.MoveRock, domain.MoveScissors, domain.ResultPlayer1Wins},
		{domain.MovePaper, domain.MoveRock, domain.ResultPlayer1Wins},
		{domain.MoveScissors, domain.MovePaper, domain.ResultPlayer1Wins},
		{domain.MoveScissors, domain.MoveRock, domain.ResultPlayer2Wins},
		{domain.MoveRock, domain.MovePaper, domain.ResultPlayer2Wins},
		{domain.MovePaper, domain.MoveScissors, domain.ResultPlayer2Wins},
	}

	for _, tc := range cases {
		got, err := Resolve(tc.a, tc.b)
		if err != nil {
			t.Fatalf("Resolve(%s,%s) unexpected error: %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Fatalf("Resolve(%s,%s) = %s; want %s", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestResolveRejectsOutOfRange(t *testing.T) {
	for _, pair := range [][2]domain.Move{{0, 1}, {1, 0}, {4, 2}, {3, 255}} {
		if _, err := Resolve(pair[0], pair[1]); !errors.Is(err, ErrInvalidMove) {
			t.Fatalf("Resolve(%d,%d) err = %v; want ErrInvalidMove", pair[0], pair[1], err)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(domain.MovePaper); got.Name != "Paper" || got.Description != "Covers Rock" {
		t.Fatalf("Describe(paper) = %+v", got)
	}
	if got := Describe(domain.Move(9)); got.Name != "Unknown" {
		t.Fatalf("Describe(9) = %+v; want Unknown", got)
	}
	if n := len(Moves()); n != 3 {
		t.Fatalf("Moves() len = %d; want 3", n)
	}
}
