package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/ledger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameRepository persists the ledger in Postgres. It implements ledger.Persister.
type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

// Commit writes one ledger change in a single transaction.
func (r *GameRepository) Commit(ctx context.Context, ch ledger.Change) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if ch.Game != nil {
		if err := upsertGame(ctx, tx, ch.Game); err != nil {
			return fmt.Errorf("upsert game %d: %w", ch.Game.ID, err)
		}
	}

	if ch.PendingSet {
		if _, err := tx.Exec(ctx, `DELETE FROM pending_decryption`); err != nil {
			return fmt.Errorf("clear pending decryption: %w", err)
		}
		if p := ch.Pending; p != nil {
			_, err := tx.Exec(ctx,
				`INSERT INTO pending_decryption (game_id, handle1, handle2, requested_at)
				 VALUES ($1, $2, $3, $4)`,
				int64(p.GameID), p.Handles[0][:], p.Handles[1][:], p.RequestedAt,
			)
			if err != nil {
				return fmt.Errorf("insert pending decryption: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

func upsertGame(ctx context.Context, tx pgx.Tx, g *domain.Game) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO games (id, player1, player2, choice1, choice2, player1_made, player2_made,
		                    revealed, result, revealed_choice1, revealed_choice2, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
		     choice1 = EXCLUDED.choice1,
		     choice2 = EXCLUDED.choice2,
		     player1_made = EXCLUDED.player1_made,
		     player2_made = EXCLUDED.player2_made,
		     revealed = EXCLUDED.revealed,
		     result = EXCLUDED.result,
		     revealed_choice1 = EXCLUDED.revealed_choice1,
		     revealed_choice2 = EXCLUDED.revealed_choice2`,
		int64(g.ID),
		g.Player1.Hex(),
		g.Player2.Hex(),
		handleBytes(g.Choice1, g.Player1Made),
		handleBytes(g.Choice2, g.Player2Made),
		g.Player1Made,
		g.Player2Made,
		g.Revealed,
		int16(g.Result),
		int16(g.RevealedChoice1),
		int16(g.RevealedChoice2),
		g.CreatedAt,
	)
	return err
}

// Load reads every game and the pending decryption slot.
func (r *GameRepository) Load(ctx context.Context) ([]*domain.Game, *domain.PendingDecryption, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, player1, player2, choice1, choice2, player1_made, player2_made,
		        revealed, result, revealed_choice1, revealed_choice2, created_at
		 FROM games
		 ORDER BY id`,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		var (
			id               int64
			p1, p2           string
			c1, c2           []byte
			made1, made2     bool
			revealed         bool
			result, rc1, rc2 int16
			createdAt        time.Time
		)
		if err := rows.Scan(&id, &p1, &p2, &c1, &c2, &made1, &made2, &revealed, &result, &rc1, &rc2, &createdAt); err != nil {
			return nil, nil, err
		}

		g := &domain.Game{
			ID:              uint64(id),
			Player1:         common.HexToAddress(p1),
			Player2:         common.HexToAddress(p2),
			Player1Made:     made1,
			Player2Made:     made2,
			Revealed:        revealed,
			Result:          domain.Result(result),
			RevealedChoice1: domain.Move(rc1),
			RevealedChoice2: domain.Move(rc2),
			CreatedAt:       createdAt,
		}
		copy(g.Choice1[:], c1)
		copy(g.Choice2[:], c2)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pending, err := r.loadPending(ctx)
	if err != nil {
		return nil, nil, err
	}
	return games, pending, nil
}

func (r *GameRepository) loadPending(ctx context.Context) (*domain.PendingDecryption, error) {
	var (
		gameID int64
		h1, h2 []byte
		at     time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT game_id, handle1, handle2, requested_at FROM pending_decryption`,
	).Scan(&gameID, &h1, &h2, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p := &domain.PendingDecryption{GameID: uint64(gameID), RequestedAt: at}
	copy(p.Handles[0][:], h1)
	copy(p.Handles[1][:], h2)
	return p, nil
}

// GetByPlayer returns the player's most recent games straight from the table.
func (r *GameRepository) GetByPlayer(ctx context.Context, player common.Address, limit int) ([]uint64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM games
		 WHERE player1 = $1 OR player2 = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		player.Hex(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, uint64(id))
	}
	return ids, rows.Err()
}

func handleBytes(h domain.Handle, set bool) []byte {
	if !set {
		return nil
	}
	return h[:]
}
