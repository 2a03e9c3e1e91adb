package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/ledger"
	"sealed_rps/internal/repository"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
	if _, err := db.Exec(context.Background(), `TRUNCATE pending_decryption, games, ledger_events`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func TestGameRepository_CommitLoad(t *testing.T) {
	db := connect(t)
	ctx := context.Background()
	repo := repository.NewGameRepository(db)

	p1 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	p2 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	g := &domain.Game{ID: 1, Player1: p1, Player2: p2, CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}

	if err := repo.Commit(ctx, ledger.Change{Game: g}); err != nil {
		t.Fatalf("commit game: %v", err)
	}

	g.Choice1 = domain.Handle{1}
	g.Player1Made = true
	g.Choice2 = domain.Handle{2}
	g.Player2Made = true
	if err := repo.Commit(ctx, ledger.Change{Game: g}); err != nil {
		t.Fatalf("commit choices: %v", err)
	}

	pending := &domain.PendingDecryption{GameID: 1, Handles: g.Choices(), RequestedAt: g.CreatedAt}
	if err := repo.Commit(ctx, ledger.Change{PendingSet: true, Pending: pending}); err != nil {
		t.Fatalf("commit pending: %v", err)
	}

	games, got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(games) != 1 || games[0].Choice2 != g.Choice2 || !games[0].Player2Made {
		t.Fatalf("unexpected games: %+v", games)
	}
	if got == nil || got.GameID != 1 || got.Handles != pending.Handles {
		t.Fatalf("unexpected pending: %+v", got)
	}

	g.Revealed = true
	g.Result = domain.ResultPlayer1Wins
	g.RevealedChoice1 = domain.MoveRock
	g.RevealedChoice2 = domain.MoveScissors
	if err := repo.Commit(ctx, ledger.Change{Game: g, PendingSet: true}); err != nil {
		t.Fatalf("commit reveal: %v", err)
	}

	games, got, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("pending should be cleared, got %+v", got)
	}
	if games[0].Result != domain.ResultPlayer1Wins || games[0].RevealedChoice2 != domain.MoveScissors {
		t.Fatalf("reveal not stored: %+v", games[0])
	}

	ids, err := repo.GetByPlayer(ctx, p2, 10)
	if err != nil {
		t.Fatalf("get by player: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected [1], got %v", ids)
	}
}

func TestLedger_RestoreFromPostgres(t *testing.T) {
	db := connect(t)
	ctx := context.Background()
	repo := repository.NewGameRepository(db)

	accept := acceptAll{}
	l := ledger.New(ledger.Config{Inputs: accept, Decryption: accept, Persister: repo})

	p1 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	p2 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	id, err := l.CreateGame(ctx, p1, p2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.SubmitChoice(ctx, p1, id, domain.Handle{0xa}, nil); err != nil {
		t.Fatalf("submit p1: %v", err)
	}
	if err := l.SubmitChoice(ctx, p2, id, domain.Handle{0xb}, nil); err != nil {
		t.Fatalf("submit p2: %v", err)
	}
	if err := l.RequestReveal(ctx, id); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	restored := ledger.New(ledger.Config{Inputs: accept, Decryption: accept, Persister: repo})
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.GameCount() != 1 {
		t.Fatalf("expected 1 game, got %d", restored.GameCount())
	}
	p := restored.Pending()
	if p == nil || p.GameID != id {
		t.Fatalf("pending not restored: %+v", p)
	}
}

func TestEventRepository_AppendList(t *testing.T) {
	db := connect(t)
	ctx := context.Background()
	repo := repository.NewEventRepository(db)

	p1 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	p2 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	ev := domain.GameCreated(7, p1, p2)
	ev.ID = "4f0c1f36-5a43-4d2b-9d55-0e5c3d0d2a11"
	ev.At = time.Now().UTC()

	if err := repo.Append(ctx, ev); err != nil {
		t.Fatalf("append: %v", err)
	}
	// replay is ignored
	if err := repo.Append(ctx, ev); err != nil {
		t.Fatalf("append replay: %v", err)
	}

	events, err := repo.ListByGame(ctx, 7, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].Type != domain.EventGameCreated || !events[0].Involves(p2) {
		t.Fatalf("unexpected events: %+v", events)
	}
}

type acceptAll struct{}

func (acceptAll) VerifyInput(domain.Handle, common.Address, common.Address, []byte) error {
	return nil
}

func (acceptAll) VerifyDecryption([]domain.Handle, []byte, []byte) error {
	return nil
}
