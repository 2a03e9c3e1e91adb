package ledger

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Config wires a Ledger to its collaborators. Persister and Publisher are
// optional.
type Config struct {
	Contract   common.Address
	Admins     []common.Address
	Inputs     InputVerifier
	Decryption DecryptionVerifier
	Persister  Persister
	Publisher  Publisher
	Now        func() time.Time
}

// Ledger is the single writer over GameStore, ChoiceVault and Coordinator.
// Every call runs under one mutex, so callers observe a total order. A
// call either persists and applies all of its writes or none of them.
type Ledger struct {
	mu sync.Mutex

	contract common.Address
	admins   map[common.Address]struct{}

	store *GameStore
	vault *ChoiceVault
	coord *Coordinator

	persist Persister
	publish Publisher
	now     func() time.Time
}

func New(cfg Config) *Ledger {
	store := NewGameStore()
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	admins := make(map[common.Address]struct{}, len(cfg.Admins))
	for _, a := range cfg.Admins {
		admins[a] = struct{}{}
	}
	return &Ledger{
		contract: cfg.Contract,
		admins:   admins,
		store:    store,
		vault:    NewChoiceVault(store, cfg.Inputs, cfg.Contract),
		coord:    NewCoordinator(store, cfg.Decryption),
		persist:  cfg.Persister,
		publish:  cfg.Publisher,
		now:      now,
	}
}

// Restore reloads state from the persister. Call it before serving.
func (l *Ledger) Restore(ctx context.Context) error {
	if l.persist == nil {
		return nil
	}
	games, pending, err := l.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	store := NewGameStore()
	for _, g := range games {
		store.insert(g)
	}
	l.store = store
	l.vault = NewChoiceVault(store, l.vault.verifier, l.contract)
	l.coord = NewCoordinator(store, l.coord.verifier)
	if pending != nil {
		l.coord.applyRequest(pending)
		DecryptionPending.Set(1)
	}

	logger.Info("ledger restored", "games", len(games), "pending", pending != nil)
	return nil
}

func (l *Ledger) Contract() common.Address {
	return l.contract
}

func (l *Ledger) IsAdmin(addr common.Address) bool {
	_, ok := l.admins[addr]
	return ok
}

// CreateGame opens a game between caller (player1) and player2.
func (l *Ledger) CreateGame(ctx context.Context, caller, player2 common.Address) (id uint64, err error) {
	defer func() { observe("create_game", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	g, err := l.store.newGame(caller, player2, l.now())
	if err != nil {
		logger.Debug("create game rejected", "player1", caller.Hex(), "player2", player2.Hex(), "error", err)
		return 0, err
	}
	if err := l.commit(ctx, Change{Game: g}); err != nil {
		return 0, err
	}

	l.store.insert(g)
	GamesCreated.Inc()
	l.emit(domain.GameCreated(g.ID, g.Player1, g.Player2))
	logger.Info("game created", "game_id", g.ID, "player1", g.Player1.Hex(), "player2", g.Player2.Hex())
	return g.ID, nil
}

// SubmitChoice stores caller's encrypted move for the game.
func (l *Ledger) SubmitChoice(ctx context.Context, caller common.Address, gameID uint64, handle domain.Handle, proof []byte) (err error) {
	defer func() { observe("submit_choice", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	slot, next, err := l.vault.check(gameID, caller, handle, proof)
	if err != nil {
		logger.Debug("choice rejected", "game_id", gameID, "player", caller.Hex(), "error", err)
		return err
	}
	if err := l.commit(ctx, Change{Game: next}); err != nil {
		return err
	}

	l.vault.apply(gameID, slot, handle)
	l.emit(domain.ChoiceMade(gameID, caller))
	logger.Info("choice made", "game_id", gameID, "player", caller.Hex(), "slot", slot)
	return nil
}

// RequestReveal starts decryption of the game's two handles. Asking again
// for the game already pending succeeds without doing anything.
func (l *Ledger) RequestReveal(ctx context.Context, gameID uint64) (err error) {
	defer func() { observe("request_reveal", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	req, err := l.coord.checkRequest(gameID, l.now())
	if err != nil {
		logger.Debug("reveal rejected", "game_id", gameID, "error", err)
		return err
	}
	if req == nil {
		logger.Debug("reveal already pending", "game_id", gameID)
		return nil
	}
	if err := l.commit(ctx, Change{PendingSet: true, Pending: req}); err != nil {
		return err
	}

	l.coord.applyRequest(req)
	DecryptionPending.Set(1)
	l.emit(domain.DecryptionRequested(gameID, req.Handles))
	logger.Info("decryption requested", "game_id", gameID, "handle1", req.Handles[0].Hex(), "handle2", req.Handles[1].Hex())
	return nil
}

// CompleteDecryption applies the oracle's answer to the pending request.
func (l *Ledger) CompleteDecryption(ctx context.Context, handles []domain.Handle, cleartexts, proof []byte) (err error) {
	defer func() { observe("complete_decryption", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	rev, err := l.coord.checkCompletion(handles, cleartexts, proof)
	if err != nil {
		logger.Debug("decryption callback rejected", "error", err)
		return err
	}
	requestedAt := l.coord.pending.RequestedAt
	if err := l.commit(ctx, Change{Game: rev.game, PendingSet: true}); err != nil {
		return err
	}

	l.coord.applyCompletion(rev)
	DecryptionPending.Set(0)
	RevealLatency.Observe(l.now().Sub(requestedAt).Seconds())
	l.emit(domain.GameRevealed(rev.game.ID, rev.result, rev.move1, rev.move2))
	logger.Info("game revealed", "game_id", rev.game.ID, "result", rev.result.String(), "move1", rev.move1.String(), "move2", rev.move2.String())
	return nil
}

// ResetDecryption drops a stuck pending request. The game is left as it
// was, so its reveal can be requested again.
func (l *Ledger) ResetDecryption(ctx context.Context, admin common.Address) (err error) {
	defer func() { observe("reset_decryption", err) }()

	if !l.IsAdmin(admin) {
		return ErrAccessDenied
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.coord.Pending()
	if p == nil {
		return ErrNotPending
	}
	if err := l.commit(ctx, Change{PendingSet: true}); err != nil {
		return err
	}

	l.coord.clear()
	DecryptionPending.Set(0)
	l.emit(domain.DecryptionReset(p.GameID, admin))
	logger.Warn("pending decryption reset", "game_id", p.GameID, "admin", admin.Hex())
	return nil
}

// Game returns a snapshot of the game.
func (l *Ledger) Game(gameID uint64) (*domain.Game, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Get(gameID)
}

// GameChoices returns the encrypted handles, for participants only.
func (l *Ledger) GameChoices(caller common.Address, gameID uint64) ([2]domain.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, err := l.store.Get(gameID)
	if err != nil {
		return [2]domain.Handle{}, err
	}
	if !g.IsPlayer(caller) {
		return [2]domain.Handle{}, ErrAccessDenied
	}
	return g.Choices(), nil
}

// PlayerGames yields player's game ids in creation order. Each range over
// the sequence reads the index afresh.
func (l *Ledger) PlayerGames(player common.Address) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		l.mu.Lock()
		seq := l.store.PlayerGames(player)
		l.mu.Unlock()
		for id := range seq {
			if !yield(id) {
				return
			}
		}
	}
}

func (l *Ledger) GameCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Count()
}

// Pending returns the outstanding decryption request, or nil when idle.
func (l *Ledger) Pending() *domain.PendingDecryption {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coord.Pending()
}

func (l *Ledger) commit(ctx context.Context, ch Change) error {
	if l.persist == nil {
		return nil
	}
	if err := l.persist.Commit(ctx, ch); err != nil {
		logger.Error("ledger commit failed", "error", err)
		return fmt.Errorf("persist ledger change: %w", err)
	}
	return nil
}

func (l *Ledger) emit(ev domain.Event) {
	if l.publish == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.At = l.now()
	l.publish.Publish(ev)
}
