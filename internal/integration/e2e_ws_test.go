package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"sealed_rps/internal/config"
	"sealed_rps/internal/domain"
	"sealed_rps/internal/events"
	"sealed_rps/internal/fhe"
	httpserver "sealed_rps/internal/http"
	"sealed_rps/internal/http/handlers"
	"sealed_rps/internal/ledger"
	"sealed_rps/internal/repository"
	"sealed_rps/internal/service"
	"sealed_rps/internal/ws"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestE2E_WS_Reveal(t *testing.T) {
	db := connect(t)
	service.InitJWT("test-secret")

	contract := common.HexToAddress("0x000000000000000000000000000000000000c0de")
	input, _ := fhe.GenerateSigner()
	kms, _ := fhe.GenerateSigner()
	verifier, err := fhe.NewSignatureVerifier(input.Address(), []common.Address{kms.Address()}, 1)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	bus := events.NewBus(0)
	journal := events.NewJournal(repository.NewEventRepository(db))
	hub := ws.NewHub()
	bus.Subscribe("journal", journal.Handle)
	bus.Subscribe("ws", hub.Handle)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	l := ledger.New(ledger.Config{
		Contract:   contract,
		Inputs:     verifier,
		Decryption: verifier,
		Persister:  repository.NewGameRepository(db),
		Publisher:  bus,
	})

	// start server with real routes
	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpserver.RegisterRoutes(r, httpserver.Deps{
		Config:  &config.Config{APIRateLimit: 1000, APIRateWindow: 60, GameRateLimit: 1000, GameRateWindow: 60},
		Handler: handlers.NewHandler(l, journal),
		Hub:     hub,
		Checks:  map[string]handlers.Check{"database": db.Ping},
		Version: "test",
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	alice, _ := fhe.GenerateSigner()
	bob, _ := fhe.GenerateSigner()
	tokenA, _ := service.GenerateJWT(alice.Address())
	tokenB, _ := service.GenerateJWT(bob.Address())

	post := func(path, token string, body any) (int, map[string]any) {
		t.Helper()
		b, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("post %s: %v", path, err)
		}
		defer res.Body.Close()
		out := map[string]any{}
		_ = json.NewDecoder(res.Body).Decode(&out)
		return res.StatusCode, out
	}

	// connect both players before the game exists
	d := websocket.DefaultDialer
	base := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token="
	connA, _, err := d.Dial(base+tokenA, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close()
	connB, _, err := d.Dial(base+tokenB, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	// start a single reader goroutine per connection to avoid concurrent ReadMessage calls
	startReader := func(conn *websocket.Conn) chan ws.Outbound {
		out := make(chan ws.Outbound, 32)
		go func() {
			defer close(out)
			for {
				var msg ws.Outbound
				if err := conn.ReadJSON(&msg); err != nil {
					return
				}
				out <- msg
			}
		}()
		return out
	}
	chA := startReader(connA)
	chB := startReader(connB)

	waitFor := func(ch chan ws.Outbound, match func(ws.Outbound) bool) bool {
		deadline := time.After(5 * time.Second)
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return false
				}
				if match(m) {
					return true
				}
			case <-deadline:
				return false
			}
		}
	}
	isReady := func(m ws.Outbound) bool { return m.Type == ws.MsgReady }
	if !waitFor(chA, isReady) || !waitFor(chB, isReady) {
		t.Fatalf("clients did not receive ready")
	}

	status, body := post("/api/v1/games", tokenA, map[string]string{"player2": bob.Address().Hex()})
	if status != http.StatusCreated {
		t.Fatalf("create game: %d %v", status, body)
	}
	id := uint64(body["game_id"].(float64))
	path := "/api/v1/games/" + strconv.FormatUint(id, 10)

	hA := domain.Handle{0xa1}
	hB := domain.Handle{0xb2}
	for _, c := range []struct {
		signer *fhe.Signer
		token  string
		handle domain.Handle
	}{{alice, tokenA, hA}, {bob, tokenB, hB}} {
		proof, _ := input.SignInput(c.handle, contract, c.signer.Address())
		status, body := post(path+"/choice", c.token, map[string]string{"handle": c.handle.Hex(), "proof": hexutil.Encode(proof)})
		if status != http.StatusOK {
			t.Fatalf("choice: %d %v", status, body)
		}
	}

	if status, body := post(path+"/reveal", tokenA, nil); status != http.StatusAccepted {
		t.Fatalf("reveal: %d %v", status, body)
	}

	clr, _ := fhe.EncodeMoves(1, 3)
	proof, _ := kms.SignDecryption([]domain.Handle{hA, hB}, clr)
	status, body = post("/api/v1/decryption/callback", "", map[string]any{
		"handles":    []string{hA.Hex(), hB.Hex()},
		"cleartexts": hexutil.Encode(clr),
		"proof":      hexutil.Encode(proof),
	})
	if status != http.StatusOK {
		t.Fatalf("callback: %d %v", status, body)
	}

	isRevealed := func(m ws.Outbound) bool {
		return m.Event != nil && m.Event.Type == domain.EventGameRevealed && m.Event.GameID == id &&
			*m.Event.Result == domain.ResultPlayer1Wins
	}
	if !waitFor(chA, isRevealed) {
		t.Fatalf("A did not receive GameRevealed")
	}
	if !waitFor(chB, isRevealed) {
		t.Fatalf("B did not receive GameRevealed")
	}

	evs, err := journal.GameEvents(context.Background(), id, 0)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(evs) != 5 {
		t.Fatalf("expected 5 journaled events, got %d", len(evs))
	}
}
