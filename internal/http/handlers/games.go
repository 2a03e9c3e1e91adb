package handlers

import (
	"net/http"
	"strconv"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/game"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

type CreateGameRequest struct {
	Player2 string `json:"player2"`
}

type SubmitChoiceRequest struct {
	Handle domain.Handle `json:"handle"`
	Proof  hexutil.Bytes `json:"proof"`
}

// GameResponse is a game snapshot plus display info for revealed moves.
type GameResponse struct {
	*domain.Game
	Moves []game.MoveInfo `json:"moves,omitempty"`
}

func (h *Handler) CreateGame(c *gin.Context) {
	player1, ok := caller(c)
	if !ok {
		return
	}

	var req CreateGameRequest
	if err := c.BindJSON(&req); err != nil || !common.IsHexAddress(req.Player2) {
		badRequest(c, "player2 must be an address")
		return
	}

	id, err := h.Ledger.CreateGame(c.Request.Context(), player1, common.HexToAddress(req.Player2))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"game_id": id})
}

func (h *Handler) GetGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	g, err := h.Ledger.Game(id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := GameResponse{Game: g}
	if g.Revealed {
		resp.Moves = []game.MoveInfo{game.Describe(g.RevealedChoice1), game.Describe(g.RevealedChoice2)}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GameChoices(c *gin.Context) {
	player, ok := caller(c)
	if !ok {
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	choices, err := h.Ledger.GameChoices(player, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game_id": id, "choice1": choices[0], "choice2": choices[1]})
}

func (h *Handler) SubmitChoice(c *gin.Context) {
	player, ok := caller(c)
	if !ok {
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	var req SubmitChoiceRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "handle and proof must be hex")
		return
	}

	if err := h.Ledger.SubmitChoice(c.Request.Context(), player, id, req.Handle, req.Proof); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game_id": id, "status": "choice_made"})
}

func (h *Handler) RequestReveal(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	if err := h.Ledger.RequestReveal(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"game_id": id, "status": "decryption_pending"})
}

func (h *Handler) PlayerGames(c *gin.Context) {
	raw := c.Param("address")
	if !common.IsHexAddress(raw) {
		badRequest(c, "invalid address")
		return
	}
	player := common.HexToAddress(raw)

	ids := []uint64{}
	for id := range h.Ledger.PlayerGames(player) {
		ids = append(ids, id)
	}

	c.JSON(http.StatusOK, gin.H{"address": player.Hex(), "games": ids})
}

func (h *Handler) GameEvents(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	if _, err := h.Ledger.Game(id); err != nil {
		respondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.Journal.GameEvents(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}

	c.JSON(http.StatusOK, gin.H{"game_id": id, "events": events})
}

func (h *Handler) Moves(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"moves": game.Moves()})
}
