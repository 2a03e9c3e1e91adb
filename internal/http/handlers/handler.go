package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sealed_rps/internal/events"
	"sealed_rps/internal/game"
	"sealed_rps/internal/http/middleware"
	"sealed_rps/internal/ledger"
	"sealed_rps/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	Ledger  *ledger.Ledger
	Journal *events.Journal
}

func NewHandler(l *ledger.Ledger, journal *events.Journal) *Handler {
	return &Handler{Ledger: l, Journal: journal}
}

// caller извлекает адрес кошелька из контекста Gin
func caller(c *gin.Context) (common.Address, bool) {
	addr, ok := middleware.Address(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return addr, ok
}

func gameID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id", "code": "bad_request"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}

// respondError maps ledger errors to a status and a stable code.
func respondError(c *gin.Context, err error) {
	code := ledger.Code(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidParticipant),
		errors.Is(err, ledger.ErrInvalidProof),
		errors.Is(err, ledger.ErrHandleMismatch),
		errors.Is(err, ledger.ErrInvalidCleartext):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadyChosen),
		errors.Is(err, ledger.ErrNotReady),
		errors.Is(err, ledger.ErrBusy),
		errors.Is(err, ledger.ErrNotPending):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidMove):
		status = http.StatusUnprocessableEntity
	default:
		// persistence failures
		logger.WithContext(c.Request.Context()).Error("ledger call failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable", "code": code})
		return
	}

	body := gin.H{"error": err.Error(), "code": code}
	var busy *ledger.BusyError
	if errors.As(err, &busy) {
		body["pending_game_id"] = busy.GameID
	}
	c.JSON(status, body)
}
