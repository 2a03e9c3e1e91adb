package handlers

import (
	"net/http"

	"sealed_rps/internal/domain"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

// CallbackRequest is what the decryption oracle relayer posts back.
type CallbackRequest struct {
	Handles    []domain.Handle `json:"handles"`
	Cleartexts hexutil.Bytes   `json:"cleartexts"`
	Proof      hexutil.Bytes   `json:"proof"`
}

// DecryptionStatus reports the global decryption slot.
func (h *Handler) DecryptionStatus(c *gin.Context) {
	resp := gin.H{
		"pending":    false,
		"game_count": h.Ledger.GameCount(),
	}
	if p := h.Ledger.Pending(); p != nil {
		resp["pending"] = true
		resp["game_id"] = p.GameID
		resp["handles"] = p.Handles
		resp["requested_at"] = p.RequestedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DecryptionCallback(c *gin.Context) {
	var req CallbackRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "handles, cleartexts and proof must be hex")
		return
	}

	pending := h.Ledger.Pending()
	if err := h.Ledger.CompleteDecryption(c.Request.Context(), req.Handles, req.Cleartexts, req.Proof); err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"status": "revealed"}
	if pending != nil {
		if g, err := h.Ledger.Game(pending.GameID); err == nil && g.Revealed {
			resp["game_id"] = g.ID
			resp["result"] = g.Result
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ResetDecryption(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}

	if err := h.Ledger.ResetDecryption(c.Request.Context(), admin); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
