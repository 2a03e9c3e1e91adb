package handlers

import (
	"net/http"

	"sealed_rps/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	Address   string        `json:"address"`
	Message   string        `json:"message"`
	Signature hexutil.Bytes `json:"signature"`
}

// Auth exchanges a signed login message for a session token.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if !common.IsHexAddress(req.Address) || len(req.Message) > 256 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	addr := common.HexToAddress(req.Address)

	if !service.ValidateWalletLogin(addr, req.Message, req.Signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale signature"})
		return
	}

	token, err := service.GenerateJWT(addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"address": addr.Hex(),
		"admin":   h.Ledger.IsAdmin(addr),
	})
}
