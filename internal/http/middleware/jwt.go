package middleware

import (
	"net/http"
	"strings"

	"sealed_rps/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

const addressKey = "address"

// JWT requires a bearer token and stores the wallet address in the context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		addr, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(addressKey, addr)
		c.Next()
	}
}

// Address returns the authenticated wallet address set by JWT.
func Address(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(addressKey)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}
