package service

import (
	"strconv"
	"strings"
	"time"

	"sealed_rps/internal/fhe"

	"github.com/ethereum/go-ethereum/common"
)

// LoginPrefix starts every login message; the rest is a unix timestamp.
const LoginPrefix = "sealed-rps login:"

// LoginMessage builds the message a wallet signs to log in at t.
func LoginMessage(t time.Time) string {
	return LoginPrefix + strconv.FormatInt(t.Unix(), 10)
}

// ValidateWalletLogin checks that sig is a personal_sign of message by
// address and that the message is recent (within 1 hour) to mitigate
// replay attacks.
func ValidateWalletLogin(address common.Address, message string, sig []byte) bool {
	ts, ok := strings.CutPrefix(message, LoginPrefix)
	if !ok {
		return false
	}
	signedAt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}

	now := time.Now().Unix()
	// allow small clock skew, but reject anything older than 1 hour
	if now-signedAt > 3600 || signedAt-now > 300 {
		return false
	}

	signer, err := fhe.RecoverText(message, sig)
	if err != nil {
		return false
	}
	return signer == address
}
