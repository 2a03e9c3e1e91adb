package fhe

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TextHash is the personal_sign digest of msg.
func TextHash(msg string) []byte {
	return accounts.TextHash([]byte(msg))
}

// RecoverText returns the address that personal_signed msg.
func RecoverText(msg string, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrProofLength
	}
	return recoverSigner(TextHash(msg), sig)
}
