package fhe

import (
	"crypto/ecdsa"
	"strings"

	"sealed_rps/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer produces proofs in the format SignatureVerifier accepts. It stands
// in for the input coprocessor and the KMS nodes in tests and local tooling.
type Signer struct {
	key *ecdsa.PrivateKey
}

func GenerateSigner() (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

func NewSigner(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *Signer) SignInput(handle domain.Handle, contract, user common.Address) ([]byte, error) {
	return crypto.Sign(InputDigest(handle, contract, user), s.key)
}

func (s *Signer) SignDecryption(handles []domain.Handle, cleartexts []byte) ([]byte, error) {
	return crypto.Sign(DecryptionDigest(handles, cleartexts), s.key)
}

// SignText signs msg the way wallets do for personal_sign.
func (s *Signer) SignText(msg string) ([]byte, error) {
	sig, err := crypto.Sign(TextHash(msg), s.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// JoinProofs concatenates KMS signatures into one decryption proof.
func JoinProofs(sigs ...[]byte) []byte {
	var out []byte
	for _, s := range sigs {
		out = append(out, s...)
	}
	return out
}
