package fhe

import (
	"errors"
	"fmt"

	"sealed_rps/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Proof verification for encrypted inputs and oracle decryptions.
// Input proofs are one secp256k1 signature from the input signer over
// InputDigest. Decryption proofs are one or more concatenated signatures
// from KMS signers over DecryptionDigest; at least threshold distinct
// KMS signers must be present.

const (
	inputDomain      = "sealed-rps/v1/input"
	decryptionDomain = "sealed-rps/v1/decryption"
)

var (
	ErrProofLength     = errors.New("proof length is not a multiple of 65")
	ErrUnknownSigner   = errors.New("proof not signed by a trusted signer")
	ErrBelowThreshold  = errors.New("not enough kms signatures")
	ErrHandleCount     = errors.New("decryption proof covers exactly two handles")
	ErrInvalidSettings = errors.New("verifier needs an input signer, kms signers and a positive threshold")
)

// InputDigest binds a handle to the ledger instance and the submitting player.
func InputDigest(handle domain.Handle, contract, user common.Address) []byte {
	return crypto.Keccak256([]byte(inputDomain), handle[:], contract.Bytes(), user.Bytes())
}

// DecryptionDigest binds cleartexts to the ordered handles they decode.
func DecryptionDigest(handles []domain.Handle, cleartexts []byte) []byte {
	parts := [][]byte{[]byte(decryptionDomain)}
	for i := range handles {
		parts = append(parts, handles[i][:])
	}
	parts = append(parts, crypto.Keccak256(cleartexts))
	return crypto.Keccak256(parts...)
}

// SignatureVerifier checks input and decryption proofs against a fixed set
// of trusted signer addresses.
type SignatureVerifier struct {
	inputSigner common.Address
	kms         map[common.Address]struct{}
	threshold   int
}

func NewSignatureVerifier(inputSigner common.Address, kmsSigners []common.Address, threshold int) (*SignatureVerifier, error) {
	if inputSigner == (common.Address{}) || len(kmsSigners) == 0 || threshold < 1 || threshold > len(kmsSigners) {
		return nil, ErrInvalidSettings
	}
	kms := make(map[common.Address]struct{}, len(kmsSigners))
	for _, s := range kmsSigners {
		kms[s] = struct{}{}
	}
	return &SignatureVerifier{inputSigner: inputSigner, kms: kms, threshold: threshold}, nil
}

func (v *SignatureVerifier) VerifyInput(handle domain.Handle, contract, user common.Address, proof []byte) error {
	if len(proof) != crypto.SignatureLength {
		return ErrProofLength
	}
	signer, err := recoverSigner(InputDigest(handle, contract, user), proof)
	if err != nil {
		return err
	}
	if signer != v.inputSigner {
		return ErrUnknownSigner
	}
	return nil
}

func (v *SignatureVerifier) VerifyDecryption(handles []domain.Handle, cleartexts, proof []byte) error {
	if len(handles) != 2 {
		return ErrHandleCount
	}
	if len(proof) == 0 || len(proof)%crypto.SignatureLength != 0 {
		return ErrProofLength
	}

	digest := DecryptionDigest(handles, cleartexts)
	seen := make(map[common.Address]struct{})
	for off := 0; off < len(proof); off += crypto.SignatureLength {
		signer, err := recoverSigner(digest, proof[off:off+crypto.SignatureLength])
		if err != nil {
			return err
		}
		if _, ok := v.kms[signer]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSigner, signer.Hex())
		}
		seen[signer] = struct{}{}
	}

	if len(seen) < v.threshold {
		return fmt.Errorf("%w: have %d, need %d", ErrBelowThreshold, len(seen), v.threshold)
	}
	return nil
}

func recoverSigner(digest, sig []byte) (common.Address, error) {
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	// wallets sign with v in {27, 28}
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
