package fhe

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrMalformedCleartext is returned when oracle cleartexts are not abi(uint8, uint8).
var ErrMalformedCleartext = errors.New("cleartexts are not abi-encoded (uint8, uint8)")

var moveArgs abi.Arguments

func init() {
	u8, err := abi.NewType("uint8", "", nil)
	if err != nil {
		panic(err)
	}
	moveArgs = abi.Arguments{{Type: u8}, {Type: u8}}
}

// EncodeMoves abi-encodes two cleartext moves the way the oracle relays them.
func EncodeMoves(move1, move2 uint8) ([]byte, error) {
	return moveArgs.Pack(move1, move2)
}

// DecodeMoves reads the two 8-bit moves from oracle cleartexts.
func DecodeMoves(cleartexts []byte) (uint8, uint8, error) {
	if len(cleartexts) != 64 {
		return 0, 0, fmt.Errorf("%w: got %d bytes", ErrMalformedCleartext, len(cleartexts))
	}
	values, err := moveArgs.Unpack(cleartexts)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedCleartext, err)
	}
	m1, ok1 := values[0].(uint8)
	m2, ok2 := values[1].(uint8)
	if !ok1 || !ok2 {
		return 0, 0, ErrMalformedCleartext
	}
	return m1, m2, nil
}
