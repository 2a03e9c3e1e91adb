// devtool plays the off-chain parties for local testing: it mints keys,
// session tokens, input proofs and oracle callbacks.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/fhe"
	"sealed_rps/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: devtool <command> [flags]

commands:
  keygen                          new private key and address
  login   -key K                  signed login message for POST /api/v1/auth
  token   -address A              session token (needs JWT_SECRET)
  input   -key K -handle H -contract C -user U
                                  input proof for a choice
  decrypt -key K -handles H1,H2 -moves M1,M2
                                  body for POST /api/v1/decryption/callback`)
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		usage()
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "keygen":
		keygen()
	case "login":
		login(args)
	case "token":
		token(args)
	case "input":
		input(args)
	case "decrypt":
		decrypt(args)
	default:
		usage()
	}
}

func keygen() {
	key, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("generate key: %v", err)
	}
	printJSON(map[string]string{
		"private_key": hex.EncodeToString(crypto.FromECDSA(key)),
		"address":     crypto.PubkeyToAddress(key.PublicKey).Hex(),
	})
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	key := fs.String("key", "", "private key hex")
	_ = fs.Parse(args)

	s := mustSigner(*key)
	msg := service.LoginMessage(time.Now())
	sig, err := s.SignText(msg)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	printJSON(map[string]string{
		"address":   s.Address().Hex(),
		"message":   msg,
		"signature": hexutil.Encode(sig),
	})
}

func token(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	addr := fs.String("address", "", "wallet address")
	_ = fs.Parse(args)

	if !common.IsHexAddress(*addr) {
		log.Fatal("-address must be a hex address")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"))
	t, err := service.GenerateJWT(common.HexToAddress(*addr))
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(t)
}

func input(args []string) {
	fs := flag.NewFlagSet("input", flag.ExitOnError)
	key := fs.String("key", "", "input signer private key hex")
	handle := fs.String("handle", "", "32-byte handle hex")
	contract := fs.String("contract", os.Getenv("CONTRACT_ADDRESS"), "ledger instance address")
	user := fs.String("user", "", "player address")
	_ = fs.Parse(args)

	s := mustSigner(*key)
	h := mustHandle(*handle)
	if !common.IsHexAddress(*contract) || !common.IsHexAddress(*user) {
		log.Fatal("-contract and -user must be hex addresses")
	}

	proof, err := s.SignInput(h, common.HexToAddress(*contract), common.HexToAddress(*user))
	if err != nil {
		log.Fatalf("sign input: %v", err)
	}
	printJSON(map[string]string{"handle": h.Hex(), "proof": hexutil.Encode(proof)})
}

func decrypt(args []string) {
	fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
	key := fs.String("key", "", "KMS signer private key hex")
	handles := fs.String("handles", "", "two handles, comma separated")
	moves := fs.String("moves", "", "two moves 1-3, comma separated")
	_ = fs.Parse(args)

	s := mustSigner(*key)

	hs := strings.Split(*handles, ",")
	if len(hs) != 2 {
		log.Fatal("-handles needs two values")
	}
	pair := []domain.Handle{mustHandle(hs[0]), mustHandle(hs[1])}

	var m1, m2 uint8
	if _, err := fmt.Sscanf(*moves, "%d,%d", &m1, &m2); err != nil {
		log.Fatalf("-moves: %v", err)
	}
	clr, err := fhe.EncodeMoves(m1, m2)
	if err != nil {
		log.Fatalf("encode moves: %v", err)
	}

	proof, err := s.SignDecryption(pair, clr)
	if err != nil {
		log.Fatalf("sign decryption: %v", err)
	}
	printJSON(map[string]any{
		"handles":    pair,
		"cleartexts": hexutil.Encode(clr),
		"proof":      hexutil.Encode(proof),
	})
}

func mustSigner(key string) *fhe.Signer {
	if key == "" {
		log.Fatal("-key is required")
	}
	s, err := fhe.NewSigner(key)
	if err != nil {
		log.Fatalf("bad key: %v", err)
	}
	return s
}

func mustHandle(s string) domain.Handle {
	h, err := domain.HandleFromHex(strings.TrimSpace(s))
	if err != nil {
		log.Fatalf("bad handle %q: %v", s, err)
	}
	return h
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}
