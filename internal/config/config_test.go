package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestParseAddressList(t *testing.T) {
	got := parseAddressList(" 0x1111111111111111111111111111111111111111, nope ,0x2222222222222222222222222222222222222222")
	want := []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d addresses, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %s, want %s", i, got[i].Hex(), want[i].Hex())
		}
	}

	if len(parseAddressList("")) != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("CONTRACT_ADDRESS", "0x000000000000000000000000000000000000c0de")
	t.Setenv("INPUT_SIGNER", "0x1111111111111111111111111111111111111111")
	t.Setenv("KMS_SIGNERS", "0x2222222222222222222222222222222222222222,0x3333333333333333333333333333333333333333")
	t.Setenv("KMS_THRESHOLD", "2")
	t.Setenv("API_RATE_LIMIT", "-5")
	t.Setenv("APP_PORT", "")

	cfg := Load()
	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.AppPort)
	}
	if len(cfg.KMSSigners) != 2 || cfg.KMSThreshold != 2 {
		t.Fatalf("unexpected kms settings: %v %d", cfg.KMSSigners, cfg.KMSThreshold)
	}
	// negative values fall back to the default
	if cfg.APIRateLimit != 120 {
		t.Fatalf("expected default api limit, got %d", cfg.APIRateLimit)
	}
	if cfg.EventsChannel != "sealed_rps:events" {
		t.Fatalf("unexpected channel %q", cfg.EventsChannel)
	}
}
