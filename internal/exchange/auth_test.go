package exchange

import (
	"strings"
	"testing"

	"tacticmm/internal/config"
)

func testAuthConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			Key:        "0x1111111111111111111111111111111111111111111111111111111111111111",
			ChainID:    137,
			APIKey:     "test-key",
			Secret:     "dGVzdC1zZWNyZXQ", // base64url, no padding
			Passphrase: "test-pass",
		},
	}
}

func TestNewAuthDerivesAddress(t *testing.T) {
	t.Parallel()
	auth, err := NewAuth(testAuthConfig())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	if auth.Address().Hex() == "" {
		t.Fatal("expected a non-empty derived address")
	}
}

func TestHasL2Credentials(t *testing.T) {
	t.Parallel()
	auth, err := NewAuth(testAuthConfig())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	if !auth.HasL2Credentials() {
		t.Error("expected HasL2Credentials to be true when all three fields are set")
	}

	cfg := testAuthConfig()
	cfg.Auth.Secret = ""
	auth2, _ := NewAuth(cfg)
	if auth2.HasL2Credentials() {
		t.Error("expected HasL2Credentials to be false when secret is missing")
	}
}

func TestL1HeadersSignsAndIncludesNonce(t *testing.T) {
	t.Parallel()
	auth, err := NewAuth(testAuthConfig())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}

	headers, err := auth.L1Headers(42)
	if err != nil {
		t.Fatalf("L1Headers: %v", err)
	}
	if headers["TACTIC_NONCE"] != "42" {
		t.Errorf("TACTIC_NONCE = %q, want 42", headers["TACTIC_NONCE"])
	}
	if !strings.HasPrefix(headers["TACTIC_SIGNATURE"], "0x") {
		t.Errorf("TACTIC_SIGNATURE = %q, want 0x-prefixed", headers["TACTIC_SIGNATURE"])
	}
	if headers["TACTIC_ADDRESS"] != auth.Address().Hex() {
		t.Errorf("TACTIC_ADDRESS = %q, want %q", headers["TACTIC_ADDRESS"], auth.Address().Hex())
	}
}

func TestL2HeadersDeterministicForSameTimestamp(t *testing.T) {
	t.Parallel()
	auth, err := NewAuth(testAuthConfig())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}

	sig1, err := auth.buildHMAC("1700000000", "POST", "/orders", `{"a":1}`)
	if err != nil {
		t.Fatalf("buildHMAC: %v", err)
	}
	sig2, err := auth.buildHMAC("1700000000", "POST", "/orders", `{"a":1}`)
	if err != nil {
		t.Fatalf("buildHMAC: %v", err)
	}
	if sig1 != sig2 {
		t.Errorf("same inputs produced different signatures: %q vs %q", sig1, sig2)
	}

	sig3, _ := auth.buildHMAC("1700000000", "POST", "/orders", `{"a":2}`)
	if sig1 == sig3 {
		t.Error("different bodies produced identical signatures")
	}
}

func TestWSAuthPayloadCarriesCredentials(t *testing.T) {
	t.Parallel()
	auth, err := NewAuth(testAuthConfig())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	payload := auth.WSAuthPayload()
	if payload.APIKey != "test-key" || payload.Passphrase != "test-pass" {
		t.Errorf("WSAuthPayload = %+v, want api_key=test-key passphrase=test-pass", payload)
	}
}
