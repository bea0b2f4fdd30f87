package exchange

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"tacticmm/internal/config"
	"tacticmm/pkg/types"
)

// Credentials holds the L2 API key triplet returned by the home venue's
// key-derivation endpoint. These are used for HMAC-signed trading requests.
type Credentials struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// Auth handles two layers of home-venue authentication:
//
//   - L1 (EIP-712): used by Client.DeriveAPIKey to derive L2 API keys, by
//     signing a typed-data auth message with the wallet's private key.
//     cmd/bot does not call it at startup; L2 credentials come from config.
//   - L2 (HMAC-SHA256): used for every trading operation, by signing
//     "timestamp + method + path [+ body]" with the derived API secret.
//
// The tactic itself never touches signing; Auth is consumed only by the
// home-venue HTTP client (internal/exchange).
type Auth struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	creds      Credentials
}

// NewAuth creates an Auth instance from config.
func NewAuth(cfg config.Config) (*Auth, error) {
	keyHex := cfg.Auth.Key
	if len(keyHex) >= 2 && keyHex[:2] == "0x" {
		keyHex = keyHex[2:]
	}

	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("parse auth key: %w", err)
	}

	return &Auth{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    big.NewInt(int64(cfg.Auth.ChainID)),
		creds: Credentials{
			APIKey:     cfg.Auth.APIKey,
			Secret:     cfg.Auth.Secret,
			Passphrase: cfg.Auth.Passphrase,
		},
	}, nil
}

// Address returns the signer's address.
func (a *Auth) Address() common.Address { return a.address }

// HasL2Credentials reports whether L2 API credentials are already configured.
func (a *Auth) HasL2Credentials() bool {
	return a.creds.APIKey != "" && a.creds.Secret != "" && a.creds.Passphrase != ""
}

// SetCredentials installs L2 credentials derived via L1 auth.
func (a *Auth) SetCredentials(creds Credentials) { a.creds = creds }

// L1Headers generates headers for the L1-authenticated key-derivation endpoint.
func (a *Auth) L1Headers(nonce int) (map[string]string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	sig, err := a.signAuthMessage(timestamp, nonce)
	if err != nil {
		return nil, fmt.Errorf("sign auth message: %w", err)
	}

	return map[string]string{
		"TACTIC_ADDRESS":   a.address.Hex(),
		"TACTIC_SIGNATURE": sig,
		"TACTIC_TIMESTAMP": timestamp,
		"TACTIC_NONCE":     strconv.Itoa(nonce),
	}, nil
}

// L2Headers generates headers for HMAC-authenticated trading endpoints.
func (a *Auth) L2Headers(method, path, body string) (map[string]string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	sig, err := a.buildHMAC(timestamp, method, path, body)
	if err != nil {
		return nil, fmt.Errorf("build hmac: %w", err)
	}

	return map[string]string{
		"TACTIC_ADDRESS":    a.address.Hex(),
		"TACTIC_SIGNATURE":  sig,
		"TACTIC_TIMESTAMP":  timestamp,
		"TACTIC_API_KEY":    a.creds.APIKey,
		"TACTIC_PASSPHRASE": a.creds.Passphrase,
	}, nil
}

// WSAuthPayload returns credentials for an authenticated WebSocket channel.
func (a *Auth) WSAuthPayload() *types.WSAuth {
	return &types.WSAuth{
		APIKey:     a.creds.APIKey,
		Secret:     a.creds.Secret,
		Passphrase: a.creds.Passphrase,
	}
}

// signAuthMessage produces an EIP-712 signature proving control of the wallet.
func (a *Auth) signAuthMessage(timestamp string, nonce int) (string, error) {
	sig, err := a.signTypedData(
		&apitypes.TypedDataDomain{
			Name:    "TacticAuthDomain",
			Version: "1",
			ChainId: (*ethmath.HexOrDecimal256)(new(big.Int).Set(a.chainID)),
		},
		apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"TacticAuth": {
				{Name: "address", Type: "address"},
				{Name: "timestamp", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "message", Type: "string"},
			},
		},
		apitypes.TypedDataMessage{
			"address":   a.address.Hex(),
			"timestamp": timestamp,
			"nonce":     fmt.Sprintf("%d", nonce),
			"message":   "This message attests that I control the given wallet",
		},
		"TacticAuth",
	)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	return "0x" + common.Bytes2Hex(sig), nil
}

func (a *Auth) signTypedData(
	domain *apitypes.TypedDataDomain,
	typesDef apitypes.Types,
	message apitypes.TypedDataMessage,
	primaryType string,
) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       typesDef,
		PrimaryType: primaryType,
		Domain:      *domain,
		Message:     message,
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("typed data hash: %w", err)
	}

	sig, err := crypto.Sign(hash, a.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign typed data: %w", err)
	}

	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// buildHMAC computes message = timestamp + method + path [+ body], signed
// with the L2 API secret.
func (a *Auth) buildHMAC(timestamp, method, path, body string) (string, error) {
	decoders := []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	}

	var secretBytes []byte
	var err error
	for _, dec := range decoders {
		secretBytes, err = dec.DecodeString(a.creds.Secret)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}

	message := timestamp + method + path + body

	mac := hmac.New(sha256.New, secretBytes)
	mac.Write([]byte(message))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}
