package turnkey

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

const stampScheme = "SIGNATURE_SCHEME_TK_API_P256"

// APIKeyPair is a P-256 API key pair in the hex encoding the signer API uses:
// the private key is the 32-byte scalar, the public key is the compressed point.
type APIKeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

type apiStamp struct {
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
	Scheme    string `json:"scheme"`
}

// GenerateAPIKeyPair creates a fresh API key pair.
func GenerateAPIKeyPair() (APIKeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return APIKeyPair{}, fmt.Errorf("failed to generate P-256 key: %w", err)
	}
	scalar, err := priv.Bytes()
	if err != nil {
		return APIKeyPair{}, fmt.Errorf("failed to encode private key: %w", err)
	}
	pub, err := compressedPublicKey(&priv.PublicKey)
	if err != nil {
		return APIKeyPair{}, err
	}
	return APIKeyPair{
		PublicKey:  pub,
		PrivateKey: hex.EncodeToString(scalar),
	}, nil
}

// Stamp signs body with the API private key and returns the X-Stamp header value.
func Stamp(body []byte, publicKey, privateKeyHex string) (string, error) {
	priv, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256(body)
	der, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	stamp, err := json.Marshal(apiStamp{
		PublicKey: publicKey,
		Signature: hex.EncodeToString(der),
		Scheme:    stampScheme,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal stamp: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(stamp), nil
}

func parsePrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	raw, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid API private key: %w", err)
	}
	defer clear(raw)

	priv, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API private key: %w", err)
	}
	return priv, nil
}

func compressedPublicKey(pub *ecdsa.PublicKey) (string, error) {
	// 0x04 || X || Y
	point, err := pub.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to encode public key: %w", err)
	}
	x, y := point[1:33], point[33:]
	prefix := byte(0x02) | y[len(y)-1]&1
	return hex.EncodeToString(append([]byte{prefix}, x...)), nil
}
