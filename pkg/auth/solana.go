package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyEd25519Signature verifies a Solana-style ed25519 signature over the
// message. The public key and signature are hex encoded.
func VerifyEd25519Signature(message, signature, publicKey string) (bool, error) {
	pubBytes, err := hex.DecodeString(strings.TrimPrefix(publicKey, "0x"))
	if err != nil {
		return false, fmt.Errorf("invalid public key hex: %w", err)
	}
	if len(pubBytes) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid public key length: expected %d, got %d", ed25519.PublicKeySize, len(pubBytes))
	}

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return false, fmt.Errorf("invalid signature length: expected %d, got %d", ed25519.SignatureSize, len(sigBytes))
	}

	return ed25519.Verify(ed25519.PublicKey(pubBytes), []byte(message), sigBytes), nil
}
