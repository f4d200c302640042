package envelope

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// IdentityKeyPair is an Ed25519 identity with its hex public key (pk_root).
type IdentityKeyPair struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	PublicHex  string
}

// EncryptionKeyPair is an X25519 keypair, kept separate from the identity key.
type EncryptionKeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
	PublicHex  string
}

func GenerateIdentity() (*IdentityKeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("envelope: generate identity key: %w", err)
	}
	return &IdentityKeyPair{PrivateKey: priv, PublicKey: pub, PublicHex: hex.EncodeToString(pub)}, nil
}

func GenerateEncryptionKey() (*EncryptionKeyPair, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("envelope: generate encryption key: %w", err)
	}
	pub := priv.PublicKey().Bytes()
	return &EncryptionKeyPair{PrivateKey: priv.Bytes(), PublicKey: pub, PublicHex: hex.EncodeToString(pub)}, nil
}

// IsPublicKeyHex reports whether s is a 32-byte key in lowercase hex.
func IsPublicKeyHex(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// ParsePublicKey decodes a hex Ed25519 public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	if !IsPublicKeyHex(s) {
		return nil, fmt.Errorf("envelope: public key must be 64 lowercase hex characters")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("envelope: decode public key: %w", err)
	}
	return ed25519.PublicKey(b), nil
}

// VerifyDetached checks a hex Ed25519 signature over msg by a hex public key.
// It is used for every signed ledger payload that is not an envelope.
func VerifyDetached(pubHex string, msg []byte, sigHex string) bool {
	pub, err := ParsePublicKey(pubHex)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}

// SignDetached is the signing counterpart of VerifyDetached.
func SignDetached(priv ed25519.PrivateKey, msg []byte) string {
	return hex.EncodeToString(ed25519.Sign(priv, msg))
}
