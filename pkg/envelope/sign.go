package envelope

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"

	apperrors "gnsnode/pkg/errors"
)

// Digest is SHA-256 over the canonical bytes.
func Digest(e *Envelope) ([32]byte, error) {
	c, err := Canonicalize(e)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(c), nil
}

// Sign hashes the canonical bytes and signs the 32-byte digest, not the
// canonical bytes themselves. The returned signature is lowercase hex.
func Sign(e *Envelope, priv ed25519.PrivateKey) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", apperrors.InvalidArg("private key must be 64 bytes")
	}
	d, err := Digest(e)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(ed25519.Sign(priv, d[:])), nil
}

// SignInPlace signs e and stores the signature on it.
func SignInPlace(e *Envelope, priv ed25519.PrivateKey) error {
	sig, err := Sign(e, priv)
	if err != nil {
		return err
	}
	e.Signature = sig
	return nil
}

// Verify recomputes the digest and checks sig against pub.
func Verify(e *Envelope, sig string, pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	raw, err := hex.DecodeString(sig)
	if err != nil || len(raw) != ed25519.SignatureSize {
		return false
	}
	d, err := Digest(e)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, d[:], raw)
}

// Check verifies e.Signature against e.FromPublicKey, distinguishing a
// malformed envelope from a signature mismatch.
func Check(e *Envelope) error {
	if _, err := Canonicalize(e); err != nil {
		return err
	}
	pub, err := ParsePublicKey(e.FromPublicKey)
	if err != nil {
		return apperrors.ErrMalformedEnvelope
	}
	if !Verify(e, e.Signature, pub) {
		return apperrors.ErrInvalidSignature
	}
	return nil
}
