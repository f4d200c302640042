package envelope

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"io"

	apperrors "gnsnode/pkg/errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// HKDFInfo binds derived keys to this protocol version.
const HKDFInfo = "gns-envelope-v1"

const (
	KeySize   = 32
	NonceSize = chacha20poly1305.NonceSize // 96 bits
	TagSize   = chacha20poly1305.Overhead  // 128 bits
)

// Sealed is an AEAD ciphertext (tag appended) plus what the recipient needs
// to re-derive the key.
type Sealed struct {
	Ciphertext         []byte
	EphemeralPublicKey []byte
	Nonce              []byte
}

// EncryptFor seals payload to a recipient X25519 public key using a fresh
// ephemeral keypair.
func EncryptFor(payload, recipientPub []byte) (*Sealed, error) {
	return encryptFor(rand.Reader, payload, recipientPub)
}

func encryptFor(rnd io.Reader, payload, recipientPub []byte) (*Sealed, error) {
	curve := ecdh.X25519()
	remote, err := curve.NewPublicKey(recipientPub)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid recipient encryption key", err)
	}
	eph, err := curve.GenerateKey(rnd)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "ephemeral key generation failed", err)
	}
	shared, err := eph.ECDH(remote)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "key agreement failed", err)
	}
	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "aead init failed", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rnd, nonce); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "nonce generation failed", err)
	}
	return &Sealed{
		Ciphertext:         aead.Seal(nil, nonce, payload, nil),
		EphemeralPublicKey: eph.PublicKey().Bytes(),
		Nonce:              nonce,
	}, nil
}

// DecryptFor opens s with the local X25519 private key. Every failure after
// input parsing is reported as DecryptionFailed and no plaintext is returned.
func DecryptFor(s *Sealed, recipientPriv []byte) ([]byte, error) {
	if s == nil || len(s.Nonce) != NonceSize || len(s.Ciphertext) < TagSize {
		return nil, apperrors.ErrDecryptionFailed
	}
	curve := ecdh.X25519()
	priv, err := curve.NewPrivateKey(recipientPriv)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid local encryption key", err)
	}
	eph, err := curve.NewPublicKey(s.EphemeralPublicKey)
	if err != nil {
		return nil, apperrors.ErrDecryptionFailed
	}
	shared, err := priv.ECDH(eph)
	if err != nil {
		return nil, apperrors.ErrDecryptionFailed
	}
	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, apperrors.ErrDecryptionFailed
	}
	plain, err := aead.Open(nil, s.Nonce, s.Ciphertext, nil)
	if err != nil {
		return nil, apperrors.ErrDecryptionFailed
	}
	return plain, nil
}

func deriveKey(shared []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, []byte(HKDFInfo)), key); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "key derivation failed", err)
	}
	return key, nil
}
