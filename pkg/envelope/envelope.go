// Package envelope is the stateless codec every client and node must agree on
// byte for byte: canonical serialization, hash-then-sign Ed25519 signatures
// and X25519 + HKDF-SHA256 + ChaCha20-Poly1305 payload sealing.
package envelope

import (
	"encoding/base64"

	apperrors "gnsnode/pkg/errors"
)

// Envelope is one signed, encrypted message unit addressed by public key.
// Optional fields are pointers; the canonical writer skips nil values.
type Envelope struct {
	ID                 string     `json:"id"`
	FromPublicKey      string     `json:"fromPublicKey"`
	ToPublicKeys       []string   `json:"toPublicKeys"`
	CcPublicKeys       []string   `json:"ccPublicKeys,omitempty"`
	PayloadType        string     `json:"payloadType"`
	EncryptedPayload   string     `json:"encryptedPayload"`
	EphemeralPublicKey string     `json:"ephemeralPublicKey"`
	Nonce              string     `json:"nonce"`
	SenderCopy         *SealedB64 `json:"senderCopy,omitempty"`
	ThreadID           *string    `json:"threadId,omitempty"`
	ReplyToID          *string    `json:"replyToId,omitempty"`
	ForwardOfID        *string    `json:"forwardOfId,omitempty"`
	Timestamp          int64      `json:"timestamp"`
	ExpiresAt          *int64     `json:"expiresAt,omitempty"`
	Signature          string     `json:"signature,omitempty"`
}

// SealedB64 is the wire form of a Sealed payload: base64 (std) fields.
type SealedB64 struct {
	EncryptedPayload   string `json:"encryptedPayload"`
	EphemeralPublicKey string `json:"ephemeralPublicKey"`
	Nonce              string `json:"nonce"`
}

// Recipients returns to ∪ cc without duplicates, to-list first.
func (e *Envelope) Recipients() []string {
	seen := make(map[string]struct{}, len(e.ToPublicKeys)+len(e.CcPublicKeys))
	out := make([]string, 0, len(e.ToPublicKeys)+len(e.CcPublicKeys))
	for _, list := range [][]string{e.ToPublicKeys, e.CcPublicKeys} {
		for _, pk := range list {
			if _, ok := seen[pk]; ok {
				continue
			}
			seen[pk] = struct{}{}
			out = append(out, pk)
		}
	}
	return out
}

// SetPayload stores the recipient-addressed sealed payload.
func (e *Envelope) SetPayload(s *Sealed) {
	b := s.Encode()
	e.EncryptedPayload = b.EncryptedPayload
	e.EphemeralPublicKey = b.EphemeralPublicKey
	e.Nonce = b.Nonce
}

// Payload decodes the recipient-addressed sealed payload.
func (e *Envelope) Payload() (*Sealed, error) {
	return SealedB64{
		EncryptedPayload:   e.EncryptedPayload,
		EphemeralPublicKey: e.EphemeralPublicKey,
		Nonce:              e.Nonce,
	}.Decode()
}

// Encode converts s to its wire form.
func (s *Sealed) Encode() SealedB64 {
	return SealedB64{
		EncryptedPayload:   base64.StdEncoding.EncodeToString(s.Ciphertext),
		EphemeralPublicKey: base64.StdEncoding.EncodeToString(s.EphemeralPublicKey),
		Nonce:              base64.StdEncoding.EncodeToString(s.Nonce),
	}
}

// Decode parses the wire form. Any decoding problem is MalformedEnvelope.
func (b SealedB64) Decode() (*Sealed, error) {
	ct, err := base64.StdEncoding.DecodeString(b.EncryptedPayload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMalformedEnvelope, "encryptedPayload is not base64", err)
	}
	eph, err := base64.StdEncoding.DecodeString(b.EphemeralPublicKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMalformedEnvelope, "ephemeralPublicKey is not base64", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(b.Nonce)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMalformedEnvelope, "nonce is not base64", err)
	}
	return &Sealed{Ciphertext: ct, EphemeralPublicKey: eph, Nonce: nonce}, nil
}
