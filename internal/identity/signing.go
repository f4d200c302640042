package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	models "gnsnode/internal/identity/model"
	"gnsnode/pkg/canonical"
)

// Signed payloads. Each is the canonical JSON form of the document and is
// signed directly with Ed25519 by the owning identity key.

func RecordSigningBytes(recordJSON json.RawMessage) ([]byte, error) {
	return canonical.Bytes(recordJSON)
}

func AliasSigningBytes(handle, identity string, proof json.RawMessage) ([]byte, error) {
	return canonical.Marshal(map[string]any{
		"handle":   handle,
		"identity": identity,
		"proof":    proof,
	})
}

func ReservationSigningBytes(handle, identity string) ([]byte, error) {
	return canonical.Marshal(map[string]any{
		"action":   "reserve",
		"handle":   handle,
		"identity": identity,
	})
}

// EpochSigningBytes drops epoch_hash: the hash is computed over these same bytes.
func EpochSigningBytes(h models.EpochHeader) ([]byte, error) {
	h.EpochHash = ""
	return canonical.Marshal(h)
}

// EpochHash is hex(sha256(canonical header)).
func EpochHash(h models.EpochHeader) (string, error) {
	b, err := EpochSigningBytes(h)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
