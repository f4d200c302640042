package pairing

import "gnsnode/pkg/canonical"

func ApprovalSigningBytes(sessionID, challenge, pk string) ([]byte, error) {
	return canonical.Marshal(map[string]any{
		"action":     "approve",
		"challenge":  challenge,
		"public_key": pk,
		"session_id": sessionID,
	})
}
