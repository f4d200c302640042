package usecase

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	models "gnsnode/internal/identity/model"
	"gnsnode/pkg/canonical"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/errors"
)

var handleRegex = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// normalizeHandle lowercases and strips a leading '@' before validating.
func normalizeHandle(handle string) (string, error) {
	h := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	if !handleRegex.MatchString(h) {
		return "", errors.ErrInvalidHandle
	}
	return h, nil
}

// parseProof returns the canonical proof bytes (what gets signed and stored)
// and the gating fields.
func parseProof(raw json.RawMessage) (json.RawMessage, models.Proof, error) {
	var p models.Proof
	if len(raw) == 0 {
		return nil, p, errors.InvalidArg("proof is required")
	}
	c, err := canonical.Bytes(raw)
	if err != nil {
		return nil, p, errors.InvalidArg("proof must be a JSON object")
	}
	if err := json.Unmarshal(c, &p); err != nil {
		return nil, p, errors.InvalidArg("proof is malformed: " + err.Error())
	}
	return c, p, nil
}

var (
	endpointTypes     = map[string]bool{"direct": true, "relay": true, "onion": true}
	endpointProtocols = map[string]bool{"quic": true, "wss": true, "https": true}
)

func validateRecordBody(b *models.RecordBody) error {
	if b.Version < 1 {
		return errors.InvalidArg("version must be at least 1")
	}
	if b.UpdatedAt.IsZero() {
		return errors.InvalidArg("updated_at is required")
	}
	if b.Handle != nil {
		if _, err := normalizeHandle(*b.Handle); err != nil {
			return err
		}
	}
	if b.EncryptionKey != nil && !envelope.IsPublicKeyHex(*b.EncryptionKey) {
		return errors.InvalidArg("encryption_key must be 64 hex characters")
	}
	if b.BreadcrumbCount < 0 {
		return errors.InvalidArg("breadcrumb_count must not be negative")
	}
	for i, ep := range b.Endpoints {
		if !endpointTypes[ep.Type] {
			return errors.InvalidArgDetails("endpoint type must be direct, relay or onion",
				map[string]any{"index": i, "type": ep.Type})
		}
		if !endpointProtocols[ep.Protocol] {
			return errors.InvalidArgDetails("endpoint protocol must be quic, wss or https",
				map[string]any{"index": i, "protocol": ep.Protocol})
		}
		if ep.Address == "" {
			return errors.InvalidArg("endpoint address is required")
		}
		if ep.Port != nil && (*ep.Port < 1 || *ep.Port > 65535) {
			return errors.InvalidArg("endpoint port must be between 1 and 65535")
		}
	}
	return nil
}

func validateEpochHeader(h models.EpochHeader) error {
	if h.EpochIndex < 0 {
		return errors.InvalidArg("epoch_index must not be negative")
	}
	if h.MerkleRoot == "" {
		return errors.InvalidArg("merkle_root is required")
	}
	if h.BlockCount < 0 {
		return errors.InvalidArg("block_count must not be negative")
	}
	var start, end time.Time
	var err error
	if h.StartTime != "" {
		if start, err = time.Parse(time.RFC3339Nano, h.StartTime); err != nil {
			return errors.InvalidArg("start_time must be RFC 3339")
		}
	}
	if h.EndTime != "" {
		if end, err = time.Parse(time.RFC3339Nano, h.EndTime); err != nil {
			return errors.InvalidArg("end_time must be RFC 3339")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return errors.InvalidArg("end_time is before start_time")
	}
	return nil
}
