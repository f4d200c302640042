package envelope

import (
	"bytes"
	"sort"
	"strconv"

	"gnsnode/pkg/canonical"
	apperrors "gnsnode/pkg/errors"
)

// Canonicalize emits the exact bytes an envelope is signed over.
//
// The field set is fixed and written in alphabetical key order:
//
//	ccPublicKeys, encryptedPayload, ephemeralPublicKey, expiresAt, forwardOfId,
//	fromPublicKey, id, nonce, payloadType, replyToId, senderCopy, threadId,
//	timestamp, toPublicKeys
//
// Absent optional fields are omitted, recipient lists are sorted, and the
// signature itself is never part of the output.
func Canonicalize(e *Envelope) ([]byte, error) {
	if err := validate(e); err != nil {
		return nil, err
	}

	w := &fieldWriter{}
	w.buf.WriteByte('{')
	if len(e.CcPublicKeys) > 0 {
		w.strings("ccPublicKeys", sortedCopy(e.CcPublicKeys))
	}
	w.str("encryptedPayload", e.EncryptedPayload)
	w.str("ephemeralPublicKey", e.EphemeralPublicKey)
	if e.ExpiresAt != nil {
		w.int("expiresAt", *e.ExpiresAt)
	}
	if e.ForwardOfID != nil {
		w.str("forwardOfId", *e.ForwardOfID)
	}
	w.str("fromPublicKey", e.FromPublicKey)
	w.str("id", e.ID)
	w.str("nonce", e.Nonce)
	w.str("payloadType", e.PayloadType)
	if e.ReplyToID != nil {
		w.str("replyToId", *e.ReplyToID)
	}
	if e.SenderCopy != nil {
		w.key("senderCopy")
		w.buf.WriteByte('{')
		inner := &fieldWriter{}
		inner.str("encryptedPayload", e.SenderCopy.EncryptedPayload)
		inner.str("ephemeralPublicKey", e.SenderCopy.EphemeralPublicKey)
		inner.str("nonce", e.SenderCopy.Nonce)
		w.buf.Write(inner.buf.Bytes())
		w.buf.WriteByte('}')
		if inner.err != nil && w.err == nil {
			w.err = inner.err
		}
	}
	if e.ThreadID != nil {
		w.str("threadId", *e.ThreadID)
	}
	w.int("timestamp", e.Timestamp)
	w.strings("toPublicKeys", sortedCopy(e.ToPublicKeys))
	w.buf.WriteByte('}')

	if w.err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMalformedEnvelope, "envelope could not be serialized", w.err)
	}
	return w.buf.Bytes(), nil
}

type fieldWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *fieldWriter) key(k string) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	w.literal(k)
	w.buf.WriteByte(':')
}

func (w *fieldWriter) literal(s string) {
	if err := canonical.String(&w.buf, s); err != nil && w.err == nil {
		w.err = err
	}
}

func (w *fieldWriter) str(k, v string) {
	w.key(k)
	w.literal(v)
}

func (w *fieldWriter) int(k string, v int64) {
	w.key(k)
	w.buf.WriteString(strconv.FormatInt(v, 10))
}

func (w *fieldWriter) strings(k string, vs []string) {
	w.key(k)
	w.buf.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.literal(v)
	}
	w.buf.WriteByte(']')
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func validate(e *Envelope) error {
	malformed := func(msg string) error {
		return apperrors.Wrap(apperrors.CodeMalformedEnvelope, msg, nil)
	}
	switch {
	case e == nil:
		return apperrors.ErrMalformedEnvelope
	case e.ID == "":
		return malformed("envelope id is required")
	case !IsPublicKeyHex(e.FromPublicKey):
		return malformed("fromPublicKey must be 64 lowercase hex characters")
	case len(e.ToPublicKeys) == 0:
		return malformed("at least one recipient is required")
	case e.PayloadType == "":
		return malformed("payloadType is required")
	case e.EncryptedPayload == "" || e.EphemeralPublicKey == "" || e.Nonce == "":
		return malformed("encrypted payload, ephemeral key and nonce are required")
	case e.Timestamp <= 0:
		return malformed("timestamp is required")
	}
	if e.SenderCopy != nil {
		sc := e.SenderCopy
		if sc.EncryptedPayload == "" || sc.EphemeralPublicKey == "" || sc.Nonce == "" {
			return malformed("senderCopy is incomplete")
		}
	}
	for _, list := range [][]string{e.ToPublicKeys, e.CcPublicKeys} {
		seen := make(map[string]struct{}, len(list))
		for _, pk := range list {
			if !IsPublicKeyHex(pk) {
				return malformed("recipient keys must be 64 lowercase hex characters")
			}
			if _, dup := seen[pk]; dup {
				return malformed("duplicate recipient key")
			}
			seen[pk] = struct{}{}
		}
	}
	return nil
}
