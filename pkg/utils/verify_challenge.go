package utils

import (
	"crypto/ed25519"
	"strconv"
	"time"

	"gnsnode/pkg/envelope"
	"gnsnode/pkg/errors"
)

// ChallengeMessage is the string a key-holding client signs to authenticate:
// "<unix-millis>:<hex public key>".
func ChallengeMessage(timestampMs int64, publicKey string) []byte {
	return []byte(strconv.FormatInt(timestampMs, 10) + ":" + publicKey)
}

// SignChallenge produces the hex signature ValidateChallenge expects.
func SignChallenge(priv ed25519.PrivateKey, publicKey string, timestampMs int64) string {
	return envelope.SignDetached(priv, ChallengeMessage(timestampMs, publicKey))
}

// ValidateChallenge checks a request signature over "timestamp:publicKey" and
// that the timestamp lies within maxSkew of now.
func ValidateChallenge(publicKey, timestamp, signature string, now time.Time, maxSkew time.Duration) error {
	if publicKey == "" || timestamp == "" || signature == "" {
		return errors.ErrMissingCredentials
	}
	if !envelope.IsPublicKeyHex(publicKey) {
		return errors.ErrInvalidPublicKey
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.InvalidArg("timestamp must be unix milliseconds")
	}
	skew := now.Sub(time.UnixMilli(ts))
	if skew < 0 {
		skew = -skew
	}
	if maxSkew > 0 && skew > maxSkew {
		return errors.ErrStaleTimestamp
	}
	if !envelope.VerifyDetached(publicKey, ChallengeMessage(ts, publicKey), signature) {
		return errors.ErrInvalidSignature
	}
	return nil
}
