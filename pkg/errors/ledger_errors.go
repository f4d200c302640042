package errors

var (
	// Crypto verification, shared by every component that checks signatures
	ErrInvalidSignature  = New(CodeInvalidSignature, "signature verification failed")
	ErrDecryptionFailed  = New(CodeDecryptionFailed, "decryption failed")
	ErrMalformedEnvelope = New(CodeMalformedEnvelope, "malformed envelope")

	// Identity ledger
	ErrInvalidPublicKey   = InvalidArg("public key must be 64 hex characters")
	ErrInvalidHandle      = InvalidArg("handle must be 3-20 chars, lowercase letters, numbers and underscores only")
	ErrRecordNotFound     = NotFound("identity record not found")
	ErrRecordMismatch     = InvalidArg("record pk_root does not match path key")
	ErrStaleRecord        = Conflict("record updated_at is not newer than the stored record")
	ErrAliasNotFound      = NotFound("alias not found")
	ErrHandleTaken        = Conflict("handle is already claimed")
	ErrHandleReserved     = Conflict("handle is reserved by another identity")
	ErrIdentityNotFound   = NotFound("identity not found, publish a record first")
	ErrEpochExists        = Conflict("epoch index already published")
	ErrEpochNotFound      = NotFound("epoch not found")
	ErrMissingPredecessor = InvalidArg("previous epoch has not been published")
	ErrBrokenChain        = InvalidArg("prev_epoch_hash does not match the previous epoch_hash")
	ErrEpochHashMismatch  = InvalidArg("epoch_hash does not match the epoch header")
	ErrReservationExpired = Expired("reservation has expired")

	// Messaging
	ErrEnvelopeExists    = Conflict("envelope id already exists")
	ErrEnvelopeNotFound  = NotFound("envelope not found")
	ErrSenderMismatch    = Forbidden("fromPublicKey does not match the authenticated identity")
	ErrEnvelopeExpired   = Expired("envelope has already expired")
	ErrTooManyRecipients = InvalidArg("too many recipients")

	// Pairing and authentication
	ErrSessionNotFound       = NotFound("pairing session not found")
	ErrSessionExpired        = Expired("pairing session has expired")
	ErrSessionAlreadyClaimed = Conflict("pairing session already approved")
	ErrInvalidToken          = Unauthorized("invalid or revoked session token")
	ErrTokenExpired          = Expired("session token has expired")
	ErrStaleTimestamp        = Unauthorized("request timestamp outside allowed clock skew")
	ErrMissingCredentials    = Unauthorized("missing authentication")
)

// ErrInsufficientProof names the deficit of a claim that failed the movement gate.
func ErrInsufficientProof(field string, required, current any) error {
	return (&AppError{
		Code:    CodePermissionDenied,
		Message: "insufficient " + field + " to claim a handle",
	}).WithDetails(map[string]any{
		"field":    field,
		"required": required,
		"current":  current,
	})
}

func ErrStorageFailed(cause error) error {
	return Wrap(CodeInternal, "storage failure", cause)
}
