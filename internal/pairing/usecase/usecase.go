package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"gnsnode/config"
	"gnsnode/internal/pairing"
	models "gnsnode/internal/pairing/model"
	"gnsnode/internal/pairing/repository"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/errors"
	"gnsnode/pkg/logger"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

type PairingUsecase struct {
	repo   pairing.Repository
	logger logger.Logger
	config config.Config
	now    func() time.Time
}

func NewPairingUsecase(repo pairing.Repository, logger logger.Logger, config config.Config) *PairingUsecase {
	return &PairingUsecase{
		repo:   repo,
		logger: logger.With("component", "pairing"),
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (uc *PairingUsecase) CreateSession(ctx context.Context) (*pairing.SessionDTO, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		uc.logger.Error("failed to generate challenge", "err", err)
		return nil, errors.Internal("crypto rand failed")
	}
	now := uc.now()
	s := &models.Session{
		ID:                 uuid.New(),
		Challenge:          hex.EncodeToString(raw),
		Status:             models.StatusPending,
		ChallengeExpiresAt: now.Add(uc.config.Auth.ChallengeTTL),
		CreatedAt:          now,
	}
	if err := uc.repo.CreateSession(ctx, s); err != nil {
		uc.logger.Error("failed to save pairing session", "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	return &pairing.SessionDTO{
		SessionID: s.ID.String(),
		Challenge: s.Challenge,
		ExpiresAt: s.ChallengeExpiresAt,
	}, nil
}

func (uc *PairingUsecase) Approve(ctx context.Context, cmd pairing.ApproveCommand) (*pairing.SessionStatusDTO, error) {
	if !envelope.IsPublicKeyHex(cmd.PublicKey) {
		return nil, errors.ErrInvalidPublicKey
	}
	s, err := uc.load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	switch s.EffectiveStatus(now) {
	case models.StatusExpired:
		return nil, errors.ErrSessionExpired
	case models.StatusApproved, models.StatusRevoked:
		return nil, errors.ErrSessionAlreadyClaimed
	}

	msg, err := pairing.ApprovalSigningBytes(s.ID.String(), s.Challenge, cmd.PublicKey)
	if err != nil {
		return nil, errors.InvalidArg("approval could not be encoded")
	}
	if !envelope.VerifyDetached(cmd.PublicKey, msg, cmd.Signature) {
		return nil, errors.ErrInvalidSignature
	}

	token, hash, err := newToken()
	if err != nil {
		uc.logger.Error("failed to generate session token", "err", err)
		return nil, errors.Internal("crypto rand failed")
	}
	expires := now.Add(uc.config.Auth.SessionTTL)
	s.Status = models.StatusApproved
	s.PkRoot = &cmd.PublicKey
	s.TokenHash = hash
	s.PendingToken = &token
	s.ApprovedAt = &now
	s.SessionExpiresAt = &expires

	if err := uc.repo.ApproveSession(ctx, s, now); err != nil {
		if pkgerrors.Is(err, repository.ErrConflict) {
			return nil, errors.ErrSessionAlreadyClaimed
		}
		uc.logger.Error("database error approving session", "session_id", s.ID, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	uc.logger.Info("pairing session approved", "session_id", s.ID, "pk", cmd.PublicKey)
	return &pairing.SessionStatusDTO{
		SessionID: s.ID.String(),
		Status:    models.StatusApproved,
		PublicKey: cmd.PublicKey,
		ExpiresAt: &expires,
	}, nil
}

// Status reports the session to the polling companion. The bearer token is
// included only in the first response after approval.
func (uc *PairingUsecase) Status(ctx context.Context, id string) (*pairing.SessionStatusDTO, error) {
	s, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	status := s.EffectiveStatus(uc.now())
	dto := &pairing.SessionStatusDTO{SessionID: s.ID.String(), Status: status}

	switch status {
	case models.StatusPending:
		dto.ExpiresAt = &s.ChallengeExpiresAt
	case models.StatusApproved:
		dto.PublicKey = *s.PkRoot
		dto.ExpiresAt = s.SessionExpiresAt
		token, err := uc.repo.TakePendingToken(ctx, s.ID)
		switch {
		case err == nil:
			dto.Token = token
		case pkgerrors.Is(err, repository.ErrNotFound):
		default:
			uc.logger.Error("database error releasing token", "session_id", s.ID, "err", err)
			return nil, errors.ErrStorageFailed(err)
		}
	}
	return dto, nil
}

func (uc *PairingUsecase) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.ErrMissingCredentials
	}
	sum := sha256.Sum256([]byte(token))
	s, err := uc.repo.GetSessionByTokenHash(ctx, sum[:])
	if err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return "", errors.ErrInvalidToken
		}
		uc.logger.Error("database error resolving token", "err", err)
		return "", errors.ErrStorageFailed(err)
	}
	switch s.EffectiveStatus(uc.now()) {
	case models.StatusApproved:
		return *s.PkRoot, nil
	case models.StatusExpired:
		return "", errors.ErrTokenExpired
	default:
		return "", errors.ErrInvalidToken
	}
}

func (uc *PairingUsecase) Revoke(ctx context.Context, id, pk string) error {
	s, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if s.PkRoot == nil || *s.PkRoot != pk {
		return errors.Forbidden("session belongs to another identity")
	}
	ok, err := uc.repo.RevokeSession(ctx, s.ID, pk, uc.now())
	if err != nil {
		uc.logger.Error("database error revoking session", "session_id", s.ID, "err", err)
		return errors.ErrStorageFailed(err)
	}
	if ok {
		uc.logger.Info("pairing session revoked", "session_id", s.ID, "pk", pk)
	}
	return nil
}

func (uc *PairingUsecase) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := uc.repo.DeleteExpired(ctx, now)
	if err != nil {
		uc.logger.Error("failed to sweep pairing sessions", "err", err)
		return 0, errors.ErrStorageFailed(err)
	}
	return n, nil
}

func (uc *PairingUsecase) load(ctx context.Context, id string) (*models.Session, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrSessionNotFound
	}
	s, err := uc.repo.GetSession(ctx, sid)
	if err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.ErrSessionNotFound
		}
		uc.logger.Error("database error loading session", "session_id", id, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	return s, nil
}

func newToken() (string, []byte, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(token))
	return token, sum[:], nil
}
