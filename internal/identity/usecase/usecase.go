package usecase

import (
	"context"
	"encoding/json"
	"time"

	"gnsnode/config"
	"gnsnode/internal/identity"
	models "gnsnode/internal/identity/model"
	"gnsnode/internal/identity/repository"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/errors"
	"gnsnode/pkg/logger"

	pkgerrors "github.com/pkg/errors"
)

type IdentityUsecase struct {
	repo       identity.Repository
	tasks      identity.TaskQueue
	granter    identity.Granter
	replicator identity.Replicator
	logger     logger.Logger
	config     config.Config
	now        func() time.Time
}

func NewIdentityUsecase(repo identity.Repository, logger logger.Logger, config config.Config) *IdentityUsecase {
	return &IdentityUsecase{
		repo:   repo,
		logger: logger.With("component", "identity"),
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithWelcomeGrant routes successful claims to the settlement collaborator
// through tasks. Grants never block or fail a claim.
func (uc *IdentityUsecase) WithWelcomeGrant(tasks identity.TaskQueue, granter identity.Granter) *IdentityUsecase {
	uc.tasks = tasks
	uc.granter = granter
	return uc
}

// SetReplicator wires push-on-write. It is set after construction because
// the synchronizer itself depends on this usecase.
func (uc *IdentityUsecase) SetReplicator(r identity.Replicator) {
	uc.replicator = r
}

func (uc *IdentityUsecase) replicate(entity identity.EntityType, item any) {
	if uc.replicator != nil {
		uc.replicator.Replicate(entity, item)
	}
}

func (uc *IdentityUsecase) PublishRecord(ctx context.Context, cmd identity.PublishRecordCommand) (*identity.RecordDTO, error) {
	rec, err := uc.verifyRecord(cmd.PublicKey, cmd.RecordJSON, cmd.Signature)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetRecord(ctx, rec.PkRoot)
	switch {
	case err == nil:
		if !rec.UpdatedAt.After(existing.UpdatedAt) {
			return nil, errors.ErrStaleRecord
		}
	case pkgerrors.Is(err, repository.ErrNotFound):
	default:
		uc.logger.Error("database error loading record", "pk", rec.PkRoot, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	applied, err := uc.repo.UpsertRecordIfNewer(ctx, rec)
	if err != nil {
		uc.logger.Error("database error storing record", "pk", rec.PkRoot, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	if !applied {
		// a concurrent writer stored an equal or newer version first
		return nil, errors.ErrStaleRecord
	}

	dto := identity.NewRecordDTO(rec)
	uc.replicate(identity.EntityRecords, *dto)
	uc.logger.Info("record published", "pk", rec.PkRoot, "version", rec.Version)
	return dto, nil
}

func (uc *IdentityUsecase) GetRecord(ctx context.Context, pk string) (*identity.RecordDTO, error) {
	if !envelope.IsPublicKeyHex(pk) {
		return nil, errors.ErrInvalidPublicKey
	}
	rec, err := uc.repo.GetRecord(ctx, pk)
	if err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.ErrRecordNotFound
		}
		uc.logger.Error("database error loading record", "pk", pk, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	return identity.NewRecordDTO(rec), nil
}

func (uc *IdentityUsecase) ClaimAlias(ctx context.Context, cmd identity.ClaimAliasCommand) (*identity.AliasDTO, error) {
	handle, err := normalizeHandle(cmd.Handle)
	if err != nil {
		return nil, err
	}
	if !envelope.IsPublicKeyHex(cmd.Identity) {
		return nil, errors.ErrInvalidPublicKey
	}
	proofJSON, proof, err := parseProof(cmd.Proof)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetAlias(ctx, handle); err == nil {
		return nil, errors.ErrHandleTaken
	} else if !pkgerrors.Is(err, repository.ErrNotFound) {
		uc.logger.Error("database error loading alias", "handle", handle, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	res, err := uc.repo.GetReservation(ctx, handle)
	switch {
	case err == nil:
		if !res.Expired(uc.now()) && res.PkRoot != cmd.Identity {
			return nil, errors.ErrHandleReserved
		}
	case pkgerrors.Is(err, repository.ErrNotFound):
	default:
		uc.logger.Error("database error loading reservation", "handle", handle, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	if err := uc.checkProof(proof); err != nil {
		return nil, err
	}
	if err := verifyAliasSignature(handle, cmd.Identity, proofJSON, cmd.Signature); err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetRecord(ctx, cmd.Identity); err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.ErrIdentityNotFound
		}
		uc.logger.Error("database error loading record", "pk", cmd.Identity, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	now := uc.now()
	alias := &models.Alias{
		Handle:          handle,
		PkRoot:          cmd.Identity,
		BreadcrumbCount: proof.BreadcrumbCount,
		TrustScore:      proof.TrustScore,
		ProofJSON:       string(proofJSON),
		Signature:       cmd.Signature,
		CreatedAt:       now,
		SyncedAt:        now,
	}
	if err := uc.repo.CreateAlias(ctx, alias); err != nil {
		if pkgerrors.Is(err, repository.ErrDuplicate) {
			// lost the race on the handle's primary key
			return nil, errors.ErrHandleTaken
		}
		uc.logger.Error("database error creating alias", "handle", handle, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	dto := identity.NewAliasDTO(alias)
	uc.replicate(identity.EntityAliases, *dto)
	uc.scheduleWelcomeGrant(handle, cmd.Identity)
	uc.logger.Info("alias claimed", "handle", handle, "pk", cmd.Identity)
	return dto, nil
}

func (uc *IdentityUsecase) scheduleWelcomeGrant(handle, pk string) {
	if !uc.config.Ledger.WelcomeGrant || uc.tasks == nil || uc.granter == nil {
		return
	}
	ok := uc.tasks.Enqueue("welcome_grant", func(ctx context.Context) error {
		return uc.granter.WelcomeGrant(ctx, handle, pk)
	})
	if !ok {
		uc.logger.Warn("welcome grant not scheduled", "handle", handle, "pk", pk)
	}
}

func (uc *IdentityUsecase) GetAlias(ctx context.Context, handle string) (*identity.AliasDTO, error) {
	h, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	alias, err := uc.repo.GetAlias(ctx, h)
	if err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.ErrAliasNotFound
		}
		uc.logger.Error("database error loading alias", "handle", h, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	return identity.NewAliasDTO(alias), nil
}

func (uc *IdentityUsecase) CheckHandle(ctx context.Context, handle string) (*identity.HandleAvailabilityDTO, error) {
	h, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	out := &identity.HandleAvailabilityDTO{Handle: h}

	if _, err := uc.repo.GetAlias(ctx, h); err == nil {
		out.Claimed = true
	} else if !pkgerrors.Is(err, repository.ErrNotFound) {
		uc.logger.Error("database error loading alias", "handle", h, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	res, err := uc.repo.GetReservation(ctx, h)
	switch {
	case err == nil:
		if !res.Expired(uc.now()) {
			out.Reserved = true
			out.ReservedBy = res.PkRoot
			exp := res.ExpiresAt
			out.ExpiresAt = &exp
		}
	case pkgerrors.Is(err, repository.ErrNotFound):
	default:
		uc.logger.Error("database error loading reservation", "handle", h, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	out.Available = !out.Claimed && !out.Reserved
	return out, nil
}

func (uc *IdentityUsecase) ReserveHandle(ctx context.Context, cmd identity.ReserveHandleCommand) (*identity.ReservationDTO, error) {
	handle, err := normalizeHandle(cmd.Handle)
	if err != nil {
		return nil, err
	}
	if !envelope.IsPublicKeyHex(cmd.Identity) {
		return nil, errors.ErrInvalidPublicKey
	}
	msg, err := identity.ReservationSigningBytes(handle, cmd.Identity)
	if err != nil {
		return nil, errors.InvalidArg("reservation could not be encoded")
	}
	if !envelope.VerifyDetached(cmd.Identity, msg, cmd.Signature) {
		return nil, errors.ErrInvalidSignature
	}

	if _, err := uc.repo.GetAlias(ctx, handle); err == nil {
		return nil, errors.ErrHandleTaken
	} else if !pkgerrors.Is(err, repository.ErrNotFound) {
		uc.logger.Error("database error loading alias", "handle", handle, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	now := uc.now()
	res := &models.Reservation{
		Handle:     handle,
		PkRoot:     cmd.Identity,
		ReservedAt: now,
		ExpiresAt:  now.Add(uc.config.Ledger.ReservationTTL),
	}
	if err := uc.repo.CreateReservation(ctx, res, now); err != nil {
		if pkgerrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.ErrHandleReserved
		}
		uc.logger.Error("database error creating reservation", "handle", handle, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	return &identity.ReservationDTO{
		Handle:     res.Handle,
		Identity:   res.PkRoot,
		ReservedAt: res.ReservedAt,
		ExpiresAt:  res.ExpiresAt,
	}, nil
}

func (uc *IdentityUsecase) PublishEpoch(ctx context.Context, cmd identity.PublishEpochCommand) (*identity.EpochDTO, error) {
	if !envelope.IsPublicKeyHex(cmd.PublicKey) {
		return nil, errors.ErrInvalidPublicKey
	}
	if cmd.Header.EpochIndex != cmd.Index {
		return nil, errors.InvalidArg("epoch_index does not match the path index")
	}
	if err := validateEpochHeader(cmd.Header); err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetEpoch(ctx, cmd.PublicKey, cmd.Index); err == nil {
		return nil, errors.ErrEpochExists
	} else if !pkgerrors.Is(err, repository.ErrNotFound) {
		uc.logger.Error("database error loading epoch", "pk", cmd.PublicKey, "index", cmd.Index, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	if err := uc.checkChainLink(ctx, cmd.PublicKey, cmd.Header); err != nil {
		return nil, err
	}
	epoch, err := buildEpoch(cmd.PublicKey, cmd.Header, cmd.Signature)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetRecord(ctx, cmd.PublicKey); err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.ErrIdentityNotFound
		}
		uc.logger.Error("database error loading record", "pk", cmd.PublicKey, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	now := uc.now()
	epoch.PublishedAt = now
	epoch.SyncedAt = now
	if err := uc.repo.CreateEpoch(ctx, epoch); err != nil {
		if pkgerrors.Is(err, repository.ErrDuplicate) {
			// a concurrent publish took this index first
			return nil, errors.ErrEpochExists
		}
		uc.logger.Error("database error creating epoch", "pk", cmd.PublicKey, "index", cmd.Index, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	dto := identity.NewEpochDTO(epoch)
	uc.replicate(identity.EntityEpochs, *dto)
	uc.logger.Info("epoch published", "pk", cmd.PublicKey, "index", cmd.Index, "hash", epoch.EpochHash)
	return dto, nil
}

// checkChainLink requires epoch i-1 to exist and prev_epoch_hash to equal its hash.
func (uc *IdentityUsecase) checkChainLink(ctx context.Context, pk string, h models.EpochHeader) error {
	if h.EpochIndex == 0 {
		if h.PrevEpochHash != nil {
			return errors.InvalidArg("epoch 0 must not reference a previous epoch")
		}
		return nil
	}
	prev, err := uc.repo.GetEpoch(ctx, pk, h.EpochIndex-1)
	if err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return errors.ErrMissingPredecessor
		}
		uc.logger.Error("database error loading epoch", "pk", pk, "index", h.EpochIndex-1, "err", err)
		return errors.ErrStorageFailed(err)
	}
	if h.PrevEpochHash == nil || *h.PrevEpochHash != prev.EpochHash {
		return errors.ErrBrokenChain
	}
	return nil
}

func (uc *IdentityUsecase) GetEpoch(ctx context.Context, pk string, index int) (*identity.EpochDTO, error) {
	if !envelope.IsPublicKeyHex(pk) {
		return nil, errors.ErrInvalidPublicKey
	}
	e, err := uc.repo.GetEpoch(ctx, pk, index)
	if err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.ErrEpochNotFound
		}
		uc.logger.Error("database error loading epoch", "pk", pk, "index", index, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	return identity.NewEpochDTO(e), nil
}

func (uc *IdentityUsecase) ListEpochs(ctx context.Context, pk string) ([]*identity.EpochDTO, error) {
	if !envelope.IsPublicKeyHex(pk) {
		return nil, errors.ErrInvalidPublicKey
	}
	epochs, err := uc.repo.ListEpochs(ctx, pk)
	if err != nil {
		uc.logger.Error("database error listing epochs", "pk", pk, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	out := make([]*identity.EpochDTO, 0, len(epochs))
	for i := range epochs {
		out = append(out, identity.NewEpochDTO(&epochs[i]))
	}
	return out, nil
}

func (uc *IdentityUsecase) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := uc.repo.DeleteExpiredReservations(ctx, now)
	if err != nil {
		uc.logger.Error("database error sweeping reservations", "err", err)
		return 0, errors.ErrStorageFailed(err)
	}
	if n > 0 {
		uc.logger.Debug("expired reservations removed", "count", n)
	}
	return n, nil
}

func (uc *IdentityUsecase) checkProof(p models.Proof) error {
	gate := uc.config.Ledger
	if p.BreadcrumbCount < gate.MinBreadcrumbs {
		return errors.ErrInsufficientProof("breadcrumb_count", gate.MinBreadcrumbs, p.BreadcrumbCount)
	}
	if p.TrustScore < gate.MinTrustScore {
		return errors.ErrInsufficientProof("trust_score", gate.MinTrustScore, p.TrustScore)
	}
	return nil
}

// verifyRecord checks a signed record document and builds the row to store.
func (uc *IdentityUsecase) verifyRecord(pk string, raw json.RawMessage, sig string) (*models.Record, error) {
	if !envelope.IsPublicKeyHex(pk) {
		return nil, errors.ErrInvalidPublicKey
	}
	signed, err := identity.RecordSigningBytes(raw)
	if err != nil {
		return nil, errors.InvalidArg("record_json must be a JSON object")
	}
	var body models.RecordBody
	if err := json.Unmarshal(signed, &body); err != nil {
		return nil, errors.InvalidArg("record_json is not a valid identity record: " + err.Error())
	}
	if body.PkRoot != pk {
		return nil, errors.ErrRecordMismatch
	}
	if err := validateRecordBody(&body); err != nil {
		return nil, err
	}
	if !envelope.VerifyDetached(pk, signed, sig) {
		return nil, errors.ErrInvalidSignature
	}

	handle := body.Handle
	if handle != nil {
		h, _ := normalizeHandle(*handle)
		handle = &h
	}
	return &models.Record{
		PkRoot:          pk,
		Version:         body.Version,
		Handle:          handle,
		EncryptionKey:   body.EncryptionKey,
		Endpoints:       body.Endpoints,
		EpochRoots:      body.EpochRoots,
		TrustScore:      body.TrustScore,
		BreadcrumbCount: body.BreadcrumbCount,
		RecordJSON:      string(signed),
		Signature:       sig,
		CreatedAt:       body.CreatedAt.UTC(),
		UpdatedAt:       body.UpdatedAt.UTC(),
		SyncedAt:        uc.now(),
	}, nil
}

func verifyAliasSignature(handle, pk string, proof json.RawMessage, sig string) error {
	msg, err := identity.AliasSigningBytes(handle, pk, proof)
	if err != nil {
		return errors.InvalidArg("alias claim could not be encoded")
	}
	if !envelope.VerifyDetached(pk, msg, sig) {
		return errors.ErrInvalidSignature
	}
	return nil
}

// buildEpoch computes the node-side hash, checks any client-supplied one
// and verifies the owner's signature.
func buildEpoch(pk string, h models.EpochHeader, sig string) (*models.Epoch, error) {
	hash, err := identity.EpochHash(h)
	if err != nil {
		return nil, errors.InvalidArg("epoch header could not be encoded")
	}
	if h.EpochHash != "" && h.EpochHash != hash {
		return nil, errors.ErrEpochHashMismatch
	}
	msg, err := identity.EpochSigningBytes(h)
	if err != nil {
		return nil, errors.InvalidArg("epoch header could not be encoded")
	}
	if !envelope.VerifyDetached(pk, msg, sig) {
		return nil, errors.ErrInvalidSignature
	}
	return &models.Epoch{
		PkRoot:        pk,
		EpochIndex:    h.EpochIndex,
		StartTime:     h.StartTime,
		EndTime:       h.EndTime,
		MerkleRoot:    h.MerkleRoot,
		BlockCount:    h.BlockCount,
		PrevEpochHash: h.PrevEpochHash,
		Signature:     sig,
		EpochHash:     hash,
	}, nil
}
