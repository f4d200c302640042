package usecase

import (
	"context"

	"gnsnode/internal/identity"
	models "gnsnode/internal/identity/model"
	"gnsnode/internal/identity/repository"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/errors"

	pkgerrors "github.com/pkg/errors"
)

// ApplyRecord replicates a peer's record: last writer wins by updated_at.
func (uc *IdentityUsecase) ApplyRecord(ctx context.Context, item identity.RecordDTO) (identity.ApplyOutcome, error) {
	rec, err := uc.verifyRecord(item.PkRoot, item.RecordJSON, item.Signature)
	if err != nil {
		return identity.Skipped, err
	}
	applied, err := uc.repo.UpsertRecordIfNewer(ctx, rec)
	if err != nil {
		uc.logger.Error("database error applying record", "pk", rec.PkRoot, "err", err)
		return identity.Skipped, errors.ErrStorageFailed(err)
	}
	if !applied {
		return identity.Skipped, nil
	}
	return identity.Applied, nil
}

// ApplyAlias replicates a peer's claim: the first valid claim for a handle wins.
// A live local reservation does not block it.
func (uc *IdentityUsecase) ApplyAlias(ctx context.Context, item identity.AliasDTO) (identity.ApplyOutcome, error) {
	handle, err := normalizeHandle(item.Handle)
	if err != nil {
		return identity.Skipped, err
	}
	if !envelope.IsPublicKeyHex(item.Identity) {
		return identity.Skipped, errors.ErrInvalidPublicKey
	}
	proofJSON, proof, err := parseProof(item.Proof)
	if err != nil {
		return identity.Skipped, err
	}
	if err := uc.checkProof(proof); err != nil {
		return identity.Skipped, err
	}
	if err := verifyAliasSignature(handle, item.Identity, proofJSON, item.Signature); err != nil {
		return identity.Skipped, err
	}

	if _, err := uc.repo.GetAlias(ctx, handle); err == nil {
		return identity.Skipped, nil
	} else if !pkgerrors.Is(err, repository.ErrNotFound) {
		return identity.Skipped, errors.ErrStorageFailed(err)
	}

	createdAt := item.CreatedAt
	now := uc.now()
	if createdAt.IsZero() {
		createdAt = now
	}
	alias := &models.Alias{
		Handle:          handle,
		PkRoot:          item.Identity,
		BreadcrumbCount: proof.BreadcrumbCount,
		TrustScore:      proof.TrustScore,
		ProofJSON:       string(proofJSON),
		Signature:       item.Signature,
		CreatedAt:       createdAt.UTC(),
		SyncedAt:        now,
	}
	if err := uc.repo.CreateAlias(ctx, alias); err != nil {
		if pkgerrors.Is(err, repository.ErrDuplicate) {
			return identity.Skipped, nil
		}
		uc.logger.Error("database error applying alias", "handle", handle, "err", err)
		return identity.Skipped, errors.ErrStorageFailed(err)
	}
	return identity.Applied, nil
}

// ApplyEpoch replicates a peer's epoch. An existing (pk, index) is skipped
// without comparing contents; a new one must still link to its predecessor.
func (uc *IdentityUsecase) ApplyEpoch(ctx context.Context, item identity.EpochDTO) (identity.ApplyOutcome, error) {
	if !envelope.IsPublicKeyHex(item.PkRoot) {
		return identity.Skipped, errors.ErrInvalidPublicKey
	}
	h := item.Epoch
	if err := validateEpochHeader(h); err != nil {
		return identity.Skipped, err
	}

	if _, err := uc.repo.GetEpoch(ctx, item.PkRoot, h.EpochIndex); err == nil {
		return identity.Skipped, nil
	} else if !pkgerrors.Is(err, repository.ErrNotFound) {
		return identity.Skipped, errors.ErrStorageFailed(err)
	}

	if err := uc.checkChainLink(ctx, item.PkRoot, h); err != nil {
		return identity.Skipped, err
	}
	epoch, err := buildEpoch(item.PkRoot, h, item.Signature)
	if err != nil {
		return identity.Skipped, err
	}

	now := uc.now()
	epoch.PublishedAt = now
	epoch.SyncedAt = now
	if err := uc.repo.CreateEpoch(ctx, epoch); err != nil {
		if pkgerrors.Is(err, repository.ErrDuplicate) {
			return identity.Skipped, nil
		}
		uc.logger.Error("database error applying epoch", "pk", item.PkRoot, "index", h.EpochIndex, "err", err)
		return identity.Skipped, errors.ErrStorageFailed(err)
	}
	return identity.Applied, nil
}
