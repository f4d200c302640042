package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gnsnode/config"
	"gnsnode/internal/gossip"
	"gnsnode/internal/gossip/repository"
	"gnsnode/internal/identity"
	"gnsnode/pkg/errors"
	"gnsnode/pkg/logger"

	pkgerrors "github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
)

type SyncUsecase struct {
	repo    gossip.Repository
	source  gossip.Source
	applier gossip.Applier
	client  gossip.PeerClient
	tasks   identity.TaskQueue
	logger  logger.Logger
	config  config.Sync
	now     func() time.Time

	mu    deadlock.Mutex
	round int
}

func NewSyncUsecase(repo gossip.Repository, source gossip.Source, applier gossip.Applier, client gossip.PeerClient,
	tasks identity.TaskQueue, logger logger.Logger, config config.Config) *SyncUsecase {
	cfg := config.Sync
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 500
	}
	return &SyncUsecase{
		repo:    repo,
		source:  source,
		applier: applier,
		client:  client,
		tasks:   tasks,
		logger:  logger.With("component", "gossip", "node_id", cfg.NodeID),
		config:  cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SyncUsecase) Pull(ctx context.Context, entity identity.EntityType, since time.Time, limit int) (*gossip.PullResultDTO, error) {
	if !entity.Valid() {
		return nil, errors.InvalidArg("unknown entity type")
	}
	if limit <= 0 {
		limit = gossip.DefaultPullSize
	}
	if limit > uc.config.BatchLimit {
		limit = uc.config.BatchLimit
	}

	items, stamps, err := uc.list(ctx, entity, since, limit+1)
	if err != nil {
		uc.logger.Error("database error listing entities", "type", entity, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	res := &gossip.PullResultDTO{Type: entity, Items: items, NextSince: since}
	if len(items) > limit {
		res.Items = items[:limit]
		res.HasMore = true
	}
	res.Count = len(res.Items)
	if res.Count > 0 {
		res.NextSince = stamps[res.Count-1]
	}
	return res, nil
}

// list returns encoded DTOs and their synced_at stamps, oldest first.
func (uc *SyncUsecase) list(ctx context.Context, entity identity.EntityType, since time.Time, limit int) ([]json.RawMessage, []time.Time, error) {
	var (
		items  []any
		stamps []time.Time
	)
	switch entity {
	case identity.EntityRecords:
		rows, err := uc.source.ListRecordsSince(ctx, since, limit)
		if err != nil {
			return nil, nil, err
		}
		for i := range rows {
			items = append(items, identity.NewRecordDTO(&rows[i]))
			stamps = append(stamps, rows[i].SyncedAt)
		}
	case identity.EntityAliases:
		rows, err := uc.source.ListAliasesSince(ctx, since, limit)
		if err != nil {
			return nil, nil, err
		}
		for i := range rows {
			items = append(items, identity.NewAliasDTO(&rows[i]))
			stamps = append(stamps, rows[i].SyncedAt)
		}
	case identity.EntityEpochs:
		rows, err := uc.source.ListEpochsSince(ctx, since, limit)
		if err != nil {
			return nil, nil, err
		}
		for i := range rows {
			items = append(items, identity.NewEpochDTO(&rows[i]))
			stamps = append(stamps, rows[i].SyncedAt)
		}
	}

	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, raw)
	}
	return out, stamps, nil
}

// Push applies each item independently. A bad item is counted as failed and
// never fails the batch.
func (uc *SyncUsecase) Push(ctx context.Context, cmd gossip.PushCommand) (*gossip.PushResultDTO, error) {
	if !cmd.Type.Valid() {
		return nil, errors.InvalidArg("unknown entity type")
	}
	if len(cmd.Items) > uc.config.BatchLimit {
		return nil, errors.InvalidArgDetails("batch too large", map[string]any{
			"max": uc.config.BatchLimit, "current": len(cmd.Items),
		})
	}

	res := &gossip.PushResultDTO{Total: len(cmd.Items)}
	for i, raw := range cmd.Items {
		outcome, err := uc.apply(ctx, cmd.Type, raw)
		switch {
		case err != nil:
			res.Failed++
			if len(res.Errors) < gossip.MaxItemErrors {
				res.Errors = append(res.Errors, fmt.Sprintf("item %d: %v", i, err))
			}
			uc.logger.Debug("sync item rejected", "type", cmd.Type, "index", i, "origin", cmd.NodeID, "err", err)
		case outcome == identity.Applied:
			res.Processed++
		default:
			res.Skipped++
		}
	}
	if res.Processed > 0 || res.Failed > 0 {
		uc.logger.Info("sync batch applied", "type", cmd.Type, "origin", cmd.NodeID,
			"processed", res.Processed, "skipped", res.Skipped, "failed", res.Failed)
	}
	return res, nil
}

func (uc *SyncUsecase) apply(ctx context.Context, entity identity.EntityType, raw json.RawMessage) (identity.ApplyOutcome, error) {
	switch entity {
	case identity.EntityRecords:
		var item identity.RecordDTO
		if err := json.Unmarshal(raw, &item); err != nil {
			return identity.Skipped, errors.InvalidArg("record item is not valid JSON")
		}
		return uc.applier.ApplyRecord(ctx, item)
	case identity.EntityAliases:
		var item identity.AliasDTO
		if err := json.Unmarshal(raw, &item); err != nil {
			return identity.Skipped, errors.InvalidArg("alias item is not valid JSON")
		}
		return uc.applier.ApplyAlias(ctx, item)
	default:
		var item identity.EpochDTO
		if err := json.Unmarshal(raw, &item); err != nil {
			return identity.Skipped, errors.InvalidArg("epoch item is not valid JSON")
		}
		return uc.applier.ApplyEpoch(ctx, item)
	}
}

func (uc *SyncUsecase) Status(ctx context.Context) (*gossip.StatusDTO, error) {
	res := &gossip.StatusDTO{
		NodeID:       uc.config.NodeID,
		PullInterval: uc.config.PullInterval.String(),
		Peers:        make([]gossip.PeerStatusDTO, 0, len(uc.config.Peers)),
	}
	for _, peer := range uc.config.Peers {
		ps := gossip.PeerStatusDTO{Peer: peer, Healthy: true, Cursors: make(map[identity.EntityType]time.Time)}
		st, err := uc.repo.GetPeer(ctx, peer)
		switch {
		case err == nil:
			ps.Healthy = st.Healthy(uc.config.UnhealthyAfter)
			ps.ErrorCount = st.ErrorCount
			ps.LastError = st.LastError
			ps.LastAttemptAt = st.LastAttemptAt
			ps.LastSuccessAt = st.LastSuccessAt
		case !pkgerrors.Is(err, repository.ErrNotFound):
			uc.logger.Error("database error loading peer state", "peer", peer, "err", err)
			return nil, errors.ErrStorageFailed(err)
		}
		for _, entity := range entityOrder {
			since, err := uc.repo.GetCursor(ctx, peer, entity)
			if err != nil {
				uc.logger.Error("database error loading cursor", "peer", peer, "err", err)
				return nil, errors.ErrStorageFailed(err)
			}
			ps.Cursors[entity] = since
		}
		res.Peers = append(res.Peers, ps)
	}
	return res, nil
}
