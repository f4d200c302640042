package usecase

import (
	"context"
	"sort"
	"time"

	"gnsnode/internal/identity"
)

// Records go first so that a peer's aliases and epochs find their owner.
var entityOrder = []identity.EntityType{identity.EntityRecords, identity.EntityAliases, identity.EntityEpochs}

// Unhealthy peers are only attempted on every retryEvery-th round.
const (
	retryEvery  = 4
	maxPageRuns = 1000
)

// Run pulls from every peer each PullInterval until ctx is done.
func (uc *SyncUsecase) Run(ctx context.Context) {
	if uc.config.PullInterval <= 0 || len(uc.config.Peers) == 0 {
		uc.logger.Info("anti-entropy puller disabled")
		return
	}
	uc.logger.Info("anti-entropy puller started", "interval", uc.config.PullInterval, "peers", len(uc.config.Peers))
	ticker := time.NewTicker(uc.config.PullInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := uc.SyncRound(ctx); err != nil && ctx.Err() == nil {
				uc.logger.Error("sync round failed", "err", err)
			}
		}
	}
}

func (uc *SyncUsecase) SyncRound(ctx context.Context) error {
	uc.mu.Lock()
	uc.round++
	round := uc.round
	uc.mu.Unlock()

	peers, err := uc.orderedPeers(ctx)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.healthy && round%retryEvery != 0 {
			uc.logger.Debug("skipping unhealthy peer", "peer", p.url, "errors", p.errors)
			continue
		}
		if err := uc.syncPeer(ctx, p.url); err != nil {
			uc.logger.Warn("peer sync failed", "peer", p.url, "err", err)
			if err := uc.repo.RecordFailure(ctx, p.url, uc.now(), err.Error()); err != nil {
				uc.logger.Error("database error recording peer failure", "peer", p.url, "err", err)
			}
			continue
		}
		if err := uc.repo.RecordSuccess(ctx, p.url, uc.now()); err != nil {
			uc.logger.Error("database error recording peer success", "peer", p.url, "err", err)
		}
	}
	return nil
}

type peerOrder struct {
	url     string
	errors  int
	healthy bool
}

// orderedPeers returns the configured peers, healthiest first.
func (uc *SyncUsecase) orderedPeers(ctx context.Context) ([]peerOrder, error) {
	states, err := uc.repo.ListPeers(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(states))
	for _, st := range states {
		counts[st.Peer] = st.ErrorCount
	}
	out := make([]peerOrder, 0, len(uc.config.Peers))
	for _, url := range uc.config.Peers {
		n := counts[url]
		out = append(out, peerOrder{
			url:     url,
			errors:  n,
			healthy: uc.config.UnhealthyAfter <= 0 || n < uc.config.UnhealthyAfter,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].errors < out[j].errors })
	return out, nil
}

// syncPeer drains every entity type from peer since the stored cursors.
// Items the local ledger rejects are logged and passed over.
func (uc *SyncUsecase) syncPeer(ctx context.Context, peer string) error {
	for _, entity := range entityOrder {
		since, err := uc.repo.GetCursor(ctx, peer, entity)
		if err != nil {
			return err
		}
		for page := 0; page < maxPageRuns; page++ {
			res, err := uc.client.Pull(ctx, peer, entity, since, uc.config.BatchLimit)
			if err != nil {
				return err
			}
			applied, failed := 0, 0
			for _, raw := range res.Items {
				outcome, err := uc.apply(ctx, entity, raw)
				switch {
				case err != nil:
					failed++
					uc.logger.Debug("pulled item rejected", "peer", peer, "type", entity, "err", err)
				case outcome == identity.Applied:
					applied++
				}
			}
			if applied > 0 || failed > 0 {
				uc.logger.Info("pulled from peer", "peer", peer, "type", entity, "applied", applied, "failed", failed)
			}
			if res.Count == 0 || !res.NextSince.After(since) {
				break
			}
			if err := uc.repo.SaveCursor(ctx, peer, entity, res.NextSince); err != nil {
				return err
			}
			since = res.NextSince
			if !res.HasMore {
				break
			}
		}
	}
	return nil
}
