package usecase

import (
	"context"
	"encoding/json"

	"gnsnode/internal/gossip"
	"gnsnode/internal/identity"
)

// Replicate pushes one locally accepted item to every peer through the
// task queue. Delivery failures are retried there and never reach the writer.
func (uc *SyncUsecase) Replicate(entity identity.EntityType, item any) {
	if len(uc.config.Peers) == 0 || uc.tasks == nil {
		return
	}
	raw, err := json.Marshal(item)
	if err != nil {
		uc.logger.Error("failed to encode item for replication", "type", entity, "err", err)
		return
	}
	cmd := gossip.PushCommand{Type: entity, Items: []json.RawMessage{raw}, NodeID: uc.config.NodeID}
	for _, peer := range uc.config.Peers {
		uc.tasks.Enqueue("gossip.push."+string(entity), func(ctx context.Context) error {
			res, err := uc.client.Push(ctx, peer, cmd)
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				uc.logger.Warn("peer rejected replicated item", "peer", peer, "type", entity, "errors", res.Errors)
			}
			return nil
		})
	}
}
