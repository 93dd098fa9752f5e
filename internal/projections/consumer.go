// Package projections maintains the Redis read models derived from
// listings.accepted: the locality index, per-provider shards, and
// short-TTL deltas. The read models serve dashboards and operational
// queries; the search engine works off catalog snapshots, never these.
package projections

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"providerhub-backend/internal/kstream"
	"providerhub-backend/internal/logging"
	"providerhub-backend/internal/model"
)

// Consume runs all three projectors against listings.accepted.
func Consume(ctx context.Context, broker string, rdb *redis.Client, log *logging.Logger) error {
	reader := kstream.Reader(broker, kstream.TopicListingsAccepted, "projectors-group")
	defer reader.Close()

	log = log.With("component", "projectors")
	log.Info("consuming", "topic", kstream.TopicListingsAccepted)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var evt model.ListingAccepted
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			log.Warn("unmarshal event", "err", err)
			continue
		}

		if err := UpdateIndex(ctx, rdb, evt); err != nil {
			log.Warn("index projector", "err", err)
		}
		if err := UpdateShard(ctx, rdb, evt); err != nil {
			log.Warn("shard projector", "err", err)
		}
		if err := UpdateDelta(ctx, rdb, evt); err != nil {
			log.Warn("delta projector", "err", err)
		}
	}
}
