package projections

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"providerhub-backend/internal/model"
)

// deltaTTL keeps recent-change records short-lived; the shard is the
// fallback when a delta has expired.
const deltaTTL = 5 * time.Minute

// UpdateDelta records a recent change with TTL so ops tooling can follow
// catalog churn without scanning shards.
func UpdateDelta(ctx context.Context, rdb *redis.Client, evt model.ListingAccepted) error {
	key := fmt.Sprintf("delta:%s:%s:%s", evt.ProviderID, evt.ListingID, evt.Timestamp)

	delta := map[string]any{
		"provider_id": evt.ProviderID,
		"listing_id":  evt.ListingID,
		"category_id": evt.CategoryID,
		"timestamp":   evt.Timestamp,
		"type":        "update",
	}

	data, err := json.Marshal(delta)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, deltaTTL).Err()
}
