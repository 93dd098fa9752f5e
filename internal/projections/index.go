package projections

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"providerhub-backend/internal/model"
)

// UpdateIndex maintains the locality index (country:category → listing
// IDs) plus a freshness ZSET of providers by last update.
func UpdateIndex(ctx context.Context, rdb *redis.Client, evt model.ListingAccepted) error {
	key := fmt.Sprintf("idx:%s:%s", evt.Country, evt.CategoryID)
	if err := rdb.SAdd(ctx, key, evt.ListingID).Err(); err != nil {
		return err
	}

	score := float64(time.Now().Unix())
	if ts, err := time.Parse(time.RFC3339Nano, evt.Timestamp); err == nil {
		score = float64(ts.Unix())
	}
	freshKey := fmt.Sprintf("freshness:%s:%s", evt.Country, evt.CategoryID)
	return rdb.ZAdd(ctx, freshKey, redis.Z{Score: score, Member: evt.ProviderID}).Err()
}
