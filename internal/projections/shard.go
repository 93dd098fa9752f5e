package projections

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"providerhub-backend/internal/model"
)

// UpdateShard stores a ready-to-serve summary for provider×country×category.
func UpdateShard(ctx context.Context, rdb *redis.Client, evt model.ListingAccepted) error {
	key := fmt.Sprintf("shard:%s:%s:cat:%s", evt.ProviderID, evt.Country, evt.CategoryID)

	shard := map[string]any{
		"provider_id": evt.ProviderID,
		"listing_id":  evt.ListingID,
		"country":     evt.Country,
		"city":        evt.City,
		"category_id": evt.CategoryID,
		"timestamp":   evt.Timestamp,
	}

	data, err := json.Marshal(shard)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, 0).Err()
}
