// Package bloom deduplicates imported catalog rows with RedisBloom
// filters. Requires a redis-stack server; without one every check reports
// "not seen" and import degrades to no dedup.
package bloom

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"providerhub-backend/internal/logging"
)

var (
	client *redis.Client
	logger *logging.Logger
	once   sync.Once
)

const (
	// providersKey tracks provider profiles seen during import.
	providersKey = "providerhub:providers"
	// listingsKey tracks listings, sized larger for volume.
	listingsKey = "providerhub:listings"
)

// Init sets up the Redis client and reserves the Bloom filters. Safe to
// call multiple times.
func Init(addr string, log *logging.Logger) {
	once.Do(func() {
		client = redis.NewClient(&redis.Options{Addr: addr})
		logger = log

		// BF.RESERVE fails when the filter already exists; that is the
		// normal idempotent-restart case.
		ctx := context.Background()
		if err := client.Do(ctx, "BF.RESERVE", providersKey, 0.001, 1_000_000).Err(); err != nil {
			log.Debug("bloom reserve providers", "err", err)
		}
		if err := client.Do(ctx, "BF.RESERVE", listingsKey, 0.001, 10_000_000).Err(); err != nil {
			log.Debug("bloom reserve listings", "err", err)
		}
	})
}

// SeenProvider adds the provider key to the filter and reports whether it
// probably existed already.
func SeenProvider(ctx context.Context, providerKey string) bool {
	return seen(ctx, providersKey, providerKey)
}

// SeenListing adds the listing key (provider_id:listing_id) to the filter
// and reports whether it probably existed already.
func SeenListing(ctx context.Context, listingKey string) bool {
	return seen(ctx, listingsKey, listingKey)
}

func seen(ctx context.Context, filter, key string) bool {
	if client == nil {
		return false
	}
	res := client.Do(ctx, "BF.ADD", filter, key)
	if res.Err() != nil {
		logger.Warn("bloom add", "filter", filter, "err", res.Err())
		return false
	}
	// BF.ADD returns int or bool depending on server version; either way
	// "new" means not seen before.
	if val, err := res.Int(); err == nil {
		return val == 0
	}
	if val, err := res.Bool(); err == nil {
		return !val
	}
	logger.Warn("bloom add: unexpected reply type", "filter", filter)
	return false
}
