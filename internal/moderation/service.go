// Package moderation tracks provider publishing status in Redis. A
// suspended provider keeps its profile but cannot publish or import
// listings until cleared.
package moderation

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Status is a provider's moderation state.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusClear     Status = "clear"
	StatusSuspended Status = "suspended"
)

// Service answers provider moderation checks from a Redis cache.
type Service struct {
	rdb *redis.Client
}

// New creates a moderation service on an existing Redis client.
func New(rdb *redis.Client) *Service {
	return &Service{rdb: rdb}
}

func key(providerID string) string {
	return fmt.Sprintf("moderation:provider:%s", providerID)
}

// Check returns the provider's moderation status. An absent key is
// StatusUnknown, which callers treat as publishable.
func (s *Service) Check(ctx context.Context, providerID string) (Status, error) {
	val, err := s.rdb.Get(ctx, key(providerID)).Result()
	if err == redis.Nil {
		return StatusUnknown, nil
	}
	if err != nil {
		return StatusUnknown, err
	}
	switch Status(val) {
	case StatusClear:
		return StatusClear, nil
	case StatusSuspended:
		return StatusSuspended, nil
	default:
		return StatusUnknown, nil
	}
}

// Set stores the provider's moderation status. No expiration; suspension
// is lifted explicitly.
func (s *Service) Set(ctx context.Context, providerID string, status Status) error {
	return s.rdb.Set(ctx, key(providerID), string(status), 0).Err()
}
