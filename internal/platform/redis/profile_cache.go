package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

const profileKeyPrefix = "invoices:profile:"

// ProfileCache holds identity snapshots for a short TTL in front of the profile table.
type ProfileCache interface {
	Get(ctx context.Context, uid string) (*types.Profile, bool, error)
	Set(ctx context.Context, p *types.Profile) error
}

type profileCache struct {
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewProfileCache(rdb goredis.UniversalClient, ttl time.Duration) ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &profileCache{rdb: rdb, ttl: ttl}
}

func profileKey(uid string) string { return profileKeyPrefix + uid }

func (c *profileCache) Get(ctx context.Context, uid string) (*types.Profile, bool, error) {
	raw, err := c.rdb.Get(ctx, profileKey(uid)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get profile: %w", err)
	}
	var p types.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached profile: %w", err)
	}
	return &p, true, nil
}

func (c *profileCache) Set(ctx context.Context, p *types.Profile) error {
	if p == nil || p.UID == "" {
		return nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, profileKey(p.UID), raw, c.ttl).Err()
}
