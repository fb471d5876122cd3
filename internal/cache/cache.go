// Package cache keeps resolved accounts and revoked token ids in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"task-management/internal/models"
)

func accountKey(id int64) string { return fmt.Sprintf("account:%d", id) }

func revokedKey(tokenID string) string { return "revoked_token:" + tokenID }

// AccountCache caches accounts by id for the authentication middleware.
type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	return &AccountCache{client: client, ttl: ttl}
}

// Get returns the cached account, or nil on a miss.
func (c *AccountCache) Get(ctx context.Context, id int64) (*models.Account, error) {
	raw, err := c.client.Get(ctx, accountKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached account %d: %w", id, err)
	}
	var a models.Account
	if err := json.Unmarshal(raw, &a); err != nil {
		// entry rusak, anggap miss
		return nil, nil
	}
	return &a, nil
}

func (c *AccountCache) Set(ctx context.Context, a *models.Account) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode account %d: %w", a.ID, err)
	}
	return c.client.SetEX(ctx, accountKey(a.ID), raw, c.ttl).Err()
}

func (c *AccountCache) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// Denylist stores revoked JWT ids until the token would have expired.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
