// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces revoked token ids in Valkey.
const keyPrefix = "revoked:"

// ValkeyRevoker stores revoked token ids in Valkey with a TTL matching the
// token's remaining lifetime, so the denylist cleans itself up.
type ValkeyRevoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewValkeyRevoker creates a revoker backed by the given Valkey client.
func NewValkeyRevoker(client *redis.Client) *ValkeyRevoker {
	return &ValkeyRevoker{client: client, now: time.Now}
}

// Revoke implements Revoker.
func (v *ValkeyRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(v.now())
	if ttl <= 0 {
		return nil
	}
	if err := v.client.Set(ctx, keyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("valkey revoke: %w", err)
	}
	return nil
}

// IsRevoked implements Revoker.
func (v *ValkeyRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := v.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("valkey revoked check: %w", err)
	}
	return n > 0, nil
}
