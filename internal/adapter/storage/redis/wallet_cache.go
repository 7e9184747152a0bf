package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"yanki-wallet-service/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// WalletCache implements ports.CacheStore as one Redis hash per namespace:
// field = record ID, value = JSON-encoded wallet. Entries are only ever
// written by cache-aside population; there is no remove path.
type WalletCache struct {
	client *goredis.Client
}

// NewWalletCache creates a Redis-backed wallet cache.
func NewWalletCache(client *goredis.Client) *WalletCache {
	return &WalletCache{client: client}
}

// Values returns every cached wallet in the namespace.
func (c *WalletCache) Values(ctx context.Context, namespace string) ([]domain.Wallet, error) {
	raw, err := c.client.HVals(ctx, namespace).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hvals %s: %w", namespace, err)
	}

	wallets := make([]domain.Wallet, 0, len(raw))
	for _, v := range raw {
		var w domain.Wallet
		if err := json.Unmarshal([]byte(v), &w); err != nil {
			return nil, fmt.Errorf("decode cached wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

// Get returns the cached wallet for id, or nil, nil on a miss.
func (c *WalletCache) Get(ctx context.Context, namespace, id string) (*domain.Wallet, error) {
	raw, err := c.client.HGet(ctx, namespace, id).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis hget %s/%s: %w", namespace, id, err)
	}

	var w domain.Wallet
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("decode cached wallet: %w", err)
	}
	return &w, nil
}

// Put stores or overwrites the wallet under id.
func (c *WalletCache) Put(ctx context.Context, namespace, id string, wallet domain.Wallet) error {
	raw, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("encode wallet for cache: %w", err)
	}
	if err := c.client.HSet(ctx, namespace, id, raw).Err(); err != nil {
		return fmt.Errorf("redis hset %s/%s: %w", namespace, id, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *WalletCache) Close() error {
	return c.client.Close()
}
