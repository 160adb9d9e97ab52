// Package cache keeps the per-client remaining-credit projection in Redis so
// dashboard and billing views do not hit Postgres on every render. The cache
// is strictly a projection: the ledger in Postgres is authoritative, and any
// committed ledger mutation invalidates the affected client's entry.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/redis/go-redis/v9"
)

const balanceTTL = 60 * time.Second

type BalanceStore struct {
	client *redis.Client
}

// NewBalanceStore connects to Redis and returns nil when the server is
// unreachable, so callers degrade to uncached reads.
func NewBalanceStore(addr, password string) *BalanceStore {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("cache: redis unreachable at %s: %v; balance cache disabled", addr, err)
		return nil
	}

	return &BalanceStore{client: client}
}

func balanceKey(clientID int64) string {
	return fmt.Sprintf("balances:client:%d", clientID)
}

func (s *BalanceStore) GetClient(ctx context.Context, clientID int64) ([]models.PackageBalance, bool) {
	if s == nil {
		return nil, false
	}

	raw, err := s.client.Get(ctx, balanceKey(clientID)).Bytes()
	if err != nil {
		return nil, false
	}

	var balances []models.PackageBalance
	if err := json.Unmarshal(raw, &balances); err != nil {
		// A corrupt entry is dropped rather than served.
		_ = s.client.Del(ctx, balanceKey(clientID)).Err()
		return nil, false
	}
	return balances, true
}

func (s *BalanceStore) SetClient(ctx context.Context, clientID int64, balances []models.PackageBalance) {
	if s == nil {
		return
	}

	raw, err := json.Marshal(balances)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, balanceKey(clientID), raw, balanceTTL).Err(); err != nil {
		log.Printf("cache: set balances for client %d: %v", clientID, err)
	}
}

func (s *BalanceStore) InvalidateClient(ctx context.Context, clientID int64) {
	if s == nil {
		return
	}
	if err := s.client.Del(ctx, balanceKey(clientID)).Err(); err != nil {
		log.Printf("cache: invalidate balances for client %d: %v", clientID, err)
	}
}

func (s *BalanceStore) Close() {
	if s == nil {
		return
	}
	_ = s.client.Close()
}
