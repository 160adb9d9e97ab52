package cache

import (
	"context"
	"testing"

	"github.com/dogdesk/DogDeskBack/internal/models"
)

func TestNilBalanceStoreIsSafe(t *testing.T) {
	ctx := context.Background()
	var store *BalanceStore

	if _, ok := store.GetClient(ctx, 1); ok {
		t.Fatalf("nil store must miss")
	}
	store.SetClient(ctx, 1, []models.PackageBalance{{Remaining: 3}})
	store.InvalidateClient(ctx, 1)
	store.Close()
}

func TestNewBalanceStoreDisabledWithoutAddr(t *testing.T) {
	if store := NewBalanceStore("", ""); store != nil {
		t.Fatalf("expected nil store when no address is configured")
	}
}

func TestBalanceKey(t *testing.T) {
	if got := balanceKey(42); got != "balances:client:42" {
		t.Fatalf("unexpected key %q", got)
	}
}
