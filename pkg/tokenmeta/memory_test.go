package tokenmeta

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour)

	got, err := cache.Get(ctx, "0xtoken", "ethereum")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}

	info := &Info{Name: "TOLA Token", Symbol: "TOLA", Decimals: 18}
	if err := cache.Set(ctx, "0xtoken", "ethereum", info); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err = cache.Get(ctx, "0xtoken", "ethereum")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got == nil || *got != *info {
		t.Fatalf("unexpected cached info: %+v", got)
	}

	// Different network keys are independent.
	got, err = cache.Get(ctx, "0xtoken", "polygon")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss for other network, got %+v", got)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour)

	current := time.Unix(1_700_000_000, 0)
	cache.now = func() time.Time { return current }

	if err := cache.Set(ctx, "0xtoken", "ethereum", &Info{Symbol: "TOLA", Decimals: 18}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := cache.Get(ctx, "0xtoken", "ethereum")
	if err != nil || got == nil {
		t.Fatalf("expected hit before expiry, got %+v err %v", got, err)
	}

	current = current.Add(time.Hour + time.Second)
	got, err = cache.Get(ctx, "0xtoken", "ethereum")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss after expiry, got %+v", got)
	}
}
