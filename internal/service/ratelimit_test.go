package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/store-rating/internal/service"
)

func TestKeyedLimiter_AllowsUpToBurst(t *testing.T) {
	kl := service.NewKeyedLimiter(t.Context(), 0.001, 3)

	for i := 0; i < 3; i++ {
		if !kl.Allow("test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if kl.Allow("test-key") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestKeyedLimiter_DifferentKeysAreIndependent(t *testing.T) {
	kl := service.NewKeyedLimiter(t.Context(), 0.001, 1)

	if !kl.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if kl.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !kl.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestKeyedLimiter_ZeroRateNeverRefills(t *testing.T) {
	kl := service.NewKeyedLimiter(t.Context(), 0, 2)

	if !kl.Allow("k") || !kl.Allow("k") {
		t.Fatal("first two requests should be allowed")
	}
	if kl.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestKeyedLimiter_SweepDropsIdleKeys(t *testing.T) {
	kl := service.NewKeyedLimiter(t.Context(), 1, 1)
	kl.Allow("a")
	kl.Allow("b")
	if kl.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", kl.Len())
	}

	kl.Sweep(time.Now().Add(time.Minute))
	if kl.Len() != 0 {
		t.Fatalf("expected sweep to drop all keys, got %d", kl.Len())
	}
}
