package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	c := New[int](time.Minute)

	loads := 0
	load := func(context.Context) (int, error) {
		loads++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.Get(ctx, load)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != 42 {
			t.Fatalf("Get() = %d, want 42", got)
		}
	}

	if loads != 1 {
		t.Errorf("loader ran %d times, want 1", loads)
	}
}

func TestGetReloadsAfterExpiry(t *testing.T) {
	ctx := context.Background()
	c := New[int](time.Minute)

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	loads := 0
	load := func(context.Context) (int, error) {
		loads++
		return loads, nil
	}

	if got, _ := c.Get(ctx, load); got != 1 {
		t.Fatalf("first Get() = %d, want 1", got)
	}

	clock = clock.Add(2 * time.Minute)
	if got, _ := c.Get(ctx, load); got != 2 {
		t.Errorf("Get() after expiry = %d, want 2", got)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	c := New[string](time.Hour)

	loads := 0
	load := func(context.Context) (string, error) {
		loads++
		return "v", nil
	}

	c.Get(ctx, load)
	c.Invalidate()
	c.Get(ctx, load)

	if loads != 2 {
		t.Errorf("loader ran %d times after Invalidate, want 2", loads)
	}
}

func TestLoadErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := New[int](time.Hour)

	boom := errors.New("db down")
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	if _, err := c.Get(ctx, load); !errors.Is(err, boom) {
		t.Fatalf("Get() error = %v, want %v", err, boom)
	}
	got, err := c.Get(ctx, load)
	if err != nil || got != 7 {
		t.Errorf("Get() after failed load = (%d, %v), want (7, nil)", got, err)
	}
}
