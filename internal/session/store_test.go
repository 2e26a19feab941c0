package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	rs, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return rs
}

// TestStoreContract runs the same behaviour checks against every backend.
func TestStoreContract(t *testing.T) {
	backends := []struct {
		name string
		new  func(t *testing.T) Store
	}{
		{"memory", func(t *testing.T) Store { return NewMemoryStore(time.Hour) }},
		{"redis", func(t *testing.T) Store { return newRedisTestStore(t) }},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Run("take clears", func(t *testing.T) {
				ctx := context.Background()
				s := b.new(t)

				if err := s.Set(ctx, "sid", KeyFlashSuccess, "Saved"); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				v, ok, err := s.Take(ctx, "sid", KeyFlashSuccess)
				if err != nil || !ok || v != "Saved" {
					t.Fatalf("first Take() = (%q, %v, %v), want (Saved, true, nil)", v, ok, err)
				}
				v, ok, err = s.Take(ctx, "sid", KeyFlashSuccess)
				if err != nil || ok || v != "" {
					t.Errorf("second Take() = (%q, %v, %v), want empty", v, ok, err)
				}
			})

			t.Run("take missing", func(t *testing.T) {
				ctx := context.Background()
				s := b.new(t)

				if _, ok, err := s.Take(ctx, "nobody", KeyFlashError); ok || err != nil {
					t.Errorf("Take() on unknown session = (%v, %v), want (false, nil)", ok, err)
				}
				_ = s.Set(ctx, "sid", KeyUserID, "1")
				if _, ok, err := s.Take(ctx, "sid", KeyFlashError); ok || err != nil {
					t.Errorf("Take() on unknown key = (%v, %v), want (false, nil)", ok, err)
				}
				if v, ok, _ := s.Get(ctx, "sid", KeyUserID); !ok || v != "1" {
					t.Errorf("Take() of another key disturbed %s = (%q, %v)", KeyUserID, v, ok)
				}
			})

			t.Run("set replaces", func(t *testing.T) {
				ctx := context.Background()
				s := b.new(t)

				_ = s.Set(ctx, "sid", KeyFlashError, "first")
				_ = s.Set(ctx, "sid", KeyFlashError, "second")
				if v, ok, err := s.Get(ctx, "sid", KeyFlashError); err != nil || !ok || v != "second" {
					t.Errorf("Get() = (%q, %v, %v), want second", v, ok, err)
				}
			})

			t.Run("remove and destroy", func(t *testing.T) {
				ctx := context.Background()
				s := b.new(t)

				_ = s.Set(ctx, "sid", KeyUserID, "1")
				_ = s.Set(ctx, "sid", KeyFlashSuccess, "hi")
				_ = s.Set(ctx, "other", KeyUserID, "2")

				if err := s.Remove(ctx, "sid", KeyUserID); err != nil {
					t.Fatalf("Remove() error = %v", err)
				}
				if _, ok, _ := s.Get(ctx, "sid", KeyUserID); ok {
					t.Error("Remove() left key in place")
				}
				if _, ok, _ := s.Get(ctx, "sid", KeyFlashSuccess); !ok {
					t.Error("Remove() dropped an unrelated key")
				}

				if err := s.Destroy(ctx, "sid"); err != nil {
					t.Fatalf("Destroy() error = %v", err)
				}
				if _, ok, _ := s.Get(ctx, "sid", KeyFlashSuccess); ok {
					t.Error("Destroy() left values behind")
				}
				if v, ok, _ := s.Get(ctx, "other", KeyUserID); !ok || v != "2" {
					t.Error("Destroy() touched another session")
				}
			})
		})
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rs, err := NewRedisStore(ctx, "redis://"+mr.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer rs.Close()

	_ = rs.Set(ctx, "sid", KeyUserID, "1")
	if ttl := mr.TTL("session:sid"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := rs.Get(ctx, "sid", KeyUserID); ok {
		t.Error("expired session still readable")
	}
}

func TestNewRedisStore_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewRedisStore(ctx, "not a url", time.Minute); err == nil {
		t.Error("NewRedisStore() with bad url: expected error")
	}

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisStore(ctx, "redis://"+addr, time.Minute); err == nil {
		t.Error("NewRedisStore() with no server: expected error")
	}
}
