package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestBolt(t *testing.T) *BoltKV {
	t.Helper()
	kv, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kv.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "b", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := kv.Get(ctx, "a")
	if err != nil || v != "1" {
		t.Fatalf("get a = %q, %v", v, err)
	}
	if err := kv.Set(ctx, "a", "3"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _ := kv.Get(ctx, "a"); v != "3" {
		t.Fatalf("overwrite not visible, got %q", v)
	}
	keys, err := kv.ListKeys(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Fatalf("keys = %v", keys)
	}
	if err := kv.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := kv.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("removed key still readable: %v", err)
	}
	// Removing an absent key is not an error.
	if err := kv.Remove(ctx, "a"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if err := kv.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	keys, err = kv.ListKeys(ctx)
	if err != nil || len(keys) != 0 {
		t.Fatalf("after clear keys=%v err=%v", keys, err)
	}
}

func TestBoltKV(t *testing.T) {
	exerciseKV(t, newTestBolt(t))
}

func TestFileKV(t *testing.T) {
	exerciseKV(t, NewFileKV(filepath.Join(t.TempDir(), "store.json")))
}

// brokenKV fails every operation, standing in for a medium whose transactions
// cannot commit.
type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) { return "", errors.New("boom") }
func (brokenKV) Set(context.Context, string, string) error   { return errors.New("boom") }
func (brokenKV) Remove(context.Context, string) error        { return errors.New("boom") }
func (brokenKV) Clear(context.Context) error                 { return errors.New("boom") }
func (brokenKV) ListKeys(context.Context) ([]string, error)  { return nil, errors.New("boom") }

func TestFallbackKV(t *testing.T) {
	ctx := context.Background()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("primary failure falls through", func(t *testing.T) {
		secondary := NewFileKV(filepath.Join(t.TempDir(), "fb.json"))
		kv := NewFallbackKV(brokenKV{}, secondary, discard)
		if err := kv.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("set via fallback: %v", err)
		}
		if v, err := kv.Get(ctx, "k"); err != nil || v != "v" {
			t.Fatalf("get via fallback = %q, %v", v, err)
		}
		if v, err := secondary.Get(ctx, "k"); err != nil || v != "v" {
			t.Fatalf("secondary should hold the value, got %q, %v", v, err)
		}
	})

	t.Run("not found does not trigger fallback", func(t *testing.T) {
		primary := newTestBolt(t)
		secondary := NewFileKV(filepath.Join(t.TempDir(), "fb.json"))
		if err := secondary.Set(ctx, "k", "stale"); err != nil {
			t.Fatalf("seed secondary: %v", err)
		}
		kv := NewFallbackKV(primary, secondary, discard)
		if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("miss on healthy primary must not read secondary, got %v", err)
		}
	})

	t.Run("nil primary runs secondary only", func(t *testing.T) {
		secondary := NewFileKV(filepath.Join(t.TempDir(), "fb.json"))
		kv := NewFallbackKV(nil, secondary, discard)
		if kv.Available() {
			t.Fatal("nil primary should report unavailable")
		}
		if err := kv.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("set: %v", err)
		}
	})
}
