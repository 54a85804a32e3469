package store

import (
	"context"
	"errors"
	"log/slog"
)

// FallbackKV routes every operation to the primary medium and retries it on
// the secondary when the primary fails for any reason other than a missing
// key. When the primary could not be opened at all, it runs secondary-only.
type FallbackKV struct {
	primary   KV
	secondary KV
	log       *slog.Logger
}

var _ KV = (*FallbackKV)(nil)

func NewFallbackKV(primary, secondary KV, logger *slog.Logger) *FallbackKV {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackKV{primary: primary, secondary: secondary, log: logger}
}

// Available reports whether the primary medium is usable.
func (s *FallbackKV) Available() bool {
	return s.primary != nil
}

func (s *FallbackKV) Get(ctx context.Context, key string) (string, error) {
	if s.primary == nil {
		return s.secondary.Get(ctx, key)
	}
	v, err := s.primary.Get(ctx, key)
	if err == nil || errors.Is(err, ErrNotFound) || ctx.Err() != nil {
		return v, err
	}
	s.log.Warn("primary store get failed, using fallback", "key", key, "err", err)
	return s.secondary.Get(ctx, key)
}

func (s *FallbackKV) Set(ctx context.Context, key, value string) error {
	if s.primary == nil {
		return s.secondary.Set(ctx, key, value)
	}
	err := s.primary.Set(ctx, key, value)
	if err == nil || ctx.Err() != nil {
		return err
	}
	s.log.Warn("primary store set failed, using fallback", "key", key, "err", err)
	return s.secondary.Set(ctx, key, value)
}

func (s *FallbackKV) Remove(ctx context.Context, key string) error {
	if s.primary == nil {
		return s.secondary.Remove(ctx, key)
	}
	err := s.primary.Remove(ctx, key)
	if err == nil || ctx.Err() != nil {
		return err
	}
	s.log.Warn("primary store remove failed, using fallback", "key", key, "err", err)
	return s.secondary.Remove(ctx, key)
}

func (s *FallbackKV) Clear(ctx context.Context) error {
	if s.primary == nil {
		return s.secondary.Clear(ctx)
	}
	err := s.primary.Clear(ctx)
	if err == nil || ctx.Err() != nil {
		return err
	}
	s.log.Warn("primary store clear failed, using fallback", "err", err)
	return s.secondary.Clear(ctx)
}

func (s *FallbackKV) ListKeys(ctx context.Context) ([]string, error) {
	if s.primary == nil {
		return s.secondary.ListKeys(ctx)
	}
	keys, err := s.primary.ListKeys(ctx)
	if err == nil || ctx.Err() != nil {
		return keys, err
	}
	s.log.Warn("primary store list failed, using fallback", "err", err)
	return s.secondary.ListKeys(ctx)
}
