package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// BytesCache stores raw bytes with a TTL. A miss is (nil, false, nil).
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// GetJSON decodes a cached JSON value into dest.
func GetJSON(ctx context.Context, c BytesCache, key string, dest any) (bool, error) {
	b, ok, err := c.GetBytes(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c BytesCache, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.SetBytes(ctx, key, b, ttl)
}

// Layered reads through an in-process L1 before a shared L2 and writes both.
type Layered struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayered caps L1 entries at l1TTL so replicas converge on L2 quickly.
func NewLayered(l1 *TTLCache, l2 BytesCache, l1TTL time.Duration) *Layered {
	return &Layered{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (c *Layered) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := c.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.l1.SetBytes(ctx, key, b, c.l1TTL)
	return b, true, nil
}

func (c *Layered) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1 := ttl
	if c.l1TTL > 0 && (l1 <= 0 || c.l1TTL < l1) {
		l1 = c.l1TTL
	}
	return c.l1.SetBytes(ctx, key, value, l1)
}
