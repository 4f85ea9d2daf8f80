// Package kv defines the persistent key-value store used to cache GitHub
// analyses, release lookups and sign-in tokens between runs.
package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Entry is a raw stored value with its bookkeeping columns.
type Entry struct {
	Key       string
	Value     json.RawMessage
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry has a deadline at or before now.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// KV stores JSON-encoded values under string keys. Get on a missing or
// expired key returns an error for which IsMiss reports true.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
	GetRaw(ctx context.Context, key string) (Entry, error)
}

// IsMiss reports whether err means the key was absent or expired.
func IsMiss(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
