package kv

import (
	"context"
	"strings"
	"time"
)

// TypedKV gives typed access to one namespace of a KV store.
type TypedKV[T any] struct {
	store  KV
	prefix string
}

// Scoped returns a TypedKV[T] whose keys are stored as "namespace:key".
func Scoped[T any](store KV, namespace string) *TypedKV[T] {
	return &TypedKV[T]{
		store:  store,
		prefix: namespace + ":",
	}
}

func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	if err := t.store.Get(ctx, t.prefix+key, &v); err != nil {
		return v, err
	}
	return v, nil
}

func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	return t.store.Set(ctx, t.prefix+key, value)
}

func (t *TypedKV[T]) SetTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	return t.store.SetTTL(ctx, t.prefix+key, value, ttl)
}

func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.prefix+key)
}

func (t *TypedKV[T]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.prefix+key)
}

// Keys lists the keys in this namespace with the prefix removed.
func (t *TypedKV[T]) Keys(ctx context.Context) ([]string, error) {
	all, err := t.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, t.prefix); ok {
			out = append(out, rest)
		}
	}
	return out, nil
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result for ttl. The bool is true on a cache hit. A failed cache write is
// reported through onWriteErr, when non-nil, and does not fail the call.
func (t *TypedKV[T]) GetOrLoad(
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(context.Context) (T, error),
	onWriteErr func(error),
) (T, bool, error) {
	return t.GetOrLoadIf(ctx, key, ttl, load, nil, onWriteErr)
}

// GetOrLoadIf is GetOrLoad with a filter: a loaded value is only written
// back when keep reports true. A nil keep caches every loaded value.
func (t *TypedKV[T]) GetOrLoadIf(
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(context.Context) (T, error),
	keep func(T) bool,
	onWriteErr func(error),
) (T, bool, error) {
	if v, err := t.Get(ctx, key); err == nil {
		return v, true, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	if keep != nil && !keep(v) {
		return v, false, nil
	}

	if err := t.SetTTL(ctx, key, v, ttl); err != nil && onWriteErr != nil {
		onWriteErr(err)
	}
	return v, false, nil
}
