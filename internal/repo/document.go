package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// Document provides typed whole-document access to a single KV key.
// Load returns the zero value of T when the key has never been written, so
// collections come into existence lazily on first reference.
//
// Update serializes the read-modify-write sequence under a per-document
// mutex, so two concurrent Updates on the same Document cannot lose writes.
type Document[T any] struct {
	kv  KV
	key string
	mu  sync.Mutex
}

// NewDocument binds a typed document to the given key.
func NewDocument[T any](kv KV, key string) *Document[T] {
	return &Document[T]{kv: kv, key: key}
}

// Load reads and decodes the full document. A missing key yields T's zero
// value, not an error.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	var value T

	raw, err := d.kv.Get(ctx, d.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return value, nil
		}
		return value, fmt.Errorf("repo.Document.Load %q: %w", d.key, err)
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("repo.Document.Load %q: decode: %w", d.key, err)
	}
	return value, nil
}

// Store encodes and writes the full document, replacing whatever was there.
func (d *Document[T]) Store(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("repo.Document.Store %q: encode: %w", d.key, err)
	}
	if err := d.kv.Set(ctx, d.key, raw); err != nil {
		return fmt.Errorf("repo.Document.Store %q: %w", d.key, err)
	}
	return nil
}

// Update runs fn over the current document value and persists the result.
// The whole sequence holds the document mutex. If fn returns an error the
// document is left untouched and the error is returned unwrapped, so typed
// errors (ModificationError, sentinel errors) survive for the caller.
func (d *Document[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, err := d.Load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	next, err := fn(current)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := d.Store(ctx, next); err != nil {
		var zero T
		return zero, err
	}
	return next, nil
}
