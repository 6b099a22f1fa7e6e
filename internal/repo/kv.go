// Package repo contains all persistence logic for the travel planner.
// The storage model mirrors the original key-value layout: each top-level
// collection is a single JSON document under one key ("trips", "expenses",
// "notes", …). Mutation is always whole-key replace after an in-memory
// copy-modify step; no field-level persistence API exists or is required.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// Document keys. One key per collection, matching the original layout.
const (
	KeyTrips        = "trips"
	KeyExpenses     = "expenses"
	KeyNotes        = "notes"
	KeyPackingLists = "packingLists"
	KeyTravelNotes  = "travelNotes"
	KeyTravelTips   = "travelTips"
	KeyHotels       = "hotels"
	KeyItineraries  = "itineraries"
	KeySelectedTrip = "lastSelectedTrip"
	KeyMessages     = "aiAssistantMessages"
)

// KV is the raw key-value contract every document store is built on.
// Get returns domain.ErrNotFound when the key has never been written.
// Individual Get/Set calls are atomic; a read-modify-write sequence is not —
// callers that need that (the typed Document stores) serialize it themselves.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgKV is the Postgres implementation of KV: one row per document key in the
// documents table, upserted on write.
type pgKV struct {
	db db
}

// NewPgKV constructs a KV backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPgKV(db db) KV {
	return &pgKV{db: db}
}

func (r *pgKV) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM documents WHERE key = @key`

	var value []byte
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo.KV.Get %q: %w", key, err)
	}
	return value, nil
}

func (r *pgKV) Set(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO documents (key, value, updated_at)
		VALUES (@key, @value, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "value": value})
	if err != nil {
		return fmt.Errorf("repo.KV.Set %q: %w", key, err)
	}
	return nil
}

func (r *pgKV) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM documents WHERE key = @key`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("repo.KV.Delete %q: %w", key, err)
	}
	return nil
}
