package domain

import "github.com/google/uuid"

// NewID returns an opaque unique token of the form "<kind>_<uuid>".
// The kind prefix keeps ids human-scannable in exports and logs
// ("trip_…", "change_…", "ai_…"). uuid.New() is collision-safe under
// rapid repeated calls within the same millisecond, which the previous
// timestamp-based scheme was not.
func NewID(kind string) string {
	return kind + "_" + uuid.NewString()
}
