// Package id issues run identifiers.
package id

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. IDs sort lexicographically by creation time,
// which keeps journal listings and SQLite indexes in run order.
func New() string {
	return ulid.Make().String()
}

// Time returns the creation time encoded in a run ID.
func Time(runID string) (time.Time, error) {
	u, err := ulid.ParseStrict(runID)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run id %q: %w", runID, err)
	}
	return ulid.Time(u.Time()).UTC(), nil
}
