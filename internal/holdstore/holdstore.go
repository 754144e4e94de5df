// Package holdstore wraps the external TTL key-value store that carries
// seat holds.  It owns no business logic: just typed get/put/scan/delete
// of hold records keyed by showtime and user.
package holdstore

import (
	"context"
	"fmt"
	"time"
)

// HoldRecord is the value stored under one hold key: the set of seats a
// user selected for one showtime.  Records disappear when their TTL
// elapses or when the coordinator consumes them.
type HoldRecord struct {
	SeatIDs    []string `json:"seatIds"`
	ScheduleID uint64   `json:"showtimeId"`
}

// Store is the narrow contract the seat-hold coordinator needs.  Get
// returns nil (not an error) for a missing or expired key so callers can
// distinguish absence from store failure.
type Store interface {
	// Get loads the hold one user has on one showtime, or nil.
	Get(ctx context.Context, scheduleID uint64, userID string) (*HoldRecord, error)
	// Put writes a hold with the given lifetime, replacing any previous one.
	Put(ctx context.Context, userID string, rec HoldRecord, ttl time.Duration) error
	// Scan returns every live hold for a showtime, keyed by user ID.
	Scan(ctx context.Context, scheduleID uint64) (map[string]HoldRecord, error)
	// Delete removes one user's hold.  Deleting a missing key is not an error.
	Delete(ctx context.Context, scheduleID uint64, userID string) error
}

// Key builds the store key for one (showtime, user) pair.
func Key(scheduleID uint64, userID string) string {
	return fmt.Sprintf("hold:%d:%s", scheduleID, userID)
}

// KeyPrefix builds the scan prefix matching every hold of one showtime.
func KeyPrefix(scheduleID uint64) string {
	return fmt.Sprintf("hold:%d:", scheduleID)
}
