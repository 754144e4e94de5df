// Package hold implements the seat-hold consumption step of checkout.
package hold

import (
	"context"
	"errors"

	"github.com/cinetick/cinema-booking/internal/holdstore"
)

// ErrHoldExpired is returned when the acting user has no live hold for
// the showtime: either it expired or seats were never selected.  The
// client must reselect seats.
var ErrHoldExpired = errors.New("seat hold expired")

// Broadcaster pushes seat-state changes to connected clients.  The
// coordinator only needs the cancellation signal; the full event surface
// lives with the order pipeline.
type Broadcaster interface {
	SeatsCancelled(ctx context.Context, scheduleID uint64, seatIDs []string)
}

// Coordinator validates and consumes a user's seat hold against every
// concurrently held seat of the same showtime.
//
// The protocol is deliberately optimistic: the read, the scan over other
// users' holds, and the delete are separate round trips to the store, so
// two checkouts racing on seat sets that look disjoint can both pass.
// The seat-row availability check later in the pipeline is the second
// line of defense, and the TTL bounds how stale a hold can be.
type Coordinator struct {
	store       holdstore.Store
	broadcaster Broadcaster
}

// NewCoordinator returns a Coordinator over the given store.  The
// broadcaster may be nil when no realtime channel is wired.
func NewCoordinator(store holdstore.Store, broadcaster Broadcaster) *Coordinator {
	if store == nil {
		panic("nil hold store passed to NewCoordinator")
	}
	return &Coordinator{store: store, broadcaster: broadcaster}
}

// ValidateBeforeOrder checks that the acting user still holds the
// requested seats and that no other user holds any of them.
//
// It fails closed with ErrHoldExpired when the user's own hold is gone,
// signalling the broadcaster so clients drop the stale selection.  When
// another user's live hold overlaps the request it returns false and
// consumes nothing, so the requester can retry.  Otherwise it deletes
// the user's hold (single consumption) and returns true.
func (c *Coordinator) ValidateBeforeOrder(ctx context.Context, scheduleID uint64, userID string, seatIDs []string) (bool, error) {
	own, err := c.store.Get(ctx, scheduleID, userID)
	if err != nil {
		return false, err
	}
	if own == nil {
		if c.broadcaster != nil {
			c.broadcaster.SeatsCancelled(ctx, scheduleID, seatIDs)
		}
		return false, ErrHoldExpired
	}

	others, err := c.store.Scan(ctx, scheduleID)
	if err != nil {
		return false, err
	}
	requested := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		requested[id] = struct{}{}
	}
	for holder, rec := range others {
		if holder == userID {
			continue
		}
		for _, seatID := range rec.SeatIDs {
			if _, contested := requested[seatID]; contested {
				return false, nil
			}
		}
	}

	if err := c.store.Delete(ctx, scheduleID, userID); err != nil {
		return false, err
	}
	return true, nil
}
