// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Seat events fan out to the realtime broadcaster; the
// confirmation queue feeds the notification consumer.
const (
	SeatHeldQueue         = "seat.held"
	SeatBookedQueue       = "seat.booked"
	SeatCancelledQueue    = "seat.cancelled"
	BookingConfirmedQueue = "booking.confirmed"
)

// SeatEvent announces a seat-state change for one showtime.  Connected
// clients use it to repaint the seat map without polling.
type SeatEvent struct {
	ScheduleID uint64   `json:"showtime_id"`
	SeatIDs    []string `json:"seat_ids"`
}

// BookingConfirmedEvent is published when an order settles.  It carries
// enough for the notification consumer to mail a confirmation with the
// QR token without querying the primary database.
type BookingConfirmedEvent struct {
	OrderID     uint64 `json:"order_id"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	ScheduleID  uint64 `json:"showtime_id"`
	TotalPrice  int64  `json:"total_price"`
	QRToken     string `json:"qr_token"`
	ConfirmedAt string `json:"confirmed_at"`
}
