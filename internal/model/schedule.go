package model

import "time"

// Schedule is one screening of a movie in one room (a showtime).  The
// catalog service owns creation and editing; this service only reads it.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  RoomID    – cinema room hosting the screening.
//  StartTime – when the screening begins.
//  EndTime   – when the screening ends.
//  IsDeleted – soft-delete flag; deleted schedules cannot be ordered.
type Schedule struct {
	ID        uint64    // schedules.id
	MovieID   uint64    // schedules.movie_id
	RoomID    uint64    // schedules.room_id
	StartTime time.Time // schedules.start_time
	EndTime   time.Time // schedules.end_time
	IsDeleted bool      // schedules.is_deleted
}

// SeatType carries the base price shared by all seats of one kind
// (standard, VIP, couple).  Read-only here.
type SeatType struct {
	ID    uint64 // seat_types.id
	Name  string // seat_types.name
	Price int64  // seat_types.price in whole currency units
}

// Seat is one physical seat in a room.  The row/column layout belongs to
// the catalog; the checkout path only needs identity and pricing.
type Seat struct {
	ID         string   // seats.id
	RowLabel   string   // seats.row_label
	SeatNumber int      // seats.seat_number
	SeatType   SeatType // joined from seat_types
}

// ScheduleSeat is the booking unit: one physical seat's availability for
// one showtime.  Mutated only by the order orchestrator and the payment
// finalizer, always through SeatStatus.CanTransition.
//
// Fields:
//  ID       – primary key identifier.
//  ScheduleID – showtime owning this row.
//  Seat     – the physical seat, with its seat type joined in.
//  Status   – NOT_HELD, HELD or BOOKED.
type ScheduleSeat struct {
	ID         uint64     // schedule_seats.id
	ScheduleID uint64     // schedule_seats.schedule_id
	Seat       Seat       // joined from seats + seat_types
	Status     SeatStatus // schedule_seats.status
}
