package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cinetick/cinema-booking/internal/model"
)

// ScheduleSeatRepo provides data access to schedule_seats, the booking
// unit rows.  Status writes are guarded: the UPDATE carries the expected
// current status in its WHERE clause, and a short row count means some
// seat moved underneath the caller.
type ScheduleSeatRepo struct {
	db *sql.DB
}

// NewScheduleSeatRepo returns a ScheduleSeatRepo bound to the database.
func NewScheduleSeatRepo(db *sql.DB) *ScheduleSeatRepo { return &ScheduleSeatRepo{db: db} }

// GetBySeatIDs loads the showtime-seat rows for the requested seats with
// seat and seat-type data joined in.  An empty result maps to
// ErrNotFound: ordering seats that do not belong to the showtime is a
// client error.
func (r *ScheduleSeatRepo) GetBySeatIDs(ctx context.Context, scheduleID uint64, seatIDs []string) ([]model.ScheduleSeat, error) {
	if len(seatIDs) == 0 {
		return nil, ErrNotFound
	}
	q := `SELECT ss.id, ss.schedule_id, ss.status,
	             s.id, s.row_label, s.seat_number,
	             st.id, st.name, st.price
	      FROM schedule_seats ss
	      JOIN seats s ON s.id = ss.seat_id
	      JOIN seat_types st ON st.id = s.seat_type_id
	      WHERE ss.schedule_id = ? AND ss.seat_id IN (?` + strings.Repeat(",?", len(seatIDs)-1) + `)`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, scheduleID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.ScheduleSeat
	for rows.Next() {
		var ss model.ScheduleSeat
		if err := rows.Scan(&ss.ID, &ss.ScheduleID, &ss.Status,
			&ss.Seat.ID, &ss.Seat.RowLabel, &ss.Seat.SeatNumber,
			&ss.Seat.SeatType.ID, &ss.Seat.SeatType.Name, &ss.Seat.SeatType.Price); err != nil {
			return nil, err
		}
		seats = append(seats, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, ErrNotFound
	}
	return seats, nil
}

// UpdateStatusTx transitions the given seats of one showtime from one
// status to another inside the caller's transaction.  The transition is
// validated against the seat state machine first, and the UPDATE only
// matches rows still in the expected status; when fewer rows than seats
// change, the whole operation fails with ErrStatusConflict so the
// transaction rolls back.
func (r *ScheduleSeatRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, seatIDs []string, from, to model.SeatStatus) error {
	if len(seatIDs) == 0 {
		return nil
	}
	if !from.CanTransition(to) {
		return ErrIllegalTransition
	}
	q := `UPDATE schedule_seats SET status = ?
	      WHERE schedule_id = ? AND status = ? AND seat_id IN (?` + strings.Repeat(",?", len(seatIDs)-1) + `)`
	args := make([]interface{}, 0, len(seatIDs)+3)
	args = append(args, string(to), scheduleID, string(from))
	for _, id := range seatIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != int64(len(seatIDs)) {
		return ErrStatusConflict
	}
	return nil
}

// ListBySchedule loads every seat of one showtime for the public seat
// map, ordered the way the room is laid out.
func (r *ScheduleSeatRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.ScheduleSeat, error) {
	const q = `SELECT ss.id, ss.schedule_id, ss.status,
	                  s.id, s.row_label, s.seat_number,
	                  st.id, st.name, st.price
	           FROM schedule_seats ss
	           JOIN seats s ON s.id = ss.seat_id
	           JOIN seat_types st ON st.id = s.seat_type_id
	           WHERE ss.schedule_id = ?
	           ORDER BY s.row_label, s.seat_number`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.ScheduleSeat
	for rows.Next() {
		var ss model.ScheduleSeat
		if err := rows.Scan(&ss.ID, &ss.ScheduleID, &ss.Status,
			&ss.Seat.ID, &ss.Seat.RowLabel, &ss.Seat.SeatNumber,
			&ss.Seat.SeatType.ID, &ss.Seat.SeatType.Name, &ss.Seat.SeatType.Price); err != nil {
			return nil, err
		}
		seats = append(seats, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, ErrNotFound
	}
	return seats, nil
}
