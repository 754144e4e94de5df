package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinetick/cinema-booking/internal/holdstore"
	"github.com/cinetick/cinema-booking/internal/middleware"
	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/queue"
	"github.com/cinetick/cinema-booking/internal/repository"
)

// ScheduleSeatHandler serves the public seat map for a showtime and lets
// authenticated users place and release the short-lived holds that
// checkout later consumes.
type ScheduleSeatHandler struct {
	Seats   *repository.ScheduleSeatRepo
	Holds   holdstore.Store
	Events  *queue.Publisher
	HoldTTL time.Duration
}

// NewScheduleSeatHandler constructs a ScheduleSeatHandler.
func NewScheduleSeatHandler(seats *repository.ScheduleSeatRepo, holds holdstore.Store, events *queue.Publisher, holdTTL time.Duration) *ScheduleSeatHandler {
	if seats == nil || holds == nil {
		panic("nil dependency passed to NewScheduleSeatHandler")
	}
	return &ScheduleSeatHandler{Seats: seats, Holds: holds, Events: events, HoldTTL: holdTTL}
}

// seatView is one seat in the public map.  Status folds live holds into
// the persisted state: a seat held in the TTL store but not yet ordered
// shows as HELD even though its database row still says NOT_HELD.
type seatView struct {
	SeatID     string           `json:"seat_id"`
	RowLabel   string           `json:"row_label"`
	SeatNumber int              `json:"seat_number"`
	SeatType   string           `json:"seat_type"`
	Price      int64            `json:"price"`
	Status     model.SeatStatus `json:"status"`
}

// GetSeats handles GET /v1/schedules/:id/seats.  Public: guests preview
// availability before logging in, so the route sits behind the response
// cache instead of auth.
func (h *ScheduleSeatHandler) GetSeats(c echo.Context) error {
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()

	seats, err := h.Seats.ListBySchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	held := make(map[string]bool)
	holds, err := h.Holds.Scan(ctx, scheduleID)
	if err != nil {
		// The map degrades to persisted state when the hold store is down.
		c.Logger().Warnf("seat map: scan holds for schedule %d: %v", scheduleID, err)
	} else {
		for _, rec := range holds {
			for _, id := range rec.SeatIDs {
				held[id] = true
			}
		}
	}

	views := make([]seatView, 0, len(seats))
	for _, ss := range seats {
		status := ss.Status
		if status == model.SeatNotHeld && held[ss.Seat.ID] {
			status = model.SeatHeld
		}
		views = append(views, seatView{
			SeatID:     ss.Seat.ID,
			RowLabel:   ss.Seat.RowLabel,
			SeatNumber: ss.Seat.SeatNumber,
			SeatType:   ss.Seat.SeatType.Name,
			Price:      ss.Seat.SeatType.Price,
			Status:     status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"schedule_id": scheduleID, "seats": views})
}

// HoldSeats handles POST /v1/schedules/:id/hold.  It writes one hold per
// (showtime, user); posting again replaces the previous selection.  The
// hold is only a soft claim with a TTL; checkout re-validates everything.
func (h *ScheduleSeatHandler) HoldSeats(c echo.Context) error {
	userID := middleware.ActorID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}

	var body struct {
		SeatIDs []string `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	// deduplicate, dropping empties
	unique := make([]string, 0, len(body.SeatIDs))
	seen := make(map[string]struct{}, len(body.SeatIDs))
	for _, id := range body.SeatIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}

	ctx := c.Request().Context()

	seats, err := h.Seats.GetBySeatIDs(ctx, scheduleID, unique)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seats not found for this schedule"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var unavailable []string
	for _, ss := range seats {
		if ss.Status != model.SeatNotHeld {
			unavailable = append(unavailable, ss.Seat.ID)
		}
	}

	holds, err := h.Holds.Scan(ctx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hold store error"})
	}
	for holder, rec := range holds {
		if holder == userID {
			continue
		}
		for _, id := range rec.SeatIDs {
			if _, requested := seen[id]; requested {
				unavailable = append(unavailable, id)
			}
		}
	}
	if len(unavailable) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":    "seats are already booked or held",
			"seat_ids": unavailable,
		})
	}

	rec := holdstore.HoldRecord{SeatIDs: unique, ScheduleID: scheduleID}
	if err := h.Holds.Put(ctx, userID, rec, h.HoldTTL); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hold store error"})
	}
	if h.Events != nil {
		h.Events.SeatsHeld(ctx, scheduleID, unique)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"schedule_id": scheduleID,
		"seat_ids":    unique,
		"expires_at":  time.Now().UTC().Add(h.HoldTTL),
	})
}

// ReleaseHold handles DELETE /v1/schedules/:id/hold.  Releasing a hold
// that does not exist is a no-op success.
func (h *ScheduleSeatHandler) ReleaseHold(c echo.Context) error {
	userID := middleware.ActorID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}

	ctx := c.Request().Context()
	rec, err := h.Holds.Get(ctx, scheduleID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hold store error"})
	}
	if rec == nil {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.Holds.Delete(ctx, scheduleID, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hold store error"})
	}
	if h.Events != nil {
		h.Events.SeatsCancelled(ctx, scheduleID, rec.SeatIDs)
	}
	return c.NoContent(http.StatusNoContent)
}
