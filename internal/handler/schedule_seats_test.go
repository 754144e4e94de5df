package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/handler"
	"github.com/cinetick/cinema-booking/internal/holdstore"
	"github.com/cinetick/cinema-booking/internal/repository"
)

func newSeatHandler(t *testing.T) (*handler.ScheduleSeatHandler, sqlmock.Sqlmock, *holdstore.MemoryStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := holdstore.NewMemoryStore(nil)
	h := handler.NewScheduleSeatHandler(repository.NewScheduleSeatRepo(db), store, nil, 5*time.Minute)
	return h, mock, store
}

func seatMapRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"ss.id", "ss.schedule_id", "ss.status",
		"s.id", "s.row_label", "s.seat_number",
		"st.id", "st.name", "st.price",
	})
}

func TestGetSeatsOverlaysHolds(t *testing.T) {
	h, mock, store := newSeatHandler(t)

	mock.ExpectQuery("ORDER BY s.row_label, s.seat_number").
		WithArgs(uint64(9)).
		WillReturnRows(seatMapRows().
			AddRow(1, 9, "NOT_HELD", "A1", "A", 1, 1, "standard", 90000).
			AddRow(2, 9, "NOT_HELD", "A2", "A", 2, 1, "standard", 90000).
			AddRow(3, 9, "BOOKED", "A3", "A", 3, 2, "vip", 120000))

	rec := holdstore.HoldRecord{ScheduleID: 9, SeatIDs: []string{"A2"}}
	require.NoError(t, store.Put(context.Background(), "bob", rec, time.Minute))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/schedules/9/seats", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.GetSeats(c))
	assert.Equal(t, http.StatusOK, res.Code)

	var body struct {
		ScheduleID uint64 `json:"schedule_id"`
		Seats      []struct {
			SeatID string `json:"seat_id"`
			Status string `json:"status"`
			Price  int64  `json:"price"`
		} `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Seats, 3)
	assert.Equal(t, "NOT_HELD", body.Seats[0].Status)
	assert.Equal(t, "HELD", body.Seats[1].Status, "live hold overlays the persisted state")
	assert.Equal(t, "BOOKED", body.Seats[2].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSeatsUnknownSchedule(t *testing.T) {
	h, mock, _ := newSeatHandler(t)

	mock.ExpectQuery("ORDER BY s.row_label, s.seat_number").
		WithArgs(uint64(404)).
		WillReturnRows(seatMapRows())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/schedules/404/seats", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("404")

	require.NoError(t, h.GetSeats(c))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestHoldSeats(t *testing.T) {
	h, mock, store := newSeatHandler(t)

	mock.ExpectQuery("FROM schedule_seats ss").
		WithArgs(uint64(9), "A1", "A2").
		WillReturnRows(seatMapRows().
			AddRow(1, 9, "NOT_HELD", "A1", "A", 1, 1, "standard", 90000).
			AddRow(2, 9, "NOT_HELD", "A2", "A", 2, 1, "standard", 90000))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/schedules/9/hold",
		strings.NewReader(`{"seat_ids":["A1","A2","A1"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", "alice")

	require.NoError(t, h.HoldSeats(c))
	assert.Equal(t, http.StatusCreated, res.Code)

	rec, err := store.Get(context.Background(), 9, "alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"A1", "A2"}, rec.SeatIDs, "duplicates are dropped")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeatsContested(t *testing.T) {
	h, mock, store := newSeatHandler(t)

	rec := holdstore.HoldRecord{ScheduleID: 9, SeatIDs: []string{"A1"}}
	require.NoError(t, store.Put(context.Background(), "bob", rec, time.Minute))

	mock.ExpectQuery("FROM schedule_seats ss").
		WithArgs(uint64(9), "A1").
		WillReturnRows(seatMapRows().
			AddRow(1, 9, "NOT_HELD", "A1", "A", 1, 1, "standard", 90000))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/schedules/9/hold",
		strings.NewReader(`{"seat_ids":["A1"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", "alice")

	require.NoError(t, h.HoldSeats(c))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "A1")

	own, err := store.Get(context.Background(), 9, "alice")
	require.NoError(t, err)
	assert.Nil(t, own, "no hold is written when seats are contested")
}

func TestReleaseHold(t *testing.T) {
	h, _, store := newSeatHandler(t)

	rec := holdstore.HoldRecord{ScheduleID: 9, SeatIDs: []string{"A1"}}
	require.NoError(t, store.Put(context.Background(), "alice", rec, time.Minute))

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/schedules/9/hold", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", "alice")

	require.NoError(t, h.ReleaseHold(c))
	assert.Equal(t, http.StatusNoContent, res.Code)

	got, err := store.Get(context.Background(), 9, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReleaseHoldMissingIsNoop(t *testing.T) {
	h, _, _ := newSeatHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/schedules/9/hold", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", "alice")

	require.NoError(t, h.ReleaseHold(c))
	assert.Equal(t, http.StatusNoContent, res.Code)
}
