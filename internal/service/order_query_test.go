package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/repository"
	"github.com/cinetick/cinema-booking/internal/utils"
)

func orderByIDRows(orderID uint64, userID, customerID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "customer_id", "promotion_id", "total_prices", "original_tickets", "status", "qr_code", "order_date"}).
		AddRow(orderID, userID, customerID, model.NoPromotionID, 236000, 162000, "SUCCESS", "tok", time.Now().UTC())
}

func TestGetOrderOwner(t *testing.T) {
	f := newServiceFixture(t, model.MethodCash)

	f.mock.ExpectQuery("FROM orders WHERE id").WithArgs(uint64(7)).WillReturnRows(orderByIDRows(7, "alice", ""))

	order, err := f.svc.GetOrder(context.Background(), "alice", model.RoleUser, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), order.ID)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetOrderNamedCustomer(t *testing.T) {
	f := newServiceFixture(t, model.MethodCash)

	f.mock.ExpectQuery("FROM orders WHERE id").WithArgs(uint64(7)).WillReturnRows(orderByIDRows(7, "clerk", "bob"))

	_, err := f.svc.GetOrder(context.Background(), "bob", model.RoleUser, 7)
	assert.NoError(t, err, "the named customer may view the order")
}

func TestGetOrderForbidden(t *testing.T) {
	f := newServiceFixture(t, model.MethodCash)

	f.mock.ExpectQuery("FROM orders WHERE id").WithArgs(uint64(7)).WillReturnRows(orderByIDRows(7, "alice", ""))

	_, err := f.svc.GetOrder(context.Background(), "mallory", model.RoleUser, 7)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestGetOrderStaffSeesAll(t *testing.T) {
	f := newServiceFixture(t, model.MethodCash)

	f.mock.ExpectQuery("FROM orders WHERE id").WithArgs(uint64(7)).WillReturnRows(orderByIDRows(7, "alice", ""))

	_, err := f.svc.GetOrder(context.Background(), "clerk", model.RoleEmployee, 7)
	assert.NoError(t, err)
}

func TestScanQRBurnsTickets(t *testing.T) {
	f := newServiceFixture(t, model.MethodCash)

	token, err := utils.NewQRToken("door-secret", 7)
	require.NoError(t, err)

	f.mock.ExpectQuery("FROM orders WHERE id").WithArgs(uint64(7)).WillReturnRows(orderByIDRows(7, "alice", ""))
	f.mock.ExpectQuery("SELECT ticket_id FROM order_details").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow(101).AddRow(102))
	f.mock.ExpectExec("UPDATE ticket SET is_used").
		WithArgs(uint64(101), uint64(102)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	order, err := f.svc.ScanQR(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), order.ID)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestScanQRInvalidToken(t *testing.T) {
	f := newServiceFixture(t, model.MethodCash)

	_, err := f.svc.ScanQR(context.Background(), "forged")
	assert.ErrorIs(t, err, utils.ErrInvalidQRToken)
	require.NoError(t, f.mock.ExpectationsWereMet(), "a bad token never reaches storage")
}

func TestScanQRUnknownOrder(t *testing.T) {
	f := newServiceFixture(t, model.MethodCash)

	token, err := utils.NewQRToken("door-secret", 404)
	require.NoError(t, err)

	f.mock.ExpectQuery("FROM orders WHERE id").WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "customer_id", "promotion_id", "total_prices", "original_tickets", "status", "qr_code", "order_date"}))

	_, err = f.svc.ScanQR(context.Background(), token)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
