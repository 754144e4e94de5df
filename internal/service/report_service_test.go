package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/payment"
	"github.com/cinetick/cinema-booking/internal/repository"
	"github.com/cinetick/cinema-booking/internal/service"
)

type reconGateway struct {
	method   model.PaymentMethod
	paid     bool
	queryErr error
}

func (g *reconGateway) Method() model.PaymentMethod { return g.method }

func (g *reconGateway) CreateOrder(_ context.Context, _ model.OrderBill, _ string) (payment.CreateResult, error) {
	return payment.CreateResult{}, errors.New("not used")
}

func (g *reconGateway) QueryStatus(_ context.Context, _ string) (payment.Status, error) {
	if g.queryErr != nil {
		return payment.Status{}, g.queryErr
	}
	return payment.Status{Paid: g.paid, Currency: "VND"}, nil
}

func (g *reconGateway) VerifyPaid(_ context.Context, _ string) error { return nil }

func orderRow(rows *sqlmock.Rows, orderID uint64, status model.OrderStatus, total int64, method model.PaymentMethod, code string, when time.Time) *sqlmock.Rows {
	return rows.AddRow(
		orderID, "alice", "", model.NoPromotionID, total, total, string(status), "", when,
		orderID+100, orderID, code, total, string(status), uint64(method), when,
	)
}

func TestRunDaily(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gateways := payment.Registry{
		model.MethodVnpay:   &reconGateway{method: model.MethodVnpay, paid: true},
		model.MethodMomo:    &reconGateway{method: model.MethodMomo, paid: false},
		model.MethodZalopay: &reconGateway{method: model.MethodZalopay, queryErr: errors.New("provider down")},
	}
	svc := service.NewReportService(repository.NewOrderRepo(db), repository.NewSummaryRepo(db), gateways)

	day := time.Now().UTC().AddDate(0, 0, -1)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	reportDate := from.Format("2006-01-02")
	when := from.Add(10 * time.Hour)

	rows := sqlmock.NewRows([]string{
		"o.id", "o.user_id", "o.customer_id", "o.promotion_id", "o.total_prices", "o.original_tickets", "o.status", "o.qr_code", "o.order_date",
		"t.id", "t.order_id", "t.transaction_code", "t.prices", "t.status", "t.payment_method_id", "t.transaction_date",
	})
	rows = orderRow(rows, 1, model.OrderSuccess, 90000, model.MethodCash, "CASH-1", when)
	rows = orderRow(rows, 2, model.OrderSuccess, 150000, model.MethodVnpay, "VNPAY-1", when)
	rows = orderRow(rows, 3, model.OrderPending, 120000, model.MethodMomo, "MOMO-1", when)
	rows = orderRow(rows, 4, model.OrderSuccess, 110000, model.MethodZalopay, "ZALO-1", when)

	mock.ExpectQuery("FROM orders o").
		WithArgs(from, from.AddDate(0, 0, 1)).
		WillReturnRows(rows)

	// one upsert per payment method, in enum order
	mock.ExpectExec("INSERT INTO daily_transaction_summary").
		WithArgs(reportDate, uint64(model.MethodCash), int64(1), int64(1), int64(0), int64(90000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO daily_transaction_summary").
		WithArgs(reportDate, uint64(model.MethodMomo), int64(1), int64(0), int64(1), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO daily_transaction_summary").
		WithArgs(reportDate, uint64(model.MethodPaypal), int64(0), int64(0), int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO daily_transaction_summary").
		WithArgs(reportDate, uint64(model.MethodVisa), int64(0), int64(0), int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO daily_transaction_summary").
		WithArgs(reportDate, uint64(model.MethodVnpay), int64(1), int64(1), int64(0), int64(150000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO daily_transaction_summary").
		WithArgs(reportDate, uint64(model.MethodZalopay), int64(1), int64(0), int64(1), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	summaries, err := svc.RunDaily(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 6)

	byMethod := make(map[model.PaymentMethod]model.DailyTransactionSummary, len(summaries))
	for _, s := range summaries {
		byMethod[s.Method] = s
		assert.Equal(t, reportDate, s.ReportDate)
	}
	assert.Equal(t, int64(1), byMethod[model.MethodCash].TotalSuccess, "cash is trusted from local status")
	assert.Equal(t, int64(1), byMethod[model.MethodVnpay].TotalSuccess, "provider confirmed the payment")
	assert.Equal(t, int64(1), byMethod[model.MethodMomo].TotalFailed, "provider reported unpaid")
	assert.Equal(t, int64(1), byMethod[model.MethodZalopay].TotalFailed, "a provider error counts as failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunDailyEmptyDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := service.NewReportService(repository.NewOrderRepo(db), repository.NewSummaryRepo(db), payment.Registry{})

	mock.ExpectQuery("FROM orders o").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"o.id", "o.user_id", "o.customer_id", "o.promotion_id", "o.total_prices", "o.original_tickets", "o.status", "o.qr_code", "o.order_date",
			"t.id", "t.order_id", "t.transaction_code", "t.prices", "t.status", "t.payment_method_id", "t.transaction_date",
		}))
	for range model.AllPaymentMethods() {
		mock.ExpectExec("INSERT INTO daily_transaction_summary").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	summaries, err := svc.RunDaily(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 6)
	for _, s := range summaries {
		assert.Zero(t, s.TotalOrders)
		assert.Zero(t, s.TotalAmount)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
