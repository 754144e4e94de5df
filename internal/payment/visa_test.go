package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/payment"
)

func newStripeServer(t *testing.T, paymentStatus string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok, "stripe auth is the secret key as basic user")
		assert.Equal(t, "sk_test_123", user)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.FormValue("mode"))
		assert.Equal(t, "usd", r.FormValue("line_items[0][price_data][currency]"))
		assert.Equal(t, "944", r.FormValue("line_items[0][price_data][unit_amount]"), "236000 dong in USD cents")
		assert.Equal(t, "236000", r.FormValue("metadata[total_price]"))
		assert.Contains(t, r.FormValue("success_url"), "{CHECKOUT_SESSION_ID}")

		json.NewEncoder(w).Encode(map[string]any{
			"id":             "cs_test_a1",
			"url":            "https://checkout.test.stripe.com/c/pay/cs_test_a1",
			"payment_status": "unpaid",
		})
	})

	mux.HandleFunc("/v1/checkout/sessions/cs_test_a1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":             "cs_test_a1",
			"payment_status": paymentStatus,
			"amount_total":   944,
			"currency":       "usd",
		})
	})

	return httptest.NewServer(mux)
}

func visaGatewayFor(srv *httptest.Server) *payment.VisaGateway {
	return payment.NewVisaGateway(payment.VisaConfig{
		SecretKey:  "sk_test_123",
		BaseURL:    srv.URL,
		SuccessURL: "https://cinema.example.com/v1/payment/visa/return",
		CancelURL:  "https://cinema.example.com/v1/payment/visa/cancel",
	})
}

func TestVisaCreateOrderOpensSession(t *testing.T) {
	srv := newStripeServer(t, "unpaid")
	defer srv.Close()
	g := visaGatewayFor(srv)

	res, err := g.CreateOrder(context.Background(), model.OrderBill{ScheduleID: 9, TotalPrice: 236000}, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_a1", res.Reference, "session id is the transaction reference")
	assert.Equal(t, "https://checkout.test.stripe.com/c/pay/cs_test_a1", res.PayURL)
}

func TestVisaQueryStatusPaid(t *testing.T) {
	srv := newStripeServer(t, "paid")
	defer srv.Close()
	g := visaGatewayFor(srv)

	status, err := g.QueryStatus(context.Background(), "cs_test_a1")
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.Equal(t, 9.44, status.Total)
	assert.Equal(t, "USD", status.Currency)
}

func TestVisaVerifyPaidUnpaidSession(t *testing.T) {
	srv := newStripeServer(t, "unpaid")
	defer srv.Close()
	g := visaGatewayFor(srv)

	assert.ErrorIs(t, g.VerifyPaid(context.Background(), "cs_test_a1"), payment.ErrNotSettled)
}
