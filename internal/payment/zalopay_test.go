package payment_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/payment"
)

const (
	zaloAppID = int64(553)
	zaloKey1  = "zalo-key-1"
)

func newZalopayServer(t *testing.T, createCode, queryCode, subCode int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/create", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		raw := fmt.Sprintf("%d|%s|%s|%d|%d|%s|%s",
			zaloAppID, body["app_trans_id"], body["app_user"],
			int64(body["amount"].(float64)), int64(body["app_time"].(float64)),
			body["embed_data"], body["item"])
		assert.Equal(t, hmacSHA256Hex(zaloKey1, raw), body["mac"], "create request mac")

		json.NewEncoder(w).Encode(map[string]any{
			"return_code":        createCode,
			"sub_return_message": "declined",
			"order_url":          "https://test.zalopay.vn/pay/" + body["app_trans_id"].(string),
		})
	})

	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		raw := fmt.Sprintf("%d|%s|%s", zaloAppID, body["app_trans_id"], zaloKey1)
		assert.Equal(t, hmacSHA256Hex(zaloKey1, raw), body["mac"], "query request mac")

		json.NewEncoder(w).Encode(map[string]any{
			"return_code":     queryCode,
			"sub_return_code": subCode,
			"amount":          236000,
		})
	})

	return httptest.NewServer(mux)
}

func zalopayGatewayFor(srv *httptest.Server) *payment.ZalopayGateway {
	return payment.NewZalopayGateway(payment.ZalopayConfig{
		AppID:     zaloAppID,
		Key1:      zaloKey1,
		Endpoint:  srv.URL + "/create",
		QueryURL:  srv.URL + "/query",
		ReturnURL: "https://cinema.example.com/v1/payment/zalopay/return",
	})
}

func TestZalopayCreateOrderReference(t *testing.T) {
	srv := newZalopayServer(t, 1, 1, 1)
	defer srv.Close()
	g := zalopayGatewayFor(srv)

	res, err := g.CreateOrder(context.Background(), model.OrderBill{ScheduleID: 9, TotalPrice: 236000}, "203.0.113.7")
	require.NoError(t, err)

	// the reference must carry today's yymmdd prefix or ZaloPay rejects it
	assert.Regexp(t, regexp.MustCompile(`^\d{6}_\d+$`), res.Reference)
	assert.Equal(t, time.Now().Format("060102"), res.Reference[:6])
	assert.Equal(t, "https://test.zalopay.vn/pay/"+res.Reference, res.PayURL)
}

func TestZalopayCreateOrderRefused(t *testing.T) {
	srv := newZalopayServer(t, 2, 1, 1)
	defer srv.Close()
	g := zalopayGatewayFor(srv)

	_, err := g.CreateOrder(context.Background(), model.OrderBill{ScheduleID: 9, TotalPrice: 236000}, "203.0.113.7")
	require.Error(t, err)
	assert.ErrorIs(t, err, payment.ErrCreateFailed)
}

func TestZalopayQueryStatus(t *testing.T) {
	srv := newZalopayServer(t, 1, 1, 1)
	defer srv.Close()
	g := zalopayGatewayFor(srv)

	status, err := g.QueryStatus(context.Background(), "260901_1756700000000")
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.Equal(t, float64(236000), status.Total)
	assert.Equal(t, "VND", status.Currency)
}

func TestZalopayVerifyPaidProcessing(t *testing.T) {
	// return_code 1 with sub_return_code 2 means still processing
	srv := newZalopayServer(t, 1, 1, 2)
	defer srv.Close()
	g := zalopayGatewayFor(srv)

	assert.ErrorIs(t, g.VerifyPaid(context.Background(), "260901_1756700000000"), payment.ErrNotSettled)
}
