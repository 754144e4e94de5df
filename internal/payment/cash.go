package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/cinetick/cinema-booking/internal/model"
)

// cashPayURL is the sentinel "redirect" returned for counter sales; the
// client treats it as immediate success instead of navigating anywhere.
const cashPayURL = "Payment successful by Cash"

// CashGateway settles at the counter: no external provider, no redirect,
// always paid.  Registering it alongside the real gateways keeps the
// orchestrator free of cash special cases at the createOrder step.
type CashGateway struct{}

// NewCashGateway returns the cash gateway.
func NewCashGateway() *CashGateway { return &CashGateway{} }

func (g *CashGateway) Method() model.PaymentMethod { return model.MethodCash }

// CreateOrder mints a local reference; there is no provider to call.
func (g *CashGateway) CreateOrder(_ context.Context, _ model.OrderBill, _ string) (CreateResult, error) {
	return CreateResult{
		PayURL:    cashPayURL,
		Reference: "CASH_ORDER_" + uuid.NewString(),
	}, nil
}

// QueryStatus trusts the local record: cash orders settle in-request.
func (g *CashGateway) QueryStatus(_ context.Context, _ string) (Status, error) {
	return Status{Paid: true, Currency: "VND"}, nil
}

func (g *CashGateway) VerifyPaid(_ context.Context, _ string) error { return nil }
