// Package payment defines the gateway capability contract, its provider
// implementations, and the shared settlement finalizer all providers'
// return callbacks funnel into.
package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cinetick/cinema-booking/internal/model"
)

// ErrCreateFailed wraps any provider failure while creating a payment.
// It always happens before local rows exist, so retrying is safe.
var ErrCreateFailed = errors.New("payment gateway failed to create order")

// ErrNotSettled is returned by VerifyPaid when the provider reports the
// payment as returned but not actually captured.
var ErrNotSettled = errors.New("payment not settled with provider")

// CreateResult is what a provider hands back for a new payment: the URL
// to redirect the customer to and the provider's own reference code.
type CreateResult struct {
	PayURL    string
	Reference string
}

// Status is a provider's live view of one payment.  Total is in the
// provider's currency; Currency names it.
type Status struct {
	Paid     bool
	Total    float64
	Currency string
}

// Gateway is the capability contract every payment provider implements.
// CreateOrder runs before any local persistence; QueryStatus backs the
// daily reconciler; VerifyPaid is the settlement proof demanded before a
// success callback is honored.
type Gateway interface {
	Method() model.PaymentMethod
	CreateOrder(ctx context.Context, bill model.OrderBill, clientIP string) (CreateResult, error)
	QueryStatus(ctx context.Context, reference string) (Status, error)
	VerifyPaid(ctx context.Context, reference string) error
}

// Registry resolves a payment method to its gateway.
type Registry map[model.PaymentMethod]Gateway

// Get returns the gateway for a method, or ErrCreateFailed-compatible
// not-found semantics for unknown methods.
func (r Registry) Get(method model.PaymentMethod) (Gateway, error) {
	gw, ok := r[method]
	if !ok {
		return nil, errors.New("no gateway registered for method " + method.String())
	}
	return gw, nil
}

// httpClient bounds every outbound provider call.  A hung provider must
// fail the checkout, not pin a handler goroutine.
var httpClient = &http.Client{Timeout: 15 * time.Second}
