package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinetick/cinema-booking/internal/payment"
	"github.com/cinetick/cinema-booking/internal/repository"
)

// PaymentReturnHandler normalizes every provider's return callback into
// a transaction reference plus an outcome, then hands both to the shared
// finalizer.  Each provider delivers its own payload shape, so each
// route has its own tiny extractor; nothing settlement-related lives
// here.
type PaymentReturnHandler struct {
	Finalizer *payment.Finalizer
	Vnpay     *payment.VnpayGateway // needed to verify the signed return query
}

// NewPaymentReturnHandler constructs the callback handler.  Vnpay may be
// nil when that provider is not configured.
func NewPaymentReturnHandler(finalizer *payment.Finalizer, vnpay *payment.VnpayGateway) *PaymentReturnHandler {
	if finalizer == nil {
		panic("nil finalizer passed to NewPaymentReturnHandler")
	}
	return &PaymentReturnHandler{Finalizer: finalizer, Vnpay: vnpay}
}

// MomoReturn handles GET /v1/payment/momo/return.  MoMo appends orderId
// and resultCode to the redirect; resultCode 0 is success.
func (h *PaymentReturnHandler) MomoReturn(c echo.Context) error {
	reference := c.QueryParam("orderId")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing orderId"})
	}
	return h.finalize(c, reference, c.QueryParam("resultCode") == "0")
}

// PayPalReturn handles GET /v1/payment/paypal/return.  PayPal passes the
// checkout order ID back as token; settlement is proven by capturing it.
func (h *PaymentReturnHandler) PayPalReturn(c echo.Context) error {
	reference := c.QueryParam("token")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing token"})
	}
	return h.finalize(c, reference, true)
}

// PayPalCancel handles GET /v1/payment/paypal/cancel.
func (h *PaymentReturnHandler) PayPalCancel(c echo.Context) error {
	reference := c.QueryParam("token")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing token"})
	}
	return h.finalize(c, reference, false)
}

// VisaReturn handles GET /v1/payment/visa/return.  Stripe substitutes
// the session ID into the success URL; the finalizer re-checks the
// session's payment status before settling.
func (h *PaymentReturnHandler) VisaReturn(c echo.Context) error {
	reference := c.QueryParam("session_id")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session_id"})
	}
	return h.finalize(c, reference, true)
}

// VisaCancel handles GET /v1/payment/visa/cancel.
func (h *PaymentReturnHandler) VisaCancel(c echo.Context) error {
	reference := c.QueryParam("session_id")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session_id"})
	}
	return h.finalize(c, reference, false)
}

// VnpayReturn handles GET /v1/payment/vnpay/return.  The whole query is
// HMAC-signed by VNPay; an invalid signature is rejected outright
// because response codes in a forged query mean nothing.
func (h *PaymentReturnHandler) VnpayReturn(c echo.Context) error {
	if h.Vnpay == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vnpay is not configured"})
	}
	query := c.Request().URL.Query()
	if !h.Vnpay.VerifyReturn(query) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}
	reference := query.Get("vnp_TxnRef")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing vnp_TxnRef"})
	}
	return h.finalize(c, reference, query.Get("vnp_ResponseCode") == "00")
}

// ZalopayReturn handles GET /v1/payment/zalopay/return.  ZaloPay sends
// apptransid and a status flag; status 1 is success.
func (h *PaymentReturnHandler) ZalopayReturn(c echo.Context) error {
	reference := c.QueryParam("apptransid")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing apptransid"})
	}
	return h.finalize(c, reference, c.QueryParam("status") == "1")
}

// finalize runs the shared settlement state machine for one callback.
func (h *PaymentReturnHandler) finalize(c echo.Context, reference string, paid bool) error {
	ctx := c.Request().Context()

	var (
		result payment.Result
		err    error
	)
	if paid {
		result, err = h.Finalizer.Success(ctx, reference)
	} else {
		result, err = h.Finalizer.Failure(ctx, reference)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		case errors.Is(err, payment.ErrNotSettled):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment not settled with provider"})
		default:
			c.Logger().Errorf("payment return %s: %v", reference, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":        result.OrderID,
		"status":          result.Status,
		"already_settled": result.AlreadySettled,
	})
}
