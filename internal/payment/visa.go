package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// VisaConfig carries the Stripe secret key and redirect URLs.
type VisaConfig struct {
	SecretKey  string
	BaseURL    string
	SuccessURL string
	CancelURL  string
}

// VisaGateway charges cards through Stripe checkout sessions.  Amounts
// are converted to USD cents up front; the session ID doubles as the
// transaction reference the return handler queries with.
type VisaGateway struct {
	cfg VisaConfig
}

func NewVisaGateway(cfg VisaConfig) *VisaGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	return &VisaGateway{cfg: cfg}
}

func (g *VisaGateway) Method() model.PaymentMethod { return model.MethodVisa }

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

func (g *VisaGateway) CreateOrder(ctx context.Context, bill model.OrderBill, _ string) (CreateResult, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", g.cfg.SuccessURL+"?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", g.cfg.CancelURL+"?session_id={CHECKOUT_SESSION_ID}")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][product_data][name]", "Order Bill Payment by Visa")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(utils.VNDToUSDCents(bill.TotalPrice), 10))
	form.Set("metadata[schedule_id]", strconv.FormatUint(bill.ScheduleID, 10))
	form.Set("metadata[promotion_id]", strconv.FormatUint(bill.PromotionID, 10))
	form.Set("metadata[total_price]", strconv.FormatInt(bill.TotalPrice, 10))

	var session stripeSession
	if err := g.call(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return CreateResult{}, fmt.Errorf("%w: stripe: %v", ErrCreateFailed, err)
	}
	if session.ID == "" || session.URL == "" {
		return CreateResult{}, fmt.Errorf("%w: stripe: session missing id or url", ErrCreateFailed)
	}
	return CreateResult{PayURL: session.URL, Reference: session.ID}, nil
}

func (g *VisaGateway) QueryStatus(ctx context.Context, reference string) (Status, error) {
	var session stripeSession
	if err := g.call(ctx, http.MethodGet, "/v1/checkout/sessions/"+reference, nil, &session); err != nil {
		return Status{}, fmt.Errorf("stripe query: %w", err)
	}
	currency := strings.ToUpper(session.Currency)
	if currency == "" {
		currency = "USD"
	}
	return Status{
		Paid:     session.PaymentStatus == "paid",
		Total:    float64(session.AmountTotal) / 100,
		Currency: currency,
	}, nil
}

func (g *VisaGateway) VerifyPaid(ctx context.Context, reference string) error {
	status, err := g.QueryStatus(ctx, reference)
	if err != nil {
		return err
	}
	if !status.Paid {
		return ErrNotSettled
	}
	return nil
}

func (g *VisaGateway) call(ctx context.Context, method, path string, form url.Values, out any) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.cfg.SecretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stripe responded %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
