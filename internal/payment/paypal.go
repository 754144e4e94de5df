package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// PayPalConfig carries the REST API credentials and endpoints.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	BaseURL      string
	SuccessURL   string
	CancelURL    string
	BrandName    string
}

// PayPalGateway drives the checkout-orders REST flow: mint an access
// token, create an order in USD, redirect to the approve link.  The
// return callback captures the order; VerifyPaid is that capture, so a
// success is never recorded before PayPal confirms COMPLETED.
type PayPalGateway struct {
	cfg PayPalConfig
}

func NewPayPalGateway(cfg PayPalConfig) *PayPalGateway { return &PayPalGateway{cfg: cfg} }

func (g *PayPalGateway) Method() model.PaymentMethod { return model.MethodPaypal }

func (g *PayPalGateway) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.AuthURL,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.cfg.ClientID, g.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal auth responded %d", resp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("paypal auth returned empty token")
	}
	return body.AccessToken, nil
}

type paypalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	PurchaseUnits []struct {
		Amount struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
	} `json:"purchase_units"`
}

func (g *PayPalGateway) CreateOrder(ctx context.Context, bill model.OrderBill, _ string) (CreateResult, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%w: paypal: %v", ErrCreateFailed, err)
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         utils.VNDToUSD(bill.TotalPrice),
			},
			"description": fmt.Sprintf("Booking for schedule %d, total seats: %d", bill.ScheduleID, len(bill.Seats)),
		}},
		"application_context": map[string]string{
			"return_url":          g.cfg.SuccessURL,
			"cancel_url":          g.cfg.CancelURL,
			"shipping_preference": "NO_SHIPPING",
			"user_action":         "PAY_NOW",
			"brand_name":          g.cfg.BrandName,
		},
	}

	var order paypalOrderResponse
	if err := g.call(ctx, http.MethodPost, g.cfg.BaseURL+"/v2/checkout/orders", token, body, &order); err != nil {
		return CreateResult{}, fmt.Errorf("%w: paypal: %v", ErrCreateFailed, err)
	}

	var approve string
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approve = link.Href
			break
		}
	}
	if approve == "" || order.ID == "" {
		return CreateResult{}, fmt.Errorf("%w: paypal: no approve link in response", ErrCreateFailed)
	}
	return CreateResult{PayURL: approve, Reference: order.ID}, nil
}

func (g *PayPalGateway) QueryStatus(ctx context.Context, reference string) (Status, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("paypal query: %w", err)
	}
	var order paypalOrderResponse
	if err := g.call(ctx, http.MethodGet, g.cfg.BaseURL+"/v2/checkout/orders/"+reference, token, nil, &order); err != nil {
		return Status{}, fmt.Errorf("paypal query: %w", err)
	}

	status := Status{Paid: order.Status == "COMPLETED", Currency: "USD"}
	if len(order.PurchaseUnits) > 0 {
		fmt.Sscanf(order.PurchaseUnits[0].Amount.Value, "%f", &status.Total)
		if c := order.PurchaseUnits[0].Amount.CurrencyCode; c != "" {
			status.Currency = c
		}
	}
	return status, nil
}

// VerifyPaid captures the approved order.  Capture is the settlement
// step on PayPal; an approved but uncaptured order is not money.
func (g *PayPalGateway) VerifyPaid(ctx context.Context, reference string) error {
	token, err := g.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("paypal capture: %w", err)
	}
	var captured paypalOrderResponse
	if err := g.call(ctx, http.MethodPost, g.cfg.BaseURL+"/v2/checkout/orders/"+reference+"/capture", token, map[string]any{}, &captured); err != nil {
		return fmt.Errorf("paypal capture: %w", err)
	}
	if captured.Status != "COMPLETED" {
		return ErrNotSettled
	}
	return nil
}

func (g *PayPalGateway) call(ctx context.Context, method, url, token string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("paypal responded %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
