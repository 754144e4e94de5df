package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/cinetick/cinema-booking/internal/model"
)

// MomoConfig carries the MoMo wallet credentials and endpoints.
type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	CreateURL   string
	QueryURL    string
	ReturnURL   string
	IPNURL      string
}

// MomoGateway implements the MoMo wallet create/query flow.  Every
// request carries an HMAC-SHA256 signature over the alphabetically
// ordered field set, per the v2 gateway contract.
type MomoGateway struct {
	cfg MomoConfig
}

func NewMomoGateway(cfg MomoConfig) *MomoGateway { return &MomoGateway{cfg: cfg} }

func (g *MomoGateway) Method() model.PaymentMethod { return model.MethodMomo }

func (g *MomoGateway) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	OrderID    string `json:"orderId"`
}

func (g *MomoGateway) CreateOrder(ctx context.Context, bill model.OrderBill, _ string) (CreateResult, error) {
	orderID := uuid.NewString()
	requestID := uuid.NewString()
	orderInfo := fmt.Sprintf("Order payment for schedule %d", bill.ScheduleID)

	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=captureWallet",
		g.cfg.AccessKey, bill.TotalPrice, g.cfg.IPNURL, orderID, orderInfo,
		g.cfg.PartnerCode, g.cfg.ReturnURL, requestID,
	)

	body := map[string]any{
		"partnerCode": g.cfg.PartnerCode,
		"accessKey":   g.cfg.AccessKey,
		"requestId":   requestID,
		"amount":      bill.TotalPrice,
		"orderId":     orderID,
		"orderInfo":   orderInfo,
		"redirectUrl": g.cfg.ReturnURL,
		"ipnUrl":      g.cfg.IPNURL,
		"extraData":   "",
		"requestType": "captureWallet",
		"lang":        "vi",
		"signature":   g.sign(raw),
	}

	var resp momoCreateResponse
	if err := g.post(ctx, g.cfg.CreateURL, body, &resp); err != nil {
		return CreateResult{}, fmt.Errorf("%w: momo: %v", ErrCreateFailed, err)
	}
	if resp.ResultCode != 0 || resp.PayURL == "" {
		return CreateResult{}, fmt.Errorf("%w: momo: %s", ErrCreateFailed, resp.Message)
	}
	return CreateResult{PayURL: resp.PayURL, Reference: orderID}, nil
}

type momoQueryResponse struct {
	ResultCode int     `json:"resultCode"`
	Message    string  `json:"message"`
	Amount     float64 `json:"amount"`
}

func (g *MomoGateway) QueryStatus(ctx context.Context, reference string) (Status, error) {
	requestID := uuid.NewString()
	raw := fmt.Sprintf(
		"accessKey=%s&orderId=%s&partnerCode=%s&requestId=%s",
		g.cfg.AccessKey, reference, g.cfg.PartnerCode, requestID,
	)
	body := map[string]any{
		"partnerCode": g.cfg.PartnerCode,
		"requestId":   requestID,
		"orderId":     reference,
		"lang":        "vi",
		"signature":   g.sign(raw),
	}

	var resp momoQueryResponse
	if err := g.post(ctx, g.cfg.QueryURL, body, &resp); err != nil {
		return Status{}, fmt.Errorf("momo query: %w", err)
	}
	return Status{
		Paid:     resp.ResultCode == 0,
		Total:    resp.Amount,
		Currency: "VND",
	}, nil
}

func (g *MomoGateway) VerifyPaid(ctx context.Context, reference string) error {
	status, err := g.QueryStatus(ctx, reference)
	if err != nil {
		return err
	}
	if !status.Paid {
		return ErrNotSettled
	}
	return nil
}

func (g *MomoGateway) post(ctx context.Context, url string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("momo responded %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
