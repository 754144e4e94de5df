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
	"strconv"
	"time"

	"github.com/cinetick/cinema-booking/internal/model"
)

// ZalopayConfig carries the app credentials and endpoints.
type ZalopayConfig struct {
	AppID     int64
	Key1      string
	Endpoint  string
	QueryURL  string
	ReturnURL string
}

// ZalopayGateway implements the app_trans_id flow: the reference is
// minted locally as "yymmdd_<millis>" and must carry the current date
// prefix or ZaloPay rejects the order.
type ZalopayGateway struct {
	cfg ZalopayConfig
	now func() time.Time
}

func NewZalopayGateway(cfg ZalopayConfig) *ZalopayGateway {
	return &ZalopayGateway{cfg: cfg, now: time.Now}
}

func (g *ZalopayGateway) Method() model.PaymentMethod { return model.MethodZalopay }

func (g *ZalopayGateway) mac(raw string) string {
	h := hmac.New(sha256.New, []byte(g.cfg.Key1))
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

type zalopayCreateResponse struct {
	ReturnCode       int    `json:"return_code"`
	SubReturnMessage string `json:"sub_return_message"`
	OrderURL         string `json:"order_url"`
}

func (g *ZalopayGateway) CreateOrder(ctx context.Context, bill model.OrderBill, _ string) (CreateResult, error) {
	now := g.now()
	appTransID := fmt.Sprintf("%s_%d", now.Format("060102"), now.UnixMilli())
	appUser := "ZaloPay Movie Theater"
	appTime := now.UnixMilli()

	embedData, _ := json.Marshal(map[string]any{
		"redirecturl":              g.cfg.ReturnURL,
		"preferred_payment_method": []string{},
	})
	item, _ := json.Marshal([]map[string]any{{
		"itemid":       fmt.Sprintf("order_%d", g.cfg.AppID),
		"itemname":     "Order payment for movie tickets",
		"itemprice":    bill.TotalPrice,
		"itemquantity": 1,
	}})

	raw := fmt.Sprintf("%d|%s|%s|%d|%d|%s|%s",
		g.cfg.AppID, appTransID, appUser, bill.TotalPrice, appTime, embedData, item)

	body := map[string]any{
		"app_id":       g.cfg.AppID,
		"app_trans_id": appTransID,
		"app_user":     appUser,
		"amount":       bill.TotalPrice,
		"app_time":     appTime,
		"item":         string(item),
		"embed_data":   string(embedData),
		"description":  "Order payment for movie tickets",
		"bank_code":    "",
		"mac":          g.mac(raw),
	}

	var resp zalopayCreateResponse
	if err := g.post(ctx, g.cfg.Endpoint, body, &resp); err != nil {
		return CreateResult{}, fmt.Errorf("%w: zalopay: %v", ErrCreateFailed, err)
	}
	if resp.ReturnCode != 1 {
		return CreateResult{}, fmt.Errorf("%w: zalopay: %s", ErrCreateFailed, resp.SubReturnMessage)
	}
	return CreateResult{PayURL: resp.OrderURL, Reference: appTransID}, nil
}

type zalopayQueryResponse struct {
	ReturnCode    int   `json:"return_code"`
	SubReturnCode int   `json:"sub_return_code"`
	Amount        int64 `json:"amount"`
}

func (g *ZalopayGateway) QueryStatus(ctx context.Context, reference string) (Status, error) {
	raw := strconv.FormatInt(g.cfg.AppID, 10) + "|" + reference + "|" + g.cfg.Key1

	body := map[string]any{
		"app_id":       g.cfg.AppID,
		"app_trans_id": reference,
		"mac":          g.mac(raw),
	}

	var resp zalopayQueryResponse
	if err := g.post(ctx, g.cfg.QueryURL, body, &resp); err != nil {
		return Status{}, fmt.Errorf("zalopay query: %w", err)
	}
	return Status{
		Paid:     resp.ReturnCode == 1 && resp.SubReturnCode == 1,
		Total:    float64(resp.Amount),
		Currency: "VND",
	}, nil
}

func (g *ZalopayGateway) VerifyPaid(ctx context.Context, reference string) error {
	status, err := g.QueryStatus(ctx, reference)
	if err != nil {
		return err
	}
	if !status.Paid {
		return ErrNotSettled
	}
	return nil
}

func (g *ZalopayGateway) post(ctx context.Context, url string, body map[string]any, out any) error {
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
		return fmt.Errorf("zalopay responded %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
