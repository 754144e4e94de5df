package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// VnpayConfig carries the terminal credentials and endpoints.
type VnpayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	QueryURL   string
	ReturnURL  string
}

// VnpayGateway builds the signed redirect URL itself; VNPay has no
// create API call.  Params are sorted, URL-encoded, and sealed with
// HMAC-SHA512 over the encoded query, which is also how the return
// callback and querydr responses are verified.
type VnpayGateway struct {
	cfg VnpayConfig
	now func() time.Time
}

func NewVnpayGateway(cfg VnpayConfig) *VnpayGateway {
	return &VnpayGateway{cfg: cfg, now: time.Now}
}

func (g *VnpayGateway) Method() model.PaymentMethod { return model.MethodVnpay }

func (g *VnpayGateway) sign(raw string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// signedQuery encodes params in key order and appends vnp_SecureHash.
func (g *VnpayGateway) signedQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	encoded := b.String()
	return encoded + "&vnp_SecureHash=" + g.sign(encoded)
}

func (g *VnpayGateway) CreateOrder(_ context.Context, bill model.OrderBill, clientIP string) (CreateResult, error) {
	now := g.now()
	txnRef := strings.ReplaceAll(uuid.NewString(), "-", "")

	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(bill.TotalPrice*100, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  fmt.Sprintf("Order payment for schedule %d", bill.ScheduleID),
		"vnp_OrderType":  "190000",
		"vnp_Locale":     "vn",
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": utils.VnpayDate(now),
		"vnp_ExpireDate": utils.VnpayDate(now.Add(15 * time.Minute)),
	}

	return CreateResult{
		PayURL:    g.cfg.PayURL + "?" + g.signedQuery(params),
		Reference: txnRef,
	}, nil
}

// VerifyReturn checks the vnp_SecureHash on a return callback's query
// parameters.  The handler must call this before trusting the response
// code; an unsigned callback is an attacker, not a payment.
func (g *VnpayGateway) VerifyReturn(query url.Values) bool {
	received := query.Get("vnp_SecureHash")
	if received == "" {
		return false
	}
	params := map[string]string{}
	for k := range query {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		params[k] = query.Get(k)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return hmac.Equal([]byte(g.sign(b.String())), []byte(received))
}

type vnpayQueryResponse struct {
	ResponseCode      string `json:"vnp_ResponseCode"`
	TransactionStatus string `json:"vnp_TransactionStatus"`
	Amount            string `json:"vnp_Amount"`
	Message           string `json:"vnp_Message"`
}

func (g *VnpayGateway) QueryStatus(ctx context.Context, reference string) (Status, error) {
	now := g.now()
	requestID := strings.ReplaceAll(uuid.NewString(), "-", "")
	orderInfo := "Query transaction " + reference
	createDate := utils.VnpayDate(now)

	// querydr signs a pipe-joined field list, not the sorted query.
	raw := strings.Join([]string{
		requestID, "2.1.0", "querydr", g.cfg.TmnCode, reference,
		createDate, createDate, "127.0.0.1", orderInfo,
	}, "|")

	body := map[string]string{
		"vnp_RequestId":       requestID,
		"vnp_Version":         "2.1.0",
		"vnp_Command":         "querydr",
		"vnp_TmnCode":         g.cfg.TmnCode,
		"vnp_TxnRef":          reference,
		"vnp_OrderInfo":       orderInfo,
		"vnp_TransactionDate": createDate,
		"vnp_CreateDate":      createDate,
		"vnp_IpAddr":          "127.0.0.1",
		"vnp_SecureHash":      g.sign(raw),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Status{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.QueryURL, bytes.NewReader(payload))
	if err != nil {
		return Status{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("vnpay query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("vnpay responded %d", resp.StatusCode)
	}
	var out vnpayQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Status{}, fmt.Errorf("vnpay query: %w", err)
	}

	// vnp_Amount is in hundredths of a dong, mirroring the pay request.
	amount, _ := strconv.ParseFloat(out.Amount, 64)
	return Status{
		Paid:     out.ResponseCode == "00" && out.TransactionStatus == "00",
		Total:    amount / 100,
		Currency: "VND",
	}, nil
}

func (g *VnpayGateway) VerifyPaid(ctx context.Context, reference string) error {
	status, err := g.QueryStatus(ctx, reference)
	if err != nil {
		return err
	}
	if !status.Paid {
		return ErrNotSettled
	}
	return nil
}
