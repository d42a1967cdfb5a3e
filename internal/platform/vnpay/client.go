package vnpay

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

const (
	timeLayout = "20060102150405"

	ResponseCodeSuccess = "00"

	// amountScale converts VND to the gateway's minor unit.
	amountScale = 100
)

var ErrDisabled = errors.New("vnpay: gateway not configured")

// Client builds signed redirects and authenticates return callbacks.
type Client struct {
	cfg Config
	now func() time.Time
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg.withDefaults(), now: time.Now}
}

// WithClock replaces the clock; used by tests.
func (c *Client) WithClock(now func() time.Time) *Client {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Client) Enabled() bool { return c != nil && c.cfg.Enabled() }

func (c *Client) TmnCode() string { return c.cfg.TmnCode }

type PaymentRequest struct {
	OrderRef  string
	CourseID  uuid.UUID
	LearnerID uuid.UUID
	// Amount in VND.
	Amount   int64
	ClientIP string
	// ReturnURL overrides the configured return URL when set.
	ReturnURL string
	BankCode  string
}

// NewOrderRef returns a merchant order reference unique per checkout.
func NewOrderRef(at time.Time) string {
	id := uuid.New()
	return at.UTC().Format(timeLayout) + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}

// BuildPaymentURL returns the gateway redirect with the signature appended
// last.
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if req.OrderRef == "" || req.CourseID == uuid.Nil || req.LearnerID == uuid.Nil {
		return "", fmt.Errorf("vnpay: order ref, course and learner are required")
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("vnpay: amount must be positive")
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = c.cfg.ReturnURL
	}
	ip := strings.TrimSpace(req.ClientIP)
	if ip == "" {
		ip = "127.0.0.1"
	}
	created := c.now().In(c.cfg.Location)

	params := url.Values{}
	params.Set("vnp_Version", c.cfg.Version)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", c.cfg.TmnCode)
	params.Set("vnp_Locale", c.cfg.Locale)
	params.Set("vnp_CurrCode", c.cfg.Currency)
	params.Set("vnp_TxnRef", req.OrderRef)
	params.Set("vnp_OrderInfo", EncodeOrderInfo(req.CourseID, req.LearnerID))
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*amountScale, 10))
	params.Set("vnp_ReturnUrl", returnURL)
	params.Set("vnp_IpAddr", ip)
	params.Set("vnp_CreateDate", created.Format(timeLayout))
	params.Set("vnp_ExpireDate", created.Add(time.Duration(c.cfg.ExpireMinutes)*time.Minute).Format(timeLayout))
	if req.BankCode != "" {
		params.Set("vnp_BankCode", req.BankCode)
	}

	canonical := Canonicalize(params)
	sig := Sign(canonical, c.cfg.HashSecret)
	return c.cfg.PaymentURL + "?" + canonical + "&" + ParamSecureHash + "=" + sig, nil
}

// ReturnParams is the authenticated, typed form of a return callback.
type ReturnParams struct {
	TmnCode           string
	OrderRef          string
	OrderInfo         string
	CourseID          uuid.UUID
	LearnerID         uuid.UUID
	Amount            int64
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	BankTranNo        string
	CardType          string
	PayDate           time.Time
}

// Succeeded reports whether the gateway settled the payment.
func (p ReturnParams) Succeeded() bool {
	if p.ResponseCode != ResponseCodeSuccess {
		return false
	}
	return p.TransactionStatus == "" || p.TransactionStatus == ResponseCodeSuccess
}

// IdempotencyKey is the gateway transaction number, or the order reference
// when the gateway never assigned one (cancelled payments report "0").
func (p ReturnParams) IdempotencyKey() string {
	if no := strings.TrimSpace(p.TransactionNo); no != "" && strings.Trim(no, "0") != "" {
		return no
	}
	return "ref:" + p.OrderRef
}

// ParseReturn authenticates the callback and decodes it. A bad signature is
// reported before anything else is looked at.
func (c *Client) ParseReturn(q url.Values) (*ReturnParams, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if !Verify(q, q.Get(ParamSecureHash), c.cfg.HashSecret) {
		return nil, domainagg.ErrInvalidSignature
	}
	return c.decodeReturn(q)
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", domainagg.ErrMalformedCallback, reason)
}

func (c *Client) decodeReturn(q url.Values) (*ReturnParams, error) {
	p := &ReturnParams{
		TmnCode:           q.Get("vnp_TmnCode"),
		OrderRef:          strings.TrimSpace(q.Get("vnp_TxnRef")),
		OrderInfo:         q.Get("vnp_OrderInfo"),
		ResponseCode:      strings.TrimSpace(q.Get("vnp_ResponseCode")),
		TransactionStatus: strings.TrimSpace(q.Get("vnp_TransactionStatus")),
		TransactionNo:     strings.TrimSpace(q.Get("vnp_TransactionNo")),
		BankCode:          q.Get("vnp_BankCode"),
		BankTranNo:        q.Get("vnp_BankTranNo"),
		CardType:          q.Get("vnp_CardType"),
	}
	if p.TmnCode != c.cfg.TmnCode {
		return nil, malformed("merchant code mismatch")
	}
	if p.OrderRef == "" {
		return nil, malformed("missing order reference")
	}
	if p.ResponseCode == "" {
		return nil, malformed("missing response code")
	}
	var err error
	if p.CourseID, p.LearnerID, err = DecodeOrderInfo(p.OrderInfo); err != nil {
		return nil, malformed(err.Error())
	}
	raw, err := strconv.ParseInt(strings.TrimSpace(q.Get("vnp_Amount")), 10, 64)
	if err != nil || raw < 0 || raw%amountScale != 0 {
		return nil, malformed("bad amount")
	}
	p.Amount = raw / amountScale
	if pd := strings.TrimSpace(q.Get("vnp_PayDate")); pd != "" {
		if t, err := time.ParseInLocation(timeLayout, pd, c.cfg.Location); err == nil {
			p.PayDate = t.UTC()
		}
	}
	return p, nil
}
