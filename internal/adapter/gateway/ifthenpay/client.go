// Package ifthenpay wraps the payment provider's REST API: Multibanco
// references, MB WAY push payments, card pay-by-link and the raw status
// query. The adapter never retries and never normalizes status codes;
// interpreting the method-specific vocabularies is the caller's job.
package ifthenpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
)

// Success codes embedded in otherwise-200 response bodies. The reference
// endpoint speaks "0", the SPG endpoints speak "000".
const (
	refStatusOK = "0"
	spgStatusOK = "000"
)

// ConfigError means the backoffice key for a payment method is unset.
// Distinct from GatewayError so callers can tell misconfiguration from a
// provider failure.
type ConfigError struct{ Method string }

func (e *ConfigError) Error() string {
	return fmt.Sprintf("payment method %s not configured", e.Method)
}

// GatewayError is any failure reported by the provider: a non-2xx
// response, a malformed body, or a failure status embedded in a 200.
type GatewayError struct {
	HTTPStatus int
	Status     string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: %s (status %s)", e.Message, e.Status)
	}
	return fmt.Sprintf("gateway: http %d status %s", e.HTTPStatus, e.Status)
}

// ValidationError is raised before any network call is made.
type ValidationError struct{ Field string }

func (e *ValidationError) Error() string { return "missing " + e.Field }

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MultibancoKey string
	MBWayKey      string
	PayByLinkKey  string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}}
}

type multibancoResp struct {
	Entity    string `json:"Entity"`
	Reference string `json:"Reference"`
	Amount    string `json:"Amount"`
	OrderID   string `json:"OrderId"`
	Status    string `json:"Status"`
	Message   string `json:"Message"`
}

func (c *Client) MultibancoReference(ctx context.Context, req usecase.PaymentRequest) (*usecase.MultibancoData, error) {
	if c.cfg.MultibancoKey == "" {
		return nil, &ConfigError{Method: "multibanco"}
	}

	body := map[string]string{
		"mbKey":   c.cfg.MultibancoKey,
		"orderId": req.OrderID,
		"amount":  entity.FormatAmount(req.Amount),
	}
	if req.Email != "" {
		body["email"] = req.Email
	}

	var out multibancoResp
	if err := c.post(ctx, "/multibanco/reference/init", body, &out); err != nil {
		return nil, err
	}
	if out.Status != refStatusOK {
		return nil, &GatewayError{HTTPStatus: http.StatusOK, Status: out.Status, Message: out.Message}
	}
	return &usecase.MultibancoData{
		Entity:    out.Entity,
		Reference: out.Reference,
		Amount:    out.Amount,
		OrderID:   out.OrderID,
	}, nil
}

type spgResp struct {
	RequestID  string `json:"RequestId"`
	Amount     string `json:"Amount"`
	OrderID    string `json:"OrderId"`
	PaymentURL string `json:"PaymentUrl"`
	Status     string `json:"Status"`
	Message    string `json:"Message"`
}

func (c *Client) MBWayPayment(ctx context.Context, req usecase.PaymentRequest) (*usecase.MBWayData, error) {
	if c.cfg.MBWayKey == "" {
		return nil, &ConfigError{Method: "mbway"}
	}
	// Fail fast: an MB WAY push has nowhere to go without a phone.
	if req.Phone == "" {
		return nil, &ValidationError{Field: "phone"}
	}

	body := map[string]string{
		"mbWayKey":     c.cfg.MBWayKey,
		"orderId":      req.OrderID,
		"amount":       entity.FormatAmount(req.Amount),
		"mobileNumber": req.Phone,
	}
	if req.Email != "" {
		body["email"] = req.Email
	}
	if req.Description != "" {
		body["description"] = req.Description
	}

	var out spgResp
	if err := c.post(ctx, "/spg/payment/mbway", body, &out); err != nil {
		return nil, err
	}
	if out.Status != spgStatusOK {
		return nil, &GatewayError{HTTPStatus: http.StatusOK, Status: out.Status, Message: out.Message}
	}
	return &usecase.MBWayData{
		RequestID: out.RequestID,
		Amount:    out.Amount,
		OrderID:   out.OrderID,
		Status:    out.Status,
	}, nil
}

func (c *Client) CardPayByLink(ctx context.Context, req usecase.PaymentRequest) (*usecase.PayByLinkData, error) {
	if c.cfg.PayByLinkKey == "" {
		return nil, &ConfigError{Method: "paybylink"}
	}

	body := map[string]string{
		"payByLinkKey": c.cfg.PayByLinkKey,
		"orderId":      req.OrderID,
		"amount":       entity.FormatAmount(req.Amount),
	}
	if req.ReturnURLs != nil {
		body["successUrl"] = req.ReturnURLs.Success
		body["errorUrl"] = req.ReturnURLs.Error
		body["cancelUrl"] = req.ReturnURLs.Cancel
	}

	var out spgResp
	if err := c.post(ctx, "/paybylink/init", body, &out); err != nil {
		return nil, err
	}
	if out.Status != spgStatusOK {
		return nil, &GatewayError{HTTPStatus: http.StatusOK, Status: out.Status, Message: out.Message}
	}
	return &usecase.PayByLinkData{
		RequestID:  out.RequestID,
		PaymentURL: out.PaymentURL,
		OrderID:    out.OrderID,
	}, nil
}

// PaymentStatus does a read-only query and returns the provider's status
// string as-is.
func (c *Client) PaymentStatus(ctx context.Context, requestID string) (string, error) {
	if c.cfg.MBWayKey == "" {
		return "", &ConfigError{Method: "mbway"}
	}

	q := url.Values{}
	q.Set("mbWayKey", c.cfg.MBWayKey)
	q.Set("requestId", requestID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/spg/payment/mbway/status?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	var out spgResp
	if err := c.do(httpReq, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ge := &GatewayError{HTTPStatus: resp.StatusCode}
		// best effort: the provider sometimes bodies errors too
		var msg spgResp
		if json.Unmarshal(raw, &msg) == nil {
			ge.Status, ge.Message = msg.Status, msg.Message
		}
		return ge
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &GatewayError{HTTPStatus: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

var _ usecase.PaymentGateway = (*Client)(nil)
