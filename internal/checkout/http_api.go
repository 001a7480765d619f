package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
)

// HTTPAPI drives the flow against a running storefront API over HTTP. It
// is what a kiosk or a smoke test uses in place of the browser.
type HTTPAPI struct {
	base string
	http *http.Client
}

func NewHTTPAPI(baseURL string) *HTTPAPI {
	return &HTTPAPI{base: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
}

func (a *HTTPAPI) CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	var resp struct {
		Success bool          `json:"success"`
		Error   string        `json:"error"`
		Order   *entity.Order `json:"order"`
	}
	if err := a.post(ctx, "/api/orders", o, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Order == nil {
		return nil, fmt.Errorf("create order: %s", resp.Error)
	}
	return resp.Order, nil
}

func (a *HTTPAPI) CreatePayment(ctx context.Context, method, orderID string, amount float64, email, phone string, urls *usecase.ReturnURLs) (*PaymentResult, error) {
	req := map[string]any{
		"method":  method,
		"orderId": orderID,
		"amount":  amount,
		"customerData": map[string]string{
			"email": email,
			"phone": phone,
		},
	}
	if urls != nil {
		req["returnUrls"] = urls
	}

	var resp struct {
		Success bool            `json:"success"`
		Error   string          `json:"error"`
		Method  string          `json:"method"`
		Data    json.RawMessage `json:"data"`
	}
	if err := a.post(ctx, "/api/payments/create", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("create payment: %s", resp.Error)
	}

	out := &PaymentResult{Method: resp.Method}
	switch resp.Method {
	case "mbway":
		out.MBWay = &usecase.MBWayData{}
		if err := json.Unmarshal(resp.Data, out.MBWay); err != nil {
			return nil, err
		}
	case "multibanco":
		out.Multibanco = &usecase.MultibancoData{}
		if err := json.Unmarshal(resp.Data, out.Multibanco); err != nil {
			return nil, err
		}
	default:
		out.PayByLink = &usecase.PayByLinkData{}
		if err := json.Unmarshal(resp.Data, out.PayByLink); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *HTTPAPI) MBWayStatus(ctx context.Context, requestID string) (string, error) {
	var resp struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
	if err := a.post(ctx, "/api/payments/mbway/status", map[string]string{"requestId": requestID}, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (a *HTTPAPI) SetPaymentState(ctx context.Context, orderID string, state entity.PaymentState) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	body := map[string]string{"estadoPagamento": string(state)}
	if err := a.post(ctx, "/api/orders/"+orderID+"/payment-state", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("set payment state: %s", resp.Error)
	}
	return nil
}

func (a *HTTPAPI) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

var _ API = (*HTTPAPI)(nil)
