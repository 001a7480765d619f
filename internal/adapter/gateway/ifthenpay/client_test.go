package ifthenpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	hits atomic.Int64
	path string
	body map[string]string
}

func newServer(t *testing.T, cap *capture, status int, resp any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.hits.Add(1)
		cap.path = r.URL.Path
		if r.Method == http.MethodPost {
			cap.body = map[string]string{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&cap.body))
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func allKeys(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		MultibancoKey: "MBK-000",
		MBWayKey:      "MBW-000",
		PayByLinkKey:  "PBL-000",
	}
}

func TestMBWayPaymentSendsFormattedAmountAndPhone(t *testing.T) {
	var cap capture
	srv := newServer(t, &cap, http.StatusOK, spgResp{
		RequestID: "req-42", Amount: "100.00", OrderID: "o-1", Status: "000",
	})
	defer srv.Close()

	c := New(allKeys(srv.URL))
	got, err := c.MBWayPayment(context.Background(), usecase.PaymentRequest{
		OrderID: "o-1", Amount: 100, Phone: "912345678", Email: "ana@example.pt",
	})
	require.NoError(t, err)
	assert.Equal(t, "req-42", got.RequestID)

	assert.Equal(t, "/spg/payment/mbway", cap.path)
	assert.Equal(t, "100.00", cap.body["amount"])
	assert.Equal(t, "912345678", cap.body["mobileNumber"])
	assert.Equal(t, "MBW-000", cap.body["mbWayKey"])
	assert.Equal(t, "ana@example.pt", cap.body["email"])
}

func TestMBWayPaymentMissingPhoneNeverHitsNetwork(t *testing.T) {
	var cap capture
	srv := newServer(t, &cap, http.StatusOK, spgResp{Status: "000"})
	defer srv.Close()

	c := New(allKeys(srv.URL))
	_, err := c.MBWayPayment(context.Background(), usecase.PaymentRequest{OrderID: "o-1", Amount: 10})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phone", ve.Field)
	assert.Zero(t, cap.hits.Load(), "validation must run before any request")
}

func TestUnsetKeyIsConfigError(t *testing.T) {
	c := New(Config{BaseURL: "http://unused"})
	ctx := context.Background()

	_, err := c.MultibancoReference(ctx, usecase.PaymentRequest{OrderID: "o", Amount: 1})
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "multibanco", ce.Method)

	_, err = c.MBWayPayment(ctx, usecase.PaymentRequest{OrderID: "o", Amount: 1, Phone: "9"})
	assert.ErrorAs(t, err, &ce)

	_, err = c.CardPayByLink(ctx, usecase.PaymentRequest{OrderID: "o", Amount: 1})
	assert.ErrorAs(t, err, &ce)

	_, err = c.PaymentStatus(ctx, "req-1")
	assert.ErrorAs(t, err, &ce)
}

func TestMultibancoReferenceInit(t *testing.T) {
	var cap capture
	srv := newServer(t, &cap, http.StatusOK, multibancoResp{
		Entity: "11200", Reference: "123 456 789", Amount: "81.30", OrderID: "o-1", Status: "0",
	})
	defer srv.Close()

	c := New(allKeys(srv.URL))
	got, err := c.MultibancoReference(context.Background(), usecase.PaymentRequest{OrderID: "o-1", Amount: 81.3})
	require.NoError(t, err)

	assert.Equal(t, "/multibanco/reference/init", cap.path)
	assert.Equal(t, "81.30", cap.body["amount"])
	assert.Equal(t, "11200", got.Entity)
	assert.Equal(t, "123 456 789", got.Reference)
}

func TestEmbeddedFailureStatusIsGatewayError(t *testing.T) {
	var cap capture
	srv := newServer(t, &cap, http.StatusOK, spgResp{Status: "105", Message: "montante inválido"})
	defer srv.Close()

	c := New(allKeys(srv.URL))
	_, err := c.MBWayPayment(context.Background(), usecase.PaymentRequest{
		OrderID: "o-1", Amount: 10, Phone: "912345678",
	})

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "105", ge.Status)
	assert.Equal(t, "montante inválido", ge.Message)
}

func TestNon2xxIsGatewayError(t *testing.T) {
	var cap capture
	srv := newServer(t, &cap, http.StatusBadGateway, spgResp{Message: "upstream down"})
	defer srv.Close()

	c := New(allKeys(srv.URL))
	_, err := c.PaymentStatus(context.Background(), "req-1")

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusBadGateway, ge.HTTPStatus)
}

func TestPaymentStatusReturnsRawStatus(t *testing.T) {
	var cap capture
	srv := newServer(t, &cap, http.StatusOK, spgResp{Status: "123"})
	defer srv.Close()

	c := New(allKeys(srv.URL))
	st, err := c.PaymentStatus(context.Background(), "req-1")
	require.NoError(t, err)
	// pass-through: "still pending" codes are not an error here
	assert.Equal(t, "123", st)
}

func TestMalformedBodyIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := New(allKeys(srv.URL))
	_, err := c.PaymentStatus(context.Background(), "req-1")

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "malformed response body", ge.Message)
}
