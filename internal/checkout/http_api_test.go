package checkout

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/configs"
	adapterhttp "github.com/carloscruz65/domrealce-site-sub000/internal/adapter/http"
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/http/middleware"
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/repo"
	"github.com/carloscruz65/domrealce-site-sub000/internal/content"
	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway confirms an MB WAY payment on the third status poll.
type stubGateway struct{ polls int }

func (s *stubGateway) MultibancoReference(_ context.Context, req usecase.PaymentRequest) (*usecase.MultibancoData, error) {
	return &usecase.MultibancoData{Entity: "11200", Reference: "123 456 789", Amount: entity.FormatAmount(req.Amount), OrderID: req.OrderID}, nil
}

func (s *stubGateway) MBWayPayment(_ context.Context, req usecase.PaymentRequest) (*usecase.MBWayData, error) {
	return &usecase.MBWayData{RequestID: "req-1", Amount: entity.FormatAmount(req.Amount), OrderID: req.OrderID, Status: "000"}, nil
}

func (s *stubGateway) CardPayByLink(_ context.Context, req usecase.PaymentRequest) (*usecase.PayByLinkData, error) {
	return &usecase.PayByLinkData{RequestID: "pbl-1", PaymentURL: "https://pay.example/pbl-1", OrderID: req.OrderID}, nil
}

func (s *stubGateway) PaymentStatus(_ context.Context, _ string) (string, error) {
	s.polls++
	if s.polls < 3 {
		return "123", nil
	}
	return "000", nil
}

// The full loop the browser performs, but over a real server: submit the
// order, start an MB WAY payment, poll until confirmed, mark paid.
func TestFlowOverHTTPConfirmsMBWay(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var cfg configs.Config
	cfg.App.Env = "prod"
	cfg.Security.AdminToken = "tok"
	cfg.Security.JWTSecret = "secret"
	cfg.Security.TTL = time.Hour

	store := repo.NewMemoryOrderRepo()
	gw := &stubGateway{}
	payments := usecase.NewPayments(store, gw, nil)
	cstore := content.NewMemoryStore()

	router := adapterhttp.NewRouter(
		adapterhttp.NewOrderHandler(usecase.NewCreateOrder(store, nil), usecase.NewUpdateOrder(store), payments, store),
		adapterhttp.NewPaymentHandler(payments, "anti-key"),
		adapterhttp.NewAuthHandler(cfg),
		adapterhttp.NewContentHandler(content.NewPages(cstore), content.NewMedia(cstore)),
		middleware.NewAuthz(cfg),
	)
	srv := httptest.NewServer(router)
	defer srv.Close()

	cleared := 0
	res := New(NewHTTPAPI(srv.URL), Config{Sleep: instantSleep}).Run(context.Background(), Submission{
		Order: &entity.Order{
			Nome: "Ana Silva", Email: "ana@example.pt", Telefone: "912345678",
			Morada: "Rua das Flores 10", CodigoPostal: "4000-001", Localidade: "Porto",
			Total: 100,
		},
		Method:    "mbway",
		ClearCart: func() { cleared++ },
	})

	require.NoError(t, res.Err)
	assert.Equal(t, StateConfirmed, res.State)
	assert.Equal(t, 3, gw.polls)
	assert.Equal(t, 1, cleared)
	require.NotNil(t, res.Payment.MBWay)
	assert.Equal(t, "req-1", res.Payment.MBWay.RequestID)

	stored, err := store.GetByID(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, stored.EstadoPagamento)
	assert.Equal(t, entity.OrderPaid, stored.Estado)
	require.NotNil(t, stored.PagaEm)
}
