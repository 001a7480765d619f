package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/repo"
	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	statusCalls int
	status      string
	statusErr   error
}

func (f *fakeGateway) MultibancoReference(_ context.Context, req usecase.PaymentRequest) (*usecase.MultibancoData, error) {
	return &usecase.MultibancoData{
		Entity: "11200", Reference: "123 456 789",
		Amount: entity.FormatAmount(req.Amount), OrderID: req.OrderID,
	}, nil
}

func (f *fakeGateway) MBWayPayment(_ context.Context, req usecase.PaymentRequest) (*usecase.MBWayData, error) {
	return &usecase.MBWayData{
		RequestID: "req-001", Amount: entity.FormatAmount(req.Amount),
		OrderID: req.OrderID, Status: "000",
	}, nil
}

func (f *fakeGateway) CardPayByLink(_ context.Context, req usecase.PaymentRequest) (*usecase.PayByLinkData, error) {
	return &usecase.PayByLinkData{RequestID: "pbl-001", PaymentURL: "https://pay.example/pbl-001", OrderID: req.OrderID}, nil
}

func (f *fakeGateway) PaymentStatus(_ context.Context, _ string) (string, error) {
	f.statusCalls++
	return f.status, f.statusErr
}

type fakeStatusCache struct{ m map[string]string }

func newFakeStatusCache() *fakeStatusCache { return &fakeStatusCache{m: map[string]string{}} }

func (f *fakeStatusCache) GetStatus(_ context.Context, id string) (string, bool, error) {
	v, ok := f.m[id]
	return v, ok, nil
}

func (f *fakeStatusCache) SetStatus(_ context.Context, id, status string) error {
	f.m[id] = status
	return nil
}

func TestCreatePaymentRecordsMBWayMetadata(t *testing.T) {
	r := repo.NewMemoryOrderRepo()
	p := usecase.NewPayments(r, &fakeGateway{}, nil)
	o := createTestOrder(t, r)

	data, err := p.Create(context.Background(), usecase.CreatePaymentInput{
		Method: "mbway", OrderID: o.ID, Amount: 100, Email: o.Email, Phone: o.Telefone,
	})
	require.NoError(t, err)
	mb, ok := data.(*usecase.MBWayData)
	require.True(t, ok)
	assert.Equal(t, "req-001", mb.RequestID)
	assert.Equal(t, "100.00", mb.Amount)

	stored, err := r.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "mbway", stored.MetodoPagamento)
	assert.Equal(t, "req-001", stored.RequestID)
	assert.NotEmpty(t, stored.DadosPagamento)
}

func TestCreatePaymentRecordsMultibancoReference(t *testing.T) {
	r := repo.NewMemoryOrderRepo()
	p := usecase.NewPayments(r, &fakeGateway{}, nil)
	o := createTestOrder(t, r)

	_, err := p.Create(context.Background(), usecase.CreatePaymentInput{
		Method: "multibanco", OrderID: o.ID, Amount: 100,
	})
	require.NoError(t, err)

	stored, err := r.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "11200", stored.Entidade)
	assert.Equal(t, "123 456 789", stored.Referencia)
}

func TestCreatePaymentUnknownMethod(t *testing.T) {
	p := usecase.NewPayments(repo.NewMemoryOrderRepo(), &fakeGateway{}, nil)
	_, err := p.Create(context.Background(), usecase.CreatePaymentInput{
		Method: "paypal", OrderID: "x", Amount: 10,
	})
	assert.ErrorIs(t, err, usecase.ErrUnknownMethod)
}

func TestMBWayStatusCacheShortCircuits(t *testing.T) {
	gw := &fakeGateway{status: "123"}
	c := newFakeStatusCache()
	p := usecase.NewPayments(repo.NewMemoryOrderRepo(), gw, c)
	ctx := context.Background()

	st, err := p.MBWayStatus(ctx, "req-001")
	require.NoError(t, err)
	assert.Equal(t, "123", st)
	assert.Equal(t, 1, gw.statusCalls)

	// second poll within the TTL: answered from cache
	st, err = p.MBWayStatus(ctx, "req-001")
	require.NoError(t, err)
	assert.Equal(t, "123", st)
	assert.Equal(t, 1, gw.statusCalls)
}

func TestMBWayStatusPropagatesGatewayError(t *testing.T) {
	gw := &fakeGateway{statusErr: errors.New("boom")}
	p := usecase.NewPayments(repo.NewMemoryOrderRepo(), gw, nil)

	_, err := p.MBWayStatus(context.Background(), "req-001")
	assert.Error(t, err)
}

func TestSetPaymentStatePromotesAndGuards(t *testing.T) {
	r := repo.NewMemoryOrderRepo()
	p := usecase.NewPayments(r, &fakeGateway{}, nil)
	ctx := context.Background()
	o := createTestOrder(t, r)

	got, err := p.SetPaymentState(ctx, o.ID, entity.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, got.EstadoPagamento)
	assert.Equal(t, entity.OrderPaid, got.Estado, "pendente order should progress to paga")
	require.NotNil(t, got.PagaEm)

	// already terminal: the advisory endpoint cannot regress or re-set
	_, err = p.SetPaymentState(ctx, o.ID, entity.PaymentFailed)
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)

	// pendente is not a valid target at all
	o2 := createTestOrder(t, r)
	_, err = p.SetPaymentState(ctx, o2.ID, entity.PaymentPending)
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
}

func TestReconcileByReferenceIsIdempotent(t *testing.T) {
	r := repo.NewMemoryOrderRepo()
	p := usecase.NewPayments(r, &fakeGateway{}, nil)
	ctx := context.Background()
	o := createTestOrder(t, r)

	_, err := p.Create(ctx, usecase.CreatePaymentInput{Method: "multibanco", OrderID: o.ID, Amount: 100})
	require.NoError(t, err)

	got, err := p.Reconcile(ctx, "123 456 789")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, got.EstadoPagamento)
	assert.Equal(t, entity.OrderPaid, got.Estado)
	v := got.Versao

	again, err := p.Reconcile(ctx, "123 456 789")
	require.NoError(t, err)
	assert.Equal(t, v, again.Versao, "second callback must be a no-op")

	_, err = p.Reconcile(ctx, "unknown-ref")
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}
