package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
)

var (
	ErrUnknownMethod     = errors.New("unknown payment method")
	ErrInvalidTransition = errors.New("invalid payment transition")
)

type CreatePaymentInput struct {
	Method     string
	OrderID    string
	Amount     float64
	Email      string
	Phone      string
	ReturnURLs *ReturnURLs
}

// Payments orchestrates gateway calls and keeps the order's payment
// metadata in sync with what the gateway handed back.
type Payments struct {
	repo  OrderRepo
	gw    PaymentGateway
	cache StatusCache // optional
	now   func() time.Time
}

func NewPayments(repo OrderRepo, gw PaymentGateway, cache StatusCache) *Payments {
	return &Payments{repo: repo, gw: gw, cache: cache, now: time.Now}
}

// Create dispatches to the method-specific gateway call and records the
// returned reference/request id on the order.
func (p *Payments) Create(ctx context.Context, in CreatePaymentInput) (any, error) {
	req := PaymentRequest{
		OrderID:    in.OrderID,
		Amount:     in.Amount,
		Email:      in.Email,
		Phone:      in.Phone,
		ReturnURLs: in.ReturnURLs,
	}

	switch in.Method {
	case "multibanco":
		data, err := p.gw.MultibancoReference(ctx, req)
		if err != nil {
			return nil, err
		}
		p.recordMetadata(ctx, in.OrderID, in.Method, func(o *entity.Order) {
			o.Entidade = data.Entity
			o.Referencia = data.Reference
		}, data)
		return data, nil

	case "mbway":
		data, err := p.gw.MBWayPayment(ctx, req)
		if err != nil {
			return nil, err
		}
		p.recordMetadata(ctx, in.OrderID, in.Method, func(o *entity.Order) {
			o.RequestID = data.RequestID
		}, data)
		return data, nil

	case "card", "paybylink":
		data, err := p.gw.CardPayByLink(ctx, req)
		if err != nil {
			return nil, err
		}
		p.recordMetadata(ctx, in.OrderID, in.Method, func(o *entity.Order) {
			o.RequestID = data.RequestID
		}, data)
		return data, nil
	}
	return nil, ErrUnknownMethod
}

// recordMetadata is best-effort: a missing order (e.g. a payment created
// against an id we never stored) must not fail the gateway call that
// already happened.
func (p *Payments) recordMetadata(ctx context.Context, orderID, method string, apply func(*entity.Order), payload any) {
	o, err := p.repo.GetByID(ctx, orderID)
	if err != nil {
		return
	}
	o.MetodoPagamento = method
	apply(o)
	if raw, err := json.Marshal(payload); err == nil {
		o.DadosPagamento = raw
	}
	o.Versao++
	o.AtualizadaEm = p.now().UTC()
	_, _ = p.repo.Update(ctx, o, -1)
}

// MBWayStatus returns the gateway's raw status string for a request id,
// short-circuiting through the cache when two tabs poll the same payment.
func (p *Payments) MBWayStatus(ctx context.Context, requestID string) (string, error) {
	if p.cache != nil {
		if st, ok, _ := p.cache.GetStatus(ctx, requestID); ok {
			return st, nil
		}
	}
	st, err := p.gw.PaymentStatus(ctx, requestID)
	if err != nil {
		return "", err
	}
	if p.cache != nil {
		_ = p.cache.SetStatus(ctx, requestID, st)
	}
	return st, nil
}

// SetPaymentState is the advisory client-side transition: it only promotes
// pendente to a terminal payment state. Anything else needs the admin
// update endpoint.
func (p *Payments) SetPaymentState(ctx context.Context, orderID string, state entity.PaymentState) (*entity.Order, error) {
	if state != entity.PaymentPaid && state != entity.PaymentFailed {
		return nil, ErrInvalidTransition
	}
	o, err := p.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.EstadoPagamento != entity.PaymentPending {
		return nil, ErrInvalidTransition
	}
	p.applyPaymentState(o, state)
	if _, err := p.repo.Update(ctx, o, -1); err != nil {
		return nil, err
	}
	return o, nil
}

// Reconcile marks the order behind a gateway reference as paid. It is the
// server-side authority triggered by the verified callback, and it is
// idempotent: a reference already settled is a no-op.
func (p *Payments) Reconcile(ctx context.Context, reference string) (*entity.Order, error) {
	o, err := p.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if o.EstadoPagamento == entity.PaymentPaid {
		return o, nil
	}
	p.applyPaymentState(o, entity.PaymentPaid)
	if _, err := p.repo.Update(ctx, o, -1); err != nil {
		return nil, err
	}
	return o, nil
}

func (p *Payments) applyPaymentState(o *entity.Order, state entity.PaymentState) {
	now := p.now().UTC()
	o.EstadoPagamento = state
	if state == entity.PaymentPaid {
		o.PagaEm = &now
		if o.Estado == entity.OrderPending {
			o.Estado = entity.OrderPaid
		}
	}
	o.Versao++
	o.AtualizadaEm = now
}
