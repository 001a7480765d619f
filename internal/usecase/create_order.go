package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/google/uuid"
)

var ErrDuplicate = errors.New("duplicate idempotency key")

const numeroAttempts = 5

type CreateOrderInput struct {
	Order          *entity.Order
	IdempotencyKey string
}

type CreateOrderOutput struct {
	Order *entity.Order
}

type CreateOrder struct {
	repo OrderRepo
	idem IdempotencyStore // optional
	now  func() time.Time
}

func NewCreateOrder(repo OrderRepo, idem IdempotencyStore) *CreateOrder {
	return &CreateOrder{repo: repo, idem: idem, now: time.Now}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	// Fast path: idempotency recall
	if uc.idem != nil && in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, "orders", in.IdempotencyKey); ok {
			if o, err := uc.repo.GetByID(ctx, id); err == nil {
				return CreateOrderOutput{Order: o}, nil
			}
		}
		ok, err := uc.idem.TryLock(ctx, "orders", in.IdempotencyKey)
		if err != nil {
			return CreateOrderOutput{}, err
		}
		if !ok {
			return CreateOrderOutput{}, ErrDuplicate
		}
	}

	now := uc.now().UTC()
	o := in.Order.Clone()
	o.ID = uuid.NewString()
	// Creation always starts pendente/pendente no matter what the client
	// put in the payload.
	o.Estado = entity.OrderPending
	o.EstadoPagamento = entity.PaymentPending
	o.CriadaEm = now
	o.AtualizadaEm = now
	o.PagaEm, o.EnviadaEm, o.EntregueEm = nil, nil, nil
	o.Versao = 1

	clientNumero := o.NumeroEncomenda
	if o.NumeroEncomenda == "" {
		o.NumeroEncomenda = newOrderNumber(now)
	}

	// The server owns order-number uniqueness: regenerate (or suffix a
	// client-supplied number) instead of rejecting the order.
	var err error
	for i := 0; i < numeroAttempts; i++ {
		err = uc.repo.Create(ctx, o)
		if !errors.Is(err, ErrNumeroTaken) {
			break
		}
		if clientNumero != "" {
			o.NumeroEncomenda = clientNumero + "-" + randSuffix()
		} else {
			o.NumeroEncomenda = newOrderNumber(uc.now().UTC())
		}
	}
	if err != nil {
		// release the lock so a retry with the same key is not refused
		// until the TTL expires
		if uc.idem != nil && in.IdempotencyKey != "" {
			_ = uc.idem.Unlock(ctx, "orders", in.IdempotencyKey)
		}
		return CreateOrderOutput{}, err
	}

	if uc.idem != nil && in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, "orders", in.IdempotencyKey, o.ID)
	}
	return CreateOrderOutput{Order: o}, nil
}

func newOrderNumber(now time.Time) string {
	return "ENC-" + now.Format("20060102150405") + "-" + randSuffix()
}

func randSuffix() string {
	return strings.ToUpper(uuid.NewString()[:4])
}
