package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
)

var ErrConflict = errors.New("version conflict")

// OrderPatch carries the admin's partial edit. Nil pointers mean "leave
// alone"; Versao, when set, is compared against the stored version and a
// mismatch fails with ErrConflict instead of silently overwriting.
type OrderPatch struct {
	Estado          *string
	EstadoPagamento *string
	CodigoRastreio  *string
	Notas           *string
	MetodoPagamento *string
	Entidade        *string
	Referencia      *string
	RequestID       *string
	DadosPagamento  json.RawMessage
	Versao          *int64
}

type UpdateOrder struct {
	repo OrderRepo
	now  func() time.Time
}

func NewUpdateOrder(repo OrderRepo) *UpdateOrder {
	return &UpdateOrder{repo: repo, now: time.Now}
}

func (uc *UpdateOrder) Execute(ctx context.Context, id string, p OrderPatch) (*entity.Order, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	expected := int64(-1)
	if p.Versao != nil {
		if *p.Versao != o.Versao {
			return nil, ErrConflict
		}
		expected = o.Versao
	}

	now := uc.now().UTC()
	if p.Estado != nil {
		st, err := entity.ParseOrderState(*p.Estado)
		if err != nil {
			return nil, err
		}
		if st != o.Estado {
			switch st {
			case entity.OrderShipped:
				o.EnviadaEm = &now
			case entity.OrderDelivered:
				o.EntregueEm = &now
			}
		}
		o.Estado = st
	}
	if p.EstadoPagamento != nil {
		st, err := entity.ParsePaymentState(*p.EstadoPagamento)
		if err != nil {
			return nil, err
		}
		if st == entity.PaymentPaid && o.EstadoPagamento != entity.PaymentPaid {
			o.PagaEm = &now
		}
		o.EstadoPagamento = st
	}
	if p.CodigoRastreio != nil {
		o.CodigoRastreio = *p.CodigoRastreio
	}
	if p.Notas != nil {
		o.Notas = *p.Notas
	}
	if p.MetodoPagamento != nil {
		o.MetodoPagamento = *p.MetodoPagamento
	}
	if p.Entidade != nil {
		o.Entidade = *p.Entidade
	}
	if p.Referencia != nil {
		o.Referencia = *p.Referencia
	}
	if p.RequestID != nil {
		o.RequestID = *p.RequestID
	}
	if p.DadosPagamento != nil {
		o.DadosPagamento = append(json.RawMessage(nil), p.DadosPagamento...)
	}

	o.Versao++
	o.AtualizadaEm = now

	ok, err := uc.repo.Update(ctx, o, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return o, nil
}

func (uc *UpdateOrder) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
