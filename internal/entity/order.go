package entity

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// IVARate is the fixed Portuguese VAT rate applied by the storefront.
const IVARate = 0.23

type OrderState string

const (
	OrderPending    OrderState = "pendente"
	OrderPaid       OrderState = "paga"
	OrderProcessing OrderState = "processando"
	OrderShipped    OrderState = "enviada"
	OrderDelivered  OrderState = "entregue"
	OrderCancelled  OrderState = "cancelada"
)

type PaymentState string

const (
	PaymentPending PaymentState = "pendente"
	PaymentPaid    PaymentState = "pago"
	PaymentFailed  PaymentState = "falhado"
)

var (
	ErrInvalidOrderState   = errors.New("invalid order state")
	ErrInvalidPaymentState = errors.New("invalid payment state")
	ErrMissingField        = errors.New("missing required field")
)

// ParseOrderState validates a state string and folds the legacy
// gender-variant spellings the old frontend still sends.
func ParseOrderState(s string) (OrderState, error) {
	switch s {
	case "pendente", "paga", "processando", "enviada", "entregue", "cancelada":
		return OrderState(s), nil
	case "enviado":
		return OrderShipped, nil
	case "cancelado":
		return OrderCancelled, nil
	}
	return "", ErrInvalidOrderState
}

func ParsePaymentState(s string) (PaymentState, error) {
	switch s {
	case "pendente", "pago", "falhado":
		return PaymentState(s), nil
	case "falhou":
		return PaymentFailed, nil
	}
	return "", ErrInvalidPaymentState
}

func (s OrderState) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func (s PaymentState) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// Order is a persisted customer purchase attempt. Monetary fields are
// stored as the client computed them; the line items are opaque JSON.
type Order struct {
	ID              string `json:"id"`
	NumeroEncomenda string `json:"numeroEncomenda"`

	Nome         string `json:"nome"`
	Email        string `json:"email"`
	Telefone     string `json:"telefone"`
	Morada       string `json:"morada"`
	CodigoPostal string `json:"codigoPostal"`
	Localidade   string `json:"localidade"`
	NIF          string `json:"nif,omitempty"`

	Itens json.RawMessage `json:"itens,omitempty"`

	Subtotal float64 `json:"subtotal"`
	Portes   float64 `json:"portes"`
	IVA      float64 `json:"iva"`
	Total    float64 `json:"total"`

	Estado          OrderState   `json:"estado"`
	EstadoPagamento PaymentState `json:"estadoPagamento"`

	MetodoPagamento string          `json:"metodoPagamento,omitempty"`
	Entidade        string          `json:"entidade,omitempty"`
	Referencia      string          `json:"referencia,omitempty"`
	RequestID       string          `json:"requestId,omitempty"`
	DadosPagamento  json.RawMessage `json:"dadosPagamento,omitempty"`

	CodigoRastreio string `json:"codigoRastreio,omitempty"`
	Notas          string `json:"notas,omitempty"`

	CriadaEm     time.Time  `json:"criadaEm"`
	AtualizadaEm time.Time  `json:"atualizadaEm"`
	PagaEm       *time.Time `json:"pagaEm,omitempty"`
	EnviadaEm    *time.Time `json:"enviadaEm,omitempty"`
	EntregueEm   *time.Time `json:"entregueEm,omitempty"`

	Versao int64 `json:"versao"`
}

// ValidateCustomer checks the required checkout fields.
func (o *Order) ValidateCustomer() error {
	for _, f := range []string{o.Nome, o.Email, o.Telefone, o.Morada, o.CodigoPostal, o.Localidade} {
		if f == "" {
			return ErrMissingField
		}
	}
	return nil
}

// Clone returns a deep copy so repo callers never share mutable state.
func (o *Order) Clone() *Order {
	cp := *o
	if o.Itens != nil {
		cp.Itens = append(json.RawMessage(nil), o.Itens...)
	}
	if o.DadosPagamento != nil {
		cp.DadosPagamento = append(json.RawMessage(nil), o.DadosPagamento...)
	}
	for _, t := range []struct {
		src *time.Time
		dst **time.Time
	}{{o.PagaEm, &cp.PagaEm}, {o.EnviadaEm, &cp.EnviadaEm}, {o.EntregueEm, &cp.EntregueEm}} {
		if t.src != nil {
			v := *t.src
			*t.dst = &v
		}
	}
	return &cp
}

// FormatAmount renders a monetary value the way the payment gateway
// expects it: plain decimal, exactly two places.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
