package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderState(t *testing.T) {
	tests := []struct {
		in      string
		want    OrderState
		wantErr bool
	}{
		{"pendente", OrderPending, false},
		{"paga", OrderPaid, false},
		{"processando", OrderProcessing, false},
		{"enviada", OrderShipped, false},
		{"entregue", OrderDelivered, false},
		{"cancelada", OrderCancelled, false},
		// legacy spellings still sent by the old frontend
		{"enviado", OrderShipped, false},
		{"cancelado", OrderCancelled, false},
		{"", "", true},
		{"PAGA", "", true},
		{"shipped", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrderState(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidOrderState, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParsePaymentState(t *testing.T) {
	got, err := ParsePaymentState("falhou")
	require.NoError(t, err)
	assert.Equal(t, PaymentFailed, got)

	for _, in := range []string{"pendente", "pago", "falhado"} {
		got, err := ParsePaymentState(in)
		require.NoError(t, err)
		assert.Equal(t, PaymentState(in), got)
	}

	_, err = ParsePaymentState("paid")
	assert.ErrorIs(t, err, ErrInvalidPaymentState)
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, OrderDelivered.IsTerminal())
	assert.True(t, OrderCancelled.IsTerminal())
	assert.False(t, OrderPending.IsTerminal())
	assert.False(t, OrderShipped.IsTerminal())

	assert.True(t, PaymentPaid.IsTerminal())
	assert.True(t, PaymentFailed.IsTerminal())
	assert.False(t, PaymentPending.IsTerminal())
}

func TestValidateCustomer(t *testing.T) {
	o := Order{
		Nome: "Ana", Email: "ana@example.pt", Telefone: "912345678",
		Morada: "Rua A 1", CodigoPostal: "4000-001", Localidade: "Porto",
	}
	require.NoError(t, o.ValidateCustomer())

	o.Telefone = ""
	assert.ErrorIs(t, o.ValidateCustomer(), ErrMissingField)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100.00", FormatAmount(100))
	assert.Equal(t, "12.50", FormatAmount(12.5))
	assert.Equal(t, "0.99", FormatAmount(0.99))
	assert.Equal(t, "1234.57", FormatAmount(1234.567))
}

func TestCloneIsDeep(t *testing.T) {
	o := &Order{
		ID:    "o1",
		Itens: json.RawMessage(`[{"produto":"lona"}]`),
	}
	cp := o.Clone()
	cp.Itens[2] = 'X'
	assert.Equal(t, byte('{'), o.Itens[2], "clone must not share item bytes")

	cp2 := o.Clone()
	cp2.Nome = "outro"
	assert.Empty(t, o.Nome)
}
