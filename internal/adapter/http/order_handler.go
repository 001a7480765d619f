package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/logging"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	create   *usecase.CreateOrder
	update   *usecase.UpdateOrder
	payments *usecase.Payments
	query    usecase.OrderRepo
}

func NewOrderHandler(create *usecase.CreateOrder, update *usecase.UpdateOrder, payments *usecase.Payments, query usecase.OrderRepo) *OrderHandler {
	return &OrderHandler{create: create, update: update, payments: payments, query: query}
}

// CreateOrder stores the checkout payload verbatim. Whatever estado /
// estadoPagamento the client sent is discarded: orders always start
// pendente/pendente.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var o entity.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key") // prevent duplicated submissions

	out, err := h.create.Execute(c.Request.Context(), usecase.CreateOrderInput{
		Order:          &o,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrDuplicate) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": out.Order})
}

// GetOrder serves both public lookups: /api/orders/:id and
// /api/orders/number/:numeroEncomenda.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	sel := strings.Trim(c.Param("selector"), "/")

	var o *entity.Order
	var err error
	if numero, ok := strings.CutPrefix(sel, "number/"); ok {
		o, err = h.query.GetByNumero(c.Request.Context(), numero)
	} else {
		o, err = h.query.GetByID(c.Request.Context(), sel)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "encomenda não encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}

// ListOrders returns the whole store, newest first. The admin UI has no
// pagination.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.query.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

type updateOrderReq struct {
	Estado          *string         `json:"estado"`
	EstadoPagamento *string         `json:"estadoPagamento"`
	CodigoRastreio  *string         `json:"codigoRastreio"`
	Notas           *string         `json:"notas"`
	MetodoPagamento *string         `json:"metodoPagamento"`
	Entidade        *string         `json:"entidade"`
	Referencia      *string         `json:"referencia"`
	RequestID       *string         `json:"requestId"`
	DadosPagamento  json.RawMessage `json:"dadosPagamento"`
	Versao          *int64          `json:"versao"`
}

// UpdateOrder merges a partial field set into the stored record. Fields
// absent from the body stay untouched; supplying versao switches the
// write from last-write-wins to compare-and-swap.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}

	o, err := h.update.Execute(c.Request.Context(), c.Param("id"), usecase.OrderPatch{
		Estado:          req.Estado,
		EstadoPagamento: req.EstadoPagamento,
		CodigoRastreio:  req.CodigoRastreio,
		Notas:           req.Notas,
		MetodoPagamento: req.MetodoPagamento,
		Entidade:        req.Entidade,
		Referencia:      req.Referencia,
		RequestID:       req.RequestID,
		DadosPagamento:  req.DadosPagamento,
		Versao:          req.Versao,
	})
	if err != nil {
		h.updateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}

type updateStatusReq struct {
	Estado          *string `json:"estado"`
	EstadoPagamento *string `json:"estadoPagamento"`
}

// UpdateOrderStatus is the admin convenience endpoint limited to the two
// state fields.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}
	if req.Estado == nil && req.EstadoPagamento == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nada para atualizar"})
		return
	}

	o, err := h.update.Execute(c.Request.Context(), c.Param("id"), usecase.OrderPatch{
		Estado:          req.Estado,
		EstadoPagamento: req.EstadoPagamento,
	})
	if err != nil {
		h.updateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.update.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "encomenda não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type paymentStateReq struct {
	EstadoPagamento string `json:"estadoPagamento" binding:"required"`
}

// SetPaymentState is the advisory endpoint the checkout poller calls on
// confirmation. It only promotes pendente to a terminal payment state.
func (h *OrderHandler) SetPaymentState(c *gin.Context) {
	var req paymentStateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}
	state, err := entity.ParsePaymentState(req.EstadoPagamento)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "estado de pagamento inválido"})
		return
	}

	o, err := h.payments.SetPaymentState(c.Request.Context(), c.Param("id"), state)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "encomenda não encontrada"})
			return
		}
		if errors.Is(err, usecase.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "transição inválida"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}

	logging.From(c).Info("payment state set", "order_id", o.ID, "estado_pagamento", o.EstadoPagamento)
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}

func (h *OrderHandler) updateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "encomenda não encontrada"})
	case errors.Is(err, usecase.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "versão desatualizada"})
	case errors.Is(err, entity.ErrInvalidOrderState), errors.Is(err, entity.ErrInvalidPaymentState):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "estado inválido"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
	}
}
