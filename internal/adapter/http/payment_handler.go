package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/gateway/ifthenpay"
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/http/middleware"
	"github.com/carloscruz65/domrealce-site-sub000/internal/logging"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments        *usecase.Payments
	antiPhishingKey string
}

func NewPaymentHandler(payments *usecase.Payments, antiPhishingKey string) *PaymentHandler {
	return &PaymentHandler{payments: payments, antiPhishingKey: antiPhishingKey}
}

type createPaymentReq struct {
	Method       string  `json:"method" binding:"required"`
	OrderID      string  `json:"orderId" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	CustomerData struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customerData"`
	ReturnURLs *usecase.ReturnURLs `json:"returnUrls"`
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req createPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}

	data, err := h.payments.Create(c.Request.Context(), usecase.CreatePaymentInput{
		Method:     req.Method,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		Email:      req.CustomerData.Email,
		Phone:      req.CustomerData.Phone,
		ReturnURLs: req.ReturnURLs,
	})
	if err != nil {
		middleware.CountPayment(req.Method, "error")
		h.paymentError(c, err)
		return
	}

	middleware.CountPayment(req.Method, "ok")
	c.JSON(http.StatusOK, gin.H{"success": true, "method": req.Method, "data": data})
}

type mbwayStatusReq struct {
	RequestID string `json:"requestId" binding:"required"`
}

// MBWayStatus answers the browser's polling loop. On an internal error it
// deliberately degrades to "pending" instead of propagating: the poller
// treats anything non-terminal as "keep waiting", and a transient blip
// must not abort a live payment.
func (h *PaymentHandler) MBWayStatus(c *gin.Context) {
	var req mbwayStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}

	status, err := h.payments.MBWayStatus(c.Request.Context(), req.RequestID)
	if err != nil {
		logging.From(c).Warn("mbway status check failed", "request_id", req.RequestID, "error", err.Error())
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "pending", "message": "estado temporariamente indisponível"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": status, "message": ""})
}

// Callback is the gateway's reconciliation ping. The anti-phishing key
// must match; a verified reference is settled server-side, which makes
// the browser's mark-paid call advisory.
func (h *PaymentHandler) Callback(c *gin.Context) {
	chave := c.Query("chave")
	if h.antiPhishingKey == "" ||
		subtle.ConstantTimeCompare([]byte(chave), []byte(h.antiPhishingKey)) != 1 {
		c.String(http.StatusForbidden, "forbidden")
		return
	}

	referencia := c.Query("referencia")
	if referencia == "" {
		referencia = c.Query("requestId")
	}

	o, err := h.payments.Reconcile(c.Request.Context(), referencia)
	if err != nil {
		// A reference we never issued still gets a 200: the gateway
		// retries on anything else and there is nothing to retry into.
		logging.From(c).Warn("callback for unknown reference",
			"referencia", referencia, "valor", c.Query("valor"))
		c.String(http.StatusOK, "OK")
		return
	}

	logging.From(c).Info("payment reconciled via callback",
		"order_id", o.ID, "numero", o.NumeroEncomenda, "valor", c.Query("valor"))
	c.String(http.StatusOK, "OK")
}

func (h *PaymentHandler) paymentError(c *gin.Context, err error) {
	var ve *ifthenpay.ValidationError
	var ce *ifthenpay.ConfigError
	var ge *ifthenpay.GatewayError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Error()})
	case errors.Is(err, usecase.ErrUnknownMethod):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "método de pagamento desconhecido"})
	case errors.As(err, &ce):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": ce.Error()})
	case errors.As(err, &ge):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": ge.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
	}
}
