package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/net/resp"
	"github.com/jobhive/jobhive/internal/service"
)

// PaymentHandler handles payment confirmation requests, including the
// provider webhook.
type PaymentHandler struct {
	payments *service.PaymentService
	logger   *logger.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments *service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: log}
}

// Confirm is the user-driven confirmation path after checkout.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		IntentID string `json:"intent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	j, err := h.payments.ConfirmFromIntentID(c.Request.Context(), cl, req.IntentID)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, j)
}

// Webhook is the provider-driven confirmation path. The raw body is needed
// for signature verification, so it is read before any binding.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		resp.Fail(c.Writer, resp.BadRequest("unreadable webhook body"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.payments.ConfirmFromWebhook(c.Request.Context(), body, signature); err != nil {
		h.logger.Warn(c.Request.Context(), "webhook rejected", "error", err)
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	c.Status(http.StatusOK)
}
