package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/api/middleware"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
	"urgentsales/server/internal/utils"
)

type BillingHandler struct {
	billing       services.ISubscriptionService
	webhookSecret string
}

func NewBillingHandler(billing services.ISubscriptionService, webhookSecret string) *BillingHandler {
	return &BillingHandler{billing: billing, webhookSecret: webhookSecret}
}

// MyInvoices serves GET /my/invoices.
func (h *BillingHandler) MyInvoices(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	id, err := utils.ParseSixID(actor.ID)
	if err != nil {
		respondError(c, listing.ErrNotFound)
		return
	}
	invoices, err := h.billing.ListInvoices(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": invoices})
}

type paymentWebhookRequest struct {
	InvoiceID string `json:"invoice_id"`
}

// PaymentWebhook serves POST /webhooks/payments, called by the payment
// provider when an invoice clears. Authenticated with a shared secret
// header.
func (h *BillingHandler) PaymentWebhook(c *gin.Context) {
	if h.webhookSecret == "" || c.GetHeader("X-Webhook-Secret") != h.webhookSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad webhook secret"})
		return
	}
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	invoiceID, err := utils.ParseSixID(req.InvoiceID)
	if err != nil {
		respondError(c, &listing.ValidationError{Field: "invoice_id", Msg: "malformed invoice id"})
		return
	}
	if err := h.billing.MarkPaid(c.Request.Context(), invoiceID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
