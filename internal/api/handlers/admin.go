package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/api/middleware"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
)

type AdminHandler struct {
	listings services.IListingService
}

func NewAdminHandler(listings services.IListingService) *AdminHandler {
	return &AdminHandler{listings: listings}
}

// PendingQueue serves GET /admin/listings/pending.
func (h *AdminHandler) PendingQueue(c *gin.Context) {
	page, err := h.listings.PendingQueue(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     page.Items,
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

type decisionRequest struct {
	Approve  bool   `json:"approve"`
	Reason   string `json:"reason"`
	Redecide bool   `json:"redecide"`
}

// Decide serves POST /admin/listings/:origin/:id/decision. A decision
// that would not change anything returns 200 with changed=false rather
// than an error.
func (h *AdminHandler) Decide(c *gin.Context) {
	admin, _ := middleware.Actor(c)
	key, err := listingKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}

	updated, err := h.listings.Decide(c.Request.Context(), key,
		listing.Decision{Approve: req.Approve, Reason: req.Reason, Redecide: req.Redecide}, admin)
	if services.IsNoOpDecision(err) {
		c.JSON(http.StatusOK, gin.H{"changed": false})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": true, "listing": updated})
}
