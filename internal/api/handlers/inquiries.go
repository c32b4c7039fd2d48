package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/api/middleware"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
)

type InquiryHandler struct {
	inquiries services.IInquiryService
}

func NewInquiryHandler(inquiries services.IInquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

type inquiryRequest struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Submit serves POST /listings/:origin/:id/inquiries. Works for guests
// and logged-in buyers alike.
func (h *InquiryHandler) Submit(c *gin.Context) {
	key, err := listingKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}

	var actor *listing.Actor
	if a, ok := middleware.Actor(c); ok {
		actor = &a
	}

	inquiry, err := h.inquiries.Submit(c.Request.Context(), key, actor, services.InquiryInput{
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

// ListForListing serves GET /listings/:origin/:id/inquiries for the
// listing owner.
func (h *InquiryHandler) ListForListing(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	key, err := listingKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	inquiries, err := h.inquiries.ListForListing(c.Request.Context(), actor, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": inquiries})
}
