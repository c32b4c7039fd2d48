package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/auth"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/notify"
	"urgentsales/server/internal/services"
)

// OwnershipHandler drives the claim flow for free listings: a one-time
// code goes to the contact email on the row, and a verified code buys a
// short-lived token that authorizes owner actions on that one listing.
type OwnershipHandler struct {
	listings  services.IListingService
	codes     *auth.OwnershipCodes
	queue     notify.Enqueuer
	appName   string
	jwtSecret string
	tokenTTL  time.Duration
}

func NewOwnershipHandler(listings services.IListingService, codes *auth.OwnershipCodes,
	queue notify.Enqueuer, appName, jwtSecret string, tokenTTL time.Duration) *OwnershipHandler {
	return &OwnershipHandler{
		listings:  listings,
		codes:     codes,
		queue:     queue,
		appName:   appName,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (h *OwnershipHandler) freeKey(c *gin.Context) listing.Key {
	return listing.Key{Origin: listing.OriginFree, ID: c.Param("id")}
}

// RequestCode serves POST /free-listings/:id/ownership/code. The
// response never reveals whether the listing exists or where the code
// went.
func (h *OwnershipHandler) RequestCode(c *gin.Context) {
	key := h.freeKey(c)
	accepted := gin.H{"message": "if the listing exists, a code has been sent to the contact on record"}

	l, err := h.listings.Get(c.Request.Context(), key)
	if err != nil || l.Contact == nil || l.Contact.Email == "" {
		c.JSON(http.StatusAccepted, accepted)
		return
	}

	code, err := h.codes.Generate(key.String(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	msg := notify.ComposeOwnershipCodeEmail(h.appName, l.Contact.Email, l.Title, code)
	if err := h.queue.EnqueueEmail(msg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, accepted)
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

// VerifyCode serves POST /free-listings/:id/ownership/verify and
// returns the scoped token.
func (h *OwnershipHandler) VerifyCode(c *gin.Context) {
	key := h.freeKey(c)
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	if !h.codes.Verify(key.String(), strings.TrimSpace(req.Code), time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		return
	}

	l, err := h.listings.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	var contactEmail string
	if l.Contact != nil {
		contactEmail = l.Contact.Email
	}

	token, err := auth.GenerateOwnershipToken(h.jwtSecret, h.tokenTTL, key.String(), contactEmail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in_seconds": int(h.tokenTTL.Seconds())})
}

// Delete serves DELETE /free-listings/:id with an ownership token.
func (h *OwnershipHandler) Delete(c *gin.Context) {
	key := h.freeKey(c)

	header := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	claims, err := auth.ParseOwnershipToken(h.jwtSecret, header, key.String())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "a valid ownership token for this listing is required"})
		return
	}

	actor := listing.Actor{Email: claims.Subject, Role: listing.RoleUser}
	if err := h.listings.Delete(c.Request.Context(), actor, key); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
