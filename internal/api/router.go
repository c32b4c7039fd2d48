// Package api wires the HTTP surface: public search, submissions, the
// owner dashboard, the admin moderation queue and webhooks.
package api

import (
	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/api/handlers"
	"urgentsales/server/internal/api/middleware"
	"urgentsales/server/internal/config"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Listings  *handlers.ListingHandler
	Admin     *handlers.AdminHandler
	Users     *handlers.UserHandler
	Inquiries *handlers.InquiryHandler
	Ownership *handlers.OwnershipHandler
	Uploads   *handlers.UploadHandler
	Billing   *handlers.BillingHandler
}

// NewRouter builds the gin engine with all routes mounted.
func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(cfg.RateLimitBucketSize, cfg.RateLimitRefillRate))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	r.POST("/auth/register", h.Users.Register)
	r.POST("/auth/login", h.Users.Login)

	// Public catalogue. Optional auth so owners can see their own
	// pending listings at the detail route.
	public := r.Group("/", middleware.OptionalAuth(cfg.JwtSecret))
	{
		public.GET("/listings", h.Listings.Search)
		public.GET("/listings/:origin/:id", h.Listings.Get)
		public.POST("/listings/:origin/:id/inquiries", h.Inquiries.Submit)
		public.POST("/free-listings", h.Listings.SubmitFree)
	}

	// Free listing ownership claims are token based, not session
	// based.
	r.POST("/free-listings/:id/ownership/code", h.Ownership.RequestCode)
	r.POST("/free-listings/:id/ownership/verify", h.Ownership.VerifyCode)
	r.DELETE("/free-listings/:id", h.Ownership.Delete)

	authed := r.Group("/", middleware.RequireAuth(cfg.JwtSecret))
	{
		authed.POST("/listings", h.Listings.Submit)
		authed.PATCH("/listings/:origin/:id", h.Listings.Update)
		authed.DELETE("/listings/:origin/:id", h.Listings.Delete)
		authed.GET("/listings/:origin/:id/inquiries", h.Inquiries.ListForListing)
		authed.POST("/listings/:origin/:id/images", h.Uploads.Presign)
		authed.POST("/listings/:origin/:id/images/confirm", h.Uploads.Confirm)

		authed.GET("/me", h.Users.Me)
		authed.PATCH("/me/preferences", h.Users.UpdatePreferences)
		authed.GET("/my/listings", h.Listings.Mine)
		authed.GET("/my/invoices", h.Billing.MyInvoices)
	}

	admin := r.Group("/admin", middleware.RequireAuth(cfg.JwtSecret), middleware.RequireAdmin())
	{
		admin.GET("/listings/pending", h.Admin.PendingQueue)
		admin.POST("/listings/:origin/:id/decision", h.Admin.Decide)
	}

	r.POST("/webhooks/payments", h.Billing.PaymentWebhook)

	return r
}
