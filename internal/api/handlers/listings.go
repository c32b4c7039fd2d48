package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/api/middleware"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
)

// ImageSigner resolves a stored image key to a browser-fetchable URL.
type ImageSigner interface {
	SignedGetURL(ctx context.Context, key string) (string, error)
}

type ListingHandler struct {
	listings services.IListingService
	signer   ImageSigner
}

func NewListingHandler(listings services.IListingService, signer ImageSigner) *ListingHandler {
	return &ListingHandler{listings: listings, signer: signer}
}

// view is the wire shape of a listing. Image keys become signed URLs;
// legacy rows already hold full URLs and pass through untouched.
func (h *ListingHandler) view(ctx context.Context, l listing.Listing) gin.H {
	urls := make([]string, 0, len(l.ImageURLs))
	for _, ref := range l.ImageURLs {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || h.signer == nil {
			urls = append(urls, ref)
			continue
		}
		signed, err := h.signer.SignedGetURL(ctx, ref)
		if err != nil {
			log.Printf("WARN: could not sign image %s: %v", ref, err)
			continue
		}
		urls = append(urls, signed)
	}

	v := gin.H{
		"key":           l.Key().String(),
		"origin":        l.Origin,
		"id":            l.ID,
		"status":        l.Status,
		"title":         l.Title,
		"description":   l.Description,
		"property_type": l.PropertyType,
		"sale_type":     l.SaleType,
		"city":          l.City,
		"location":      l.Location,
		"price":         l.Price,
		"area_sqft":     l.AreaSqFt,
		"bedrooms":      l.Bedrooms,
		"bathrooms":     l.Bathrooms,
		"amenities":     l.Amenities,
		"image_urls":    urls,
		"created_at":    l.CreatedAt,
	}
	if l.Status == listing.StatusRejected {
		v["rejection_reason"] = l.RejectionReason
	}
	return v
}

func (h *ListingHandler) viewPage(ctx context.Context, page listing.ResultPage) gin.H {
	items := make([]gin.H, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, h.view(ctx, l))
	}
	return gin.H{
		"items":     items,
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
	}
}

// Search serves GET /listings, the public catalogue.
func (h *ListingHandler) Search(c *gin.Context) {
	f := listing.Filter{
		City:         c.Query("city"),
		PropertyType: c.Query("property_type"),
		SaleType:     c.Query("sale_type"),
	}
	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, &listing.ValidationError{Field: "min_price", Msg: "must be a number"})
			return
		}
		f.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, &listing.ValidationError{Field: "max_price", Msg: "must be a number"})
			return
		}
		f.MaxPrice = &v
	}
	sort, err := listing.ParseSort(c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.listings.Search(c.Request.Context(), f, sort, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.viewPage(c.Request.Context(), page))
}

// Get serves GET /listings/:origin/:id.
func (h *ListingHandler) Get(c *gin.Context) {
	key, err := listingKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	l, err := h.listings.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if l.Status != listing.StatusApproved {
		// Owners and staff see their own pending and rejected
		// listings through /my/listings and the admin queue.
		actor, ok := middleware.Actor(c)
		if !ok || !listing.CanMutate(actor, l) {
			respondError(c, listing.ErrNotFound)
			return
		}
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), l))
}

type submitRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PropertyType string   `json:"property_type"`
	SaleType     string   `json:"sale_type"`
	City         string   `json:"city"`
	Location     string   `json:"location"`
	Price        float64  `json:"price"`
	AreaSqFt     float64  `json:"area_sqft"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Amenities    []string `json:"amenities"`

	// Guest submissions only.
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (r submitRequest) input() services.SubmissionInput {
	return services.SubmissionInput{
		Contact: listing.ContactInfo{
			Name:  r.ContactName,
			Email: r.ContactEmail,
			Phone: r.ContactPhone,
		},
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: r.PropertyType,
		SaleType:     r.SaleType,
		City:         r.City,
		Location:     r.Location,
		Price:        r.Price,
		AreaSqFt:     r.AreaSqFt,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Amenities:    r.Amenities,
	}
}

// Submit serves POST /listings for account holders.
func (h *ListingHandler) Submit(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	l, err := h.listings.SubmitPrimary(c.Request.Context(), actor, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(c.Request.Context(), l))
}

// SubmitFree serves POST /free-listings for guests.
func (h *ListingHandler) SubmitFree(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	l, err := h.listings.SubmitFree(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(c.Request.Context(), l))
}

// Mine serves GET /my/listings.
func (h *ListingHandler) Mine(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	page, err := h.listings.OwnListings(c.Request.Context(), actor, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.viewPage(c.Request.Context(), page))
}

// Update serves PATCH /listings/:origin/:id.
func (h *ListingHandler) Update(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	key, err := listingKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	l, err := h.listings.Update(c.Request.Context(), actor, key, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), l))
}

// Delete serves DELETE /listings/:origin/:id.
func (h *ListingHandler) Delete(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	key, err := listingKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.listings.Delete(c.Request.Context(), actor, key); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
