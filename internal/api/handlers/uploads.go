package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/api/middleware"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
	"urgentsales/server/internal/storage"
)

// Uploader presigns browser uploads.
type Uploader interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
}

// ResizeEnqueuer queues post-upload image processing.
type ResizeEnqueuer interface {
	EnqueueImageResize(listingID, key string) error
}

// UploadHandler hands out presigned PUT URLs and kicks off processing
// once the browser confirms the upload. Images only exist on primary
// listings.
type UploadHandler struct {
	listings services.IListingService
	uploader Uploader
	queue    ResizeEnqueuer
}

func NewUploadHandler(listings services.IListingService, uploader Uploader, queue ResizeEnqueuer) *UploadHandler {
	return &UploadHandler{listings: listings, uploader: uploader, queue: queue}
}

// imageKeyParam parses the route key and rejects non-primary origins,
// since legacy rows cannot carry uploaded images.
func imageKeyParam(c *gin.Context) (listing.Key, error) {
	key, err := listingKey(c)
	if err != nil {
		return listing.Key{}, err
	}
	if key.Origin != listing.OriginPrimary {
		return listing.Key{}, &listing.ForbiddenError{Msg: "images are only supported on account listings"}
	}
	return key, nil
}

type uploadRequest struct {
	ContentType string `json:"content_type"`
}

// Presign serves POST /listings/:origin/:id/images.
func (h *UploadHandler) Presign(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	key, err := imageKeyParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	l, err := h.listings.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if !listing.CanMutate(actor, l) {
		respondError(c, &listing.ForbiddenError{Msg: "not the owner of this listing"})
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &listing.ValidationError{Msg: "malformed request body"})
		return
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		respondError(c, &listing.ValidationError{Field: "content_type", Msg: "only images can be uploaded"})
		return
	}

	imageKey := storage.NewImageKey(key.ID)
	url, err := h.uploader.PresignUpload(c.Request.Context(), imageKey, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload_url": url, "key": imageKey})
}

type confirmUploadRequest struct {
	Key string `json:"key"`
}

// Confirm serves POST /listings/:origin/:id/images/confirm. The image
// appears on the listing once the background resize finishes.
func (h *UploadHandler) Confirm(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	key, err := imageKeyParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	l, err := h.listings.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if !listing.CanMutate(actor, l) {
		respondError(c, &listing.ForbiddenError{Msg: "not the owner of this listing"})
		return
	}

	var req confirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		respondError(c, &listing.ValidationError{Field: "key", Msg: "upload key is required"})
		return
	}
	if !strings.HasPrefix(req.Key, "listings/"+key.ID+"/") {
		respondError(c, &listing.ForbiddenError{Msg: "key does not belong to this listing"})
		return
	}

	if err := h.queue.EnqueueImageResize(key.ID, req.Key); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "image queued for processing"})
}
