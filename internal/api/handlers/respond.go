package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
)

// respondError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body; the detail goes to the
// log via gin's error list.
func respondError(c *gin.Context, err error) {
	var (
		verr *listing.ValidationError
		ferr *listing.ForbiddenError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &ferr):
		c.JSON(http.StatusForbidden, gin.H{"error": ferr.Error()})
	case errors.Is(err, listing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrQuotaExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// listingKey parses the :origin/:id pair every listing route carries.
func listingKey(c *gin.Context) (listing.Key, error) {
	origin, err := listing.ParseOrigin(c.Param("origin"))
	if err != nil {
		return listing.Key{}, err
	}
	return listing.Key{Origin: origin, ID: c.Param("id")}, nil
}

func pageFromQuery(c *gin.Context) listing.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return listing.Page{Number: number, Size: size}
}
