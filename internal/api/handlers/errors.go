package handlers

import (
	"errors"
	"net/http"

	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/api/middleware"
	"chemnitz-facilities-api/internal/auth"
	"chemnitz-facilities-api/internal/facility"
	"chemnitz-facilities-api/internal/favorite"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to status codes. Anything unrecognised is
// a 500 with a fixed message; the cause is attached to the gin context for
// the request logger.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, facility.ErrAggregateListingFailed):
		// Checked first: it wraps whatever cause aborted the listing.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list facilities"})
	case errors.Is(err, facility.ErrFacilityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Facility not found"})
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, facility.ErrUnrecognizedFacilityType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid facility type"})
	case errors.Is(err, facility.ErrUnknownCategory),
		errors.Is(err, account.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, account.ErrDuplicateIdentity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists."})
	case errors.Is(err, favorite.ErrNothingToClear):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No favorite facility to remove"})
	case errors.Is(err, account.ErrAuthenticationFailed):
		middleware.Unauthorized(c, "Incorrect username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		middleware.Unauthorized(c, "Could not validate credentials")
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
