package handlers

import (
	"net/http"

	"chemnitz-facilities-api/internal/api/middleware"
	"chemnitz-facilities-api/internal/favorite"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	Favorites *favorite.Service
}

type SetFavoriteRequest struct {
	FacilityID string `json:"facility_id" binding:"required"`
}

// SetFavorite stores a snapshot of the facility and returns it.
func (h *FavoriteHandler) SetFavorite(c *gin.Context) {
	var req SetFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Favorites.SetFavorite(c.Request.Context(), middleware.CurrentUser(c).Username, req.FacilityID)
	if err != nil {
		respondError(c, err, "Failed to set favorite facility")
		return
	}
	c.JSON(http.StatusOK, user.Favorite)
}

func (h *FavoriteHandler) GetFavorite(c *gin.Context) {
	f, err := h.Favorites.GetFavorite(c.Request.Context(), middleware.CurrentUser(c).Username)
	if err != nil {
		respondError(c, err, "Failed to load favorite facility")
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite facility not found"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FavoriteHandler) ClearFavorite(c *gin.Context) {
	user, err := h.Favorites.ClearFavorite(c.Request.Context(), middleware.CurrentUser(c).Username)
	if err != nil {
		respondError(c, err, "Failed to remove favorite facility")
		return
	}
	c.JSON(http.StatusOK, user)
}
