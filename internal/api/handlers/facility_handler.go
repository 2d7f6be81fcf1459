// internal/api/handlers/facility_handler.go
package handlers

import (
	"bytes"
	"net/http"

	"chemnitz-facilities-api/internal/export"
	"chemnitz-facilities-api/internal/facility"
	"chemnitz-facilities-api/internal/models"

	"github.com/gin-gonic/gin"
)

type FacilityHandler struct {
	Resolver *facility.Resolver
}

// ListCategory returns every facility of one category.
func (h *FacilityHandler) ListCategory(category models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		facilities, err := h.Resolver.ListByCategory(c.Request.Context(), category)
		if err != nil {
			respondError(c, err, "Failed to query facilities")
			return
		}
		c.JSON(http.StatusOK, facilities)
	}
}

// GetInCategory looks a facility up within one category only.
func (h *FacilityHandler) GetInCategory(category models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := h.Resolver.FindInCategory(c.Request.Context(), category, c.Param("id"))
		if err != nil {
			respondError(c, err, "Failed to retrieve facility")
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// GetAllFacilities returns all four categories keyed by category name.
func (h *FacilityHandler) GetAllFacilities(c *gin.Context) {
	all, err := h.Resolver.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list facilities")
		return
	}
	c.JSON(http.StatusOK, all)
}

// GetFacilityByID resolves an id across every category.
func (h *FacilityHandler) GetFacilityByID(c *gin.Context) {
	f, err := h.Resolver.ResolveByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve facility")
		return
	}
	c.JSON(http.StatusOK, f)
}

// ExportFacilities streams all facilities as an xlsx workbook.
func (h *FacilityHandler) ExportFacilities(c *gin.Context) {
	all, err := h.Resolver.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list facilities")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, all); err != nil {
		respondError(c, err, "Failed to build export")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="facilities.xlsx"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
