package v1

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stp-explore/ilha-server/internal/catalog"
	"github.com/stp-explore/ilha-server/internal/db/models"
	apimodels "github.com/stp-explore/ilha-server/internal/server/apimodels/v1"
	"github.com/stp-explore/ilha-server/internal/storage"
)

func GETLocations(c *gin.Context) {
	cat, ok := c.MustGet("catalog").(*catalog.Store)
	if !ok {
		slog.Error("Failed to get catalog from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	locations := cat.All()
	if category := c.Query("category"); category != "" {
		if !models.Category(category).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		filtered := make([]models.Location, 0, len(locations))
		for _, location := range locations {
			if location.Category == models.Category(category) {
				filtered = append(filtered, location)
			}
		}
		locations = filtered
	}

	c.JSON(http.StatusOK, apimodels.LocationsResponse{Locations: locations})
}

func GETLocation(c *gin.Context) {
	cat, ok := c.MustGet("catalog").(*catalog.Store)
	if !ok {
		slog.Error("Failed to get catalog from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	location, ok := cat.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}
	c.JSON(http.StatusOK, location)
}

func GETLocationCategories(c *gin.Context) {
	cat, ok := c.MustGet("catalog").(*catalog.Store)
	if !ok {
		slog.Error("Failed to get catalog from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, apimodels.CategoriesResponse{Categories: cat.Categories()})
}

func GETLocationsNear(c *gin.Context) {
	cat, ok := c.MustGet("catalog").(*catalog.Store)
	if !ok {
		slog.Error("Failed to get catalog from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat is required"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng is required"})
		return
	}
	limit := 10
	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
	}

	c.JSON(http.StatusOK, apimodels.LocationsResponse{Locations: cat.Near(lat, lng, limit)})
}

func GETLocationImage(c *gin.Context) {
	cat, ok := c.MustGet("catalog").(*catalog.Store)
	if !ok {
		slog.Error("Failed to get catalog from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	location, ok := cat.ByID(c.Param("id"))
	if !ok || location.Image == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}

	images, ok := c.MustGet("images").(storage.Storage)
	if !ok {
		slog.Error("Failed to get image storage from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	file, err := images.Open(location.Image)
	if err != nil {
		slog.Warn("Failed to open location image", "location", location.Slug, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(location.Image))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		slog.Warn("Failed to stream location image", "location", location.Slug, "error", err)
	}
}
