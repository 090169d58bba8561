package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

// PreferenceController serves the per-user preference blobs and saved places.
// All routes sit behind the auth middleware, which provides userID.
type PreferenceController struct {
	prefs *services.PreferenceService
}

func NewPreferenceController(prefs *services.PreferenceService) *PreferenceController {
	return &PreferenceController{prefs: prefs}
}

// POST /preferences/:kind
func (pc *PreferenceController) SavePreferences(c *gin.Context) {
	kind := c.Param("kind")
	if !services.ValidPreferenceKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown preference kind"})
		return
	}

	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	if err := pc.prefs.Set(c.GetString("userID"), kind, raw); err != nil {
		log.Printf("error saving %s preferences: %v", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /preferences/:kind
func (pc *PreferenceController) GetPreferences(c *gin.Context) {
	kind := c.Param("kind")
	if !services.ValidPreferenceKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown preference kind"})
		return
	}

	raw, err := pc.prefs.Get(c.GetString("userID"), kind)
	if err != nil {
		log.Printf("error getting %s preferences: %v", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "preferences": raw})
}

type savedPlaceRequest struct {
	LocationID string `json:"locationId" binding:"required"`
}

// POST /saved-places  { "locationId": "..." }
func (pc *PreferenceController) ToggleSavedPlace(c *gin.Context) {
	var req savedPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "locationId is required"})
		return
	}

	places, err := pc.prefs.ToggleSavedPlace(c.GetString("userID"), req.LocationID)
	if err != nil {
		log.Printf("error toggling saved place: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save place"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "savedPlaces": places})
}

// GET /saved-places
func (pc *PreferenceController) GetSavedPlaces(c *gin.Context) {
	places, err := pc.prefs.SavedPlaces(c.GetString("userID"))
	if err != nil {
		log.Printf("error getting saved places: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get saved places"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "savedPlaces": places})
}
