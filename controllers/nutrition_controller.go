package controllers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

// NutritionController serves per-ingredient nutrition lookups.
type NutritionController struct {
	nutrition *services.NutritionService
}

func NewNutritionController(nutrition *services.NutritionService) *NutritionController {
	return &NutritionController{nutrition: nutrition}
}

type nutritionSearchRequest struct {
	Ingredient string `json:"ingredient" binding:"required"`
}

// POST /nutrition/search  { "ingredient": "rice" }
func (nc *NutritionController) Search(c *gin.Context) {
	var req nutritionSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredient provided"})
		return
	}

	rec, err := nc.nutrition.Lookup(c.Request.Context(), req.Ingredient)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "nutrition": rec})
}
