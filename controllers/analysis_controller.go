package controllers

import (
	"net/http"

	"backend/models"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

// AnalysisController serves the image analysis and daily recipe endpoints.
type AnalysisController struct {
	analysis *services.AnalysisService
	recipes  *services.RecipeService
}

func NewAnalysisController(analysis *services.AnalysisService, recipes *services.RecipeService) *AnalysisController {
	return &AnalysisController{analysis: analysis, recipes: recipes}
}

type analyzeImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// POST /recipes/analyze-image  { "image": "data:image/jpeg;base64,..." }
func (ac *AnalysisController) AnalyzeImage(c *gin.Context) {
	var req analyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	img, err := utils.ParseImageData(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ac.analysis.Analyze(c.Request.Context(), img)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, analyzeResponse(result))
}

// analyzeResponse shapes the success body. demo is always present so clients
// need no absent-key handling; message only accompanies demo results.
func analyzeResponse(result *models.AnalysisResult) gin.H {
	resp := gin.H{
		"success":     true,
		"demo":        result.Demo,
		"ingredients": result.Ingredients,
		"recipes":     result.Recipes,
	}
	if result.Demo {
		resp["message"] = result.DemoMessage
	}
	return resp
}

// GET /recipes/daily
func (ac *AnalysisController) DailyRecipes(c *gin.Context) {
	daily, err := ac.recipes.Daily(c.Request.Context())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipes": daily})
}
