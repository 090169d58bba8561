package routes

import (
	"time"

	"backend/config"
	"backend/controllers"
	"backend/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Handlers groups the controllers the router wires up.
type Handlers struct {
	Analysis   *controllers.AnalysisController
	Nutrition  *controllers.NutritionController
	Preference *controllers.PreferenceController
}

func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.RequestID())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          10 * time.Minute,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	analyzeLimit := middlewares.RateLimitMiddleware(rate.Limit(cfg.AnalyzePerMinute/60), cfg.AnalyzeBurst)

	recipes := r.Group("/recipes")
	{
		recipes.POST("/analyze-image", analyzeLimit, h.Analysis.AnalyzeImage)
		recipes.GET("/daily", h.Analysis.DailyRecipes)
	}

	r.POST("/nutrition/search", h.Nutrition.Search)

	// Preference storage is keyed by the identity provider's subject claim
	user := r.Group("/")
	user.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		user.POST("/preferences/:kind", h.Preference.SavePreferences)
		user.GET("/preferences/:kind", h.Preference.GetPreferences)
		user.POST("/saved-places", h.Preference.ToggleSavedPlace)
		user.GET("/saved-places", h.Preference.GetSavedPlaces)
	}

	return r
}
