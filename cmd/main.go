package main

import (
	"log"

	"backend/config"
	"backend/controllers"
	"backend/routes"
	"backend/services"
)

func main() {
	cfg := config.Load()
	db := config.InitDB(cfg)
	cache := config.InitRedis(cfg)

	model := services.NewAnthropicService(cfg)
	engine := services.NewSightengineService(cfg)
	moderation := services.NewModerationService(engine, cfg.AllowUnmoderated)
	ingredients := services.NewIngredientService(model)
	recipes := services.NewRecipeService(model)
	analysis := services.NewAnalysisService(moderation, ingredients, recipes, model.Configured())

	h := routes.Handlers{
		Analysis:   controllers.NewAnalysisController(analysis, recipes),
		Nutrition:  controllers.NewNutritionController(services.NewNutritionService(cfg, cache)),
		Preference: controllers.NewPreferenceController(services.NewPreferenceService(db)),
	}

	r := routes.SetupRouter(cfg, h)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
