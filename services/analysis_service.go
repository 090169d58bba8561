package services

import (
	"context"

	"backend/models"
)

const demoMessage = "Live image analysis is not configured on this server. Here are sample ingredients and recipes to explore."

// AnalysisService runs the full image pipeline: validate, moderate, identify,
// synthesize. Stages are strictly sequential and the first failure stops the
// run; the pipeline never returns ingredients without recipes.
type AnalysisService struct {
	moderation  *ModerationService
	ingredients *IngredientService
	recipes     *RecipeService
	live        bool
}

// NewAnalysisService wires the three stages. live reflects whether the model
// API key was present at startup; when false every accepted image gets the
// canned demo result instead of model calls.
func NewAnalysisService(moderation *ModerationService, ingredients *IngredientService, recipes *RecipeService, live bool) *AnalysisService {
	return &AnalysisService{
		moderation:  moderation,
		ingredients: ingredients,
		recipes:     recipes,
		live:        live,
	}
}

func (s *AnalysisService) Analyze(ctx context.Context, img models.ImagePayload) (*models.AnalysisResult, error) {
	if img.Data == "" {
		return nil, models.InvalidInput("No image provided")
	}
	if len(img.Data)/4*3 > models.MaxImageBytes {
		return nil, models.InvalidInput("Image size must be less than 5MB")
	}
	switch img.MediaType {
	case models.MediaJPEG, models.MediaPNG, models.MediaWEBP, models.MediaGIF:
	default:
		return nil, models.InvalidInput("Unsupported image type")
	}

	verdict, err := s.moderation.Check(ctx, img)
	if err != nil {
		return nil, err
	}
	if !verdict.Allowed {
		return nil, models.Rejected(verdict.Reason)
	}

	if !s.live {
		return demoResult(), nil
	}

	ingredients, err := s.ingredients.Identify(ctx, img)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, ing.Name)
	}

	recipes, err := s.recipes.Synthesize(ctx, names)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisResult{Ingredients: ingredients, Recipes: recipes}, nil
}

func demoResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Ingredients: []models.IdentifiedIngredient{
			{Name: "tomatoes", Confidence: "high"},
			{Name: "onion", Confidence: "high"},
			{Name: "rice", Confidence: "medium"},
		},
		Recipes: []models.Recipe{
			{
				Name:        "Tomato Rice",
				Description: "A one-pot rice dish simmered with tomatoes and onion.",
				Ingredients: []string{"1 cup rice", "2 tomatoes, chopped", "1 onion, diced", "1 tbsp oil", "salt and pepper"},
				Instructions: []string{
					"Heat oil and soften the onion.",
					"Add tomatoes and cook until they break down.",
					"Stir in rice and 2 cups of water, cover and simmer 18 minutes.",
				},
				PrepTime: "30 min",
			},
			{
				Name:        "Quick Tomato Salad",
				Description: "Fresh tomato and onion salad with a simple dressing.",
				Ingredients: []string{"2 tomatoes, sliced", "1/2 onion, thinly sliced", "1 tbsp oil", "salt and pepper"},
				Instructions: []string{
					"Arrange tomato and onion slices on a plate.",
					"Drizzle with oil, season and serve.",
				},
				PrepTime: "10 min",
			},
		},
		Demo:        true,
		DemoMessage: demoMessage,
	}
}
