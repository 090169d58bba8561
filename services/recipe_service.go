package services

import (
	"context"
	"fmt"
	"strings"

	"backend/models"
	"backend/utils"
)

const recipePromptFmt = `Create 2-3 simple recipes using these ingredients: %s. You can add common pantry items like rice, beans, pasta, oil, salt, pepper. Return only valid JSON in this exact format:
{
  "recipes": [
    {
      "name": "Recipe Name",
      "description": "Brief description",
      "ingredients": ["ingredient with quantity"],
      "instructions": ["step 1", "step 2"],
      "prepTime": "X min"
    }
  ]
}`

const dailyPrompt = `Generate 3 simple recipes (breakfast, lunch, dinner) using common food bank ingredients like rice, beans, pasta, eggs, bread. Return only valid JSON in this exact format:
{
  "breakfast": {"name": "Recipe Name", "description": "Brief description", "ingredients": ["ingredient 1", "ingredient 2"], "prepTime": "15 min"},
  "lunch": {"name": "Recipe Name", "description": "Brief description", "ingredients": ["ingredient 1", "ingredient 2"], "prepTime": "20 min"},
  "dinner": {"name": "Recipe Name", "description": "Brief description", "ingredients": ["ingredient 1", "ingredient 2"], "prepTime": "30 min"}
}`

// RecipeService synthesizes recipes from ingredient names via the language
// model, and generates the daily food-bank recipe trio.
type RecipeService struct {
	model *AnthropicService
}

func NewRecipeService(model *AnthropicService) *RecipeService {
	return &RecipeService{model: model}
}

// Synthesize asks for 2-3 recipes built on the given ingredient names plus
// common staples. A malformed reply is terminal; no repair retry.
func (s *RecipeService) Synthesize(ctx context.Context, ingredientNames []string) ([]models.Recipe, error) {
	prompt := fmt.Sprintf(recipePromptFmt, strings.Join(ingredientNames, ", "))

	reply, err := s.model.Complete(ctx, "recipes", prompt, 2048)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	if err := utils.DecodeModelJSON(reply, &parsed, nil); err != nil {
		return nil, models.Malformed("recipes", reply, err)
	}
	if len(parsed.Recipes) == 0 {
		return nil, models.Malformed("recipes", reply, fmt.Errorf("no recipes in model reply"))
	}
	return parsed.Recipes, nil
}

// Daily generates the breakfast/lunch/dinner trio from pantry staples.
func (s *RecipeService) Daily(ctx context.Context) (*models.DailyRecipes, error) {
	reply, err := s.model.Complete(ctx, "recipes", dailyPrompt, 1024)
	if err != nil {
		return nil, err
	}

	var daily models.DailyRecipes
	valid := func() bool {
		return daily.Breakfast.Name != "" && daily.Lunch.Name != "" && daily.Dinner.Name != ""
	}
	if err := utils.DecodeModelJSON(reply, &daily, valid); err != nil {
		return nil, models.Malformed("recipes", reply, err)
	}
	return &daily, nil
}
