package services

import (
	"context"

	"backend/models"
	"backend/utils"
)

const identifyPrompt = `Identify all food ingredients in this image. Return only valid JSON in this exact format: {"ingredients": [{"name": "ingredient name", "confidence": "high"}]}`

// IngredientService turns an image into the vision model's ingredient list.
type IngredientService struct {
	model *AnthropicService
}

func NewIngredientService(model *AnthropicService) *IngredientService {
	return &IngredientService{model: model}
}

// Identify sends one vision request and parses the reply. An empty ingredient
// list is an invalid-input failure (nothing to cook with), distinct from a
// transport error.
func (s *IngredientService) Identify(ctx context.Context, img models.ImagePayload) ([]models.IdentifiedIngredient, error) {
	reply, err := s.model.CompleteWithImage(ctx, "vision", img, identifyPrompt, 1024)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Ingredients []models.IdentifiedIngredient `json:"ingredients"`
	}
	if err := utils.DecodeModelJSON(reply, &parsed, nil); err != nil {
		return nil, models.Malformed("vision", reply, err)
	}
	if len(parsed.Ingredients) == 0 {
		return nil, models.InvalidInput("No ingredients identified")
	}
	return parsed.Ingredients, nil
}
