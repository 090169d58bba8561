package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend/config"
	"backend/models"

	"github.com/redis/go-redis/v9"
)

const (
	usdaBaseURL       = "https://api.nal.usda.gov"
	nutritionCacheTTL = 24 * time.Hour
)

// NutritionService looks up macro nutrients for one ingredient name against
// USDA FoodData Central. A Redis cache sits in front when configured;
// nutrition facts are static reference data, so entries live a full day.
type NutritionService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *redis.Client
}

// NewNutritionService builds the lookup client. cache may be nil, which
// disables caching.
func NewNutritionService(cfg *config.Config, cache *redis.Client) *NutritionService {
	return &NutritionService{
		apiKey:  cfg.USDAAPIKey,
		baseURL: usdaBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

type foodSearchResponse struct {
	Foods []struct {
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// Lookup returns the macro record for the best (first) search match. Missing
// nutrients stay zero; zero matches is a not-found failure.
func (s *NutritionService) Lookup(ctx context.Context, ingredient string) (*models.NutritionRecord, error) {
	if strings.TrimSpace(ingredient) == "" {
		return nil, models.InvalidInput("No ingredient provided")
	}
	if s.apiKey == "" {
		return nil, models.Unconfigured("nutrition")
	}

	if rec := s.cached(ctx, ingredient); rec != nil {
		return rec, nil
	}

	u := fmt.Sprintf("%s/fdc/v1/foods/search?query=%s&pageSize=1&api_key=%s",
		s.baseURL, url.QueryEscape(ingredient), s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create nutrition request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, models.Unavailable("nutrition", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.Unavailable("nutrition", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, models.Unavailable("nutrition", fmt.Errorf("USDA API error %d", resp.StatusCode))
	}

	var sr foodSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, models.Malformed("nutrition", string(body), err)
	}
	if len(sr.Foods) == 0 {
		return nil, models.NotFound("No nutrition data found")
	}

	food := sr.Foods[0]
	rec := &models.NutritionRecord{Name: food.Description}
	seen := make(map[string]bool)
	for _, n := range food.FoodNutrients {
		if seen[n.NutrientName] {
			// USDA repeats some labels (Energy in kcal and kJ); first wins
			continue
		}
		seen[n.NutrientName] = true
		switch n.NutrientName {
		case "Energy":
			rec.Calories = n.Value
		case "Protein":
			rec.Protein = n.Value
		case "Carbohydrate, by difference":
			rec.Carbs = n.Value
		case "Total lipid (fat)":
			rec.Fat = n.Value
		case "Fiber, total dietary":
			rec.Fiber = n.Value
		}
	}

	s.store(ctx, ingredient, rec)
	return rec, nil
}

func (s *NutritionService) cacheKey(ingredient string) string {
	return "nutrition:" + strings.ToLower(strings.TrimSpace(ingredient))
}

func (s *NutritionService) cached(ctx context.Context, ingredient string) *models.NutritionRecord {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cacheKey(ingredient)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("nutrition cache read failed: %v", err)
		}
		return nil
	}
	var rec models.NutritionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil
	}
	return &rec
}

func (s *NutritionService) store(ctx context.Context, ingredient string, rec *models.NutritionRecord) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(ingredient), b, nutritionCacheTTL).Err(); err != nil {
		log.Printf("nutrition cache write failed: %v", err)
	}
}
