// Package client drives the analysis endpoints on behalf of a screen,
// keeping the user-visible state machine consistent: selecting an image
// clears prior results, one analysis runs at a time, and completions from a
// discarded submission are dropped.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"backend/models"
)

// Phase is the main analysis lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseImageSelected
	PhaseAnalyzing
	PhaseResults
	PhaseFailed
)

// NutritionPhase tracks one ingredient's enrichment state, independent of the
// main phase and of the other ingredients.
type NutritionPhase int

const (
	NutritionNotRequested NutritionPhase = iota
	NutritionLoading
	NutritionLoaded
	NutritionLoadFailed
)

var moderationMessages = map[models.ModerationReason]string{
	models.ReasonAdultContent: "⚠️ This image contains inappropriate content and cannot be processed.",
	models.ReasonWeapons:      "⚠️ This image appears to contain weapons and cannot be processed.",
	models.ReasonSubstances:   "⚠️ This image contains alcohol or drugs and cannot be processed.",
	models.ReasonOffensive:    "⚠️ This image contains offensive content and cannot be processed.",
}

const genericAnalysisError = "Failed to analyze image. Please try again."

// AnalysisClient is safe for concurrent use. All state behind mu; gen counts
// submissions so late completions from a superseded one are ignored without
// aborting their transport calls.
type AnalysisClient struct {
	baseURL string
	token   string
	httpc   *http.Client

	mu             sync.Mutex
	phase          Phase
	image          string
	gen            int
	result         models.AnalysisResult
	errMsg         string
	nutrition      map[string]models.NutritionRecord
	nutritionPhase map[string]NutritionPhase
}

func New(baseURL, token string) *AnalysisClient {
	return &AnalysisClient{
		baseURL:        baseURL,
		token:          token,
		httpc:          &http.Client{Timeout: 2 * time.Minute},
		nutrition:      make(map[string]models.NutritionRecord),
		nutritionPhase: make(map[string]NutritionPhase),
	}
}

// SelectImage stages a data URI for analysis, clearing any prior results or
// error. Valid from every phase except mid-analysis.
func (a *AnalysisClient) SelectImage(dataURI string) error {
	if len(dataURI)/4*3 > models.MaxImageBytes {
		return errors.New("Image size must be less than 5MB")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase == PhaseAnalyzing {
		return errors.New("analysis in progress")
	}
	a.gen++
	a.image = dataURI
	a.phase = PhaseImageSelected
	a.clearResultsLocked()
	return nil
}

// Reset discards the selected image and all results. A submission already in
// flight keeps running but its completion is ignored.
func (a *AnalysisClient) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.image = ""
	a.phase = PhaseIdle
	a.clearResultsLocked()
}

func (a *AnalysisClient) clearResultsLocked() {
	a.result = models.AnalysisResult{}
	a.errMsg = ""
	a.nutrition = make(map[string]models.NutritionRecord)
	a.nutritionPhase = make(map[string]NutritionPhase)
}

// Analyze submits the selected image and blocks until the pipeline responds.
// Re-submission while a run is in flight is rejected.
func (a *AnalysisClient) Analyze(ctx context.Context) error {
	a.mu.Lock()
	if a.phase != PhaseImageSelected {
		a.mu.Unlock()
		return errors.New("no image selected")
	}
	gen := a.gen
	image := a.image
	a.phase = PhaseAnalyzing
	a.mu.Unlock()

	result, errMsg := a.postAnalyze(ctx, image)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		// superseded by a reset or a new selection
		return nil
	}
	if errMsg != "" {
		a.phase = PhaseFailed
		a.errMsg = errMsg
		return errors.New(errMsg)
	}
	a.phase = PhaseResults
	a.result = *result
	return nil
}

func (a *AnalysisClient) postAnalyze(ctx context.Context, image string) (*models.AnalysisResult, string) {
	body, err := a.post(ctx, "/recipes/analyze-image", map[string]string{"image": image})
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			if msg, ok := moderationMessages[apiErr.ModerationReason]; ok {
				return nil, msg
			}
			if apiErr.Message != "" {
				return nil, apiErr.Message
			}
		}
		return nil, genericAnalysisError
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, genericAnalysisError
	}
	return &result, ""
}

// FetchNutrition enriches one identified ingredient. Independent per name:
// several may be loading concurrently without blocking the main phase.
func (a *AnalysisClient) FetchNutrition(ctx context.Context, name string) {
	a.mu.Lock()
	if a.phase != PhaseResults || a.nutritionPhase[name] == NutritionLoading {
		a.mu.Unlock()
		return
	}
	gen := a.gen
	a.nutritionPhase[name] = NutritionLoading
	a.mu.Unlock()

	rec := a.postNutrition(ctx, name)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return
	}
	if rec == nil {
		a.nutritionPhase[name] = NutritionLoadFailed
		return
	}
	a.nutrition[name] = *rec
	a.nutritionPhase[name] = NutritionLoaded
}

func (a *AnalysisClient) postNutrition(ctx context.Context, name string) *models.NutritionRecord {
	body, err := a.post(ctx, "/nutrition/search", map[string]string{"ingredient": name})
	if err != nil {
		return nil
	}

	var resp struct {
		Nutrition models.NutritionRecord `json:"nutrition"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	return &resp.Nutrition
}

type apiError struct {
	Message          string                  `json:"error"`
	ModerationReason models.ModerationReason `json:"moderationReason"`
}

func (e *apiError) Error() string { return e.Message }

func (a *AnalysisClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(body, &e) == nil && (e.Message != "" || e.ModerationReason != "") {
			return nil, &e
		}
		return nil, errors.New(genericAnalysisError)
	}
	return body, nil
}

// Phase returns the current lifecycle state.
func (a *AnalysisClient) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// ErrorMessage returns the user-facing failure message, empty unless Failed.
func (a *AnalysisClient) ErrorMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// Results returns copies of the identified ingredients and recipes.
func (a *AnalysisClient) Results() ([]models.IdentifiedIngredient, []models.Recipe) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ingredients := make([]models.IdentifiedIngredient, len(a.result.Ingredients))
	copy(ingredients, a.result.Ingredients)
	recipes := make([]models.Recipe, len(a.result.Recipes))
	copy(recipes, a.result.Recipes)
	return ingredients, recipes
}

// Demo reports whether the results are canned fallback content, with the
// server's explanation.
func (a *AnalysisClient) Demo() (bool, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result.Demo, a.result.DemoMessage
}

// NutritionFor returns the cached record and sub-state for one ingredient.
func (a *AnalysisClient) NutritionFor(name string) (models.NutritionRecord, NutritionPhase) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nutrition[name], a.nutritionPhase[name]
}
