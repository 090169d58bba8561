package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"backend/models"
)

// fakeModel serves the messages API: vision requests (content blocks holding
// an image) get visionReply, plain text requests get recipeReply. Counters
// record how often each path was hit.
type fakeModel struct {
	visionReply string
	recipeReply string
	visionCalls atomic.Int64
	recipeCalls atomic.Int64
	failWith    int // non-zero: respond with this HTTP status
}

func (f *fakeModel) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f.failWith != 0 {
			http.Error(w, "model unavailable", f.failWith)
			return
		}

		var req struct {
			Messages []struct {
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		reply := f.recipeReply
		if strings.Contains(string(req.Messages[0].Content), `"image"`) {
			f.visionCalls.Add(1)
			reply = f.visionReply
		} else {
			f.recipeCalls.Add(1)
		}

		resp := map[string]any{"content": []map[string]string{{"type": "text", "text": reply}}}
		json.NewEncoder(w).Encode(resp)
	}
}

func newTestModel(t *testing.T, f *fakeModel) *AnthropicService {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return &AnthropicService{
		apiKey:  "test-key",
		model:   defaultModel,
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func newTestPipeline(t *testing.T, f *fakeModel, moderationBody string, live bool) *AnalysisService {
	t.Helper()

	engine, _ := newSightengine(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, moderationBody)
	})
	moderation := NewModerationService(engine, false)

	model := newTestModel(t, f)
	return NewAnalysisService(moderation, NewIngredientService(model), NewRecipeService(model), live)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	f := &fakeModel{
		visionReply: "```json\n{\"ingredients\": [{\"name\": \"rice\", \"confidence\": \"high\"}]}\n```",
		recipeReply: `{"recipes": [{"name": "Rice Bowl", "description": "Simple rice bowl", "ingredients": ["1 cup rice"], "instructions": ["Cook the rice"], "prepTime": "20 min"}]}`,
	}
	pipeline := newTestPipeline(t, f, scoresJSON(0.1, 0.1, 0.1, 0.1, 0.1), true)

	result, err := pipeline.Analyze(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if result.Demo {
		t.Error("live analysis must not be flagged as demo")
	}
	if len(result.Ingredients) != 1 || result.Ingredients[0].Name != "rice" {
		t.Errorf("ingredients = %+v, want a single rice entry", result.Ingredients)
	}
	if len(result.Recipes) != 1 || result.Recipes[0].Name != "Rice Bowl" {
		t.Errorf("recipes = %+v, want a single Rice Bowl", result.Recipes)
	}
	if got := f.visionCalls.Load(); got != 1 {
		t.Errorf("vision calls = %d, want 1", got)
	}
	if got := f.recipeCalls.Load(); got != 1 {
		t.Errorf("recipe calls = %d, want 1", got)
	}
}

func TestAnalyzeModerationRejectsBeforeVision(t *testing.T) {
	f := &fakeModel{}
	pipeline := newTestPipeline(t, f, scoresJSON(0.1, 0.9, 0.1, 0.1, 0.1), true)

	_, err := pipeline.Analyze(context.Background(), testImage())

	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Kind != models.ErrModerationRejected {
		t.Fatalf("expected a moderation rejection, got %v", err)
	}
	if perr.Reason != models.ReasonWeapons {
		t.Errorf("Reason = %q, want %q", perr.Reason, models.ReasonWeapons)
	}
	if got := f.visionCalls.Load(); got != 0 {
		t.Errorf("vision calls = %d, want 0: a rejected image must never reach the model", got)
	}
}

func TestAnalyzeEmptyIngredientsIsInvalidInput(t *testing.T) {
	f := &fakeModel{visionReply: `{"ingredients": []}`}
	pipeline := newTestPipeline(t, f, scoresJSON(0, 0, 0, 0, 0), true)

	_, err := pipeline.Analyze(context.Background(), testImage())

	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Kind != models.ErrInvalidInput {
		t.Fatalf("expected invalid input for zero ingredients, got %v", err)
	}
	if got := f.recipeCalls.Load(); got != 0 {
		t.Errorf("recipe calls = %d, want 0 after an empty ingredient list", got)
	}
}

func TestAnalyzeMalformedVisionReply(t *testing.T) {
	f := &fakeModel{visionReply: "Sorry, I cannot help with that."}
	pipeline := newTestPipeline(t, f, scoresJSON(0, 0, 0, 0, 0), true)

	_, err := pipeline.Analyze(context.Background(), testImage())

	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Kind != models.ErrMalformedResponse {
		t.Fatalf("expected a malformed-response error, got %v", err)
	}
	if perr.Snippet == "" {
		t.Error("malformed-response errors must carry a diagnostic snippet")
	}
	if len(perr.Snippet) > 200 {
		t.Errorf("snippet length = %d, want at most 200", len(perr.Snippet))
	}
}

func TestAnalyzeModelUnavailable(t *testing.T) {
	f := &fakeModel{failWith: http.StatusServiceUnavailable}
	pipeline := newTestPipeline(t, f, scoresJSON(0, 0, 0, 0, 0), true)

	_, err := pipeline.Analyze(context.Background(), testImage())

	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Kind != models.ErrUpstreamUnavailable {
		t.Fatalf("expected an upstream-unavailable error, got %v", err)
	}
}

func TestAnalyzeDemoModeWhenUnconfigured(t *testing.T) {
	f := &fakeModel{}
	engine := &SightengineService{client: http.DefaultClient}
	moderation := NewModerationService(engine, true)
	model := newTestModel(t, f)
	pipeline := NewAnalysisService(moderation, NewIngredientService(model), NewRecipeService(model), false)

	result, err := pipeline.Analyze(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if !result.Demo {
		t.Error("unconfigured pipeline must flag results as demo")
	}
	if result.DemoMessage == "" {
		t.Error("demo results must carry a non-empty message")
	}
	if len(result.Ingredients) == 0 || len(result.Recipes) == 0 {
		t.Error("demo results must still contain ingredients and recipes")
	}
	if got := f.visionCalls.Load() + f.recipeCalls.Load(); got != 0 {
		t.Errorf("model calls = %d, want 0 in demo mode", got)
	}
}

func TestAnalyzeValidatesInput(t *testing.T) {
	pipeline := newTestPipeline(t, &fakeModel{}, scoresJSON(0, 0, 0, 0, 0), true)

	var perr *models.PipelineError

	_, err := pipeline.Analyze(context.Background(), models.ImagePayload{})
	if !errors.As(err, &perr) || perr.Kind != models.ErrInvalidInput {
		t.Errorf("empty image: got %v, want invalid input", err)
	}

	big := models.ImagePayload{Data: strings.Repeat("A", (models.MaxImageBytes/3+2)*4), MediaType: models.MediaJPEG}
	_, err = pipeline.Analyze(context.Background(), big)
	if !errors.As(err, &perr) || perr.Kind != models.ErrInvalidInput {
		t.Errorf("oversized image: got %v, want invalid input", err)
	}

	_, err = pipeline.Analyze(context.Background(), models.ImagePayload{Data: "aGk=", MediaType: "image/tiff"})
	if !errors.As(err, &perr) || perr.Kind != models.ErrInvalidInput {
		t.Errorf("unsupported media type: got %v, want invalid input", err)
	}
}
