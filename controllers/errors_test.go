package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend/models"

	"github.com/gin-gonic/gin"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondPipelineError(c, err)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return w, body
}

func TestPipelineErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"moderation rejection", models.Rejected(models.ReasonWeapons), http.StatusBadRequest},
		{"invalid input", models.InvalidInput("Image data is required"), http.StatusBadRequest},
		{"not found", models.NotFound("No nutrition data found"), http.StatusNotFound},
		{"upstream unavailable", models.Unavailable("vision", errors.New("timeout")), http.StatusInternalServerError},
		{"malformed reply", models.Malformed("vision", "garbage", errors.New("bad json")), http.StatusInternalServerError},
		{"unconfigured", models.Unconfigured("moderation"), http.StatusInternalServerError},
		{"untyped error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(t, tt.err)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if msg, ok := body["error"].(string); !ok || msg == "" {
				t.Error("error message missing from body")
			}
		})
	}
}

func TestModerationRejectionBody(t *testing.T) {
	w, body := respond(t, models.Rejected(models.ReasonSubstances))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body["moderationReason"] != "substances" {
		t.Errorf("moderationReason = %v", body["moderationReason"])
	}
	if body["error"] != "Image rejected: Alcohol or drugs detected" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestReasonOnlyOnModerationErrors(t *testing.T) {
	_, body := respond(t, models.InvalidInput("bad"))
	if _, ok := body["moderationReason"]; ok {
		t.Error("moderationReason leaked onto a non-moderation error")
	}
}

func TestSnippetNeverReachesClient(t *testing.T) {
	raw := fmt.Sprintf("secret-upstream-detail %s", strings.Repeat("x", 300))
	w, _ := respond(t, models.Malformed("vision", raw, errors.New("bad json")))
	if strings.Contains(w.Body.String(), "secret-upstream-detail") {
		t.Error("raw upstream payload leaked into the response body")
	}
}
