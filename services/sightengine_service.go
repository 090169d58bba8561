package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"
)

const (
	sightengineBaseURL = "https://api.sightengine.com"
	sightengineModels  = "nudity-2.0,wad,offensive"
)

// SightengineService calls the image moderation API and returns the raw
// category scores. The accept/reject decision belongs to ModerationService.
type SightengineService struct {
	apiUser   string
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewSightengineService(cfg *config.Config) *SightengineService {
	return &SightengineService{
		apiUser:   cfg.SightengineUser,
		apiSecret: cfg.SightengineSecret,
		baseURL:   sightengineBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SightengineService) Configured() bool {
	return s.apiUser != "" && s.apiSecret != ""
}

// ModerationScores mirrors the check.json response fields the gate reads.
// Each score is a probability in [0,1].
type ModerationScores struct {
	Nudity struct {
		Sexual float64 `json:"sexual"`
	} `json:"nudity"`
	Weapon    float64 `json:"weapon"`
	Alcohol   float64 `json:"alcohol"`
	Drugs     float64 `json:"drugs"`
	Offensive struct {
		Prob float64 `json:"prob"`
	} `json:"offensive"`
}

// CheckImage submits the image for the nudity/weapon/substance/offensive
// models and returns the category scores.
func (s *SightengineService) CheckImage(ctx context.Context, img models.ImagePayload) (*ModerationScores, error) {
	form := url.Values{}
	form.Set("api_user", s.apiUser)
	form.Set("api_secret", s.apiSecret)
	form.Set("models", sightengineModels)
	form.Set("media", fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/1.0/check.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call moderation API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read moderation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API error %d: %s", resp.StatusCode, utils.Snippet(string(body)))
	}

	var scores ModerationScores
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to parse moderation JSON: %w", err)
	}
	return &scores, nil
}
