package services

import (
	"context"
	"log"

	"backend/models"
)

const moderationThreshold = 0.5

// ModerationService gates images before any model budget is spent.
//
// Policy: a transient moderation failure passes the image through; the check
// is best-effort and must not block users. Missing credentials are different:
// without the explicit unmoderated flag that is a configuration error, never
// a silent bypass.
type ModerationService struct {
	engine      *SightengineService
	unmoderated bool
}

func NewModerationService(engine *SightengineService, allowUnmoderated bool) *ModerationService {
	return &ModerationService{engine: engine, unmoderated: allowUnmoderated}
}

// Check scores the image and returns the accept/reject verdict. Categories
// are checked in a fixed order; the first one over threshold names the
// reason.
func (m *ModerationService) Check(ctx context.Context, img models.ImagePayload) (models.ModerationVerdict, error) {
	if !m.engine.Configured() {
		if m.unmoderated {
			log.Println("moderation credentials not configured, running unmoderated")
			return models.ModerationVerdict{Allowed: true}, nil
		}
		return models.ModerationVerdict{}, models.Unconfigured("moderation")
	}

	scores, err := m.engine.CheckImage(ctx, img)
	if err != nil {
		log.Printf("moderation check failed, passing image through: %v", err)
		return models.ModerationVerdict{Allowed: true}, nil
	}

	switch {
	case scores.Nudity.Sexual > moderationThreshold:
		return models.ModerationVerdict{Reason: models.ReasonAdultContent}, nil
	case scores.Weapon > moderationThreshold:
		return models.ModerationVerdict{Reason: models.ReasonWeapons}, nil
	case scores.Alcohol > moderationThreshold || scores.Drugs > moderationThreshold:
		return models.ModerationVerdict{Reason: models.ReasonSubstances}, nil
	case scores.Offensive.Prob > moderationThreshold:
		return models.ModerationVerdict{Reason: models.ReasonOffensive}, nil
	}
	return models.ModerationVerdict{Allowed: true}, nil
}
