package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const savedPlacesKind = "saved_places"

var preferenceKinds = map[string]bool{
	"food":          true,
	"location":      true,
	"notifications": true,
}

// ValidPreferenceKind reports whether kind names a preference blob clients
// may read or write directly.
func ValidPreferenceKind(kind string) bool { return preferenceKinds[kind] }

// PreferenceService stores per-user preference blobs and the saved-places
// list. Blobs are opaque JSON; the server never interprets them.
type PreferenceService struct {
	db *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

func (s *PreferenceService) Set(userID, kind string, data json.RawMessage) error {
	return setPreference(s.db, userID, kind, data)
}

func setPreference(db *gorm.DB, userID, kind string, data json.RawMessage) error {
	pref := models.Preference{UserID: userID, Kind: kind, Data: string(data)}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to save %s preferences: %w", kind, err)
	}
	return nil
}

// Get returns the stored blob, or an empty object when nothing was saved yet.
func (s *PreferenceService) Get(userID, kind string) (json.RawMessage, error) {
	var pref models.Preference
	err := s.db.Where("user_id = ? AND kind = ?", userID, kind).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return json.RawMessage(`{}`), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s preferences: %w", kind, err)
	}
	return json.RawMessage(pref.Data), nil
}

// SavedPlaces returns the user's saved location ids, empty when none.
func (s *PreferenceService) SavedPlaces(userID string) ([]string, error) {
	return savedPlaces(s.db, userID)
}

func savedPlaces(db *gorm.DB, userID string) ([]string, error) {
	var pref models.Preference
	err := db.Where("user_id = ? AND kind = ?", userID, savedPlacesKind).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load saved places: %w", err)
	}

	var places []string
	if err := json.Unmarshal([]byte(pref.Data), &places); err != nil {
		return []string{}, nil
	}
	return places, nil
}

// ToggleSavedPlace adds the location id when absent and removes it when
// present, returning the updated list. The read and write run in one
// transaction so concurrent toggles for the same user do not lose updates.
func (s *PreferenceService) ToggleSavedPlace(userID, locationID string) ([]string, error) {
	var next []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		places, err := savedPlaces(tx, userID)
		if err != nil {
			return err
		}
		next = togglePlace(places, locationID)

		b, err := json.Marshal(next)
		if err != nil {
			return err
		}
		return setPreference(tx, userID, savedPlacesKind, b)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func togglePlace(places []string, locationID string) []string {
	found := false
	next := make([]string, 0, len(places)+1)
	for _, p := range places {
		if p == locationID {
			found = true
			continue
		}
		next = append(next, p)
	}
	if !found {
		next = append(next, locationID)
	}
	return next
}
