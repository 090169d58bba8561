package models

import "time"

// Preference is one per-user settings blob (food, location, notifications or
// the saved-places list), stored as opaque JSON the way the client sent it.
type Preference struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UserID    string `gorm:"size:64;uniqueIndex:idx_user_kind" json:"user_id"`
	Kind      string `gorm:"size:32;uniqueIndex:idx_user_kind" json:"kind"`
	Data      string `gorm:"type:jsonb" json:"data"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
