package models

import (
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/google/uuid"
)

// User represents the canonical identity entity. IDs are generated in the
// application so both engines behave the same.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:text;primaryKey"`
	Mobile       string           `gorm:"column:mobile;type:text;not null;uniqueIndex"`
	Email        *string          `gorm:"column:email;type:text"`
	Name         string           `gorm:"column:name;not null"`
	Role         enums.Role       `gorm:"column:role;type:text;not null"`
	Status       enums.UserStatus `gorm:"column:status;type:text;not null;default:PENDING_VERIFICATION"`
	Language     string           `gorm:"column:language;type:text;not null;default:en"`
	ProfilePhoto *string          `gorm:"column:profile_photo"`
	Rating       float64          `gorm:"column:rating;not null;default:0"`
	TotalRatings int              `gorm:"column:total_ratings;not null;default:0"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
