package models

import "github.com/google/uuid"

// DeliveryProfile is the role-specific profile owned by a DELIVERY user.
type DeliveryProfile struct {
	ID              uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:text;not null;uniqueIndex"`
	User            *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	VehicleType     string    `gorm:"column:vehicle_type"`
	VehicleNumber   string    `gorm:"column:vehicle_number"`
	DrivingLicense  *string   `gorm:"column:driving_license"`
	Documents       *string   `gorm:"column:documents;type:text"`
	CurrentLat      *float64  `gorm:"column:current_lat"`
	CurrentLng      *float64  `gorm:"column:current_lng"`
	IsOnline        bool      `gorm:"column:is_online;not null;default:false"`
	TotalDeliveries int       `gorm:"column:total_deliveries;not null;default:0"`
	TotalDistance   float64   `gorm:"column:total_distance;not null;default:0"`
}
