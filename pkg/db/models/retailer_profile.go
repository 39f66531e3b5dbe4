package models

import "github.com/google/uuid"

// RetailerProfile is the role-specific profile owned by a RETAILER user.
type RetailerProfile struct {
	ID                   uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	UserID               uuid.UUID `gorm:"column:user_id;type:text;not null;uniqueIndex"`
	User                 *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ShopName             string    `gorm:"column:shop_name"`
	GSTNumber            *string   `gorm:"column:gst_number"`
	ShopAddress          string    `gorm:"column:shop_address"`
	ShopLat              *float64  `gorm:"column:shop_lat"`
	ShopLng              *float64  `gorm:"column:shop_lng"`
	ShopPhoto            *string   `gorm:"column:shop_photo"`
	BusinessType         *string   `gorm:"column:business_type"`
	CategoriesInterested *string   `gorm:"column:categories_interested;type:text"`
}
