package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a creator's digital product. Only the fields checkout needs live here.
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatorID     uint           `gorm:"not null;index" json:"creator_id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Price         int64          `gorm:"not null" json:"price"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	MaxSlots      int            `gorm:"not null;default:0" json:"max_slots"` // 0 = unlimited
	SoldSlots     int            `gorm:"not null;default:0" json:"sold_slots"`
	AllowMultiple bool           `gorm:"default:false" json:"allow_multiple"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

