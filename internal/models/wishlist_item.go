package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultWishlistDurationDays applies when an item is created without a duration.
var DefaultWishlistDurationDays = 30

type WishlistItem struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatorID    uint       `gorm:"not null;index" json:"creator_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Price        int64      `gorm:"not null" json:"price"`
	AmountFunded int64      `gorm:"not null;default:0" json:"amount_funded"`
	DurationDays int        `gorm:"not null;default:0" json:"duration_days"`
	ExpiresAt    *time.Time `gorm:"index" json:"expires_at"`
	IsExpired    bool       `gorm:"not null;default:false;index" json:"is_expired"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// BeforeCreate derives ExpiresAt from the duration.
func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ExpiresAt != nil {
		return nil
	}
	if w.DurationDays <= 0 {
		w.DurationDays = DefaultWishlistDurationDays
	}
	start := w.CreatedAt
	if start.IsZero() {
		start = time.Now()
	}
	exp := start.AddDate(0, 0, w.DurationDays)
	w.ExpiresAt = &exp
	return nil
}

func (w *WishlistItem) FullyFunded() bool { return w.AmountFunded >= w.Price }

// Open reports whether the item still accepts contributions.
func (w *WishlistItem) Open(now time.Time) bool {
	if w.IsExpired {
		return false
	}
	if w.ExpiresAt != nil && !w.ExpiresAt.After(now) && !w.FullyFunded() {
		return false
	}
	return true
}
