package models

import "time"

// SupportEvent is a settled support or wishlist contribution.
// CreatedAt carries the intent's creation time, not the settlement time.
type SupportEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatorID       uint      `gorm:"not null;index" json:"creator_id"`
	ContributorName string    `gorm:"size:128" json:"contributor_name"`
	Amount          int64     `gorm:"not null" json:"amount"`
	Kind            string    `gorm:"size:16;not null;index" json:"kind"` // support, wishlist
	WishlistID      *uint     `gorm:"index" json:"wishlist_id,omitempty"`
	Status          string    `gorm:"size:16;not null;index" json:"status"`
	DepositID       string    `gorm:"size:36;uniqueIndex;not null" json:"deposit_id"`
	Message         string    `gorm:"size:512" json:"message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (SupportEvent) TableName() string {
	return "support_events"
}
