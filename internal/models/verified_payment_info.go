package models

import (
	"time"

	"supportly/internal/domain"

	"gorm.io/gorm"
)

// VerifiedPaymentInfo is a creator's payout destination. Once IsVerified is
// set the record is write-once: every later update is rejected.
type VerifiedPaymentInfo struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CreatorID  uint       `gorm:"uniqueIndex;not null" json:"creator_id"`
	Provider   string     `gorm:"size:50;not null" json:"provider"`
	FullName   string     `gorm:"size:128;not null" json:"full_name"`
	Phone      string     `gorm:"size:20;not null" json:"phone"`
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (VerifiedPaymentInfo) TableName() string {
	return "verified_payment_infos"
}

// BeforeUpdate rejects writes through a loaded, already-verified record.
func (p *VerifiedPaymentInfo) BeforeUpdate(tx *gorm.DB) error {
	if p.IsVerified && p.VerifiedAt != nil && p.ID != 0 {
		return domain.ErrPaymentInfoLocked
	}
	return nil
}
