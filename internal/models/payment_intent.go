package models

import (
	"time"

	"supportly/internal/domain"

	"gorm.io/datatypes"
)

// PaymentIntent is one attempted inbound payment before its outcome is known.
// It is never deleted; the row is the audit trail of the attempt.
type PaymentIntent struct {
	DepositID         string         `gorm:"primaryKey;size:36" json:"deposit_id"`
	CreatorID         uint           `gorm:"not null;index" json:"creator_id"`
	CounterpartyName  string         `gorm:"size:128" json:"counterparty_name"`
	CounterpartyPhone string         `gorm:"size:20" json:"counterparty_phone"`
	Amount            int64          `gorm:"not null" json:"amount"`
	Kind              string         `gorm:"size:16;not null;index" json:"kind"` // support, wishlist, shop
	WishlistID        *uint          `gorm:"index" json:"wishlist_id,omitempty"`
	ProductID         *uint          `gorm:"index" json:"product_id,omitempty"`
	Quantity          int            `gorm:"not null;default:1" json:"quantity"`
	Status            string         `gorm:"size:16;not null;index" json:"status"` // pending, completed, failed
	ProviderRef       *string        `gorm:"size:128;uniqueIndex" json:"provider_ref,omitempty"`
	Provider          string         `gorm:"size:50" json:"provider"`
	TransactionID     string         `gorm:"size:128" json:"transaction_id,omitempty"`
	FailureReason     *string        `gorm:"size:255" json:"failure_reason,omitempty"`
	Metadata          datatypes.JSON `json:"metadata,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}

func (p *PaymentIntent) IsTerminal() bool {
	return p.Status == domain.IntentCompleted || p.Status == domain.IntentFailed
}

// IntentMetadata is the JSON shape stored in PaymentIntent.Metadata.
type IntentMetadata struct {
	Message string `json:"message,omitempty"`
	Title   string `json:"title,omitempty"`
}
