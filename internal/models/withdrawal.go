package models

import (
	"time"

	"supportly/internal/domain"
)

// WithdrawalRequest persists gross, commission and net so the rate in force at
// submission time stays reconstructable.
type WithdrawalRequest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatorID     uint       `gorm:"not null;index" json:"creator_id"`
	OrderRef      string     `gorm:"size:64;uniqueIndex;not null" json:"order_ref"`
	Amount        int64      `gorm:"not null" json:"amount"`
	Commission    int64      `gorm:"not null" json:"commission"`
	CommissionBps int64      `gorm:"not null" json:"commission_bps"`
	NetAmount     int64      `gorm:"not null" json:"net_amount"`
	Method        string     `gorm:"size:20;not null" json:"method"` // mobile_money, bank
	Provider      string     `gorm:"size:50" json:"provider,omitempty"`
	AccountName   string     `gorm:"size:128" json:"account_name"`
	Phone         string     `gorm:"size:20" json:"phone,omitempty"`
	BankName      string     `gorm:"size:128" json:"bank_name,omitempty"`
	AccountNumber string     `gorm:"size:64" json:"account_number,omitempty"`
	Status        string     `gorm:"size:20;not null;index" json:"status"` // PENDING, PROCESSING, COMPLETED, CANCELLED
	ProviderRef   *string    `gorm:"size:128;uniqueIndex" json:"provider_ref,omitempty"`
	FailureReason string     `gorm:"size:255" json:"failure_reason,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

func (w *WithdrawalRequest) IsTerminal() bool {
	return w.Status == domain.WithdrawalCompleted || w.Status == domain.WithdrawalCancelled
}
