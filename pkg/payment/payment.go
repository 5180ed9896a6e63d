package payment

import (
	"context"
	"time"
)

// Statuses reported by the gateway for both deposits and payouts.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
	StatusVoided    = "voided"
)

type PaymentRequest struct {
	DepositID   string // our id; echoed back as merchant reference
	Amount      int64
	Currency    string
	Phone       string
	Provider    string // payer's mobile-money network
	PayerName   string
	Description string
	CallbackURL string
	Metadata    map[string]interface{}
}

type PayoutRequest struct {
	OrderRef    string
	Amount      int64 // net amount sent to the recipient
	Currency    string
	Phone       string
	Provider    string
	AccountName string
	Narration   string
	CallbackURL string
	Metadata    map[string]interface{}
}

// Result is what the gateway returns when a payment or payout is created.
type Result struct {
	Reference string
	Status    string
}

type StatusResult struct {
	Reference     string
	Status        string
	FailureReason string
	CompletedAt   *time.Time
}

// Gateway is the outbound mobile-money API: collections in, payouts out.
type Gateway interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*Result, error)
	GetPaymentStatus(ctx context.Context, reference string) (*StatusResult, error)
	CreatePayout(ctx context.Context, req PayoutRequest) (*Result, error)
	GetPayoutStatus(ctx context.Context, reference string) (*StatusResult, error)
}
