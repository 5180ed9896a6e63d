package service

import (
	"context"
	"log"
	"time"

	"supportly/internal/models"
	"supportly/internal/repository"
	"supportly/pkg/payment"

	"gorm.io/gorm"
)

// IntentPoller is the client-driven path: it asks the gateway for the status
// and feeds the answer to the Reconciler.
type IntentPoller struct {
	intents    *repository.IntentRepository
	gateway    payment.Gateway
	reconciler *Reconciler
	interval   time.Duration
	timeout    time.Duration
}

func NewIntentPoller(db *gorm.DB, gateway payment.Gateway, reconciler *Reconciler, interval, timeout time.Duration) *IntentPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &IntentPoller{
		intents:    repository.NewIntentRepository(db),
		gateway:    gateway,
		reconciler: reconciler,
		interval:   interval,
		timeout:    timeout,
	}
}

// Refresh performs one poll. Gateway errors are returned; the intent is untouched.
func (p *IntentPoller) Refresh(ctx context.Context, depositID string) (*models.PaymentIntent, error) {
	intent, err := p.intents.GetByDepositID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if intent.IsTerminal() || intent.ProviderRef == nil {
		return intent, nil
	}
	st, err := p.gateway.GetPaymentStatus(ctx, *intent.ProviderRef)
	if err != nil {
		return intent, err
	}
	return p.reconciler.Settle(ctx, depositID, st.Status, *intent.ProviderRef, st.FailureReason)
}

// Await polls until the intent is terminal or the deadline passes. Transient
// gateway errors are retried. Timing out leaves the intent pending so a late
// webhook can still settle it.
func (p *IntentPoller) Await(ctx context.Context, depositID string) (*models.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last *models.PaymentIntent
	for {
		intent, err := p.Refresh(ctx, depositID)
		switch {
		case err == nil:
			last = intent
			if intent.IsTerminal() {
				return intent, nil
			}
		case intent != nil:
			last = intent
			log.Printf("[POLL] %s status check failed, retrying: %v", depositID, err)
		case last == nil:
			return nil, err
		}
		select {
		case <-ctx.Done():
			return last, nil
		case <-ticker.C:
		}
	}
}
