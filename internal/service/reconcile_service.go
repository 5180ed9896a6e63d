package service

import (
	"context"
	"log"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/repository"

	"gorm.io/gorm"
)

// Reconciler is the single entry point that moves an intent out of pending.
// Webhooks, client polling and the background catch-up all end up here.
type Reconciler struct {
	db       *gorm.DB
	intents  *repository.IntentRepository
	applier  *settlementApplier
	notifier Notifier
	now      func() time.Time
}

func NewReconciler(db *gorm.DB, notifier Notifier) *Reconciler {
	return &Reconciler{
		db:       db,
		intents:  repository.NewIntentRepository(db),
		applier:  newSettlementApplier(db),
		notifier: notifier,
		now:      time.Now,
	}
}

// Settle applies a provider status to the intent. A terminal intent is returned
// unchanged; a caller that loses the transition race gets the winner's row.
func (r *Reconciler) Settle(ctx context.Context, depositID, providerStatus, providerRef, failureReason string) (*models.PaymentIntent, error) {
	intent, err := r.intents.GetByDepositID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if intent.IsTerminal() {
		return intent, nil
	}
	if providerRef == "" && intent.ProviderRef != nil {
		providerRef = *intent.ProviderRef
	}

	status := domain.NormalizeGatewayStatus(providerStatus)
	now := r.now()
	won := false
	switch status {
	case domain.IntentCompleted:
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ok, err := r.intents.WithTx(tx).MarkCompleted(ctx, depositID, providerRef, now)
			if err != nil || !ok {
				return err
			}
			won = true
			return r.applier.Apply(ctx, tx, intent, providerRef, now)
		})
	case domain.IntentFailed:
		if failureReason == "" {
			failureReason = "gateway status " + providerStatus
		}
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ok, err := r.intents.WithTx(tx).MarkFailed(ctx, depositID, failureReason, now)
			if err != nil || !ok {
				return err
			}
			won = true
			return r.applier.Compensate(ctx, tx, intent)
		})
	default:
		return intent, nil
	}
	if err != nil {
		log.Printf("[RECONCILE] %s -> %s failed: %v", depositID, status, err)
		return nil, err
	}

	settled, err := r.intents.GetByDepositID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if won {
		log.Printf("[RECONCILE] %s %s kind=%s amount=%d", depositID, settled.Status, settled.Kind, settled.Amount)
		r.afterCommit(ctx, settled)
	}
	return settled, nil
}

// SettleCallback settles a gateway callback. A callback that races ahead of
// the reference write is matched on the deposit id echoed back as the
// merchant reference, as long as the intent carries no other reference.
func (r *Reconciler) SettleCallback(ctx context.Context, providerRef, depositID, providerStatus, failureReason string) (*models.PaymentIntent, error) {
	intent, err := r.intents.GetByProviderRef(ctx, providerRef)
	if err == nil {
		return r.Settle(ctx, intent.DepositID, providerStatus, providerRef, failureReason)
	}
	if !domain.IsNotFound(err) || depositID == "" {
		return nil, err
	}
	intent, err = r.intents.GetByDepositID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if intent.ProviderRef != nil && *intent.ProviderRef != providerRef {
		return nil, domain.ErrIntentNotFound
	}
	log.Printf("[RECONCILE] %s matched by merchant reference, ref=%s", depositID, providerRef)
	return r.Settle(ctx, depositID, providerStatus, providerRef, failureReason)
}

func (r *Reconciler) afterCommit(ctx context.Context, intent *models.PaymentIntent) {
	if r.notifier == nil {
		return
	}
	// the request may be gone by now; notifications outlive it
	nctx := context.WithoutCancel(ctx)
	if intent.Status == domain.IntentCompleted {
		r.notifier.PaymentSettled(nctx, intent)
	} else {
		r.notifier.PaymentFailed(nctx, intent)
	}
}
