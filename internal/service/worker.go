package service

import (
	"context"
	"log"
	"time"

	"supportly/internal/cache"
	"supportly/internal/repository"
	"supportly/pkg/payment"

	"gorm.io/gorm"
)

// PendingReconciler catches up on intents and payouts whose webhook was lost
// by polling the gateway once they pass a grace period.
type PendingReconciler struct {
	intents *repository.IntentRepository
	poller  *IntentPoller
	payouts *PayoutService
	after   time.Duration
	batch   int
	now     func() time.Time
}

func NewPendingReconciler(db *gorm.DB, poller *IntentPoller, payouts *PayoutService, after time.Duration, batch int) *PendingReconciler {
	if batch <= 0 {
		batch = 100
	}
	return &PendingReconciler{
		intents: repository.NewIntentRepository(db),
		poller:  poller,
		payouts: payouts,
		after:   after,
		batch:   batch,
		now:     time.Now,
	}
}

// RunOnce returns how many intents and payouts reached a terminal state.
// Intents that never got a provider reference cannot be polled; they are
// failed so their reservations are released.
func (r *PendingReconciler) RunOnce(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.after)
	settled := 0
	orphans, err := r.intents.ListStaleUnreferenced(ctx, cutoff, r.batch)
	if err != nil {
		return 0, err
	}
	for _, it := range orphans {
		intent, err := r.poller.reconciler.Settle(ctx, it.DepositID, payment.StatusFailed, "", "no provider reference recorded")
		if err != nil {
			log.Printf("[RECONCILE] failing unreferenced %s: %v", it.DepositID, err)
			continue
		}
		if intent.IsTerminal() {
			settled++
		}
	}

	stale, err := r.intents.ListStalePending(ctx, cutoff, r.batch)
	if err != nil {
		return settled, err
	}
	for _, it := range stale {
		intent, err := r.poller.Refresh(ctx, it.DepositID)
		if err != nil {
			log.Printf("[RECONCILE] catch-up %s: %v", it.DepositID, err)
			continue
		}
		if intent.IsTerminal() {
			settled++
		}
	}
	if r.payouts != nil {
		n, err := r.payouts.CatchUp(ctx, r.after, r.batch)
		if err != nil {
			return settled, err
		}
		settled += n
	}
	return settled, nil
}

// RunPeriodic runs job every interval until ctx is done. Each run first takes
// the named lock so only one instance executes it.
func RunPeriodic(ctx context.Context, locker cache.Locker, name string, interval, lockTTL time.Duration, job func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		runLocked(ctx, locker, name, lockTTL, job)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runLocked(ctx context.Context, locker cache.Locker, name string, lockTTL time.Duration, job func(context.Context) error) {
	release, err := locker.TryLock(ctx, name, lockTTL)
	if err != nil {
		log.Printf("[WORKER] %s: lock: %v", name, err)
		return
	}
	if release == nil {
		return
	}
	defer release()
	jctx, cancel := context.WithTimeout(ctx, lockTTL)
	defer cancel()
	if err := job(jctx); err != nil {
		log.Printf("[WORKER] %s: %v", name, err)
	}
}
