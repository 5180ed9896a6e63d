package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/repository"
	"supportly/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Destination carries the bank details of a bank withdrawal. Mobile-money
// payouts always go to the creator's verified payment info.
type Destination struct {
	Method        string
	AccountName   string
	BankName      string
	AccountNumber string
}

// Commission splits a gross amount at bps basis points, rounding half up.
// commission + net always equals amount.
func Commission(amount, bps int64) (commission, net int64) {
	commission = (amount*bps + 5000) / 10000
	return commission, amount - commission
}

type PayoutService struct {
	db          *gorm.DB
	withdrawals *repository.WithdrawalRepository
	infos       *repository.PaymentInfoRepository
	balance     *BalanceService
	gateway     payment.Gateway
	policy      *Policy
	notifier    Notifier
	narration   string
	currency    string
	now         func() time.Time
}

func NewPayoutService(db *gorm.DB, gateway payment.Gateway, policy *Policy, notifier Notifier, narration, currency string) *PayoutService {
	return &PayoutService{
		db:          db,
		withdrawals: repository.NewWithdrawalRepository(db),
		infos:       repository.NewPaymentInfoRepository(db),
		balance:     NewBalanceService(db),
		gateway:     gateway,
		policy:      policy,
		notifier:    notifier,
		narration:   narration,
		currency:    currency,
		now:         time.Now,
	}
}

func (s *PayoutService) SubmitWithdrawal(ctx context.Context, creatorID uint, amount int64, dest Destination) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	method := strings.ToLower(strings.TrimSpace(dest.Method))
	if method == "" {
		method = domain.PayoutMobileMoney
	}
	if method != domain.PayoutMobileMoney && method != domain.PayoutBank {
		return nil, domain.ErrInvalidPayoutMethod
	}
	if method == domain.PayoutBank && (dest.BankName == "" || dest.AccountNumber == "") {
		return nil, domain.ErrInvalidPayoutMethod
	}
	if amount < s.policy.MinWithdrawal(ctx) {
		return nil, domain.ErrBelowMinimumWithdrawal
	}
	bps := s.policy.CommissionBps(ctx)
	commission, net := Commission(amount, bps)

	w := &models.WithdrawalRequest{
		CreatorID:     creatorID,
		OrderRef:      "wd-" + uuid.NewString(),
		Amount:        amount,
		Commission:    commission,
		CommissionBps: bps,
		NetAmount:     net,
		Method:        method,
	}
	// the payment info row lock serializes a creator's concurrent submissions
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := s.infos.WithTx(tx).LockByCreator(ctx, creatorID)
		if err != nil {
			return err
		}
		if info == nil || !info.IsVerified {
			return domain.ErrPaymentInfoMissing
		}
		bal, err := s.balance.ComputeWith(ctx, tx, creatorID)
		if err != nil {
			return err
		}
		if amount > bal.Available {
			return domain.ErrInsufficientBalance
		}
		w.Provider = info.Provider
		w.AccountName = info.FullName
		w.Phone = info.Phone
		w.Status = domain.WithdrawalProcessing
		if method == domain.PayoutBank {
			w.Provider = ""
			w.BankName = dest.BankName
			w.AccountNumber = dest.AccountNumber
			if dest.AccountName != "" {
				w.AccountName = dest.AccountName
			}
			w.Status = domain.WithdrawalPending
		}
		return s.withdrawals.WithTx(tx).Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYOUT] withdrawal %d creator=%d method=%s gross=%d commission=%d net=%d", w.ID, creatorID, method, amount, commission, net)

	if method == domain.PayoutBank {
		s.notify(ctx, w)
		return w, nil
	}

	res, err := s.gateway.CreatePayout(ctx, payment.PayoutRequest{
		OrderRef:    w.OrderRef,
		Amount:      net,
		Currency:    s.currency,
		Phone:       w.Phone,
		Provider:    w.Provider,
		AccountName: w.AccountName,
		Narration:   s.narration,
		Metadata:    map[string]interface{}{"creator_id": creatorID, "withdrawal_id": w.ID},
	})
	if err != nil {
		log.Printf("[PAYOUT] gateway rejected withdrawal %d: %v", w.ID, err)
		bg := context.WithoutCancel(ctx)
		if ok, terr := s.withdrawals.Transition(bg, w.ID, domain.WithdrawalProcessing, domain.WithdrawalCancelled, truncate(err.Error(), 255), s.now()); terr != nil {
			log.Printf("[PAYOUT] cancelling withdrawal %d: %v", w.ID, terr)
		} else if ok {
			if cancelled, gerr := s.withdrawals.GetByID(bg, w.ID); gerr == nil {
				s.notify(bg, cancelled)
			}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}

	bg := context.WithoutCancel(ctx)
	err = writeRef(ctx, func(c context.Context) error {
		return s.withdrawals.SetProviderRef(c, w.ID, res.Reference)
	})
	if err != nil {
		log.Printf("[PAYOUT] recording ref %s for withdrawal %d: %v", res.Reference, w.ID, err)
		// the money may be on its way; keep it reserved for a manual decision
		s.holdForReview(bg, w.ID, "provider reference "+res.Reference+" not recorded")
		return nil, fmt.Errorf("recording provider reference: %w", err)
	}
	if domain.NormalizeGatewayStatus(res.Status) != domain.IntentPending {
		// instant providers settle in the create response
		return s.ReconcileWithdrawal(bg, res.Reference, res.Status, "")
	}
	return s.withdrawals.GetByID(bg, w.ID)
}

// holdForReview parks an in-flight payout that lost its provider reference in
// PENDING, where only the back office can resolve it. The amount stays reserved.
func (s *PayoutService) holdForReview(ctx context.Context, id uint, reason string) {
	ok, err := s.withdrawals.Transition(ctx, id, domain.WithdrawalProcessing, domain.WithdrawalPending, truncate(reason, 255), s.now())
	if err != nil {
		log.Printf("[PAYOUT] holding withdrawal %d for review: %v", id, err)
		return
	}
	if !ok {
		return
	}
	log.Printf("[PAYOUT] withdrawal %d held for review: %s", id, reason)
	if w, err := s.withdrawals.GetByID(ctx, id); err == nil {
		s.notify(ctx, w)
	}
}

// ReconcileWithdrawal applies a gateway payout status. It is idempotent and
// shared by the webhook, polling and the background catch-up.
func (s *PayoutService) ReconcileWithdrawal(ctx context.Context, providerRef, providerStatus, reason string) (*models.WithdrawalRequest, error) {
	w, err := s.withdrawals.GetByProviderRef(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, w, providerStatus, reason)
}

// ReconcileCallback is ReconcileWithdrawal for gateway callbacks. A callback
// that races ahead of the reference write is matched on the order reference.
func (s *PayoutService) ReconcileCallback(ctx context.Context, providerRef, orderRef, providerStatus, reason string) (*models.WithdrawalRequest, error) {
	w, err := s.withdrawals.GetByProviderRef(ctx, providerRef)
	if err == nil {
		return s.apply(ctx, w, providerStatus, reason)
	}
	if !domain.IsNotFound(err) || orderRef == "" {
		return nil, err
	}
	w, err = s.withdrawals.GetByOrderRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if w.ProviderRef != nil && *w.ProviderRef != providerRef {
		return nil, domain.ErrWithdrawalNotFound
	}
	if w.ProviderRef == nil {
		if err := s.withdrawals.SetProviderRef(ctx, w.ID, providerRef); err != nil {
			return nil, err
		}
	}
	log.Printf("[PAYOUT] withdrawal %d matched by order reference, ref=%s", w.ID, providerRef)
	return s.apply(ctx, w, providerStatus, reason)
}

func (s *PayoutService) apply(ctx context.Context, w *models.WithdrawalRequest, providerStatus, reason string) (*models.WithdrawalRequest, error) {
	if w.IsTerminal() {
		return w, nil
	}
	var to string
	switch domain.NormalizeGatewayStatus(providerStatus) {
	case domain.IntentCompleted:
		to = domain.WithdrawalCompleted
	case domain.IntentFailed:
		to = domain.WithdrawalCancelled
		if reason == "" {
			reason = "gateway status " + providerStatus
		}
	default:
		return w, nil
	}
	ok, err := s.withdrawals.Transition(ctx, w.ID, domain.WithdrawalProcessing, to, truncate(reason, 255), s.now())
	if err != nil {
		return nil, err
	}
	updated, err := s.withdrawals.GetByID(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		log.Printf("[PAYOUT] withdrawal %d -> %s", w.ID, to)
		s.notify(ctx, updated)
	}
	return updated, nil
}

// RefreshWithdrawal polls the gateway for one of the creator's withdrawals.
func (s *PayoutService) RefreshWithdrawal(ctx context.Context, creatorID, id uint) (*models.WithdrawalRequest, error) {
	w, err := s.GetWithdrawal(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, w)
}

func (s *PayoutService) refresh(ctx context.Context, w *models.WithdrawalRequest) (*models.WithdrawalRequest, error) {
	if w.IsTerminal() || w.ProviderRef == nil {
		return w, nil
	}
	st, err := s.gateway.GetPayoutStatus(ctx, *w.ProviderRef)
	if err != nil {
		return w, fmt.Errorf("%w: %v", domain.ErrGatewayRejected, err)
	}
	return s.ReconcileWithdrawal(ctx, *w.ProviderRef, st.Status, st.FailureReason)
}

// ResolveManualWithdrawal is the back-office decision on a PENDING withdrawal:
// a bank transfer or a payout held for review.
func (s *PayoutService) ResolveManualWithdrawal(ctx context.Context, id uint, outcome, reason string) (*models.WithdrawalRequest, error) {
	var to string
	switch strings.ToLower(outcome) {
	case "completed":
		to = domain.WithdrawalCompleted
	case "cancelled":
		to = domain.WithdrawalCancelled
	default:
		return nil, domain.ErrInvalidTransition
	}
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.withdrawals.Transition(ctx, id, domain.WithdrawalPending, to, truncate(reason, 255), s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	updated, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYOUT] %s withdrawal %d resolved -> %s", w.Method, id, to)
	s.notify(ctx, updated)
	return updated, nil
}

func (s *PayoutService) GetWithdrawal(ctx context.Context, creatorID, id uint) (*models.WithdrawalRequest, error) {
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.CreatorID != creatorID {
		return nil, domain.ErrWithdrawalNotFound
	}
	return w, nil
}

func (s *PayoutService) ListWithdrawals(ctx context.Context, creatorID uint, limit, offset int) ([]models.WithdrawalRequest, error) {
	return s.withdrawals.ListByCreator(ctx, creatorID, limit, offset)
}

// CatchUp polls in-flight payouts whose webhook never arrived. Payouts that
// never got a provider reference cannot be polled and are held for review.
func (s *PayoutService) CatchUp(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := s.now().Add(-olderThan)
	orphans, err := s.withdrawals.ListStaleUnreferenced(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	for _, w := range orphans {
		s.holdForReview(ctx, w.ID, "no provider reference recorded")
	}
	stale, err := s.withdrawals.ListStaleProcessing(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	settled := 0
	for i := range stale {
		w, err := s.refresh(ctx, &stale[i])
		if err != nil {
			log.Printf("[PAYOUT] catch-up %d: %v", stale[i].ID, err)
			continue
		}
		if w.IsTerminal() {
			settled++
		}
	}
	return settled, nil
}

func (s *PayoutService) notify(ctx context.Context, w *models.WithdrawalRequest) {
	if s.notifier != nil {
		s.notifier.WithdrawalUpdated(context.WithoutCancel(ctx), w)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
