package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"supportly/config"
	"supportly/internal/models"
	"supportly/internal/repository"
	"supportly/pkg/payment"

	"gorm.io/gorm"
)

// mockGateway lets each test script the gateway through function fields.
type mockGateway struct {
	CreatePaymentFunc    func(ctx context.Context, req payment.PaymentRequest) (*payment.Result, error)
	GetPaymentStatusFunc func(ctx context.Context, ref string) (*payment.StatusResult, error)
	CreatePayoutFunc     func(ctx context.Context, req payment.PayoutRequest) (*payment.Result, error)
	GetPayoutStatusFunc  func(ctx context.Context, ref string) (*payment.StatusResult, error)

	seq int64
}

func (m *mockGateway) ref(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, atomic.AddInt64(&m.seq, 1))
}

func (m *mockGateway) CreatePayment(ctx context.Context, req payment.PaymentRequest) (*payment.Result, error) {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, req)
	}
	return &payment.Result{Reference: m.ref("pay"), Status: payment.StatusPending}, nil
}

func (m *mockGateway) GetPaymentStatus(ctx context.Context, ref string) (*payment.StatusResult, error) {
	if m.GetPaymentStatusFunc != nil {
		return m.GetPaymentStatusFunc(ctx, ref)
	}
	return &payment.StatusResult{Reference: ref, Status: payment.StatusPending}, nil
}

func (m *mockGateway) CreatePayout(ctx context.Context, req payment.PayoutRequest) (*payment.Result, error) {
	if m.CreatePayoutFunc != nil {
		return m.CreatePayoutFunc(ctx, req)
	}
	return &payment.Result{Reference: m.ref("po"), Status: payment.StatusPending}, nil
}

func (m *mockGateway) GetPayoutStatus(ctx context.Context, ref string) (*payment.StatusResult, error) {
	if m.GetPayoutStatusFunc != nil {
		return m.GetPayoutStatusFunc(ctx, ref)
	}
	return &payment.StatusResult{Reference: ref, Status: payment.StatusPending}, nil
}

type recordingNotifier struct {
	mu          sync.Mutex
	settled     []string
	failed      []string
	withdrawals []string
}

func (n *recordingNotifier) PaymentSettled(_ context.Context, intent *models.PaymentIntent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settled = append(n.settled, intent.DepositID)
}

func (n *recordingNotifier) PaymentFailed(_ context.Context, intent *models.PaymentIntent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, intent.DepositID)
}

func (n *recordingNotifier) WithdrawalUpdated(_ context.Context, w *models.WithdrawalRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.withdrawals = append(n.withdrawals, w.Status)
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.settled), len(n.failed)
}

// testPolicy uses the production defaults with no setting overrides.
func testPolicy(db *gorm.DB) *Policy {
	return NewPolicy(repository.NewSettingRepository(db),
		config.PaymentConfig{MinAmount: 500},
		config.PayoutConfig{CommissionBps: 1800, MinWithdrawal: 5000})
}

type harness struct {
	db         *gorm.DB
	gateway    *mockGateway
	notifier   *recordingNotifier
	reconciler *Reconciler
	intents    *IntentService
	payouts    *PayoutService
	balance    *BalanceService
}

func newHarness(t *testing.T, db *gorm.DB) *harness {
	t.Helper()
	gw := &mockGateway{}
	n := &recordingNotifier{}
	rec := NewReconciler(db, n)
	policy := testPolicy(db)
	return &harness{
		db:         db,
		gateway:    gw,
		notifier:   n,
		reconciler: rec,
		intents:    NewIntentService(db, gw, rec, policy, "UGX"),
		payouts:    NewPayoutService(db, gw, policy, n, "Creator earnings withdrawal", "UGX"),
		balance:    NewBalanceService(db),
	}
}
