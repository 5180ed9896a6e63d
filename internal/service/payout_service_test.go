package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/testutil"
	"supportly/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommission(t *testing.T) {
	tests := []struct {
		amount, bps, commission int64
	}{
		{10000, 1800, 1800},
		{5000, 1800, 900},
		{25, 1800, 5},       // 4.5 rounds up
		{3, 1800, 1},        // 0.54
		{2, 1800, 0},        // 0.36
		{12345, 1800, 2222}, // 2222.1
		{10000, 0, 0},
		{10000, 10000, 10000},
	}
	for _, tt := range tests {
		c, net := Commission(tt.amount, tt.bps)
		assert.Equal(t, tt.commission, c, "amount=%d bps=%d", tt.amount, tt.bps)
		assert.Equal(t, tt.amount, c+net)
	}
	for a := int64(1); a < 5000; a += 7 {
		c, net := Commission(a, 1800)
		assert.Equal(t, a, c+net)
		assert.LessOrEqual(t, c*10000-a*1800, int64(5000))
		assert.GreaterOrEqual(t, c*10000-a*1800, int64(-5000))
	}
}

func fundedCreator(t *testing.T, h *harness, support int64) *models.User {
	t.Helper()
	creator := testutil.CreateCreator(t, h.db, "maya")
	testutil.AddSupport(t, h.db, creator.ID, domain.KindSupport, nil, support)
	testutil.VerifyPaymentInfo(t, h.db, creator.ID)
	return creator
}

func TestSubmitWithdrawal_Scenario(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 15000)
	var sent payment.PayoutRequest
	h.gateway.CreatePayoutFunc = func(ctx context.Context, req payment.PayoutRequest) (*payment.Result, error) {
		sent = req
		return &payment.Result{Reference: "po-1", Status: payment.StatusPending}, nil
	}

	w, err := h.payouts.SubmitWithdrawal(context.Background(), creator.ID, 10000, Destination{})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalProcessing, w.Status)
	assert.Equal(t, int64(1800), w.Commission)
	assert.Equal(t, int64(8200), w.NetAmount)
	assert.Equal(t, int64(1800), w.CommissionBps)
	assert.Equal(t, "po-1", *w.ProviderRef)
	assert.Equal(t, int64(8200), sent.Amount, "the recipient receives the net amount")
	assert.Equal(t, "256772123456", sent.Phone)

	bal, err := h.balance.ComputeBalance(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal.Available)

	done, err := h.payouts.ReconcileWithdrawal(context.Background(), "po-1", payment.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	again, err := h.payouts.ReconcileWithdrawal(context.Background(), "po-1", payment.StatusFailed, "late")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, again.Status)
	assert.Equal(t, []string{domain.WithdrawalCompleted}, h.notifier.withdrawals)
}

func TestSubmitWithdrawal_Preconditions(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 15000)
	noInfo := testutil.CreateCreator(t, db, "leo")
	testutil.AddSupport(t, db, noInfo.ID, domain.KindSupport, nil, 50000)
	ctx := context.Background()

	_, err := h.payouts.SubmitWithdrawal(ctx, creator.ID, 0, Destination{})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = h.payouts.SubmitWithdrawal(ctx, creator.ID, 4999, Destination{})
	assert.ErrorIs(t, err, domain.ErrBelowMinimumWithdrawal)
	_, err = h.payouts.SubmitWithdrawal(ctx, noInfo.ID, 10000, Destination{})
	assert.ErrorIs(t, err, domain.ErrPaymentInfoMissing)
	_, err = h.payouts.SubmitWithdrawal(ctx, creator.ID, 15001, Destination{})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	_, err = h.payouts.SubmitWithdrawal(ctx, creator.ID, 10000, Destination{Method: "crypto"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayoutMethod)

	var n int64
	db.Model(&models.WithdrawalRequest{}).Count(&n)
	assert.Zero(t, n)
}

func TestSubmitWithdrawal_GatewayErrorCancels(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 15000)
	h.gateway.CreatePayoutFunc = func(ctx context.Context, req payment.PayoutRequest) (*payment.Result, error) {
		return nil, errors.New("insufficient float")
	}

	_, err := h.payouts.SubmitWithdrawal(context.Background(), creator.ID, 10000, Destination{})
	require.ErrorIs(t, err, domain.ErrGatewayRejected)

	var w models.WithdrawalRequest
	require.NoError(t, db.First(&w).Error)
	assert.Equal(t, domain.WithdrawalCancelled, w.Status)
	assert.Contains(t, w.FailureReason, "insufficient float")

	bal, err := h.balance.ComputeBalance(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), bal.Available)
}

func TestSubmitWithdrawal_InstantProvider(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 20000)
	h.gateway.CreatePayoutFunc = func(ctx context.Context, req payment.PayoutRequest) (*payment.Result, error) {
		return &payment.Result{Reference: "po-instant", Status: payment.StatusCompleted}, nil
	}

	w, err := h.payouts.SubmitWithdrawal(context.Background(), creator.ID, 5000, Destination{Method: "MOBILE_MONEY"})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, w.Status)
}

func TestSubmitWithdrawal_DeferredFailureRestoresBalance(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 15000)
	h.gateway.GetPayoutStatusFunc = func(ctx context.Context, ref string) (*payment.StatusResult, error) {
		return &payment.StatusResult{Reference: ref, Status: payment.StatusFailed, FailureReason: "recipient not registered"}, nil
	}

	w, err := h.payouts.SubmitWithdrawal(context.Background(), creator.ID, 10000, Destination{})
	require.NoError(t, err)

	refreshed, err := h.payouts.RefreshWithdrawal(context.Background(), creator.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCancelled, refreshed.Status)
	assert.Equal(t, "recipient not registered", refreshed.FailureReason)

	_, err = h.payouts.RefreshWithdrawal(context.Background(), creator.ID+1, w.ID)
	assert.ErrorIs(t, err, domain.ErrWithdrawalNotFound)

	bal, err := h.balance.ComputeBalance(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), bal.Available)
}

func TestSubmitWithdrawal_BankIsManual(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 15000)
	h.gateway.CreatePayoutFunc = func(ctx context.Context, req payment.PayoutRequest) (*payment.Result, error) {
		t.Fatal("bank withdrawals must not reach the gateway")
		return nil, nil
	}
	ctx := context.Background()

	_, err := h.payouts.SubmitWithdrawal(ctx, creator.ID, 6000, Destination{Method: domain.PayoutBank})
	assert.ErrorIs(t, err, domain.ErrInvalidPayoutMethod)

	w, err := h.payouts.SubmitWithdrawal(ctx, creator.ID, 6000, Destination{Method: domain.PayoutBank, BankName: "Stanbic", AccountNumber: "9030001234"})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, w.Status)
	assert.Equal(t, "Jane Creator", w.AccountName)

	_, err = h.payouts.ResolveManualWithdrawal(ctx, w.ID, "approved", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	done, err := h.payouts.ResolveManualWithdrawal(ctx, w.ID, "cancelled", "account closed")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCancelled, done.Status)

	_, err = h.payouts.ResolveManualWithdrawal(ctx, w.ID, "completed", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubmitWithdrawal_ConcurrentRequestsCannotOverdraw(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 15000)

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.payouts.SubmitWithdrawal(context.Background(), creator.ID, 10000, Destination{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok, insufficient := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientBalance):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 3, insufficient)

	bal, err := h.balance.ComputeBalance(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal.Available)
}

func TestSubmitWithdrawal_CommissionFromSettings(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := fundedCreator(t, h, 15000)
	require.NoError(t, db.Create(&models.SystemSetting{Key: domain.SettingCommissionBps, Value: "1000"}).Error)

	w, err := h.payouts.SubmitWithdrawal(context.Background(), creator.ID, 10000, Destination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), w.Commission)
	assert.Equal(t, int64(1000), w.CommissionBps)
	assert.Equal(t, int64(9000), w.NetAmount)
}
