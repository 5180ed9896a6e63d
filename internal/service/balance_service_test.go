package service

import (
	"context"
	"testing"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBalance_Formula(t *testing.T) {
	db := testutil.NewDB(t)
	bs := NewBalanceService(db)
	creator := testutil.CreateCreator(t, db, "maya")
	other := testutil.CreateCreator(t, db, "leo")
	ctx := context.Background()

	open := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 3000)
	funded := testutil.CreateWishlistItem(t, db, creator.ID, 4000, 5000)
	expired := testutil.CreateWishlistItem(t, db, creator.ID, 9000, 1000)
	require.NoError(t, db.Model(expired).Update("is_expired", true).Error)

	testutil.AddSupport(t, db, creator.ID, domain.KindSupport, nil, 15000)
	testutil.AddSupport(t, db, creator.ID, domain.KindWishlist, &open.ID, 3000)
	testutil.AddSupport(t, db, creator.ID, domain.KindWishlist, &funded.ID, 5000)
	testutil.AddSupport(t, db, creator.ID, domain.KindWishlist, &expired.ID, 1000)
	testutil.AddSupport(t, db, other.ID, domain.KindSupport, nil, 777)

	require.NoError(t, db.Create(&models.WithdrawalRequest{CreatorID: creator.ID, OrderRef: "wd-a", Amount: 6000, Method: domain.PayoutMobileMoney, Status: domain.WithdrawalCompleted}).Error)
	require.NoError(t, db.Create(&models.WithdrawalRequest{CreatorID: creator.ID, OrderRef: "wd-b", Amount: 2000, Method: domain.PayoutMobileMoney, Status: domain.WithdrawalProcessing}).Error)
	require.NoError(t, db.Create(&models.WithdrawalRequest{CreatorID: creator.ID, OrderRef: "wd-c", Amount: 9999, Method: domain.PayoutMobileMoney, Status: domain.WithdrawalCancelled}).Error)
	require.NoError(t, db.Create(&models.Order{CreatorID: creator.ID, ProductID: 1, Quantity: 1, UnitPrice: 2500, Total: 2500, PaymentStatus: domain.OrderPaid, DepositID: "o-1"}).Error)
	require.NoError(t, db.Create(&models.Order{CreatorID: creator.ID, ProductID: 1, Quantity: 1, UnitPrice: 2500, Total: 2500, PaymentStatus: domain.OrderPending, DepositID: "o-2"}).Error)

	bal, err := bs.ComputeBalance(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), bal.SupportTotal)
	assert.Equal(t, int64(6000), bal.WishlistReleased, "funded and expired pledges are released")
	assert.Equal(t, int64(3000), bal.Locked)
	assert.Equal(t, int64(8000), bal.TotalWithdrawn, "cancelled withdrawals do not count")
	assert.Equal(t, int64(15000+6000-8000), bal.Available)
	assert.Equal(t, int64(2500), bal.ShopSales, "reported, not available")

	empty, err := bs.ComputeBalance(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, Balance{CreatorID: 12345}, *empty)
}

func TestComputeBalance_PartialPledgeIsLocked(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	creator := testutil.CreateCreator(t, db, "maya")
	item := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 0)

	intent, err := h.intents.CreateIntent(context.Background(), CreateIntentInput{
		Kind: domain.KindWishlist, CreatorID: creator.ID, Amount: 3000, PayerPhone: "0772123456", WishlistID: &item.ID,
	})
	require.NoError(t, err)
	_, err = h.reconciler.Settle(context.Background(), intent.DepositID, "completed", "", "")
	require.NoError(t, err)

	bal, err := h.balance.ComputeBalance(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), bal.Locked)
	assert.Equal(t, int64(0), bal.Available)

	// expiry releases the pledge without touching the event
	require.NoError(t, db.Model(&models.WishlistItem{}).Where("id = ?", item.ID).Update("is_expired", true).Error)
	bal, err = h.balance.ComputeBalance(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal.Locked)
	assert.Equal(t, int64(3000), bal.Available)
}
