package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/repository"
	"supportly/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedRecorder struct {
	mu   sync.Mutex
	sent map[uint][]interface{}
}

func (f *feedRecorder) BroadcastToUser(userID uint, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = map[uint][]interface{}{}
	}
	f.sent[userID] = append(f.sent[userID], payload)
}

func TestNotificationService_RecordsSubjectAndData(t *testing.T) {
	db := testutil.NewDB(t)
	creator := testutil.CreateCreator(t, db, "maya")
	feed := &feedRecorder{}
	svc := NewNotificationService(repository.NewNotificationRepository(db), repository.NewUserRepository(db), nil, feed, nil)
	ctx := context.Background()

	svc.PaymentSettled(ctx, &models.PaymentIntent{
		DepositID: "dep-1", CreatorID: creator.ID, Kind: domain.KindWishlist, Amount: 3000, CounterpartyName: "Amina",
	})
	svc.WithdrawalUpdated(ctx, &models.WithdrawalRequest{
		ID: 4, CreatorID: creator.ID, OrderRef: "wd-4", Amount: 10000, NetAmount: 8200, Status: domain.WithdrawalCompleted,
	})

	var list []models.Notification
	require.NoError(t, db.Where("user_id = ?", creator.ID).Order("id").Find(&list).Error)
	require.Len(t, list, 2)

	assert.Equal(t, domain.NotifWishlistFunded, list[0].Type)
	assert.Equal(t, "dep-1", list[0].Subject)
	assert.Equal(t, "Amina contributed 3000 to your wishlist", list[0].Body)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(list[0].Data, &data))
	assert.Equal(t, "dep-1", data["deposit_id"])
	assert.EqualValues(t, 3000, data["amount"])

	assert.Equal(t, domain.NotifWithdrawalUpdated, list[1].Type)
	assert.Equal(t, "wd-4", list[1].Subject)

	assert.Len(t, feed.sent[creator.ID], 2)

	// deleted notifications drop out of the inbox
	require.NoError(t, db.Delete(&list[0]).Error)
	inbox, err := repository.NewNotificationRepository(db).ListByUserID(ctx, creator.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "wd-4", inbox[0].Subject)
}
