package service

import (
	"context"
	"testing"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setExpiry(t *testing.T, h *harness, id uint, at *time.Time) {
	t.Helper()
	require.NoError(t, h.db.Model(&models.WishlistItem{}).Where("id = ?", id).UpdateColumn("expires_at", at).Error)
}

func TestSweep_ExpiresOnlyOverdueUnderfunded(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	svc := NewWishlistExpiryService(db)
	creator := testutil.CreateCreator(t, db, "maya")
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	overdue := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 3000)
	setExpiry(t, h, overdue.ID, &past)
	funded := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 10000)
	setExpiry(t, h, funded.ID, &past)
	over := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 12000)
	setExpiry(t, h, over.ID, &past)
	notYet := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 0)
	setExpiry(t, h, notYet.ID, &future)
	unscheduled := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 0)
	setExpiry(t, h, unscheduled.ID, nil)
	testutil.AddSupport(t, db, creator.ID, domain.KindWishlist, &overdue.ID, 3000)

	n, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for id, want := range map[uint]bool{overdue.ID: true, funded.ID: false, over.ID: false, notYet.ID: false, unscheduled.ID: false} {
		var it models.WishlistItem
		require.NoError(t, db.First(&it, id).Error)
		assert.Equal(t, want, it.IsExpired, "item %d", id)
	}

	n, err = svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n, "sweep is idempotent")

	var events int64
	db.Model(&models.SupportEvent{}).Count(&events)
	assert.Equal(t, int64(1), events, "collected pledges are never reversed")

	bal, err := h.balance.ComputeBalance(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), bal.Available)
	assert.Zero(t, bal.Locked)
}

func TestLegacySchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		age      time.Duration
		wantExp  time.Time
		wantDays int
	}{
		{"older than 30 days", 45 * day, now.Add(7 * day), 52},
		{"between 14 and 30 days", 20 * day, now.Add(14 * day), 34},
		{"exactly 14 days", 14 * day, now.Add(14 * day), 28},
		{"younger than 14 days", 3 * day, now.Add(27 * day), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, days := legacySchedule(now.Add(-tt.age), now)
			assert.Equal(t, tt.wantExp, exp)
			assert.Equal(t, tt.wantDays, days)
		})
	}
}

func TestMigrate_SchedulesLegacyItems(t *testing.T) {
	db := testutil.NewDB(t)
	h := newHarness(t, db)
	svc := NewWishlistExpiryService(db)
	creator := testutil.CreateCreator(t, db, "maya")
	now := time.Now()

	old := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 0)
	require.NoError(t, db.Model(&models.WishlistItem{}).Where("id = ?", old.ID).
		UpdateColumns(map[string]interface{}{"expires_at": nil, "created_at": now.Add(-60 * day)}).Error)
	funded := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 10000)
	setExpiry(t, h, funded.ID, nil)
	scheduled := testutil.CreateWishlistItem(t, db, creator.ID, 10000, 0)

	n, err := svc.Migrate(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got models.WishlistItem
	require.NoError(t, db.First(&got, old.ID).Error)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, now.Add(7*day), *got.ExpiresAt, time.Second)
	assert.Equal(t, 67, got.DurationDays)

	var skipped models.WishlistItem
	require.NoError(t, db.First(&skipped, funded.ID).Error)
	assert.Nil(t, skipped.ExpiresAt, "fully funded items are skipped")

	var untouched models.WishlistItem
	require.NoError(t, db.First(&untouched, scheduled.ID).Error)
	require.NotNil(t, untouched.ExpiresAt)
	assert.WithinDuration(t, *scheduled.ExpiresAt, *untouched.ExpiresAt, time.Second)

	n, err = svc.Migrate(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
