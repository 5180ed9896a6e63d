// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"supportly/internal/database"
	"supportly/internal/domain"
	"supportly/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

// NewDB opens a private in-memory SQLite database with every table migrated.
// A single connection keeps concurrent tests on one serialized handle.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func CreateCreator(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:    username,
		DisplayName: strings.ToUpper(username[:1]) + username[1:],
		Email:       username + "@example.com",
		Role:        domain.RoleCreator,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateWishlistItem(t *testing.T, db *gorm.DB, creatorID uint, price, funded int64) *models.WishlistItem {
	t.Helper()
	w := &models.WishlistItem{CreatorID: creatorID, Title: "Camera", Price: price, AmountFunded: funded, DurationDays: 30}
	require.NoError(t, db.Create(w).Error)
	return w
}

func CreateProduct(t *testing.T, db *gorm.DB, creatorID uint, price int64, maxSlots int, allowMultiple bool) *models.Product {
	t.Helper()
	p := &models.Product{CreatorID: creatorID, Title: "Preset pack", Price: price, IsActive: true, MaxSlots: maxSlots, AllowMultiple: allowMultiple}
	require.NoError(t, db.Create(p).Error)
	return p
}

// AddSupport inserts a settled contribution row directly.
func AddSupport(t *testing.T, db *gorm.DB, creatorID uint, kind string, wishlistID *uint, amount int64) *models.SupportEvent {
	t.Helper()
	ev := &models.SupportEvent{
		CreatorID:       creatorID,
		ContributorName: "Fan",
		Amount:          amount,
		Kind:            kind,
		WishlistID:      wishlistID,
		Status:          domain.SupportCompleted,
		DepositID:       fmt.Sprintf("seed-%d-%d", time.Now().UnixNano(), atomic.AddInt64(&dbSeq, 1)),
	}
	require.NoError(t, db.Create(ev).Error)
	return ev
}

func VerifyPaymentInfo(t *testing.T, db *gorm.DB, creatorID uint) *models.VerifiedPaymentInfo {
	t.Helper()
	now := time.Now()
	info := &models.VerifiedPaymentInfo{
		CreatorID:  creatorID,
		Provider:   "MTN_MOMO_UGA",
		FullName:   "Jane Creator",
		Phone:      "256772123456",
		IsVerified: true,
		VerifiedAt: &now,
	}
	require.NoError(t, db.Create(info).Error)
	return info
}
