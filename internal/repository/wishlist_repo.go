package repository

import (
	"context"
	"errors"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
)

type WishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) WithTx(tx *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: tx}
}

func (r *WishlistRepository) GetByID(ctx context.Context, id uint) (*models.WishlistItem, error) {
	var w models.WishlistItem
	err := r.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWishlistUnavailable
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// IncrementFunded atomically adds amount to amount_funded. No clamping: over-funding is allowed.
func (r *WishlistRepository) IncrementFunded(ctx context.Context, id uint, amount int64) error {
	return r.db.WithContext(ctx).Model(&models.WishlistItem{}).
		Where("id = ?", id).
		UpdateColumn("amount_funded", gorm.Expr("amount_funded + ?", amount)).Error
}

// ExpireOverdue flags every overdue, under-funded item in one statement so
// amount_funded is read at write time.
func (r *WishlistRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.WishlistItem{}).
		Where("expires_at IS NOT NULL AND expires_at <= ? AND is_expired = ? AND amount_funded < price", now, false).
		Updates(map[string]interface{}{"is_expired": true, "updated_at": now})
	return res.RowsAffected, res.Error
}

// ListUnscheduled returns legacy items without an expiry, fully funded ones excluded.
func (r *WishlistRepository) ListUnscheduled(ctx context.Context) ([]models.WishlistItem, error) {
	var list []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("expires_at IS NULL AND amount_funded < price").
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// SetSchedule assigns duration and expiry to an item that still has none.
func (r *WishlistRepository) SetSchedule(ctx context.Context, id uint, durationDays int, expiresAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.WishlistItem{}).
		Where("id = ? AND expires_at IS NULL", id).
		Updates(map[string]interface{}{"duration_days": durationDays, "expires_at": expiresAt})
	return res.RowsAffected == 1, res.Error
}
