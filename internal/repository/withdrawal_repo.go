package repository

import (
	"context"
	"errors"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) WithTx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *models.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WithdrawalRepository) first(ctx context.Context, query string, arg interface{}) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := r.db.WithContext(ctx).Where(query, arg).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uint) (*models.WithdrawalRequest, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *WithdrawalRepository) GetByProviderRef(ctx context.Context, ref string) (*models.WithdrawalRequest, error) {
	return r.first(ctx, "provider_ref = ?", ref)
}

func (r *WithdrawalRepository) GetByOrderRef(ctx context.Context, orderRef string) (*models.WithdrawalRequest, error) {
	return r.first(ctx, "order_ref = ?", orderRef)
}

func (r *WithdrawalRepository) SetProviderRef(ctx context.Context, id uint, ref string) error {
	return r.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ? AND provider_ref IS NULL", id).
		Update("provider_ref", ref).Error
}

// Transition is the guarded status change used by both webhook and poll paths.
func (r *WithdrawalRepository) Transition(ctx context.Context, id uint, from, to, reason string, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to, "updated_at": at}
	if reason != "" {
		updates["failure_reason"] = reason
	}
	if to == domain.WithdrawalCompleted {
		updates["completed_at"] = at
	}
	res := r.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *WithdrawalRepository) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListStaleProcessing returns in-flight payouts older than the cutoff for catch-up polling.
func (r *WithdrawalRepository) ListStaleProcessing(ctx context.Context, before time.Time, limit int) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND provider_ref IS NOT NULL AND created_at < ?", domain.WithdrawalProcessing, before).
		Order("created_at ASC").Limit(limit).Find(&list).Error
	return list, err
}

// ListStaleUnreferenced returns mobile-money payouts still in flight without a
// recorded provider reference.
func (r *WithdrawalRepository) ListStaleUnreferenced(ctx context.Context, before time.Time, limit int) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND method = ? AND provider_ref IS NULL AND created_at < ?", domain.WithdrawalProcessing, domain.PayoutMobileMoney, before).
		Order("created_at ASC").Limit(limit).Find(&list).Error
	return list, err
}
