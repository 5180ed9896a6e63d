package repository

import (
	"context"
	"errors"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
)

type IntentRepository struct {
	db *gorm.DB
}

func NewIntentRepository(db *gorm.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *IntentRepository) WithTx(tx *gorm.DB) *IntentRepository {
	return &IntentRepository{db: tx}
}

func (r *IntentRepository) Create(ctx context.Context, p *models.PaymentIntent) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *IntentRepository) GetByDepositID(ctx context.Context, depositID string) (*models.PaymentIntent, error) {
	var p models.PaymentIntent
	err := r.db.WithContext(ctx).Where("deposit_id = ?", depositID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *IntentRepository) GetByProviderRef(ctx context.Context, ref string) (*models.PaymentIntent, error) {
	var p models.PaymentIntent
	err := r.db.WithContext(ctx).Where("provider_ref = ?", ref).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AttachProviderRef stores the gateway reference once; it never overwrites an existing one.
func (r *IntentRepository) AttachProviderRef(ctx context.Context, depositID, ref string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("deposit_id = ? AND provider_ref IS NULL", depositID).
		Update("provider_ref", ref).Error
}

// MarkCompleted is the pending -> completed compare-and-set. It reports false
// when another caller already moved the intent out of pending.
// A completion that lands before the reference was attached also fills it in.
func (r *IntentRepository) MarkCompleted(ctx context.Context, depositID, transactionID string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":         domain.IntentCompleted,
		"transaction_id": transactionID,
		"completed_at":   at,
		"updated_at":     at,
	}
	if transactionID != "" {
		updates["provider_ref"] = gorm.Expr("COALESCE(provider_ref, ?)", transactionID)
	}
	res := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("deposit_id = ? AND status = ?", depositID, domain.IntentPending).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// MarkFailed is the pending -> failed compare-and-set.
func (r *IntentRepository) MarkFailed(ctx context.Context, depositID, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("deposit_id = ? AND status = ?", depositID, domain.IntentPending).
		Updates(map[string]interface{}{
			"status":         domain.IntentFailed,
			"failure_reason": reason,
			"updated_at":     at,
		})
	return res.RowsAffected == 1, res.Error
}

// ListStalePending returns pending intents with a provider reference created before the cutoff.
func (r *IntentRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]models.PaymentIntent, error) {
	var list []models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("status = ? AND provider_ref IS NOT NULL AND created_at < ?", domain.IntentPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListStaleUnreferenced returns pending intents that never got a provider
// reference recorded and are older than the cutoff.
func (r *IntentRepository) ListStaleUnreferenced(ctx context.Context, before time.Time, limit int) ([]models.PaymentIntent, error) {
	var list []models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("status = ? AND provider_ref IS NULL AND created_at < ?", domain.IntentPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
