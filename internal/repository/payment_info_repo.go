package repository

import (
	"context"
	"errors"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentInfoRepository struct {
	db *gorm.DB
}

func NewPaymentInfoRepository(db *gorm.DB) *PaymentInfoRepository {
	return &PaymentInfoRepository{db: db}
}

func (r *PaymentInfoRepository) WithTx(tx *gorm.DB) *PaymentInfoRepository {
	return &PaymentInfoRepository{db: tx}
}

// GetByCreator returns nil, nil when the creator has no record.
func (r *PaymentInfoRepository) GetByCreator(ctx context.Context, creatorID uint) (*models.VerifiedPaymentInfo, error) {
	var p models.VerifiedPaymentInfo
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LockByCreator reads the record with a row lock; used to serialize a creator's withdrawals.
func (r *PaymentInfoRepository) LockByCreator(ctx context.Context, creatorID uint) (*models.VerifiedPaymentInfo, error) {
	var p models.VerifiedPaymentInfo
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("creator_id = ?", creatorID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentInfoRepository) Create(ctx context.Context, p *models.VerifiedPaymentInfo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// UpdateUnverified rewrites destination fields only while the record is unverified.
func (r *PaymentInfoRepository) UpdateUnverified(ctx context.Context, creatorID uint, provider, fullName, phone string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.VerifiedPaymentInfo{}).
		Where("creator_id = ? AND is_verified = ?", creatorID, false).
		Updates(map[string]interface{}{"provider": provider, "full_name": fullName, "phone": phone})
	return res.RowsAffected == 1, res.Error
}

// MarkVerified flips is_verified once. False means it was already verified or absent.
func (r *PaymentInfoRepository) MarkVerified(ctx context.Context, creatorID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.VerifiedPaymentInfo{}).
		Where("creator_id = ? AND is_verified = ?", creatorID, false).
		Updates(map[string]interface{}{"is_verified": true, "verified_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.GetByCreator(ctx, creatorID)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, domain.ErrPaymentInfoMissing
		}
		return false, nil
	}
	return true, nil
}
