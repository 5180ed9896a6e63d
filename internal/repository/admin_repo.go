package repository

import (
	"context"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	PendingIntents        int64 `json:"pending_intents"`
	CompletedIntents      int64 `json:"completed_intents"`
	FailedIntents         int64 `json:"failed_intents"`
	CollectedVolume       int64 `json:"collected_volume"`
	ProcessingWithdrawals int64 `json:"processing_withdrawals"`
	PendingBankPayouts    int64 `json:"pending_bank_payouts"`
	PayoutsUnderReview    int64 `json:"payouts_under_review"`
	WithdrawnVolume       int64 `json:"withdrawn_volume"`
	PlatformCommission    int64 `json:"platform_commission"`
	ExpiredWishlistItems  int64 `json:"expired_wishlist_items"`
}

// AdminRepository serves back-office read models.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var s DashboardStats
	intents := func() *gorm.DB { return db.Model(&models.PaymentIntent{}) }
	if err := intents().Where("status = ?", domain.IntentPending).Count(&s.PendingIntents).Error; err != nil {
		return nil, err
	}
	if err := intents().Where("status = ?", domain.IntentCompleted).Count(&s.CompletedIntents).Error; err != nil {
		return nil, err
	}
	if err := intents().Where("status = ?", domain.IntentFailed).Count(&s.FailedIntents).Error; err != nil {
		return nil, err
	}

	var sum struct{ Total int64 }
	if err := intents().Select("COALESCE(SUM(amount), 0) AS total").Where("status = ?", domain.IntentCompleted).Scan(&sum).Error; err != nil {
		return nil, err
	}
	s.CollectedVolume = sum.Total

	withdrawals := func() *gorm.DB { return db.Model(&models.WithdrawalRequest{}) }
	if err := withdrawals().Where("status = ?", domain.WithdrawalProcessing).Count(&s.ProcessingWithdrawals).Error; err != nil {
		return nil, err
	}
	if err := withdrawals().Where("status = ? AND method = ?", domain.WithdrawalPending, domain.PayoutBank).Count(&s.PendingBankPayouts).Error; err != nil {
		return nil, err
	}
	if err := withdrawals().Where("status = ? AND method = ?", domain.WithdrawalPending, domain.PayoutMobileMoney).Count(&s.PayoutsUnderReview).Error; err != nil {
		return nil, err
	}
	var w struct {
		Gross      int64
		Commission int64
	}
	if err := withdrawals().Select("COALESCE(SUM(amount), 0) AS gross, COALESCE(SUM(commission), 0) AS commission").
		Where("status = ?", domain.WithdrawalCompleted).Scan(&w).Error; err != nil {
		return nil, err
	}
	s.WithdrawnVolume = w.Gross
	s.PlatformCommission = w.Commission

	if err := db.Model(&models.WishlistItem{}).Where("is_expired = ?", true).Count(&s.ExpiredWishlistItems).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListWithdrawals pages through withdrawals, optionally filtered by status.
func (r *AdminRepository) ListWithdrawals(ctx context.Context, status string, page, limit int) ([]models.WithdrawalRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WithdrawalRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.WithdrawalRequest
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}
