package repository

import (
	"context"
	"errors"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByDepositID(ctx context.Context, depositID string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Where("deposit_id = ?", depositID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// transition moves an order between payment statuses only from the expected state.
func (r *OrderRepository) transition(ctx context.Context, where string, arg interface{}, from, to string, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"payment_status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where(where+" AND payment_status = ?", arg, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *OrderRepository) MarkPaid(ctx context.Context, depositID, providerRef string, at time.Time) (bool, error) {
	return r.transition(ctx, "deposit_id = ?", depositID, domain.OrderPending, domain.OrderPaid,
		map[string]interface{}{"provider_ref": providerRef, "paid_at": at})
}

func (r *OrderRepository) MarkFailed(ctx context.Context, depositID string) (bool, error) {
	return r.transition(ctx, "deposit_id = ?", depositID, domain.OrderPending, domain.OrderFailed, nil)
}

func (r *OrderRepository) MarkRefunded(ctx context.Context, id uint) (bool, error) {
	return r.transition(ctx, "id = ?", id, domain.OrderPaid, domain.OrderRefunded, nil)
}
