package repository

import (
	"context"
	"errors"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductUnavailable
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ReserveSlots increments sold_slots only while capacity remains; unlimited
// products (max_slots = 0) always succeed.
func (r *ProductRepository) ReserveSlots(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND (max_slots = 0 OR sold_slots + ? <= max_slots)", id, qty).
		UpdateColumn("sold_slots", gorm.Expr("sold_slots + ?", qty))
	return res.RowsAffected == 1, res.Error
}

// ReleaseSlots gives reserved capacity back; sold_slots never goes negative.
func (r *ProductRepository) ReleaseSlots(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND sold_slots >= ?", id, qty).
		UpdateColumn("sold_slots", gorm.Expr("sold_slots - ?", qty))
	return res.RowsAffected == 1, res.Error
}
