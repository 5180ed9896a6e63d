package service

import (
	"context"
	"log"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/repository"

	"gorm.io/gorm"
)

// OrderService holds back-office operations on shop orders.
type OrderService struct {
	db       *gorm.DB
	orders   *repository.OrderRepository
	products *repository.ProductRepository
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, orders: repository.NewOrderRepository(db), products: repository.NewProductRepository(db)}
}

// Refund marks a paid order refunded and gives its slots back in one
// transaction. The money movement itself happens outside this service.
func (s *OrderService) Refund(ctx context.Context, orderID uint) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.orders.WithTx(tx).GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		ok, err := s.orders.WithTx(tx).MarkRefunded(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		_, err = s.products.WithTx(tx).ReleaseSlots(ctx, o.ProductID, o.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[ORDER] order %d refunded", orderID)
	return s.orders.GetByID(ctx, orderID)
}
