package service

import (
	"context"

	"supportly/internal/repository"

	"gorm.io/gorm"
)

// Balance is derived from the event tables on every read. Nothing here is stored.
type Balance struct {
	CreatorID        uint  `json:"creator_id"`
	Available        int64 `json:"available"`
	Locked           int64 `json:"locked"`
	TotalWithdrawn   int64 `json:"total_withdrawn"`
	SupportTotal     int64 `json:"support_total"`
	WishlistReleased int64 `json:"wishlist_released"`
	ShopSales        int64 `json:"shop_sales"`
}

type BalanceService struct {
	ledger *repository.LedgerRepository
}

func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{ledger: repository.NewLedgerRepository(db)}
}

func (s *BalanceService) ComputeBalance(ctx context.Context, creatorID uint) (*Balance, error) {
	return computeBalance(ctx, s.ledger, creatorID)
}

// ComputeWith evaluates the balance on tx, e.g. under the withdrawal lock.
func (s *BalanceService) ComputeWith(ctx context.Context, tx *gorm.DB, creatorID uint) (*Balance, error) {
	return computeBalance(ctx, s.ledger.WithTx(tx), creatorID)
}

func computeBalance(ctx context.Context, ledger *repository.LedgerRepository, creatorID uint) (*Balance, error) {
	t, err := ledger.Totals(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	// shop sales are reported but do not feed available
	return &Balance{
		CreatorID:        creatorID,
		Available:        t.Support + t.WishlistReleased - t.Withdrawn,
		Locked:           t.WishlistLocked,
		TotalWithdrawn:   t.Withdrawn,
		SupportTotal:     t.Support,
		WishlistReleased: t.WishlistReleased,
		ShopSales:        t.ShopSales,
	}, nil
}
