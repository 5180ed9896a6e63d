package repository

import (
	"context"

	"supportly/internal/domain"
	"supportly/internal/models"

	"gorm.io/gorm"
)

// LedgerTotals are the raw aggregates the balance formula is built from.
type LedgerTotals struct {
	Support          int64
	WishlistReleased int64 // pledges to fully-funded or expired items
	WishlistLocked   int64 // pledges to open, under-funded items
	Withdrawn        int64 // every withdrawal except CANCELLED
	ShopSales        int64 // reporting only
}

// LedgerRepository reads the event tables. It never writes.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) WithTx(tx *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

type sumRow struct{ Total int64 }

func (r *LedgerRepository) sum(q *gorm.DB, expr string) (int64, error) {
	var row sumRow
	err := q.Select("COALESCE(SUM(" + expr + "), 0) AS total").Scan(&row).Error
	return row.Total, err
}

func (r *LedgerRepository) SumSupport(ctx context.Context, creatorID uint) (int64, error) {
	return r.sum(r.db.WithContext(ctx).Model(&models.SupportEvent{}).
		Where("creator_id = ? AND kind = ? AND status = ?", creatorID, domain.KindSupport, domain.SupportCompleted), "amount")
}

func (r *LedgerRepository) wishlistPledges(ctx context.Context, creatorID uint) *gorm.DB {
	return r.db.WithContext(ctx).Table("support_events AS se").
		Joins("JOIN wishlist_items AS wi ON wi.id = se.wishlist_id").
		Where("se.creator_id = ? AND se.kind = ? AND se.status = ?", creatorID, domain.KindWishlist, domain.SupportCompleted)
}

func (r *LedgerRepository) SumWishlistReleased(ctx context.Context, creatorID uint) (int64, error) {
	return r.sum(r.wishlistPledges(ctx, creatorID).
		Where("(wi.amount_funded >= wi.price OR wi.is_expired = ?)", true), "se.amount")
}

func (r *LedgerRepository) SumWishlistLocked(ctx context.Context, creatorID uint) (int64, error) {
	return r.sum(r.wishlistPledges(ctx, creatorID).
		Where("wi.amount_funded < wi.price AND wi.is_expired = ?", false), "se.amount")
}

func (r *LedgerRepository) SumWithdrawals(ctx context.Context, creatorID uint) (int64, error) {
	return r.sum(r.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("creator_id = ? AND status <> ?", creatorID, domain.WithdrawalCancelled), "amount")
}

func (r *LedgerRepository) SumShopSales(ctx context.Context, creatorID uint) (int64, error) {
	return r.sum(r.db.WithContext(ctx).Model(&models.Order{}).
		Where("creator_id = ? AND payment_status = ?", creatorID, domain.OrderPaid), "total")
}

func (r *LedgerRepository) Totals(ctx context.Context, creatorID uint) (*LedgerTotals, error) {
	var t LedgerTotals
	var err error
	if t.Support, err = r.SumSupport(ctx, creatorID); err != nil {
		return nil, err
	}
	if t.WishlistReleased, err = r.SumWishlistReleased(ctx, creatorID); err != nil {
		return nil, err
	}
	if t.WishlistLocked, err = r.SumWishlistLocked(ctx, creatorID); err != nil {
		return nil, err
	}
	if t.Withdrawn, err = r.SumWithdrawals(ctx, creatorID); err != nil {
		return nil, err
	}
	if t.ShopSales, err = r.SumShopSales(ctx, creatorID); err != nil {
		return nil, err
	}
	return &t, nil
}
