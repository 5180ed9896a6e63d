package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/repository"

	"gorm.io/gorm"
)

// settlementApplier writes the ledger effects of a settled intent. Every
// method runs inside the transaction that won the status transition.
type settlementApplier struct {
	support   *repository.SupportRepository
	wishlists *repository.WishlistRepository
	orders    *repository.OrderRepository
	products  *repository.ProductRepository
}

func newSettlementApplier(db *gorm.DB) *settlementApplier {
	return &settlementApplier{
		support:   repository.NewSupportRepository(db),
		wishlists: repository.NewWishlistRepository(db),
		orders:    repository.NewOrderRepository(db),
		products:  repository.NewProductRepository(db),
	}
}

func (a *settlementApplier) Apply(ctx context.Context, tx *gorm.DB, intent *models.PaymentIntent, providerRef string, at time.Time) error {
	switch intent.Kind {
	case domain.KindShop:
		ok, err := a.orders.WithTx(tx).MarkPaid(ctx, intent.DepositID, providerRef, at)
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("[SETTLE] order for %s was not pending; left unchanged", intent.DepositID)
		}
		return nil
	case domain.KindSupport, domain.KindWishlist:
		ev := &models.SupportEvent{
			CreatorID:       intent.CreatorID,
			ContributorName: intent.CounterpartyName,
			Amount:          intent.Amount,
			Kind:            intent.Kind,
			WishlistID:      intent.WishlistID,
			Status:          domain.SupportCompleted,
			DepositID:       intent.DepositID,
			Message:         intentMessage(intent),
			CreatedAt:       intent.CreatedAt,
		}
		inserted, err := a.support.WithTx(tx).InsertOnce(ctx, ev)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		if intent.Kind == domain.KindWishlist && intent.WishlistID != nil {
			return a.wishlists.WithTx(tx).IncrementFunded(ctx, *intent.WishlistID, intent.Amount)
		}
		return nil
	default:
		return domain.ErrInvalidKind
	}
}

// Compensate undoes creation-time reservations of a failed intent.
func (a *settlementApplier) Compensate(ctx context.Context, tx *gorm.DB, intent *models.PaymentIntent) error {
	if intent.Kind != domain.KindShop || intent.ProductID == nil {
		return nil
	}
	ok, err := a.orders.WithTx(tx).MarkFailed(ctx, intent.DepositID)
	if err != nil || !ok {
		return err
	}
	_, err = a.products.WithTx(tx).ReleaseSlots(ctx, *intent.ProductID, intent.Quantity)
	return err
}

func intentMessage(intent *models.PaymentIntent) string {
	if len(intent.Metadata) == 0 {
		return ""
	}
	var meta models.IntentMetadata
	if err := json.Unmarshal(intent.Metadata, &meta); err != nil {
		return ""
	}
	return meta.Message
}
