package service

import (
	"context"
	"log"
	"math"
	"time"

	"supportly/internal/repository"

	"gorm.io/gorm"
)

const day = 24 * time.Hour

type WishlistExpiryService struct {
	wishlists *repository.WishlistRepository
}

func NewWishlistExpiryService(db *gorm.DB) *WishlistExpiryService {
	return &WishlistExpiryService{wishlists: repository.NewWishlistRepository(db)}
}

// Sweep marks overdue, under-funded items expired. Pledges already collected
// are not touched; they move from locked to available in the balance.
func (s *WishlistExpiryService) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.wishlists.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[SWEEP] expired %d wishlist items", n)
	}
	return n, nil
}

// Migrate gives legacy items without an expiry a schedule based on their age,
// so old items get a short grace period instead of expiring on the spot.
func (s *WishlistExpiryService) Migrate(ctx context.Context, now time.Time) (int, error) {
	items, err := s.wishlists.ListUnscheduled(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, it := range items {
		expiresAt, days := legacySchedule(it.CreatedAt, now)
		ok, err := s.wishlists.SetSchedule(ctx, it.ID, days, expiresAt)
		if err != nil {
			return updated, err
		}
		if ok {
			updated++
		}
	}
	log.Printf("[SWEEP] migrated %d of %d unscheduled wishlist items", updated, len(items))
	return updated, nil
}

func legacySchedule(created, now time.Time) (time.Time, int) {
	age := now.Sub(created)
	var expiresAt time.Time
	switch {
	case age > 30*day:
		expiresAt = now.Add(7 * day)
	case age >= 14*day:
		expiresAt = now.Add(14 * day)
	default:
		return created.Add(30 * day), 30
	}
	return expiresAt, int(math.Ceil(expiresAt.Sub(created).Hours() / 24))
}
