package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"supportly/internal/domain"
	"supportly/internal/models"
	"supportly/internal/repository"

	"gorm.io/gorm"
)

// PaymentInfoService manages the creator's payout destination. Verification
// locks the record for good.
type PaymentInfoService struct {
	infos *repository.PaymentInfoRepository
	now   func() time.Time
}

func NewPaymentInfoService(db *gorm.DB) *PaymentInfoService {
	return &PaymentInfoService{infos: repository.NewPaymentInfoRepository(db), now: time.Now}
}

func (s *PaymentInfoService) Get(ctx context.Context, creatorID uint) (*models.VerifiedPaymentInfo, error) {
	info, err := s.infos.GetByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.ErrPaymentInfoMissing
	}
	return info, nil
}

func (s *PaymentInfoService) Save(ctx context.Context, creatorID uint, provider, fullName, phone string) (*models.VerifiedPaymentInfo, error) {
	provider = strings.TrimSpace(provider)
	fullName = strings.TrimSpace(fullName)
	if provider == "" || fullName == "" {
		return nil, domain.ErrInvalidPayoutMethod
	}
	msisdn, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	existing, err := s.infos.GetByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		info := &models.VerifiedPaymentInfo{CreatorID: creatorID, Provider: provider, FullName: fullName, Phone: msisdn}
		if err := s.infos.Create(ctx, info); err != nil {
			// lost a create race; fall through to the guarded update
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, err
			}
		} else {
			return info, nil
		}
	}
	ok, err := s.infos.UpdateUnverified(ctx, creatorID, provider, fullName, msisdn)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrPaymentInfoLocked
	}
	return s.Get(ctx, creatorID)
}

// Verify is called once the provider confirms the account holder. A second
// call is rejected rather than ignored.
func (s *PaymentInfoService) Verify(ctx context.Context, creatorID uint) (*models.VerifiedPaymentInfo, error) {
	ok, err := s.infos.MarkVerified(ctx, creatorID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrPaymentInfoLocked
	}
	return s.Get(ctx, creatorID)
}
