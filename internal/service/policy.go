package service

import (
	"context"

	"supportly/config"
	"supportly/internal/domain"
	"supportly/internal/repository"
)

// Policy resolves admin-tunable amounts: a SystemSetting row wins over config.
// Read it outside of any transaction.
type Policy struct {
	settings *repository.SettingRepository
	payment  config.PaymentConfig
	payout   config.PayoutConfig
}

func NewPolicy(settings *repository.SettingRepository, payment config.PaymentConfig, payout config.PayoutConfig) *Policy {
	return &Policy{settings: settings, payment: payment, payout: payout}
}

func (p *Policy) get(ctx context.Context, key string, fallback int64) int64 {
	if p.settings == nil {
		return fallback
	}
	return p.settings.Int64(ctx, key, fallback)
}

func (p *Policy) CommissionBps(ctx context.Context) int64 {
	bps := p.get(ctx, domain.SettingCommissionBps, p.payout.CommissionBps)
	if bps < 0 || bps > 10000 {
		return p.payout.CommissionBps
	}
	return bps
}

func (p *Policy) MinWithdrawal(ctx context.Context) int64 {
	return p.get(ctx, domain.SettingMinWithdrawal, p.payout.MinWithdrawal)
}

func (p *Policy) MinPaymentAmount(ctx context.Context) int64 {
	return p.get(ctx, domain.SettingMinPaymentAmount, p.payment.MinAmount)
}
