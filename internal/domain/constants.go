package domain

const (
	RoleCreator   = "CREATOR"
	RoleSupporter = "SUPPORTER"
	RoleAdmin     = "ADMIN"
)

// Intent kinds.
const (
	KindSupport  = "support"
	KindWishlist = "wishlist"
	KindShop     = "shop"
)

// PaymentIntent statuses. Terminal states never revert.
const (
	IntentPending   = "pending"
	IntentCompleted = "completed"
	IntentFailed    = "failed"
)

const SupportCompleted = "completed"

const (
	OrderPending  = "pending"
	OrderPaid     = "paid"
	OrderFailed   = "failed"
	OrderRefunded = "refunded"
)

const (
	WithdrawalPending    = "PENDING"
	WithdrawalProcessing = "PROCESSING"
	WithdrawalCompleted  = "COMPLETED"
	WithdrawalCancelled  = "CANCELLED"
)

const (
	PayoutMobileMoney = "mobile_money"
	PayoutBank        = "bank"
)

// Gateway statuses as reported for deposits and payouts.
const (
	GatewayPending   = "pending"
	GatewayCompleted = "completed"
	GatewayFailed    = "failed"
	GatewayExpired   = "expired"
	GatewayVoided    = "voided"
)

// Admin-tunable settings keys.
const (
	SettingCommissionBps    = "payout_commission_bps"
	SettingMinWithdrawal    = "payout_min_withdrawal"
	SettingMinPaymentAmount = "payment_min_amount"
)

const (
	NotifNewSupporter      = "NEW_SUPPORTER"
	NotifWishlistFunded    = "WISHLIST_CONTRIBUTION"
	NotifProductSold       = "PRODUCT_SOLD"
	NotifWithdrawalUpdated = "WITHDRAWAL_UPDATED"
)

// NormalizeGatewayStatus folds the gateway vocabulary into pending/completed/failed.
func NormalizeGatewayStatus(s string) string {
	switch s {
	case GatewayCompleted, "COMPLETED", "successful", "SUCCESSFUL":
		return IntentCompleted
	case GatewayFailed, GatewayExpired, GatewayVoided, "FAILED", "EXPIRED", "VOIDED", "REJECTED", "rejected", "cancelled", "CANCELLED":
		return IntentFailed
	default:
		return IntentPending
	}
}

func ValidKind(kind string) bool {
	return kind == KindSupport || kind == KindWishlist || kind == KindShop
}

// CountryCode prefixes normalized mobile-money numbers.
const CountryCode = "256"
