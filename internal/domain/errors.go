package domain

import "errors"

// Validation errors are rejected synchronously and never leave a pending record behind.
var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidKind            = errors.New("unknown payment kind")
	ErrInvalidPhone           = errors.New("invalid phone number")
	ErrBelowMinimumAmount     = errors.New("amount is below the minimum transactable amount")
	ErrCapacityExhausted      = errors.New("product capacity exhausted")
	ErrProductUnavailable     = errors.New("product is not available")
	ErrQuantityNotAllowed     = errors.New("product does not allow multiple units")
	ErrWishlistUnavailable    = errors.New("wishlist item is not available")
	ErrCreatorNotFound        = errors.New("creator not found")
	ErrBelowMinimumWithdrawal = errors.New("amount is below the minimum withdrawal threshold")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrPaymentInfoMissing     = errors.New("missing verified payout info")
	ErrPaymentInfoLocked      = errors.New("verified payout info cannot be changed")
	ErrInvalidPayoutMethod    = errors.New("unsupported payout method")
	ErrInvalidTransition      = errors.New("invalid status transition")
)

var (
	ErrIntentNotFound     = errors.New("payment intent not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrOrderNotFound      = errors.New("order not found")
)

// ErrGatewayRejected wraps any transport or provider error from the payment gateway.
var ErrGatewayRejected = errors.New("gateway rejected the request")

var validationErrors = []error{
	ErrInvalidAmount, ErrInvalidKind, ErrInvalidPhone, ErrBelowMinimumAmount,
	ErrCapacityExhausted, ErrProductUnavailable, ErrQuantityNotAllowed,
	ErrWishlistUnavailable, ErrBelowMinimumWithdrawal, ErrInsufficientBalance,
	ErrPaymentInfoMissing, ErrPaymentInfoLocked, ErrInvalidPayoutMethod,
	ErrInvalidTransition,
}

func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrIntentNotFound) || errors.Is(err, ErrWithdrawalNotFound) ||
		errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrCreatorNotFound)
}
