package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidCredentials   = errors.New("INVALID_CREDENTIALS")
	ErrAccountDisabled      = errors.New("ACCOUNT_DISABLED")
	ErrProductNotFound      = errors.New("PRODUCT_NOT_FOUND")
	ErrCustomerNotFound     = errors.New("CUSTOMER_NOT_FOUND")
	ErrDistributorNotFound  = errors.New("DISTRIBUTOR_NOT_FOUND")
	ErrInsufficientStock    = errors.New("INSUFFICIENT_STOCK")
	ErrInsufficientTender   = errors.New("INSUFFICIENT_TENDER")
	ErrEmptyBasket          = errors.New("EMPTY_BASKET")
	ErrInvalidAmount        = errors.New("INVALID_AMOUNT")
	ErrConfigMissing        = errors.New("CONFIG_MISSING")
	ErrGatewayUnavailable   = errors.New("GATEWAY_UNAVAILABLE")
	ErrChargeNotFound       = errors.New("CHARGE_NOT_FOUND")
	ErrMatchNotFound        = errors.New("MATCH_NOT_FOUND")
	ErrInvalidQuantity      = errors.New("INVALID_QUANTITY")
	ErrDuplicateReferenceID = errors.New("DUPLICATE_REFERENCE_ID")
)
