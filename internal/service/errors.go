package service

import "errors"

// Ошибки бизнес-логики; обработчики сопоставляют их HTTP-статусам.
var (
	ErrValidation            = errors.New("validation failed")
	ErrAuthRequired          = errors.New("please sign in")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrAddressRequired       = errors.New("address required")
	ErrInvalidDeliveryMethod = errors.New("invalid delivery method")
	ErrOrderSubmit           = errors.New("order submission failed, please retry")
	ErrOrderNotCancellable   = errors.New("order can no longer be cancelled")
)
