package exchange

import "errors"

var (
	ErrUnknownInstrument   = errors.New("unknown instrument")
	ErrDuplicateInstrument = errors.New("duplicate instrument")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrPriceOutOfBand      = errors.New("price outside allowed band")
	ErrExchangeClosed      = errors.New("exchange is shut down")
)
