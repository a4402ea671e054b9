package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradekit/exchange-core/pkg/orderbook"
)

// Rule is a synchronous pre-trade check. A failing order is rejected
// before it ever reaches the submission queue.
type Rule interface {
	Check(order *orderbook.Order) error
}

type quantityRule struct{}

func (quantityRule) Check(order *orderbook.Order) error {
	if order.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

type priceRule struct{}

func (priceRule) Check(order *orderbook.Order) error {
	if order.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

func defaultRules() []Rule {
	return []Rule{quantityRule{}, priceRule{}}
}

// PriceBand bounds the limit price accepted for one ticker.
type PriceBand struct {
	Floor decimal.Decimal
	Ceil  decimal.Decimal
}

// LimitPriceRule rejects orders priced outside their ticker's band.
// Tickers without a band are unrestricted.
type LimitPriceRule struct {
	bands map[string]PriceBand
}

func NewLimitPriceRule(bands map[string]PriceBand) *LimitPriceRule {
	return &LimitPriceRule{bands: bands}
}

func (r *LimitPriceRule) Check(order *orderbook.Order) error {
	band, ok := r.bands[order.Ticker]
	if !ok {
		return nil
	}
	if order.Price.LessThan(band.Floor) || order.Price.GreaterThan(band.Ceil) {
		return fmt.Errorf("%w: %s not in [%s, %s]",
			ErrPriceOutOfBand, order.Price, band.Floor, band.Ceil)
	}
	return nil
}
