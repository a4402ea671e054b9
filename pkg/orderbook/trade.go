package orderbook

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is one matching step between a buy and a sell order. Price is the
// limit price of the order that was resting in the book when the match
// happened.
type Trade struct {
	ID          string
	Ticker      string
	BuyOrderID  int64
	SellOrderID int64
	Quantity    int64
	Price       decimal.Decimal
	ExecutedAt  time.Time
}

func newTrade(ticker string, buy, sell *Order, qty int64, price decimal.Decimal) *Trade {
	return &Trade{
		ID:          uuid.New().String(),
		Ticker:      ticker,
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Quantity:    qty,
		Price:       price,
		ExecutedAt:  time.Now(),
	}
}
