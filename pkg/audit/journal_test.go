package audit

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradekit/exchange-core/pkg/orderbook"
)

func TestJournal_OrderHistory(t *testing.T) {
	j := NewJournal()

	order := &orderbook.Order{
		ID:        1,
		Ticker:    "APL",
		Side:      orderbook.BUY,
		Price:     decimal.NewFromInt(100),
		Quantity:  10,
		Remaining: 10,
		Status:    orderbook.OrderStatusPending,
	}
	j.RecordOrder(order)

	order.Remaining = 0
	order.Status = orderbook.OrderStatusFilled
	j.RecordOrder(order)

	history := j.OrderHistory(1)
	require.Len(t, history, 2)
	assert.Equal(t, orderbook.OrderStatusPending, history[0].Status)
	assert.Equal(t, orderbook.OrderStatusFilled, history[1].Status)
	assert.NotEqual(t, history[0].EventID, history[1].EventID)

	assert.Empty(t, j.OrderHistory(42))
}

func TestJournal_Trades(t *testing.T) {
	j := NewJournal()

	j.RecordTrade(&orderbook.Trade{
		ID: "t1", Ticker: "APL", BuyOrderID: 1, SellOrderID: 2,
		Quantity: 10, Price: decimal.NewFromInt(100),
	})

	require.Len(t, j.Trades("APL"), 1)
	assert.Empty(t, j.Trades("GGL"))
}

func TestJournal_EngineErrors(t *testing.T) {
	j := NewJournal()
	assert.Empty(t, j.EngineErrors())

	cause := errors.New("boom")
	j.RecordEngineError("APL", 7, cause)

	errs := j.EngineErrors()
	require.Len(t, errs, 1)
	assert.Equal(t, int64(7), errs[0].OrderID)
	assert.ErrorIs(t, errs[0].Err, cause)
}
