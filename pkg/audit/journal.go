// Package audit keeps an in-memory journal of order transitions, trades
// and engine failures. It is the surface an external persistence component
// reads from; the journal itself holds no durable storage.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradekit/exchange-core/pkg/orderbook"
)

// OrderEvent is a point-in-time snapshot of one order's state.
type OrderEvent struct {
	EventID   string
	OrderID   int64
	Ticker    string
	Side      orderbook.Side
	Price     decimal.Decimal
	Remaining int64
	Status    orderbook.OrderStatus
	At        time.Time
}

type TradeEvent struct {
	Trade orderbook.Trade
	At    time.Time
}

// EngineError records a matching-step failure. Once an order is accepted
// there is no synchronous error channel back to the submitter, so this is
// where such failures surface.
type EngineError struct {
	Ticker  string
	OrderID int64
	Err     error
	At      time.Time
}

type Journal struct {
	mu     sync.RWMutex
	orders map[int64][]OrderEvent
	trades map[string][]TradeEvent
	errors []EngineError
}

func NewJournal() *Journal {
	return &Journal{
		orders: make(map[int64][]OrderEvent),
		trades: make(map[string][]TradeEvent),
	}
}

func (j *Journal) RecordOrder(order *orderbook.Order) {
	ev := OrderEvent{
		EventID:   uuid.New().String(),
		OrderID:   order.ID,
		Ticker:    order.Ticker,
		Side:      order.Side,
		Price:     order.Price,
		Remaining: order.Remaining,
		Status:    order.Status,
		At:        time.Now(),
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.orders[ev.OrderID] = append(j.orders[ev.OrderID], ev)
}

func (j *Journal) RecordTrade(trade *orderbook.Trade) {
	ev := TradeEvent{Trade: *trade, At: time.Now()}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades[trade.Ticker] = append(j.trades[trade.Ticker], ev)
}

func (j *Journal) RecordEngineError(ticker string, orderID int64, err error) {
	ev := EngineError{Ticker: ticker, OrderID: orderID, Err: err, At: time.Now()}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, ev)
}

// OrderHistory returns the recorded transitions of one order, oldest first.
func (j *Journal) OrderHistory(orderID int64) []OrderEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	history := make([]OrderEvent, len(j.orders[orderID]))
	copy(history, j.orders[orderID])
	return history
}

// Trades returns the trades recorded for one ticker, oldest first.
func (j *Journal) Trades(ticker string) []TradeEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	trades := make([]TradeEvent, len(j.trades[ticker]))
	copy(trades, j.trades[ticker])
	return trades
}

func (j *Journal) EngineErrors() []EngineError {
	j.mu.RLock()
	defer j.mu.RUnlock()

	errs := make([]EngineError, len(j.errors))
	copy(errs, j.errors)
	return errs
}
