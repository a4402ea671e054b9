package orderbook

import "github.com/shopspring/decimal"

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "Pending"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusRejected        OrderStatus = "Rejected"
	OrderStatusCanceled        OrderStatus = "Canceled"
)

// Order is the unit the engine works on. ID is assigned once by the
// exchange and never reused; Sequence is the global submission order and is
// the explicit time-priority tie-break between orders at the same price.
//
// Remaining and Status are mutated only while the order is being processed
// from the submission queue. Invariant: 0 <= Remaining <= Quantity, and
// Status == Filled exactly when Remaining == 0.
type Order struct {
	ID        int64
	Ticker    string
	Side      Side
	Price     decimal.Decimal
	Quantity  int64
	Remaining int64
	Status    OrderStatus
	Sequence  uint64
}

// Resting reports whether the order may sit in a book.
func (o *Order) Resting() bool {
	return o.Remaining > 0 &&
		(o.Status == OrderStatusPending || o.Status == OrderStatusPartiallyFilled)
}

// Terminal reports whether the order can no longer change.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusRejected, OrderStatusCanceled:
		return true
	}
	return false
}

func (o *Order) fill(qty int64) {
	o.Remaining -= qty
	if o.Remaining == 0 {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartiallyFilled
	}
}
