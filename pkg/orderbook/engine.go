package orderbook

import (
	"sort"
)

// Engine owns the per-ticker books and the matching algorithm. It is
// designed to be called from exactly one execution context at a time and
// performs no internal locking; the exchange's worker loop provides the
// serialization.
type Engine struct {
	books map[string]*book
}

func NewEngine() *Engine {
	return &Engine{
		books: make(map[string]*book),
	}
}

// AddOrder matches the incoming order against the counter side of its
// ticker's book and rests whatever is left. It returns one Trade per
// matching step, in execution order.
//
// Self-matching is not filtered: an account may trade with itself if the
// caller's validation layer allows both orders through.
func (e *Engine) AddOrder(order *Order) ([]*Trade, error) {
	if order == nil || order.Remaining <= 0 || order.Terminal() {
		return nil, ErrBookCorrupted
	}

	b := e.getOrCreateBook(order.Ticker)

	trades, err := b.match(order)
	if err != nil {
		return trades, err
	}

	if order.Resting() {
		if err := b.insert(order); err != nil {
			return trades, err
		}
	}

	return trades, nil
}

// CancelOrder removes a resting order from its book. Orders already filled
// or never resting report ErrOrderNotFound.
func (e *Engine) CancelOrder(ticker string, orderID int64) error {
	b, ok := e.books[ticker]
	if !ok {
		return ErrOrderNotFound
	}
	return b.cancel(orderID)
}

// Resting looks up a resting order by ID.
func (e *Engine) Resting(ticker string, orderID int64) (*Order, bool) {
	b, ok := e.books[ticker]
	if !ok {
		return nil, false
	}
	return b.resting(orderID)
}

// BookSnapshot is a copy of one ticker's resting orders, bids best-first
// (price descending) and asks best-first (price ascending), sequence
// ascending inside a level.
type BookSnapshot struct {
	Ticker string
	Bids   []Order
	Asks   []Order
}

func (e *Engine) Snapshot(ticker string) BookSnapshot {
	snap := BookSnapshot{Ticker: ticker}
	b, ok := e.books[ticker]
	if !ok {
		return snap
	}

	for _, o := range b.byID {
		if o.Side == BUY {
			snap.Bids = append(snap.Bids, *o)
		} else {
			snap.Asks = append(snap.Asks, *o)
		}
	}

	sort.Slice(snap.Bids, func(i, j int) bool {
		if c := snap.Bids[i].Price.Cmp(snap.Bids[j].Price); c != 0 {
			return c > 0
		}
		return snap.Bids[i].Sequence < snap.Bids[j].Sequence
	})
	sort.Slice(snap.Asks, func(i, j int) bool {
		if c := snap.Asks[i].Price.Cmp(snap.Asks[j].Price); c != 0 {
			return c < 0
		}
		return snap.Asks[i].Sequence < snap.Asks[j].Sequence
	})

	return snap
}

func (e *Engine) getOrCreateBook(ticker string) *book {
	if b, ok := e.books[ticker]; ok {
		return b
	}
	b := newBook(ticker)
	e.books[ticker] = b
	return b
}
