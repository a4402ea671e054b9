package orderbook

import (
	"container/heap"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
)

// book holds the resting orders of one ticker, split by side. Each side is
// a heap of price levels plus a FIFO deque per level, so best price is O(1)
// and time priority inside a level is the deque order.
//
// The book carries no lock on purpose: it is only ever touched from the
// single worker context that drains the submission queue.
type book struct {
	ticker string

	buys  map[string]*deque.Deque[*Order]
	sells map[string]*deque.Deque[*Order]

	buyHeap  *PriceHeap
	sellHeap *PriceHeap

	byID map[int64]*Order
}

func newBook(ticker string) *book {
	buyHeap := NewPriceHeap(func(i, j decimal.Decimal) bool { return i.GreaterThan(j) }) // Max-heap
	sellHeap := NewPriceHeap(func(i, j decimal.Decimal) bool { return i.LessThan(j) })   // Min-heap

	return &book{
		ticker:   ticker,
		buys:     make(map[string]*deque.Deque[*Order]),
		sells:    make(map[string]*deque.Deque[*Order]),
		buyHeap:  buyHeap,
		sellHeap: sellHeap,
		byID:     make(map[int64]*Order),
	}
}

func levelKey(price decimal.Decimal) string {
	return price.String()
}

// match runs the incoming order against the counter side until the best
// counter price no longer crosses or the order is filled. Each step trades
// min(remaining, remaining) at the resting order's limit price.
func (b *book) match(order *Order) ([]*Trade, error) {
	var trades []*Trade

	counterBook, counterHeap := b.sells, b.sellHeap
	crosses := func(in, rest decimal.Decimal) bool { return in.GreaterThanOrEqual(rest) }
	if order.Side == SELL {
		counterBook, counterHeap = b.buys, b.buyHeap
		crosses = func(in, rest decimal.Decimal) bool { return in.LessThanOrEqual(rest) }
	}

	for order.Remaining > 0 {
		bestPrice, ok := counterHeap.Peek()
		if !ok || !crosses(order.Price, bestPrice) {
			break
		}

		key := levelKey(bestPrice)
		q := counterBook[key]
		if q == nil || q.Len() == 0 {
			// level emptied by a cancel, clean up lazily
			heap.Pop(counterHeap)
			delete(counterBook, key)
			continue
		}

		rest := q.Front()
		if rest.Remaining <= 0 {
			return trades, ErrBookCorrupted
		}

		qty := min(order.Remaining, rest.Remaining)
		order.fill(qty)
		rest.fill(qty)
		if order.Remaining < 0 || rest.Remaining < 0 {
			return trades, ErrBookCorrupted
		}

		if rest.Remaining == 0 {
			q.PopFront()
			delete(b.byID, rest.ID)
			if q.Len() == 0 {
				heap.Pop(counterHeap)
				delete(counterBook, key)
			}
		}

		buy, sell := order, rest
		if order.Side == SELL {
			buy, sell = rest, order
		}
		trades = append(trades, newTrade(b.ticker, buy, sell, qty, rest.Price))
	}

	return trades, nil
}

// insert rests the order at its price level. Arrivals come in increasing
// Sequence, so appending keeps the level ordered by (price, sequence); an
// out-of-sequence arrival means the caller broke serialization.
func (b *book) insert(order *Order) error {
	if !order.Resting() {
		return ErrBookCorrupted
	}

	side, h := b.buys, b.buyHeap
	if order.Side == SELL {
		side, h = b.sells, b.sellHeap
	}

	key := levelKey(order.Price)
	if side[key] == nil {
		side[key] = &deque.Deque[*Order]{}
	}
	q := side[key]
	if q.Len() > 0 && q.Back().Sequence >= order.Sequence {
		return ErrBookCorrupted
	}
	heap.Push(h, order.Price)
	q.PushBack(order)
	b.byID[order.ID] = order
	return nil
}

// cancel removes a resting order. Emptied price levels are cleaned up
// lazily by match.
func (b *book) cancel(orderID int64) error {
	order, ok := b.byID[orderID]
	if !ok {
		return ErrOrderNotFound
	}

	side := b.buys
	if order.Side == SELL {
		side = b.sells
	}
	q := side[levelKey(order.Price)]
	if q != nil {
		if i := q.Index(func(o *Order) bool { return o.ID == orderID }); i >= 0 {
			q.Remove(i)
		}
	}

	delete(b.byID, orderID)
	order.Status = OrderStatusCanceled
	return nil
}

func (b *book) resting(orderID int64) (*Order, bool) {
	o, ok := b.byID[orderID]
	return o, ok
}
