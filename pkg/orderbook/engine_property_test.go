package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// Matched quantity can never exceed what either side submitted, and the
// book must never be left crossed.
func TestProperty_QuantityConservationAndUncrossedBook(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine()
		f := &orderFactory{}

		n := rapid.IntRange(1, 60).Draw(t, "n")
		var submittedBuy, submittedSell, traded int64

		for i := 0; i < n; i++ {
			side := BUY
			if rapid.Bool().Draw(t, "isSell") {
				side = SELL
			}
			price := float64(rapid.Int64Range(90, 110).Draw(t, "price"))
			qty := rapid.Int64Range(1, 50).Draw(t, "qty")

			if side == BUY {
				submittedBuy += qty
			} else {
				submittedSell += qty
			}

			trades, err := e.AddOrder(f.limit(side, price, qty))
			if err != nil {
				t.Fatalf("AddOrder: %v", err)
			}
			for _, trade := range trades {
				traded += trade.Quantity
			}
		}

		if traded > submittedBuy {
			t.Fatalf("traded %d exceeds submitted buy qty %d", traded, submittedBuy)
		}
		if traded > submittedSell {
			t.Fatalf("traded %d exceeds submitted sell qty %d", traded, submittedSell)
		}

		snap := e.Snapshot("ABC")
		if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
			bestBid, bestAsk := snap.Bids[0].Price, snap.Asks[0].Price
			if bestBid.GreaterThanOrEqual(bestAsk) {
				t.Fatalf("book is crossed: best bid %s >= best ask %s", bestBid, bestAsk)
			}
		}

		for _, o := range append(snap.Bids, snap.Asks...) {
			if o.Remaining <= 0 || o.Remaining > o.Quantity {
				t.Fatalf("resting order %d has remaining %d of %d", o.ID, o.Remaining, o.Quantity)
			}
			if o.Status != OrderStatusPending && o.Status != OrderStatusPartiallyFilled {
				t.Fatalf("resting order %d has status %s", o.ID, o.Status)
			}
		}
	})
}

// Among equal prices the earlier submission fills first, regardless of
// activity on other tickers in between.
func TestProperty_TimePriorityAtEqualPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine()
		f := &orderFactory{}

		price := float64(rapid.Int64Range(90, 110).Draw(t, "price"))
		qty := rapid.Int64Range(1, 20).Draw(t, "qty")

		first := f.limit(BUY, price, qty)
		if _, err := e.AddOrder(first); err != nil {
			t.Fatalf("AddOrder: %v", err)
		}

		// noise on an independent ticker between the two equal-priced buys
		noise := rapid.IntRange(0, 5).Draw(t, "noise")
		for i := 0; i < noise; i++ {
			o := f.limit(SELL, price, qty)
			o.Ticker = "OTHER"
			if _, err := e.AddOrder(o); err != nil {
				t.Fatalf("AddOrder: %v", err)
			}
		}

		second := f.limit(BUY, price, qty)
		if _, err := e.AddOrder(second); err != nil {
			t.Fatalf("AddOrder: %v", err)
		}

		sell := f.limit(SELL, price, qty)
		trades, err := e.AddOrder(sell)
		if err != nil {
			t.Fatalf("AddOrder: %v", err)
		}

		if len(trades) != 1 {
			t.Fatalf("expected 1 trade, got %d", len(trades))
		}
		if trades[0].BuyOrderID != first.ID {
			t.Fatalf("expected first buy %d to fill, got %d", first.ID, trades[0].BuyOrderID)
		}
	})
}

// A match happens exactly when the incoming price crosses the resting one.
func TestProperty_PriceCompatibilityDeterminesMatching(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine()
		f := &orderFactory{}

		askPrice := rapid.Int64Range(1, 10_000).Draw(t, "askPrice")
		bidPrice := rapid.Int64Range(1, 10_000).Draw(t, "bidPrice")
		qty := rapid.Int64Range(1, 100).Draw(t, "qty")

		sell := f.limit(SELL, float64(askPrice), qty)
		if _, err := e.AddOrder(sell); err != nil {
			t.Fatalf("AddOrder: %v", err)
		}

		buy := f.limit(BUY, float64(bidPrice), qty)
		trades, err := e.AddOrder(buy)
		if err != nil {
			t.Fatalf("AddOrder: %v", err)
		}

		shouldMatch := bidPrice >= askPrice
		if shouldMatch && len(trades) == 0 {
			t.Fatalf("expected trade with bid %d >= ask %d", bidPrice, askPrice)
		}
		if !shouldMatch && len(trades) != 0 {
			t.Fatalf("expected no trade with bid %d < ask %d, got %d", bidPrice, askPrice, len(trades))
		}

		if shouldMatch {
			// resting ask sets the execution price
			if !trades[0].Price.Equal(decimal.NewFromInt(askPrice)) {
				t.Fatalf("expected execution at resting price %d, got %s", askPrice, trades[0].Price)
			}
		}
	})
}
