package exchange

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Instrument is a tradable ticker and its last traded price.
type Instrument struct {
	Ticker          string
	LastTradedPrice decimal.Decimal
}

// instrumentRegistry is read by external callers while the worker updates
// last traded prices, so it carries its own lock.
type instrumentRegistry struct {
	mu          sync.RWMutex
	instruments map[string]*Instrument
}

func newInstrumentRegistry() *instrumentRegistry {
	return &instrumentRegistry{
		instruments: make(map[string]*Instrument),
	}
}

func (r *instrumentRegistry) register(ticker string, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instruments[ticker]; ok {
		return ErrDuplicateInstrument
	}
	r.instruments[ticker] = &Instrument{Ticker: ticker, LastTradedPrice: price}
	return nil
}

func (r *instrumentRegistry) exists(ticker string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.instruments[ticker]
	return ok
}

func (r *instrumentRegistry) get(ticker string) (Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instruments[ticker]
	if !ok {
		return Instrument{}, false
	}
	return *inst, true
}

func (r *instrumentRegistry) setLastPrice(ticker string, price decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instruments[ticker]; ok {
		inst.LastTradedPrice = price
	}
}
