package exchange

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradekit/exchange-core/pkg/audit"
	"github.com/tradekit/exchange-core/pkg/logging"
	"github.com/tradekit/exchange-core/pkg/orderbook"
)

// TradeNotifier receives every trade after the match is applied. A panic
// in a notifier is recovered and logged; it never rolls back or blocks the
// match.
type TradeNotifier func(trade *orderbook.Trade)

// Config tunes an Exchange. The zero value is usable.
type Config struct {
	// PollInterval bounds how long the worker sleeps between checks of an
	// empty queue, and therefore the shutdown latency.
	PollInterval time.Duration

	// PriceBands adds a per-ticker limit price check on top of the default
	// validation rules.
	PriceBands map[string]PriceBand
}

// submission is one unit of work for the worker loop. Cancels travel
// through the same queue as orders so every book mutation stays on the one
// worker context.
type submission struct {
	order    *orderbook.Order
	cancel   *cancelRequest
	snapshot *snapshotRequest
}

type cancelRequest struct {
	ticker  string
	orderID int64
	done    chan error
}

type snapshotRequest struct {
	ticker string
	done   chan orderbook.BookSnapshot
}

// Exchange validates submissions against the instrument registry, feeds
// them through the submission queue, and runs the single worker that
// drives the matching engine. Construct with New, inject where needed;
// there is no hidden process-wide instance. Start must be called before
// submissions are processed.
type Exchange struct {
	log         *logging.Logger
	engine      *orderbook.Engine
	instruments *instrumentRegistry
	queue       *Queue[submission]
	journal     *audit.Journal
	rules       []Rule

	notifyMu  sync.RWMutex
	notifiers []TradeNotifier

	nextOrderID atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

func New(log *logging.Logger, cfg *Config) *Exchange {
	if cfg == nil {
		cfg = &Config{}
	}
	if log == nil {
		log = logging.Nop()
	}

	rules := defaultRules()
	if len(cfg.PriceBands) > 0 {
		rules = append(rules, NewLimitPriceRule(cfg.PriceBands))
	}

	return &Exchange{
		log:         log.Named("exchange"),
		engine:      orderbook.NewEngine(),
		instruments: newInstrumentRegistry(),
		queue:       NewQueue[submission](cfg.PollInterval),
		journal:     audit.NewJournal(),
		rules:       rules,
		done:        make(chan struct{}),
	}
}

// Start launches the worker loop. Cancelling ctx is equivalent to calling
// Shutdown. Subsequent calls are no-ops.
func (e *Exchange) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		go e.run()
		if ctx != nil {
			go func() {
				select {
				case <-ctx.Done():
					e.Shutdown()
				case <-e.done:
				}
			}()
		}
	})
}

// Shutdown stops accepting submissions, lets the worker drain the queue,
// and returns once the in-flight order (if any) has completed. Idempotent.
func (e *Exchange) Shutdown() {
	e.stopOnce.Do(func() {
		e.closed.Store(true)
		e.queue.Close()
		// if Start never ran there is no worker to close done
		e.startOnce.Do(func() { close(e.done) })
		<-e.done
		e.log.Info("exchange stopped")
	})
}

// RegisterInstrument adds a ticker to the registry. Orders referencing an
// unregistered ticker are rejected at submission.
func (e *Exchange) RegisterInstrument(ticker string, initialPrice decimal.Decimal) error {
	if initialPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if err := e.instruments.register(ticker, initialPrice); err != nil {
		return err
	}
	e.log.Info("instrument registered",
		zap.String("ticker", ticker), zap.String("price", initialPrice.String()))
	return nil
}

// Instrument returns a snapshot of one registered instrument.
func (e *Exchange) Instrument(ticker string) (Instrument, bool) {
	return e.instruments.get(ticker)
}

// PlaceOrderRequest is the submitter's view of a new limit order.
type PlaceOrderRequest struct {
	Ticker   string
	Side     orderbook.Side
	Price    decimal.Decimal
	Quantity int64
}

// PlaceOrder validates the request, enqueues the order and returns
// immediately; acceptance is asynchronous and the fill outcome is observed
// through notifiers and the audit journal. Rejected orders never enter the
// queue or any book.
func (e *Exchange) PlaceOrder(req PlaceOrderRequest) (*orderbook.Order, error) {
	if e.closed.Load() {
		return nil, ErrExchangeClosed
	}
	if !e.instruments.exists(req.Ticker) {
		return nil, ErrUnknownInstrument
	}

	order := &orderbook.Order{
		ID:        e.nextOrderID.Add(1),
		Ticker:    req.Ticker,
		Side:      req.Side,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Remaining: req.Quantity,
		Status:    orderbook.OrderStatusPending,
	}

	for _, rule := range e.rules {
		if err := rule.Check(order); err != nil {
			order.Status = orderbook.OrderStatusRejected
			return nil, err
		}
	}

	e.journal.RecordOrder(order)
	e.queue.Push(submission{order: order})
	return order, nil
}

// CancelOrder asks the worker to remove a resting order and waits for the
// answer. The cancel goes through the submission queue, so it is ordered
// after every order placed before it.
func (e *Exchange) CancelOrder(ticker string, orderID int64) error {
	if e.closed.Load() {
		return ErrExchangeClosed
	}
	if !e.instruments.exists(ticker) {
		return ErrUnknownInstrument
	}

	req := &cancelRequest{ticker: ticker, orderID: orderID, done: make(chan error, 1)}
	e.queue.Push(submission{cancel: req})

	select {
	case err := <-req.done:
		return err
	case <-e.done:
		// the worker may have answered just before exiting
		select {
		case err := <-req.done:
			return err
		default:
			return ErrExchangeClosed
		}
	}
}

// RegisterTradeNotifier adds a callback invoked after each trade.
func (e *Exchange) RegisterTradeNotifier(fn TradeNotifier) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	e.notifiers = append(e.notifiers, fn)
}

// Journal exposes the audit trail of orders, trades and engine failures.
func (e *Exchange) Journal() *audit.Journal {
	return e.journal
}

// Book returns a snapshot of one ticker's resting orders. It reflects
// processed submissions only; queued orders are not visible yet.
func (e *Exchange) Book(ticker string) orderbook.BookSnapshot {
	req := &snapshotRequest{ticker: ticker, done: make(chan orderbook.BookSnapshot, 1)}
	e.queue.Push(submission{snapshot: req})

	select {
	case snap := <-req.done:
		return snap
	case <-e.done:
		select {
		case snap := <-req.done:
			return snap
		default:
			// worker gone, nothing mutates the books anymore
			return e.engine.Snapshot(ticker)
		}
	}
}

// run is the single worker context; all book mutation happens here, one
// submission at a time, in queue order.
func (e *Exchange) run() {
	defer close(e.done)

	var sequence uint64
	for {
		sub, ok := e.queue.Pop()
		if !ok {
			return
		}

		switch {
		case sub.order != nil:
			sequence++
			sub.order.Sequence = sequence
			e.processOrder(sub.order)
		case sub.cancel != nil:
			e.processCancel(sub.cancel)
		case sub.snapshot != nil:
			sub.snapshot.done <- e.engine.Snapshot(sub.snapshot.ticker)
		}
	}
}

func (e *Exchange) processOrder(order *orderbook.Order) {
	trades, err := e.engine.AddOrder(order)

	for _, trade := range trades {
		e.instruments.setLastPrice(trade.Ticker, trade.Price)
		e.journal.RecordTrade(trade)
		e.notify(trade)
	}
	e.journal.RecordOrder(order)

	if err != nil {
		// no synchronous channel back to the submitter at this point;
		// surface through the audit path and keep the worker alive
		e.journal.RecordEngineError(order.Ticker, order.ID, err)
		e.log.Error("matching step failed",
			zap.Int64("order_id", order.ID),
			zap.String("ticker", order.Ticker),
			zap.Error(err))
	}
}

func (e *Exchange) processCancel(req *cancelRequest) {
	order, resting := e.engine.Resting(req.ticker, req.orderID)
	err := e.engine.CancelOrder(req.ticker, req.orderID)
	if err == nil && resting {
		e.journal.RecordOrder(order)
		e.log.Info("order canceled",
			zap.Int64("order_id", req.orderID), zap.String("ticker", req.ticker))
	}
	req.done <- err
}

func (e *Exchange) notify(trade *orderbook.Trade) {
	e.notifyMu.RLock()
	notifiers := make([]TradeNotifier, len(e.notifiers))
	copy(notifiers, e.notifiers)
	e.notifyMu.RUnlock()

	for _, fn := range notifiers {
		e.safeNotify(fn, trade)
	}
}

func (e *Exchange) safeNotify(fn TradeNotifier, trade *orderbook.Trade) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("trade notifier panicked",
				zap.String("trade_id", trade.ID), zap.Any("panic", r))
		}
	}()
	fn(trade)
}
