package orderbook

import "errors"

var (
	// ErrBookCorrupted means an invariant violation was detected during a
	// matching step. The step is aborted and the books are left in their
	// last consistent state.
	ErrBookCorrupted = errors.New("order book corrupted")

	ErrOrderNotFound = errors.New("order not found")
)
