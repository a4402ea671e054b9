// Package account holds balance bookkeeping. Accounts are reachable from
// any number of concurrent callers, so every mutation is a single critical
// section; a failed debit has no effect at all.
package account

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("amount must not be negative")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateAccount    = errors.New("duplicate account")
	ErrAccountNotFound     = errors.New("account not found")
)

type Account struct {
	id string

	mu      sync.Mutex
	balance decimal.Decimal
}

func New(id string, initial decimal.Decimal) (*Account, error) {
	if initial.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return &Account{id: id, balance: initial}, nil
}

func (a *Account) ID() string {
	return a.id
}

// Credit increases the balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	a.mu.Lock()
	a.balance = a.balance.Add(amount)
	a.mu.Unlock()
	return nil
}

// Debit decreases the balance. A debit that would drive the balance
// negative fails with no partial effect; two concurrent debits can never
// both succeed if their sum exceeds the balance.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if amount.GreaterThan(a.balance) {
		return ErrInsufficientBalance
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

// Balance is a snapshot; it is only meaningful relative to mutations that
// happened before or after it, not interleaved with one.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Registry maps account IDs to accounts.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewRegistry() *Registry {
	return &Registry{accounts: make(map[string]*Account)}
}

func (r *Registry) Open(id string, initial decimal.Decimal) (*Account, error) {
	acc, err := New(id, initial)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; ok {
		return nil, ErrDuplicateAccount
	}
	r.accounts[id] = acc
	return acc, nil
}

func (r *Registry) Get(id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}
