package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

type inMemoryStore struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	txns     map[string][]Transaction
	invs     map[string][]Investment
	txnRefs  map[string]struct{}
	invRefs  map[string]struct{}
}

// NewInMemory creates a concurrency-safe in-memory ledger store. The mutex is
// held across the read-check-write span of Debit, giving the same serial
// semantics as the conditional update in the Postgres store.
func NewInMemory() Store {
	return &inMemoryStore{
		balances: make(map[string]decimal.Decimal),
		txns:     make(map[string][]Transaction),
		invs:     make(map[string][]Investment),
		txnRefs:  make(map[string]struct{}),
		invRefs:  make(map[string]struct{}),
	}
}

func (s *inMemoryStore) CreateWallet(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.balances[userID]; !exists {
		s.balances[userID] = decimal.Zero
	}
	return nil
}

func (s *inMemoryStore) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, exists := s.balances[userID]
	if !exists {
		return decimal.Zero, ErrWalletNotFound
	}
	return balance, nil
}

func (s *inMemoryStore) Credit(_ context.Context, txn Transaction) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, exists := s.balances[txn.UserID]
	if !exists {
		return decimal.Zero, ErrWalletNotFound
	}
	if _, dup := s.txnRefs[txn.Reference]; dup {
		return decimal.Zero, ErrDuplicateReference
	}

	balance = balance.Add(txn.Amount)
	s.balances[txn.UserID] = balance
	s.txnRefs[txn.Reference] = struct{}{}
	s.txns[txn.UserID] = append(s.txns[txn.UserID], txn)
	return balance, nil
}

func (s *inMemoryStore) Debit(_ context.Context, txn Transaction, inv *Investment) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, exists := s.balances[txn.UserID]
	if !exists {
		return decimal.Zero, ErrWalletNotFound
	}
	if balance.LessThan(txn.Amount) {
		return decimal.Zero, ErrInsufficientFunds
	}
	if _, dup := s.txnRefs[txn.Reference]; dup {
		return decimal.Zero, ErrDuplicateReference
	}
	if inv != nil {
		if _, dup := s.invRefs[inv.Reference]; dup {
			return decimal.Zero, ErrDuplicateReference
		}
	}

	balance = balance.Sub(txn.Amount)
	s.balances[txn.UserID] = balance
	s.txnRefs[txn.Reference] = struct{}{}
	s.txns[txn.UserID] = append(s.txns[txn.UserID], txn)
	if inv != nil {
		s.invRefs[inv.Reference] = struct{}{}
		s.invs[inv.UserID] = append(s.invs[inv.UserID], *inv)
	}
	return balance, nil
}

func (s *inMemoryStore) RecentTransactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.txns[userID]
	var out []Transaction
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *inMemoryStore) InvestmentsByUser(_ context.Context, userID string) ([]Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.invs[userID]
	out := make([]Investment, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
