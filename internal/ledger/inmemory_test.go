package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestTxn(userID, kind, ref string, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Reference: ref,
		Status:    StatusSucceeded,
		CreatedAt: time.Now().UTC(),
	}
}

func TestInMemoryStore_CreditAndDebit(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	if err := s.CreateWallet(ctx, userID); err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	bal, err := s.Credit(ctx, newTestTxn(userID, KindDeposit, "REF0000001", decimal.NewFromInt(5000)))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected balance 5000, got %s", bal)
	}

	bal, err = s.Debit(ctx, newTestTxn(userID, KindWithdrawal, "REF0000002", decimal.NewFromInt(1500)), nil)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("expected balance 3500, got %s", bal)
	}
}

func TestInMemoryStore_DebitInsufficientFunds(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()
	s.CreateWallet(ctx, userID)
	SeedBalance(s, userID, decimal.NewFromInt(100))

	_, err := s.Debit(ctx, newTestTxn(userID, KindWithdrawal, "REF0000003", decimal.NewFromInt(101)), nil)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	bal, err := s.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance changed after failed debit: %s", bal)
	}
}

func TestInMemoryStore_DuplicateReference(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()
	s.CreateWallet(ctx, userID)

	if _, err := s.Credit(ctx, newTestTxn(userID, KindDeposit, "SAMEREF001", decimal.NewFromInt(10))); err != nil {
		t.Fatalf("first credit: %v", err)
	}
	_, err := s.Credit(ctx, newTestTxn(userID, KindDeposit, "SAMEREF001", decimal.NewFromInt(10)))
	if !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected duplicate reference, got %v", err)
	}

	bal, _ := s.Balance(ctx, userID)
	if !bal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance changed after rejected credit: %s", bal)
	}
}

func TestInMemoryStore_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()
	s.CreateWallet(ctx, userID)

	// 10 workers each try to take 300 out of 1000: at most 3 can fit.
	SeedBalance(s, userID, decimal.NewFromInt(1000))

	const workers = 10
	amount := decimal.NewFromInt(300)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := fmt.Sprintf("CONCREF%03d", i)
			_, err := s.Debit(ctx, newTestTxn(userID, KindWithdrawal, ref, amount), nil)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 3 {
		t.Fatalf("expected exactly 3 successful debits, got %d", succeeded)
	}
	if insufficient != workers-3 {
		t.Fatalf("expected %d insufficient-funds failures, got %d", workers-3, insufficient)
	}

	bal, _ := s.Balance(ctx, userID)
	if !bal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected final balance 100, got %s", bal)
	}
}

func TestInMemoryStore_InvestmentRecorded(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()
	s.CreateWallet(ctx, userID)
	SeedBalance(s, userID, decimal.NewFromInt(2000))

	inv := Investment{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      decimal.NewFromInt(500),
		Date:        time.Now().UTC(),
		DailyProfit: decimal.RequireFromString("58.35"),
		Status:      StatusActive,
		Reference:   "INVREF0001",
	}
	if _, err := s.Debit(ctx, newTestTxn(userID, KindInvestment, "TXNREF0001", inv.Amount), &inv); err != nil {
		t.Fatalf("invest debit: %v", err)
	}

	invs, err := s.InvestmentsByUser(ctx, userID)
	if err != nil {
		t.Fatalf("investments: %v", err)
	}
	if len(invs) != 1 {
		t.Fatalf("expected 1 investment, got %d", len(invs))
	}
	if invs[0].Reference != "INVREF0001" || invs[0].Status != StatusActive {
		t.Fatalf("unexpected investment row: %+v", invs[0])
	}

	txns, err := s.RecentTransactions(ctx, userID, 5)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 1 || txns[0].Kind != KindInvestment {
		t.Fatalf("expected one investment transaction, got %+v", txns)
	}
}

func TestInMemoryStore_RecentTransactionsNewestFirst(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()
	s.CreateWallet(ctx, userID)

	for i := 0; i < 7; i++ {
		ref := fmt.Sprintf("ORDERED%03d", i)
		if _, err := s.Credit(ctx, newTestTxn(userID, KindDeposit, ref, decimal.NewFromInt(1))); err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
	}

	txns, err := s.RecentTransactions(ctx, userID, 5)
	if err != nil {
		t.Fatalf("recent transactions: %v", err)
	}
	if len(txns) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(txns))
	}
	if txns[0].Reference != "ORDERED006" || txns[4].Reference != "ORDERED002" {
		t.Fatalf("transactions out of order: first=%s last=%s", txns[0].Reference, txns[4].Reference)
	}
}
