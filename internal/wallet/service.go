package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anamboary/anamboary/internal/ledger"
	"github.com/anamboary/anamboary/internal/notification"
)

// dailyProfitRate is the fixed daily yield applied at investment creation.
// The profit figure is computed once and stored; there is no accrual or
// payout process.
var dailyProfitRate = decimal.RequireFromString("0.1167")

const (
	dashboardTransactionLimit = 5

	// referenceAttempts bounds retries when a generated code collides.
	referenceAttempts = 3
)

// Service is the sole authority for mutating a user's balance. Every
// operation commits the balance change and its bookkeeping rows atomically
// through the ledger store.
type Service struct {
	store  ledger.Store
	events *notification.Dispatcher
}

// NewService builds a wallet service instance. events may be nil.
func NewService(store ledger.Store, events *notification.Dispatcher) *Service {
	return &Service{store: store, events: events}
}

// OperationResult reports the outcome of a deposit or withdrawal.
type OperationResult struct {
	Balance     decimal.Decimal
	Transaction ledger.Transaction
}

// InvestResult reports the outcome of an investment operation.
type InvestResult struct {
	Balance     decimal.Decimal
	Transaction ledger.Transaction
	Investment  ledger.Investment
}

// Overview is the dashboard read model.
type Overview struct {
	Balance      decimal.Decimal
	Transactions []ledger.Transaction
	Investments  []ledger.Investment
}

// Deposit credits the wallet. Amounts must be strictly positive; there is no
// upper bound.
func (s *Service) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (OperationResult, error) {
	if !amount.IsPositive() {
		return OperationResult{}, ledger.ErrInvalidAmount
	}

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		txn, err := newTransaction(userID, ledger.KindDeposit, amount)
		if err != nil {
			return OperationResult{}, err
		}
		balance, err := s.store.Credit(ctx, txn)
		if errors.Is(err, ledger.ErrDuplicateReference) {
			continue
		}
		if err != nil {
			return OperationResult{}, err
		}
		s.confirm(txn)
		return OperationResult{Balance: balance, Transaction: txn}, nil
	}
	return OperationResult{}, ledger.ErrDuplicateReference
}

// Withdraw debits the wallet if the balance covers the amount. The
// admissibility check and the decrement happen in one atomic store operation,
// so concurrent withdrawals can never overdraw.
func (s *Service) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (OperationResult, error) {
	if !amount.IsPositive() {
		return OperationResult{}, ledger.ErrInvalidAmount
	}

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		txn, err := newTransaction(userID, ledger.KindWithdrawal, amount)
		if err != nil {
			return OperationResult{}, err
		}
		balance, err := s.store.Debit(ctx, txn, nil)
		if errors.Is(err, ledger.ErrDuplicateReference) {
			continue
		}
		if err != nil {
			return OperationResult{}, err
		}
		s.confirm(txn)
		return OperationResult{Balance: balance, Transaction: txn}, nil
	}
	return OperationResult{}, ledger.ErrDuplicateReference
}

// Invest moves principal out of the wallet into a fixed-yield position. The
// daily profit is amount x 0.1167 rounded to two decimal places, computed
// once here. The investment row and its paired transaction carry
// independently generated references and commit with the debit as one unit.
func (s *Service) Invest(ctx context.Context, userID string, amount decimal.Decimal) (InvestResult, error) {
	if !amount.IsPositive() {
		return InvestResult{}, ledger.ErrInvalidAmount
	}

	profit := amount.Mul(dailyProfitRate).Round(2)

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		txn, err := newTransaction(userID, ledger.KindInvestment, amount)
		if err != nil {
			return InvestResult{}, err
		}
		invRef, err := ledger.NewReference()
		if err != nil {
			return InvestResult{}, err
		}
		inv := ledger.Investment{
			ID:          uuid.NewString(),
			UserID:      userID,
			Amount:      amount,
			Date:        time.Now().UTC(),
			DailyProfit: profit,
			Status:      ledger.StatusActive,
			Reference:   invRef,
		}

		balance, err := s.store.Debit(ctx, txn, &inv)
		if errors.Is(err, ledger.ErrDuplicateReference) {
			continue
		}
		if err != nil {
			return InvestResult{}, err
		}
		s.confirm(txn)
		return InvestResult{Balance: balance, Transaction: txn, Investment: inv}, nil
	}
	return InvestResult{}, ledger.ErrDuplicateReference
}

// Dashboard returns the balance, the five most recent transactions and every
// investment, newest first.
func (s *Service) Dashboard(ctx context.Context, userID string) (Overview, error) {
	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	transactions, err := s.store.RecentTransactions(ctx, userID, dashboardTransactionLimit)
	if err != nil {
		return Overview{}, err
	}
	investments, err := s.store.InvestmentsByUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Balance: balance, Transactions: transactions, Investments: investments}, nil
}

func newTransaction(userID, kind string, amount decimal.Decimal) (ledger.Transaction, error) {
	ref, err := ledger.NewReference()
	if err != nil {
		return ledger.Transaction{}, err
	}
	return ledger.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Reference: ref,
		Status:    ledger.StatusSucceeded,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// confirm enqueues a post-commit confirmation. Delivery is best-effort and
// never affects the outcome of the ledger operation.
func (s *Service) confirm(txn ledger.Transaction) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(notification.Message{
		Kind:        notification.KindTransaction,
		Destination: txn.UserID,
		Body:        fmt.Sprintf("%s of %s confirmed (ref %s)", txn.Kind, txn.Amount.StringFixed(2), txn.Reference),
	})
}
