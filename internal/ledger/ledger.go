package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount occurs when an operation is requested with a zero or
	// negative amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds occurs when a debit would drive the wallet balance
	// negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateReference indicates a generated reference code collided with
	// an existing row. The operation is retryable with a fresh code.
	ErrDuplicateReference = errors.New("duplicate reference")

	// ErrWalletNotFound indicates no wallet row exists for the user.
	ErrWalletNotFound = errors.New("wallet not found")
)

const (
	// KindDeposit marks a credit into the wallet.
	KindDeposit = "deposit"
	// KindWithdrawal marks a debit out of the wallet.
	KindWithdrawal = "withdrawal"
	// KindInvestment marks a debit that opened a fixed-yield position.
	KindInvestment = "investment"

	// StatusSucceeded is the terminal status of a committed transaction.
	StatusSucceeded = "succeeded"
	// StatusActive is the status of an open investment position.
	StatusActive = "active"
)

// Transaction is one immutable entry in the audit log. Rows are never
// updated or deleted once committed.
type Transaction struct {
	ID        string
	UserID    string
	Kind      string
	Amount    decimal.Decimal
	Reference string
	Status    string
	CreatedAt time.Time
}

// Investment records principal moved out of the wallet into a fixed
// daily-yield position. DailyProfit is computed once at creation and
// never recalculated.
type Investment struct {
	ID          string
	UserID      string
	Amount      decimal.Decimal
	Date        time.Time
	DailyProfit decimal.Decimal
	Status      string
	Reference   string
}

// Store is the storage contract for the wallet ledger. Each mutating call
// commits the balance change together with its bookkeeping rows as a single
// all-or-nothing unit.
type Store interface {
	// CreateWallet provisions a zero-balance wallet for the user.
	CreateWallet(ctx context.Context, userID string) error

	// Balance returns the current wallet balance.
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)

	// Credit adds txn.Amount to the wallet and appends the transaction,
	// returning the new balance.
	Credit(ctx context.Context, txn Transaction) (decimal.Decimal, error)

	// Debit subtracts txn.Amount from the wallet only if the balance covers
	// it, appending the transaction and, when inv is non-nil, the investment
	// row in the same unit. A balance that cannot cover the amount yields
	// ErrInsufficientFunds with no writes applied.
	Debit(ctx context.Context, txn Transaction, inv *Investment) (decimal.Decimal, error)

	// RecentTransactions lists the user's transactions, newest first.
	RecentTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error)

	// InvestmentsByUser lists the user's investments, newest first.
	InvestmentsByUser(ctx context.Context, userID string) ([]Investment, error)
}
