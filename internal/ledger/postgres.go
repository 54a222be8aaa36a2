package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists the wallet ledger in PostgreSQL. Balance mutation and
// bookkeeping inserts share one transaction so a failure anywhere leaves no
// partial writes.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateWallet provisions a zero-balance wallet row for the user.
func (s *PostgresStore) CreateWallet(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, 0)
        ON CONFLICT (user_id) DO NOTHING`, uid)
	return err
}

// Balance returns the current balance for the user's wallet.
func (s *PostgresStore) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return decimal.Zero, err
	}
	var raw string
	err = s.db.QueryRow(ctx, `SELECT balance::text FROM wallets WHERE user_id = $1`, uid).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrWalletNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// Credit adds the transaction amount to the wallet and records the transaction.
func (s *PostgresStore) Credit(ctx context.Context, txn Transaction) (decimal.Decimal, error) {
	uid, err := uuid.Parse(txn.UserID)
	if err != nil {
		return decimal.Zero, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var raw string
	err = tx.QueryRow(ctx, `UPDATE wallets SET balance = balance + $1::numeric
        WHERE user_id = $2 RETURNING balance::text`, txn.Amount.StringFixed(2), uid).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrWalletNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// Debit performs the conditional decrement: the balance is reduced only when
// it covers the amount, in the same statement that checks it, so two
// concurrent debits can never both pass against a stale read.
func (s *PostgresStore) Debit(ctx context.Context, txn Transaction, inv *Investment) (decimal.Decimal, error) {
	uid, err := uuid.Parse(txn.UserID)
	if err != nil {
		return decimal.Zero, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var raw string
	err = tx.QueryRow(ctx, `UPDATE wallets SET balance = balance - $1::numeric
        WHERE user_id = $2 AND balance >= $1::numeric
        RETURNING balance::text`, txn.Amount.StringFixed(2), uid).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, uid).Scan(&exists); err != nil {
			return decimal.Zero, err
		}
		if !exists {
			return decimal.Zero, ErrWalletNotFound
		}
		return decimal.Zero, ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Zero, err
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return decimal.Zero, err
	}
	if inv != nil {
		if err := insertInvestment(ctx, tx, *inv); err != nil {
			return decimal.Zero, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// RecentTransactions lists the user's transactions, newest first.
func (s *PostgresStore) RecentTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT id, user_id, kind, amount::text, reference, status, created_at
        FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

// InvestmentsByUser lists the user's investments, newest first by date.
func (s *PostgresStore) InvestmentsByUser(ctx context.Context, userID string) ([]Investment, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT id, user_id, amount::text, date, daily_profit::text, status, reference
        FROM investments WHERE user_id = $1 ORDER BY date DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Investment
	for rows.Next() {
		var (
			inv     Investment
			id      uuid.UUID
			ownerID uuid.UUID
			amount  string
			profit  string
			date    time.Time
		)
		if err := rows.Scan(&id, &ownerID, &amount, &date, &profit, &inv.Status, &inv.Reference); err != nil {
			return nil, err
		}
		inv.ID = id.String()
		inv.UserID = ownerID.String()
		inv.Date = date
		if inv.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if inv.DailyProfit, err = decimal.NewFromString(profit); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn Transaction) error {
	id, err := uuid.Parse(txn.ID)
	if err != nil {
		return err
	}
	uid, err := uuid.Parse(txn.UserID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO transactions (id, user_id, kind, amount, reference, status, created_at)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)`,
		id, uid, txn.Kind, txn.Amount.StringFixed(2), txn.Reference, txn.Status, txn.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrDuplicateReference
	}
	return err
}

func insertInvestment(ctx context.Context, tx pgx.Tx, inv Investment) error {
	id, err := uuid.Parse(inv.ID)
	if err != nil {
		return err
	}
	uid, err := uuid.Parse(inv.UserID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO investments (id, user_id, amount, date, daily_profit, status, reference)
        VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6, $7)`,
		id, uid, inv.Amount.StringFixed(2), inv.Date.UTC(), inv.DailyProfit.StringFixed(2), inv.Status, inv.Reference)
	if isUniqueViolation(err) {
		return ErrDuplicateReference
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var (
		txn       Transaction
		id        uuid.UUID
		ownerID   uuid.UUID
		amount    string
		createdAt time.Time
	)
	if err := row.Scan(&id, &ownerID, &txn.Kind, &amount, &txn.Reference, &txn.Status, &createdAt); err != nil {
		return Transaction{}, err
	}
	txn.ID = id.String()
	txn.UserID = ownerID.String()
	txn.CreatedAt = createdAt.UTC()
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	txn.Amount = parsed
	return txn, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
