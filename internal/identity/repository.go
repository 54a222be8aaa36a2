package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users and their login audit trail.
type Repository interface {
	// Create stores the user and provisions their zero-balance wallet in one
	// unit of work.
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	// FindByIdentifier matches the identifier against phone or email.
	FindByIdentifier(ctx context.Context, identifier string) (User, error)
	AppendLoginEvent(ctx context.Context, event LoginEvent) error
	ListUsers(ctx context.Context) ([]User, error)
	RecentLogins(ctx context.Context, limit int) ([]LoginEvent, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user and their wallet row in a single transaction, so a
// user never exists without a wallet.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	_, err = tx.Exec(ctx, `INSERT INTO users (id, full_name, phone, email, password_hash, created_at)
        VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		userID, user.FullName, user.Phone, user.Email, user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		return mapDuplicateKey(err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, 0)`, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, full_name, phone, COALESCE(email, ''), password_hash, created_at
        FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByIdentifier fetches a user whose phone or email equals the identifier.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, identifier string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, full_name, phone, COALESCE(email, ''), password_hash, created_at
        FROM users WHERE phone = $1 OR email = $1`, identifier)
	return scanUser(row)
}

// AppendLoginEvent records one successful authentication.
func (r *PostgresRepository) AppendLoginEvent(ctx context.Context, event LoginEvent) error {
	eventID, err := uuid.Parse(event.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO login_events (id, user_id, at, remote_addr)
        VALUES ($1, $2, $3, $4)`, eventID, userID, event.At.UTC(), event.RemoteAddr)
	return err
}

// ListUsers returns all users, newest first.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, full_name, phone, COALESCE(email, ''), password_hash, created_at
        FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// RecentLogins returns the most recent login events.
func (r *PostgresRepository) RecentLogins(ctx context.Context, limit int) ([]LoginEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, at, remote_addr
        FROM login_events ORDER BY at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoginEvent
	for rows.Next() {
		var (
			event  LoginEvent
			id     uuid.UUID
			userID uuid.UUID
			at     time.Time
		)
		if err := rows.Scan(&id, &userID, &at, &event.RemoteAddr); err != nil {
			return nil, err
		}
		event.ID = id.String()
		event.UserID = userID.String()
		event.At = at.UTC()
		out = append(out, event)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		user      User
		id        uuid.UUID
		createdAt time.Time
	)
	err := row.Scan(&id, &user.FullName, &user.Phone, &user.Email, &user.PasswordHash, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func mapDuplicateKey(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicatePhone
	}
	return err
}
