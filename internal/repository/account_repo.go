package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sweetshop/internal/model"
)

const accountColumns = `id, email, password_hash, role, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts a new account. A duplicate email yields model.ErrEmailTaken.
func (r *AccountRepository) Create(ctx context.Context, email string, passwordHash string, role model.Role) (model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING `+accountColumns,
		strings.TrimSpace(email), passwordHash, string(role))

	account, err := scanAccount(row)
	if isUniqueViolation(err) {
		return model.Account{}, fmt.Errorf("create account %q: %w", email, model.ErrEmailTaken)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, strings.TrimSpace(email))

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by email: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by id: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	var role string
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.Account{}, err
	}
	a.Role = model.Role(role)
	return a, nil
}
