package providers

import (
	"context"
	"errors"
	"fmt"

	"surveyhub/internal/domains"
	"surveyhub/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthProvider struct {
	db *pgxpool.Pool
}

func NewAuthProvider(db *pgxpool.Pool) *AuthProvider {
	return &AuthProvider{
		db: db,
	}
}

func (p *AuthProvider) SaveAccount(ctx context.Context, passHash string, account domains.AccountCreate) error {
	const query = `
		INSERT INTO accounts (full_name, email, passhash, created_at)
		VALUES ($1, $2, $3, NOW())`

	if _, err := p.db.Exec(ctx, query, account.FullName, account.Email, passHash); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrUserExist
		}
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (p *AuthProvider) GetAccountByEmail(ctx context.Context, email string) (domains.Account, error) {
	const query = `
		SELECT id, full_name, email, passhash, is_admin, created_at
		FROM accounts
		WHERE email = $1`

	return p.getAccount(ctx, query, email)
}

func (p *AuthProvider) GetAccountByID(ctx context.Context, id int64) (domains.Account, error) {
	const query = `
		SELECT id, full_name, email, passhash, is_admin, created_at
		FROM accounts
		WHERE id = $1`

	return p.getAccount(ctx, query, id)
}

func (p *AuthProvider) getAccount(ctx context.Context, query string, arg interface{}) (domains.Account, error) {
	var account domains.Account
	if err := p.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.FullName,
		&account.Email,
		&account.Password,
		&account.IsAdmin,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Account{}, fmt.Errorf("get account: %w", storage.ErrUserNotFound)
		}
		return domains.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}
