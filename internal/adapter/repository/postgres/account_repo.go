package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository over the
// cuentas table.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, codigo, nombre, tipo, permite_saldo_negativo, activa, created_at, updated_at`

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO cuentas (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Code,
		account.Name,
		string(account.Type),
		account.AllowNegativeBalance,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return uniqueViolation(err, domain.ErrDuplicateAccountCode)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM cuentas WHERE id = $1`

	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByCode retrieves an account by its chart-of-accounts code.
func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM cuentas WHERE codigo = $1`

	return scanAccount(r.pool.QueryRow(ctx, query, code))
}

// GetByIDsForUpdate loads accounts inside a database transaction with
// FOR UPDATE row locks. ORDER BY keeps the lock acquisition order
// deterministic, so concurrent postings touching the same accounts
// serialize instead of deadlocking.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + accountColumns + ` FROM cuentas WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := pgxTx(tx).PgxTx().Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// Update rewrites the mutable account fields.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE cuentas
		SET codigo = $2, nombre = $3, tipo = $4, permite_saldo_negativo = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Code,
		account.Name,
		string(account.Type),
		account.AllowNegativeBalance,
		account.UpdatedAt,
	)
	if err != nil {
		return uniqueViolation(err, domain.ErrDuplicateAccountCode)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// SetActive flips the activa flag.
func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	query := `UPDATE cuentas SET activa = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, active, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Delete removes an account. The caller checks for referencing
// entries first; the foreign key backstops it.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cuentas WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List retrieves accounts ordered by code.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM cuentas ORDER BY codigo LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// ListActive retrieves all active accounts.
func (r *AccountRepository) ListActive(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM cuentas WHERE activa ORDER BY codigo`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// ListByType retrieves accounts of one type.
func (r *AccountRepository) ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM cuentas WHERE tipo = $1 ORDER BY codigo`

	rows, err := r.pool.Query(ctx, query, string(accountType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// SearchByName retrieves accounts whose name contains the fragment,
// case-insensitively.
func (r *AccountRepository) SearchByName(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM cuentas WHERE nombre ILIKE $1`

	if activeOnly {
		query += ` AND activa`
	}

	query += ` ORDER BY codigo`

	rows, err := r.pool.Query(ctx, query, "%"+escapeLike(name)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// HasEntries reports whether any journal entry references the account.
func (r *AccountRepository) HasEntries(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM partidas WHERE cuenta_id = $1)`, id,
	).Scan(&exists)

	return exists, err
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		tipo    string
	)

	err := row.Scan(
		&account.ID,
		&account.Code,
		&account.Name,
		&tipo,
		&account.AllowNegativeBalance,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	account.Type = domain.AccountType(tipo)

	return &account, nil
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
