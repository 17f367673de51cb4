package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository. Balances
// are never stored: every query projects SUM(DEBE) - SUM(HABER) over
// entries of ACTIVE transactions.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

const signedAmount = `CASE WHEN p.lado = 'DEBE' THEN p.valor ELSE -p.valor END`

// ListBalances projects the current balance of every account.
func (r *BalanceRepository) ListBalances(ctx context.Context) ([]*domain.AccountBalance, error) {
	query := `
		SELECT c.id, c.codigo, c.nombre, c.tipo, c.permite_saldo_negativo, c.activa, c.created_at, c.updated_at,
		       COALESCE(SUM(CASE WHEN t.estado = 'ACTIVE' THEN ` + signedAmount + ` ELSE 0 END), 0) AS saldo
		FROM cuentas c
		LEFT JOIN partidas p ON p.cuenta_id = c.id
		LEFT JOIN transacciones t ON t.id = p.transaccion_id
		GROUP BY c.id
		ORDER BY c.codigo
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.AccountBalance

	for rows.Next() {
		var (
			account domain.Account
			tipo    string
			saldo   pgtype.Numeric
		)

		err := rows.Scan(
			&account.ID,
			&account.Code,
			&account.Name,
			&tipo,
			&account.AllowNegativeBalance,
			&account.Active,
			&account.CreatedAt,
			&account.UpdatedAt,
			&saldo,
		)
		if err != nil {
			return nil, err
		}

		account.Type = domain.AccountType(tipo)

		balances = append(balances, &domain.AccountBalance{
			Account: &account,
			Balance: numericToDecimal(saldo),
		})
	}

	return balances, rows.Err()
}

// ValueByAccount projects one account's balance.
func (r *BalanceRepository) ValueByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return r.value(ctx, r.pool, accountID, nil)
}

// ValueByAccountTx projects one account's balance inside a database
// transaction, so creation guards see pending inserts and hold locks.
func (r *BalanceRepository) ValueByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	return r.value(ctx, pgxTx(tx).PgxTx(), accountID, nil)
}

// ValueAsOfDate projects the balance over ACTIVE transactions dated
// on or before asOf.
func (r *BalanceRepository) ValueAsOfDate(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	return r.value(ctx, r.pool, accountID, &asOf)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *BalanceRepository) value(ctx context.Context, q rowQuerier, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(` + signedAmount + `), 0)
		FROM partidas p
		JOIN transacciones t ON t.id = p.transaccion_id
		WHERE p.cuenta_id = $1 AND t.estado = 'ACTIVE'
	`
	args := []any{accountID}

	if asOf != nil {
		query += ` AND t.fecha <= $2`
		args = append(args, *asOf)
	}

	var saldo pgtype.Numeric
	if err := q.QueryRow(ctx, query, args...).Scan(&saldo); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(saldo), nil
}

// Totals sums all debits and credits over ACTIVE transactions. Equal
// totals mean the double-entry invariant holds ledger-wide.
func (r *BalanceRepository) Totals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN p.lado = 'DEBE' THEN p.valor ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN p.lado = 'HABER' THEN p.valor ELSE 0 END), 0)
		FROM partidas p
		JOIN transacciones t ON t.id = p.transaccion_id
		WHERE t.estado = 'ACTIVE'
	`

	var debits, credits pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debits), numericToDecimal(credits), nil
}
