package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository over
// the transacciones and partidas tables. Entries are owned rows:
// they are only ever written together with their transaction.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, fecha, descripcion, tercero_id, estado, created_at, updated_at`

// Create inserts a transaction and its entries in the given database
// transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgtx := pgxTx(tx).PgxTx()

	query := `
		INSERT INTO transacciones (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgtx.Exec(ctx, query,
		txn.ID,
		txn.Date,
		txn.Description,
		txn.CounterpartyID,
		string(txn.State),
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return r.insertEntries(ctx, pgtx, txn.ID, txn.Entries)
}

// GetByID retrieves a transaction header without entries.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transacciones WHERE id = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDWithEntries retrieves a transaction and its entries.
func (r *TransactionRepository) GetByIDWithEntries(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := r.loadEntries(ctx, r.pool, []string{id})
	if err != nil {
		return nil, err
	}

	txn.Entries = entries[id]

	return txn, nil
}

// GetByIDForUpdate retrieves a transaction with entries, locking the
// header row. Concurrent mutations of the same transaction queue on
// this lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgtx := pgxTx(tx).PgxTx()

	query := `SELECT ` + transactionColumns + ` FROM transacciones WHERE id = $1 FOR UPDATE`

	txn, err := scanTransaction(pgtx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	entries, err := r.loadEntries(ctx, pgtx, []string{id})
	if err != nil {
		return nil, err
	}

	txn.Entries = entries[id]

	return txn, nil
}

// Update rewrites the header and replaces the whole entry set.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgtx := pgxTx(tx).PgxTx()

	query := `
		UPDATE transacciones
		SET fecha = $2, descripcion = $3, tercero_id = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := pgtx.Exec(ctx, query,
		txn.ID,
		txn.Date,
		txn.Description,
		txn.CounterpartyID,
		txn.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	if _, err := pgtx.Exec(ctx, `DELETE FROM partidas WHERE transaccion_id = $1`, txn.ID); err != nil {
		return err
	}

	return r.insertEntries(ctx, pgtx, txn.ID, txn.Entries)
}

// UpdateState moves a transaction to a new lifecycle state.
func (r *TransactionRepository) UpdateState(ctx context.Context, tx usecase.Transaction, id string, state domain.TransactionState, updatedAt time.Time) error {
	query := `UPDATE transacciones SET estado = $2, updated_at = $3 WHERE id = $1`

	tag, err := pgxTx(tx).PgxTx().Exec(ctx, query, id, string(state), updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// List retrieves transactions matching the filter, newest first,
// with their entries.
func (r *TransactionRepository) List(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transacciones`
	where, args := filterClauses(filter)
	query += where + ` ORDER BY fecha DESC, created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		txns []*domain.Transaction
		ids  []string
	)

	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
		ids = append(ids, txn.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return txns, nil
	}

	entries, err := r.loadEntries(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}

	for _, txn := range txns {
		txn.Entries = entries[txn.ID]
	}

	return txns, nil
}

// Count counts transactions matching the filter.
func (r *TransactionRepository) Count(ctx context.Context, filter usecase.TransactionFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM transacciones`
	where, args := filterClauses(filter)
	query += where

	var n int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)

	return n, err
}

// ExistsByCounterparty reports whether any transaction references the
// counterparty, in any state.
func (r *TransactionRepository) ExistsByCounterparty(ctx context.Context, counterpartyID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transacciones WHERE tercero_id = $1)`, counterpartyID,
	).Scan(&exists)

	return exists, err
}

func filterClauses(filter usecase.TransactionFilter) (string, []any) {
	query := ` WHERE 1=1`
	var args []any

	if filter.CounterpartyID != nil {
		args = append(args, *filter.CounterpartyID)
		query += ` AND tercero_id = $` + strconv.Itoa(len(args))
	}

	if filter.State != nil {
		args = append(args, string(*filter.State))
		query += ` AND estado = $` + strconv.Itoa(len(args))
	}

	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += ` AND fecha >= $` + strconv.Itoa(len(args))
	}

	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += ` AND fecha <= $` + strconv.Itoa(len(args))
	}

	if filter.Description != "" {
		args = append(args, "%"+escapeLike(filter.Description)+"%")
		query += ` AND descripcion ILIKE $` + strconv.Itoa(len(args))
	}

	return query, args
}

type entryQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *TransactionRepository) insertEntries(ctx context.Context, q entryQuerier, txnID string, entries []domain.Entry) error {
	query := `
		INSERT INTO partidas (id, transaccion_id, cuenta_id, lado, valor, detalle)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, e := range entries {
		_, err := q.Exec(ctx, query,
			e.ID,
			txnID,
			e.AccountID,
			string(e.Side),
			decimalToNumeric(e.Amount),
			nullableText(e.Memo),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *TransactionRepository) loadEntries(ctx context.Context, q entryQuerier, txnIDs []string) (map[string][]domain.Entry, error) {
	query := `
		SELECT id, transaccion_id, cuenta_id, lado, valor, detalle
		FROM partidas
		WHERE transaccion_id = ANY($1)
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, txnIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string][]domain.Entry)

	for rows.Next() {
		var (
			entry   domain.Entry
			lado    string
			valor   pgtype.Numeric
			detalle pgtype.Text
		)

		err := rows.Scan(
			&entry.ID,
			&entry.TransactionID,
			&entry.AccountID,
			&lado,
			&valor,
			&detalle,
		)
		if err != nil {
			return nil, err
		}

		entry.Side = domain.Side(lado)
		entry.Amount = numericToDecimal(valor)
		entry.Memo = detalle.String

		entries[entry.TransactionID] = append(entries[entry.TransactionID], entry)
	}

	return entries, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn       domain.Transaction
		terceroID pgtype.Text
		estado    string
	)

	err := row.Scan(
		&txn.ID,
		&txn.Date,
		&txn.Description,
		&terceroID,
		&estado,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	if terceroID.Valid {
		txn.CounterpartyID = &terceroID.String
	}

	txn.State = domain.TransactionState(estado)

	return &txn, nil
}
