package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contabilidad/ledger/internal/domain"
)

// CounterpartyRepository implements usecase.CounterpartyRepository
// over the terceros table.
type CounterpartyRepository struct {
	pool *pgxpool.Pool
}

// NewCounterpartyRepository creates a new CounterpartyRepository.
func NewCounterpartyRepository(pool *pgxpool.Pool) *CounterpartyRepository {
	return &CounterpartyRepository{pool: pool}
}

const counterpartyColumns = `id, nombre, tipo_documento, numero_documento, email, telefono, direccion, activo, created_at, updated_at`

// Create inserts a new counterparty.
func (r *CounterpartyRepository) Create(ctx context.Context, counterparty *domain.Counterparty) error {
	query := `
		INSERT INTO terceros (` + counterpartyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		counterparty.ID,
		counterparty.Name,
		counterparty.DocumentType,
		counterparty.DocumentNumber,
		nullableText(counterparty.Email),
		nullableText(counterparty.Phone),
		nullableText(counterparty.Address),
		counterparty.Active,
		counterparty.CreatedAt,
		counterparty.UpdatedAt,
	)

	return uniqueViolation(err, domain.ErrDuplicateDocument)
}

// GetByID retrieves a counterparty by ID.
func (r *CounterpartyRepository) GetByID(ctx context.Context, id string) (*domain.Counterparty, error) {
	query := `SELECT ` + counterpartyColumns + ` FROM terceros WHERE id = $1`

	return scanCounterparty(r.pool.QueryRow(ctx, query, id))
}

// GetByDocument retrieves a counterparty by document number.
func (r *CounterpartyRepository) GetByDocument(ctx context.Context, documentNumber string) (*domain.Counterparty, error) {
	query := `SELECT ` + counterpartyColumns + ` FROM terceros WHERE numero_documento = $1`

	return scanCounterparty(r.pool.QueryRow(ctx, query, documentNumber))
}

// Update rewrites the mutable counterparty fields.
func (r *CounterpartyRepository) Update(ctx context.Context, counterparty *domain.Counterparty) error {
	query := `
		UPDATE terceros
		SET nombre = $2, tipo_documento = $3, numero_documento = $4,
		    email = $5, telefono = $6, direccion = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		counterparty.ID,
		counterparty.Name,
		counterparty.DocumentType,
		counterparty.DocumentNumber,
		nullableText(counterparty.Email),
		nullableText(counterparty.Phone),
		nullableText(counterparty.Address),
		counterparty.UpdatedAt,
	)
	if err != nil {
		return uniqueViolation(err, domain.ErrDuplicateDocument)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCounterpartyNotFound
	}

	return nil
}

// Delete removes a counterparty.
func (r *CounterpartyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM terceros WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCounterpartyNotFound
	}

	return nil
}

// List retrieves counterparties ordered by name.
func (r *CounterpartyRepository) List(ctx context.Context, limit, offset int) ([]*domain.Counterparty, error) {
	query := `SELECT ` + counterpartyColumns + ` FROM terceros ORDER BY nombre LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCounterparties(rows)
}

// Search retrieves counterparties matching the query against name or
// document number.
func (r *CounterpartyRepository) Search(ctx context.Context, query string) ([]*domain.Counterparty, error) {
	sql := `
		SELECT ` + counterpartyColumns + `
		FROM terceros
		WHERE nombre ILIKE $1 OR numero_documento LIKE $1
		ORDER BY nombre
	`

	rows, err := r.pool.Query(ctx, sql, "%"+escapeLike(query)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCounterparties(rows)
}

func scanCounterparty(row pgx.Row) (*domain.Counterparty, error) {
	var (
		counterparty               domain.Counterparty
		email, telefono, direccion pgtype.Text
	)

	err := row.Scan(
		&counterparty.ID,
		&counterparty.Name,
		&counterparty.DocumentType,
		&counterparty.DocumentNumber,
		&email,
		&telefono,
		&direccion,
		&counterparty.Active,
		&counterparty.CreatedAt,
		&counterparty.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCounterpartyNotFound
		}
		return nil, err
	}

	counterparty.Email = email.String
	counterparty.Phone = telefono.String
	counterparty.Address = direccion.String

	return &counterparty, nil
}

func scanCounterparties(rows pgx.Rows) ([]*domain.Counterparty, error) {
	var counterparties []*domain.Counterparty

	for rows.Next() {
		counterparty, err := scanCounterparty(rows)
		if err != nil {
			return nil, err
		}
		counterparties = append(counterparties, counterparty)
	}

	return counterparties, rows.Err()
}

// nullableText stores empty strings as NULL.
func nullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
