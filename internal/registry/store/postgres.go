package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"clientregistry/internal/registry/models"
	"clientregistry/pkg/sentinel"
)

// Postgres persists client records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id        BIGSERIAL PRIMARY KEY,
	name      TEXT NOT NULL,
	email     TEXT NOT NULL UNIQUE,
	telephone TEXT NOT NULL,
	cnpj      TEXT NOT NULL UNIQUE,
	cep       TEXT NOT NULL DEFAULT '',
	address   TEXT NOT NULL,
	city      TEXT NOT NULL DEFAULT ''
)`

// Migrate creates the clients table when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate clients table: %w", err)
	}
	return nil
}

const clientColumns = "id, name, email, telephone, cnpj, cep, address, city"

func scanClient(row interface{ Scan(...any) error }) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Telephone, &c.CNPJ, &c.CEP, &c.Address, &c.City)
	return c, err
}

func (s *Postgres) List(ctx context.Context, search string) ([]models.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients ORDER BY id"
	args := []any{}
	if search != "" {
		query = "SELECT " + clientColumns + ` FROM clients
			WHERE name ILIKE $1 OR email ILIKE $1 OR cnpj LIKE $2 OR telephone LIKE $2
			ORDER BY id`
		pattern := "%" + search + "%"
		args = []any{pattern, pattern}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

func (s *Postgres) Get(ctx context.Context, id models.ClientID) (models.Client, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *Postgres) Create(ctx context.Context, draft models.Draft) (models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, email, telephone, cnpj, cep, address, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		draft.Name, draft.Email, draft.Telephone, draft.CNPJ, draft.CEP, draft.Address, draft.City)
	c, err := scanClient(row)
	if err != nil {
		return models.Client{}, translatePQ("create client", err)
	}
	return c, nil
}

func (s *Postgres) Update(ctx context.Context, id models.ClientID, draft models.Draft) (models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE clients
		SET name = $2, email = $3, telephone = $4, cnpj = $5, cep = $6, address = $7, city = $8
		WHERE id = $1
		RETURNING `+clientColumns,
		id, draft.Name, draft.Email, draft.Telephone, draft.CNPJ, draft.CEP, draft.Address, draft.City)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Client{}, translatePQ("update client", err)
	}
	return c, nil
}

func (s *Postgres) Delete(ctx context.Context, id models.ClientID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// translatePQ maps unique-constraint violations to the shared conflict
// sentinel so services treat both store implementations alike.
func translatePQ(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}
