package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, name, tax_id, email, phone, mobile_phone, address, city, state, postal_code, client_type, active, registered_on`

func scanClient(row interface{ Scan(dest ...any) error }) (*domain.Client, error) {
	c := &domain.Client{}
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.MobilePhone,
		&c.Address, &c.City, &c.State, &c.PostalCode, &c.ClientType, &c.Active, &c.RegisteredOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (name, tax_id, email, phone, mobile_phone, address, city, state, postal_code, client_type, active, registered_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	return conn(ctx, r.db).QueryRowContext(ctx, query,
		c.Name, c.TaxID, c.Email, c.Phone, c.MobilePhone, c.Address, c.City, c.State,
		c.PostalCode, c.ClientType, c.Active, time.Now()).Scan(&c.ID)
}

func (r *clientRepository) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *clientRepository) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE tax_id = $1`
	return scanClient(conn(ctx, r.db).QueryRowContext(ctx, query, taxID))
}

func (r *clientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name=$1, email=$2, phone=$3, mobile_phone=$4, address=$5, city=$6, state=$7, postal_code=$8, client_type=$9, active=$10 WHERE id=$11`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		c.Name, c.Email, c.Phone, c.MobilePhone, c.Address, c.City, c.State,
		c.PostalCode, c.ClientType, c.Active, c.ID)
	return err
}

func (r *clientRepository) SetActive(ctx context.Context, id int32, active bool) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE clients SET active=$1 WHERE id=$2`, active, id)
	return err
}

func (r *clientRepository) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Client, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	base := `FROM clients`
	args := []any{}
	argIdx := 1
	if search != "" {
		base += fmt.Sprintf(` WHERE lower(name) LIKE $%d OR tax_id LIKE $%d`, argIdx, argIdx)
		args = append(args, "%"+strings.ToLower(search)+"%")
		argIdx++
	}

	var count int32
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT count(*) `+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + clientColumns + ` ` + base +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, count, rows.Err()
}

func (r *clientRepository) CountActiveLoans(ctx context.Context, clientID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM loans WHERE client_id = $1 AND status = $2`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, clientID, domain.LoanStatusActive).Scan(&count)
	return count, err
}
