package repository

import (
	"context"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByLoginID(ctx context.Context, loginID string) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type PGCustomerRepository struct {
	db DB
}

func NewCustomerRepository(db DB) CustomerRepository {
	return &PGCustomerRepository{db: db}
}

const customerColumns = `id, login_id, password_hash, email, name, phone, registered_at, is_active`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.LoginID, &c.PasswordHash, &c.Email, &c.Name, &c.Phone, &c.RegisteredAt, &c.Active); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	err := r.db.QueryRow(ctx, `INSERT INTO customers (login_id, password_hash, email, name, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, registered_at`, c.LoginID, c.PasswordHash, c.Email, c.Name, c.Phone, c.Active).
		Scan(&c.ID, &c.RegisteredAt)
	return mapUniqueViolation(err, domain.ErrCustomerExists)
}

func (r *PGCustomerRepository) GetByLoginID(ctx context.Context, loginID string) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE login_id=$1`, loginID))
	if err != nil {
		return nil, mapNoRows(err, domain.ErrCustomerNotFound)
	}
	return c, nil
}

func (r *PGCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
	if err != nil {
		return nil, mapNoRows(err, domain.ErrCustomerNotFound)
	}
	return c, nil
}

func (r *PGCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

var _ CustomerRepository = (*PGCustomerRepository)(nil)
