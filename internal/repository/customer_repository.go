package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/chisomo/loan-ledger/internal/domain"
	customError "github.com/chisomo/loan-ledger/pkg/errors"
)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, full_name, nrc_number, phone_number, employer, created_at, updated_at)
		VALUES (:id, :full_name, :nrc_number, :phone_number, :employer, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, customer)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return customError.ErrDuplicateCustomer
	}
	return err
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT id, full_name, nrc_number, phone_number, employer, created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	var customer domain.Customer
	if err := r.db.GetContext(ctx, &customer, query, id); err != nil {
		return nil, err
	}

	return &customer, nil
}
