package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/chisomo/loan-ledger/internal/domain"
	customError "github.com/chisomo/loan-ledger/pkg/errors"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `
	id, loan_id, customer_id, customer_name, amount, method, status,
	payment_date, balance_before, balance_after, receipt_number, reference,
	notes, reversal_reason, reversed_by, reversed_at, recorded_by,
	created_at, updated_at
`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment, upd *LoanBalanceUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The loan CAS runs first so a stale balance aborts before the payment
	// row exists.
	applied, err := applyBalanceUpdate(ctx, tx, upd)
	if err != nil {
		return err
	}
	if !applied {
		return customError.ErrBalanceConflict
	}

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES (:id, :loan_id, :customer_id, :customer_name, :amount, :method,
			:status, :payment_date, :balance_before, :balance_after,
			:receipt_number, :reference, :notes, :reversal_reason,
			:reversed_by, :reversed_at, :recorded_by, :created_at, :updated_at)
	`

	if _, err = tx.NamedExecContext(ctx, query, payment); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE loan_id = $1
		ORDER BY payment_date DESC
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) Reverse(ctx context.Context, payment *domain.Payment, upd *LoanBalanceUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Guard in SQL, not just in the service read: two concurrent reversals
	// of the same payment must not both restore the balance.
	query := `
		UPDATE payments
		SET status = 'Reversed',
		    reversal_reason = $2,
		    reversed_by = $3,
		    reversed_at = $4,
		    updated_at = $5
		WHERE id = $1 AND status <> 'Reversed'
	`

	result, err := tx.ExecContext(ctx, query,
		payment.ID,
		payment.ReversalReason,
		payment.ReversedBy,
		payment.ReversedAt,
		time.Now(),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.ErrAlreadyReversed
	}

	applied, err := applyBalanceUpdate(ctx, tx, upd)
	if err != nil {
		return err
	}
	if !applied {
		return customError.ErrBalanceConflict
	}

	return tx.Commit()
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, notes string) error {
	query := `
		UPDATE payments
		SET status = $2, notes = CASE WHEN $3 <> '' THEN $3 ELSE notes END, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, notes, time.Now())
	return err
}

func (r *paymentRepository) GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE loan_id = $1 AND status <> 'Reversed' AND status <> 'Failed'
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, loanID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
