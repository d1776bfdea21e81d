package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chisomo/loan-ledger/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	id, customer_id, customer_name, customer_nrc, loan_amount, loan_period,
	loan_type, interest_rate, total_amount, monthly_payment, remaining_balance,
	status, start_date, end_date, due_date, last_payment_date, is_reloan,
	parent_loan_id, total_paid, payment_count, purpose, notes, created_by,
	created_at, updated_at
`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :customer_id, :customer_name, :customer_nrc, :loan_amount,
			:loan_period, :loan_type, :interest_rate, :total_amount,
			:monthly_payment, :remaining_balance, :status, :start_date,
			:end_date, :due_date, :last_payment_date, :is_reloan,
			:parent_loan_id, :total_paid, :payment_count, :purpose, :notes,
			:created_by, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, loan)
	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListUnsettled(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status IN ('Active', 'Not Paid') AND remaining_balance > 0
		ORDER BY due_date
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListDueSoon(ctx context.Context, from, to time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status IN ('Active', 'Not Paid')
		  AND remaining_balance > 0
		  AND due_date >= $1 AND due_date < $2
		ORDER BY due_date
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, from, to); err != nil {
		return nil, err
	}

	return loans, nil
}

// MarkOverdue is conditional on the current status so that concurrent sweeps
// (or a payment landing between read and update) cannot produce a duplicate
// transition.
func (r *loanRepository) MarkOverdue(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE loans
		SET status = 'Overdue', updated_at = $2
		WHERE id = $1 AND status IN ('Active', 'Not Paid') AND remaining_balance > 0
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *loanRepository) StatusSummary(ctx context.Context) ([]*domain.StatusSummary, error) {
	query := `
		SELECT status,
		       COUNT(*) AS count,
		       COALESCE(SUM(loan_amount), 0) AS total_amount,
		       COALESCE(SUM(remaining_balance), 0) AS total_remaining
		FROM loans
		GROUP BY status
		ORDER BY status
	`

	var summaries []*domain.StatusSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, err
	}

	return summaries, nil
}

// applyBalanceUpdate runs the compare-and-swap loan mutation inside tx.
// Rows affected is zero when the balance moved under us.
func applyBalanceUpdate(ctx context.Context, tx *sqlx.Tx, upd *LoanBalanceUpdate) (bool, error) {
	query := `
		UPDATE loans
		SET remaining_balance = $3,
		    status = $4,
		    total_paid = $5,
		    payment_count = $6,
		    last_payment_date = $7,
		    updated_at = $8
		WHERE id = $1 AND remaining_balance = $2
	`

	result, err := tx.ExecContext(ctx, query,
		upd.LoanID,
		upd.ExpectedBalance,
		upd.NewBalance,
		upd.Status,
		upd.TotalPaid,
		upd.PaymentCount,
		upd.LastPaymentDate,
		time.Now(),
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
