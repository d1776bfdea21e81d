package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chisomo/loan-ledger/internal/domain"
)

// LoanBalanceUpdate describes a conditional mutation of a loan's running
// balance. ExpectedBalance is the balance the caller read before computing
// the mutation; the update only applies if it still matches, which is what
// protects concurrent payment submissions against lost updates.
type LoanBalanceUpdate struct {
	LoanID          uuid.UUID
	ExpectedBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Status          string
	TotalPaid       decimal.Decimal
	PaymentCount    int
	LastPaymentDate *time.Time
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// ListUnsettled returns loans in Active or Not Paid status with a
	// positive remaining balance
	ListUnsettled(ctx context.Context) ([]*domain.Loan, error)

	// ListDueSoon returns unsettled loans whose due date falls within
	// [from, to)
	ListDueSoon(ctx context.Context, from, to time.Time) ([]*domain.Loan, error)

	// MarkOverdue flips a loan to Overdue only if it is still in Active or
	// Not Paid status. Returns true when the transition happened in this
	// call, false when someone else already moved it.
	MarkOverdue(ctx context.Context, id uuid.UUID) (bool, error)

	// StatusSummary returns per-status loan aggregates
	StatusSummary(ctx context.Context) ([]*domain.StatusSummary, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create persists a payment and applies the loan balance update in one
	// transaction. Returns errors.ErrBalanceConflict if the loan balance no
	// longer matches upd.ExpectedBalance.
	Create(ctx context.Context, payment *domain.Payment, upd *LoanBalanceUpdate) error

	// GetByID retrieves a payment by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByLoanID retrieves all payments for a loan, newest first
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// Reverse marks the payment Reversed with its audit fields and applies
	// the restoring loan balance update in one transaction. Returns
	// errors.ErrAlreadyReversed or errors.ErrBalanceConflict.
	Reverse(ctx context.Context, payment *domain.Payment, upd *LoanBalanceUpdate) error

	// UpdateStatus changes a payment's status (Pending confirmation flow)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, notes string) error

	// GetTotalPaid sums non-reversed payment amounts for a loan
	GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

// MessageRepository defines the interface for the notification store
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByType(ctx context.Context, msgType string, limit int) ([]*domain.Message, error)
	CountUnread(ctx context.Context) (int, error)
}

// ReminderLog records which loans were reminded on which day so the
// due-soon sweep does not spam a loan on every run inside its window.
type ReminderLog interface {
	// MarkSent returns true if this is the first reminder for the loan on
	// the given day.
	MarkSent(ctx context.Context, loanID uuid.UUID, day time.Time) (bool, error)
}
