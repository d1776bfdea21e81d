package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusNotPaid   = "Not Paid"
	LoanStatusActive    = "Active"
	LoanStatusCompleted = "Completed"
	LoanStatusOverdue   = "Overdue"
	LoanStatusDefaulted = "Defaulted"
	LoanStatusCancelled = "Cancelled"
)

const (
	LoanTypePersonal  = "Personal"
	LoanTypeBusiness  = "Business"
	LoanTypeEmergency = "Emergency"
	LoanTypeEducation = "Education"
	LoanTypeMedical   = "Medical"
)

// periodMonths maps the fixed loan period labels to their month counts.
var periodMonths = map[string]int{
	"1 Month":   1,
	"2 Months":  2,
	"3 Months":  3,
	"6 Months":  6,
	"12 Months": 12,
}

// MonthsForPeriod returns the month count for a loan period label,
// or 0 if the label is not one of the supported periods.
func MonthsForPeriod(period string) int {
	return periodMonths[period]
}

// Loan represents a loan with its running balance. Customer name and NRC
// are snapshots taken at creation time and are not kept in sync with the
// customer record.
type Loan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	CustomerID       uuid.UUID       `json:"customer_id" db:"customer_id"`
	CustomerName     string          `json:"customer_name" db:"customer_name"`
	CustomerNRC      string          `json:"customer_nrc" db:"customer_nrc"`
	LoanAmount       decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	LoanPeriod       string          `json:"loan_period" db:"loan_period"`
	LoanType         string          `json:"loan_type" db:"loan_type"`
	InterestRate     decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment" db:"monthly_payment"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	Status           string          `json:"status" db:"status"`
	StartDate        time.Time       `json:"start_date" db:"start_date"`
	EndDate          time.Time       `json:"end_date" db:"end_date"`
	DueDate          time.Time       `json:"due_date" db:"due_date"`
	LastPaymentDate  *time.Time      `json:"last_payment_date,omitempty" db:"last_payment_date"`
	IsReloan         bool            `json:"is_reloan" db:"is_reloan"`
	ParentLoanID     *uuid.UUID      `json:"parent_loan_id,omitempty" db:"parent_loan_id"`
	TotalPaid        decimal.Decimal `json:"total_paid" db:"total_paid"`
	PaymentCount     int             `json:"payment_count" db:"payment_count"`
	Purpose          string          `json:"purpose,omitempty" db:"purpose"`
	Notes            string          `json:"notes,omitempty" db:"notes"`
	CreatedBy        string          `json:"created_by,omitempty" db:"created_by"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// IsSettled reports whether nothing is owed on the loan.
func (l *Loan) IsSettled() bool {
	return l.RemainingBalance.LessThanOrEqual(decimal.Zero)
}

// CompletionPercentage returns how much of the total amount has been paid,
// rounded to the nearest whole percent.
func (l *Loan) CompletionPercentage() int {
	if l.TotalAmount.IsZero() {
		return 0
	}
	paid := l.TotalAmount.Sub(l.RemainingBalance)
	pct := paid.Div(l.TotalAmount).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	CustomerID   uuid.UUID       `json:"customer_id" validate:"required"`
	LoanAmount   decimal.Decimal `json:"loan_amount" validate:"required,decimal_gt=0"`
	LoanPeriod   string          `json:"loan_period" validate:"required"`
	LoanType     string          `json:"loan_type" validate:"required,oneof=Personal Business Emergency Education Medical"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"omitempty,decimal_gte=0"`
	IsReloan     bool            `json:"is_reloan"`
	ParentLoanID *uuid.UUID      `json:"parent_loan_id,omitempty"`
	Purpose      string          `json:"purpose,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

type CreateLoanResponse struct {
	Loan *Loan `json:"loan"`
}

type LoanPaymentsResponse struct {
	LoanID    uuid.UUID       `json:"loan_id"`
	Payments  []*Payment      `json:"payments"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

// StatusSummary is the per-status aggregate used by the monthly digest.
type StatusSummary struct {
	Status         string          `json:"status" db:"status"`
	Count          int             `json:"count" db:"count"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	TotalRemaining decimal.Decimal `json:"total_remaining" db:"total_remaining"`
}
