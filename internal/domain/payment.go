package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusCompleted = "Completed"
	PaymentStatusPending   = "Pending"
	PaymentStatusFailed    = "Failed"
	PaymentStatusReversed  = "Reversed"
)

const (
	PaymentMethodCash            = "Cash"
	PaymentMethodMobileMoney     = "Mobile Money"
	PaymentMethodBankTransfer    = "Bank Transfer"
	PaymentMethodAccountTransfer = "Account Transfer"
	PaymentMethodCheque          = "Cheque"
	PaymentMethodOnline          = "Online"
)

// IsAsyncMethod reports whether payments made with the method settle
// out-of-band and therefore start in Pending status.
func IsAsyncMethod(method string) bool {
	return method == PaymentMethodMobileMoney || method == PaymentMethodBankTransfer
}

// IsValidMethod reports whether method is one of the supported payment methods.
func IsValidMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodBankTransfer,
		PaymentMethodAccountTransfer, PaymentMethodCheque, PaymentMethodOnline:
		return true
	}
	return false
}

// Payment is a ledger entry against a loan. Once Completed it is never
// hard-deleted; the only permitted mutations are reversal and the
// Pending -> Completed/Failed confirmation for async methods.
type Payment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	LoanID         uuid.UUID       `json:"loan_id" db:"loan_id"`
	CustomerID     uuid.UUID       `json:"customer_id" db:"customer_id"`
	CustomerName   string          `json:"customer_name" db:"customer_name"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Method         string          `json:"method" db:"method"`
	Status         string          `json:"status" db:"status"`
	PaymentDate    time.Time       `json:"payment_date" db:"payment_date"`
	BalanceBefore  decimal.Decimal `json:"balance_before" db:"balance_before"`
	BalanceAfter   decimal.Decimal `json:"balance_after" db:"balance_after"`
	ReceiptNumber  string          `json:"receipt_number" db:"receipt_number"`
	Reference      string          `json:"reference,omitempty" db:"reference"`
	Notes          string          `json:"notes,omitempty" db:"notes"`
	ReversalReason string          `json:"reversal_reason,omitempty" db:"reversal_reason"`
	ReversedBy     string          `json:"reversed_by,omitempty" db:"reversed_by"`
	ReversedAt     *time.Time      `json:"reversed_at,omitempty" db:"reversed_at"`
	RecordedBy     string          `json:"recorded_by,omitempty" db:"recorded_by"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type RecordPaymentRequest struct {
	LoanID    uuid.UUID       `json:"loan_id" validate:"required"`
	Amount    decimal.Decimal `json:"payment_amount" validate:"required,decimal_gt=0"`
	Method    string          `json:"payment_method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

type ReversePaymentRequest struct {
	Reason string `json:"reversal_reason" validate:"required"`
}

type FailPaymentRequest struct {
	Reason string `json:"failure_reason,omitempty"`
}

// PaymentResult carries the payment alongside the loan state it produced.
type PaymentResult struct {
	Payment          *Payment        `json:"payment"`
	LoanStatus       string          `json:"loan_status"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}
