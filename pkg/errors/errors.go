package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrParentLoanNotFound  = errors.New("parent loan not found")
	ErrInvalidLoanAmount   = errors.New("invalid loan amount")
	ErrInvalidLoanPeriod   = errors.New("invalid loan period")
	ErrInvalidInterestRate = errors.New("invalid interest rate")
	ErrInvalidPayment      = errors.New("invalid payment amount")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrExceedsBalance      = errors.New("payment amount exceeds remaining balance")
	ErrReasonRequired      = errors.New("reversal reason is required")
	ErrAlreadyReversed     = errors.New("payment is already reversed")
	ErrNotPending          = errors.New("payment is not pending")
	ErrLoanLimitExceeded   = errors.New("loan amount exceeds role limit")
	ErrBalanceConflict     = errors.New("loan balance changed concurrently")
	ErrDuplicateCustomer   = errors.New("customer with this NRC already exists")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the business error code carried by err, or empty string.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Error codes
const (
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	ErrCodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	ErrCodeParentLoanNotFound  = "PARENT_LOAN_NOT_FOUND"
	ErrCodeInvalidLoanAmount   = "INVALID_LOAN_AMOUNT"
	ErrCodeInvalidLoanPeriod   = "INVALID_LOAN_PERIOD"
	ErrCodeInvalidInterestRate = "INVALID_INTEREST_RATE"
	ErrCodeInvalidPayment      = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidMethod       = "INVALID_PAYMENT_METHOD"
	ErrCodeExceedsBalance      = "PAYMENT_EXCEEDS_BALANCE"
	ErrCodeReasonRequired      = "REVERSAL_REASON_REQUIRED"
	ErrCodeAlreadyReversed     = "PAYMENT_ALREADY_REVERSED"
	ErrCodeNotPending          = "PAYMENT_NOT_PENDING"
	ErrCodeLoanLimitExceeded   = "LOAN_LIMIT_EXCEEDED"
	ErrCodeBalanceConflict     = "BALANCE_CONFLICT"
	ErrCodeDuplicateCustomer   = "DUPLICATE_NRC"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapCustomerNotFound(customerID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		fmt.Sprintf("Customer with ID %s not found", customerID),
		ErrCustomerNotFound,
	)
}

func WrapParentLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeParentLoanNotFound,
		fmt.Sprintf("Parent loan with ID %s not found", loanID),
		ErrParentLoanNotFound,
	)
}

func WrapInvalidLoanAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanAmount,
		fmt.Sprintf("Invalid loan amount: %s", amount),
		ErrInvalidLoanAmount,
	)
}

func WrapInvalidLoanPeriod(period string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanPeriod,
		fmt.Sprintf("Invalid loan period: %s", period),
		ErrInvalidLoanPeriod,
	)
}

func WrapInvalidInterestRate(rate string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInterestRate,
		fmt.Sprintf("Invalid interest rate: %s", rate),
		ErrInvalidInterestRate,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPayment,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPayment,
	)
}

func WrapInvalidPaymentMethod(method string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidMethod,
		fmt.Sprintf("Invalid payment method: %s", method),
		ErrInvalidMethod,
	)
}

func WrapExceedsBalance(amount, balance string) *BusinessError {
	return NewBusinessError(
		ErrCodeExceedsBalance,
		fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount, balance),
		ErrExceedsBalance,
	)
}

func WrapReasonRequired() *BusinessError {
	return NewBusinessError(
		ErrCodeReasonRequired,
		"Reversal reason is required",
		ErrReasonRequired,
	)
}

func WrapAlreadyReversed(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyReversed,
		fmt.Sprintf("Payment with ID %s is already reversed", paymentID),
		ErrAlreadyReversed,
	)
}

func WrapNotPending(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotPending,
		fmt.Sprintf("Payment with ID %s is not pending", paymentID),
		ErrNotPending,
	)
}

func WrapLoanLimitExceeded(limit string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanLimitExceeded,
		fmt.Sprintf("Loan amount exceeds your limit of %s", limit),
		ErrLoanLimitExceeded,
	)
}

func WrapBalanceConflict(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeBalanceConflict,
		fmt.Sprintf("Loan %s was modified concurrently, retry the operation", loanID),
		ErrBalanceConflict,
	)
}

func WrapDuplicateCustomer(nrc string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateCustomer,
		fmt.Sprintf("Customer with NRC %s already exists", nrc),
		ErrDuplicateCustomer,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
