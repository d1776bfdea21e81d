// Package loan holds the pure loan-terms arithmetic.
package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/chisomo/loan-ledger/pkg/errors"
)

// Terms is the computed repayment shape of a loan at creation time.
type Terms struct {
	TotalAmount      decimal.Decimal
	MonthlyPayment   decimal.Decimal
	RemainingBalance decimal.Decimal
	StartDate        time.Time
	DueDate          time.Time
	EndDate          time.Time
}

var hundred = decimal.NewFromInt(100)

// Calculate computes the loan terms from principal, period and rate.
//
// Interest is flat and non-compounding: principal * rate * months / 100.
// The stated rate is applied per month, not per annum. That matches the
// figures every existing loan was issued with, so it must not be
// "corrected" to an annualized formula.
//
// The due date covers the first installment only (start + 30 days); it is
// not rolled forward as installments are paid.
func Calculate(principal decimal.Decimal, months int, ratePercent decimal.Decimal, now time.Time) (*Terms, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidLoanAmount(principal.String())
	}
	if months <= 0 {
		return nil, customError.WrapInvalidLoanPeriod(fmt.Sprintf("%d months", months))
	}
	if ratePercent.IsNegative() {
		return nil, customError.WrapInvalidInterestRate(ratePercent.String())
	}

	interest := principal.Mul(ratePercent).Mul(decimal.NewFromInt(int64(months))).Div(hundred)
	total := principal.Add(interest)
	monthly := total.Div(decimal.NewFromInt(int64(months))).Round(2)

	return &Terms{
		TotalAmount:      total,
		MonthlyPayment:   monthly,
		RemainingBalance: total,
		StartDate:        now,
		DueDate:          now.AddDate(0, 0, 30),
		EndDate:          now.AddDate(0, 0, 30*months),
	}, nil
}
