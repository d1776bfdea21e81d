package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/chisomo/loan-ledger/pkg/errors"
)

func TestCalculate(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name            string
		principal       decimal.Decimal
		months          int
		rate            decimal.Decimal
		expectedTotal   decimal.Decimal
		expectedMonthly decimal.Decimal
	}{
		{
			name:            "standard 3 month loan at 10 percent",
			principal:       decimal.NewFromInt(1000),
			months:          3,
			rate:            decimal.NewFromInt(10),
			expectedTotal:   decimal.NewFromInt(1300), // 1000 + 1000*10*3/100
			expectedMonthly: decimal.RequireFromString("433.33"),
		},
		{
			name:            "single month loan",
			principal:       decimal.NewFromInt(500),
			months:          1,
			rate:            decimal.NewFromInt(10),
			expectedTotal:   decimal.NewFromInt(550),
			expectedMonthly: decimal.NewFromInt(550),
		},
		{
			name:            "twelve month loan at 5 percent",
			principal:       decimal.NewFromInt(2400),
			months:          12,
			rate:            decimal.NewFromInt(5),
			expectedTotal:   decimal.NewFromInt(3840), // 2400 + 2400*5*12/100
			expectedMonthly: decimal.NewFromInt(320),
		},
		{
			name:            "zero interest rate",
			principal:       decimal.NewFromInt(900),
			months:          3,
			rate:            decimal.Zero,
			expectedTotal:   decimal.NewFromInt(900),
			expectedMonthly: decimal.NewFromInt(300),
		},
		{
			name:            "monthly payment rounds half up at the cent",
			principal:       decimal.NewFromInt(1000),
			months:          6,
			rate:            decimal.RequireFromString("2.5"),
			expectedTotal:   decimal.NewFromInt(1150),     // 1000 + 1000*2.5*6/100
			expectedMonthly: decimal.RequireFromString("191.67"), // 191.666... rounds up
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := Calculate(tt.principal, tt.months, tt.rate, now)
			require.NoError(t, err)

			assert.True(t, terms.TotalAmount.Equal(tt.expectedTotal),
				"total: expected %v, got %v", tt.expectedTotal, terms.TotalAmount)
			assert.True(t, terms.MonthlyPayment.Equal(tt.expectedMonthly),
				"monthly: expected %v, got %v", tt.expectedMonthly, terms.MonthlyPayment)
			assert.True(t, terms.RemainingBalance.Equal(terms.TotalAmount),
				"remaining balance must start at the total amount")
			assert.Equal(t, now.AddDate(0, 0, 30), terms.DueDate)
			assert.Equal(t, now.AddDate(0, 0, 30*tt.months), terms.EndDate)
		})
	}
}

func TestCalculate_InvalidInput(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		principal    decimal.Decimal
		months       int
		rate         decimal.Decimal
		expectedCode string
	}{
		{
			name:         "zero principal",
			principal:    decimal.Zero,
			months:       3,
			rate:         decimal.NewFromInt(10),
			expectedCode: customError.ErrCodeInvalidLoanAmount,
		},
		{
			name:         "negative principal",
			principal:    decimal.NewFromInt(-100),
			months:       3,
			rate:         decimal.NewFromInt(10),
			expectedCode: customError.ErrCodeInvalidLoanAmount,
		},
		{
			name:         "zero months",
			principal:    decimal.NewFromInt(1000),
			months:       0,
			rate:         decimal.NewFromInt(10),
			expectedCode: customError.ErrCodeInvalidLoanPeriod,
		},
		{
			name:         "negative rate",
			principal:    decimal.NewFromInt(1000),
			months:       3,
			rate:         decimal.NewFromInt(-1),
			expectedCode: customError.ErrCodeInvalidInterestRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := Calculate(tt.principal, tt.months, tt.rate, now)
			require.Error(t, err)
			assert.Nil(t, terms)
			assert.Equal(t, tt.expectedCode, customError.CodeOf(err))
		})
	}
}
