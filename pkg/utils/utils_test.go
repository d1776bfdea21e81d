package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReceiptNumber(t *testing.T) {
	ts := time.Date(2025, 6, 15, 9, 45, 30, 123_000_000, time.UTC)

	receipt := GenerateReceiptNumber(ts)

	assert.Regexp(t, `^RCP-20250615-\d{6}$`, receipt)
}

func TestGenerateReceiptNumber_SuffixFromMillis(t *testing.T) {
	ts := time.UnixMilli(1750000123456).UTC()

	receipt := GenerateReceiptNumber(ts)

	assert.Equal(t, "123456", receipt[len(receipt)-6:])
}

func TestIsPastDue(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		due      time.Time
		expected bool
	}{
		{
			name:     "due yesterday",
			now:      time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC),
			due:      time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "due later today is not past due",
			now:      time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			due:      time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "due earlier today is not past due",
			now:      time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
			due:      time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "due tomorrow",
			now:      time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC),
			due:      time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPastDue(tt.now, tt.due))
		})
	}
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysOverdue(now, time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysOverdue(now, now))
	assert.Equal(t, 0, DaysOverdue(now, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)))
}
