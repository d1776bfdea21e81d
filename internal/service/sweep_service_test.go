package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/domain"
	"github.com/chisomo/loan-ledger/internal/service"
	"github.com/chisomo/loan-ledger/tests/mocks"
)

func newSweepService(
	loanRepo *mocks.MockLoanRepository,
	notifier *mocks.MockNotifier,
	reminders *mocks.MockReminderLog,
) *service.SweepService {
	return service.NewSweepService(loanRepo, notifier, reminders, testConfig(), zap.NewNop())
}

func activeLoan(dueDate time.Time) *domain.Loan {
	return &domain.Loan{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		CustomerName:     "Bwalya Zulu",
		TotalAmount:      decimal.NewFromInt(1300),
		RemainingBalance: decimal.NewFromInt(800),
		MonthlyPayment:   decimal.RequireFromString("433.33"),
		Status:           domain.LoanStatusActive,
		DueDate:          dueDate,
	}
}

func TestRunOverdueSweep(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)

	t.Run("past-due loan transitions once with one notification", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockNotifier := &mocks.MockNotifier{}

		svc := newSweepService(mockLoanRepo, mockNotifier, &mocks.MockReminderLog{})

		overdue := activeLoan(yesterday)
		current := activeLoan(nextWeek)

		mockLoanRepo.On("ListUnsettled", mock.Anything).Return([]*domain.Loan{overdue, current}, nil)
		mockLoanRepo.On("MarkOverdue", mock.Anything, overdue.ID).Return(true, nil)
		mockNotifier.On("Emit", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
			return msg.Type == domain.MessageTypeOverdue && msg.LoanID != nil && *msg.LoanID == overdue.ID
		})).Return(nil).Once()

		result, err := svc.RunOverdueSweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Checked)
		assert.Equal(t, 1, result.Transitioned)

		// The loan that is not yet due must never be touched.
		mockLoanRepo.AssertNotCalled(t, "MarkOverdue", mock.Anything, current.ID)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("second run skips an already transitioned loan", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockNotifier := &mocks.MockNotifier{}

		svc := newSweepService(mockLoanRepo, mockNotifier, &mocks.MockReminderLog{})

		overdue := activeLoan(yesterday)

		mockLoanRepo.On("ListUnsettled", mock.Anything).Return([]*domain.Loan{overdue}, nil)
		mockLoanRepo.On("MarkOverdue", mock.Anything, overdue.ID).Return(false, nil)

		result, err := svc.RunOverdueSweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Checked)
		assert.Equal(t, 0, result.Transitioned)
		mockNotifier.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
	})

	t.Run("one failing loan does not abort the batch", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockNotifier := &mocks.MockNotifier{}

		svc := newSweepService(mockLoanRepo, mockNotifier, &mocks.MockReminderLog{})

		broken := activeLoan(yesterday)
		healthy := activeLoan(yesterday)

		mockLoanRepo.On("ListUnsettled", mock.Anything).Return([]*domain.Loan{broken, healthy}, nil)
		mockLoanRepo.On("MarkOverdue", mock.Anything, broken.ID).Return(false, errors.New("connection reset"))
		mockLoanRepo.On("MarkOverdue", mock.Anything, healthy.ID).Return(true, nil)
		mockNotifier.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

		result, err := svc.RunOverdueSweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Checked)
		assert.Equal(t, 1, result.Transitioned)
		mockLoanRepo.AssertExpectations(t)
	})
}

func TestRunDueSoonCheck(t *testing.T) {
	dueSoon := time.Now().AddDate(0, 0, 3)

	t.Run("first sighting sends a reminder", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockNotifier := &mocks.MockNotifier{}
		mockReminders := &mocks.MockReminderLog{}

		svc := newSweepService(mockLoanRepo, mockNotifier, mockReminders)

		loan := activeLoan(dueSoon)

		mockLoanRepo.On("ListDueSoon", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Loan{loan}, nil)
		mockReminders.On("MarkSent", mock.Anything, loan.ID, mock.Anything).Return(true, nil)
		mockNotifier.On("Emit", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
			return msg.Type == domain.MessageTypePaymentReminder
		})).Return(nil).Once()

		result, err := svc.RunDueSoonCheck(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Transitioned)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("already reminded today is skipped", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockNotifier := &mocks.MockNotifier{}
		mockReminders := &mocks.MockReminderLog{}

		svc := newSweepService(mockLoanRepo, mockNotifier, mockReminders)

		loan := activeLoan(dueSoon)

		mockLoanRepo.On("ListDueSoon", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Loan{loan}, nil)
		mockReminders.On("MarkSent", mock.Anything, loan.ID, mock.Anything).Return(false, nil)

		result, err := svc.RunDueSoonCheck(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Checked)
		assert.Equal(t, 0, result.Transitioned)
		mockNotifier.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
	})

	t.Run("dedupe store outage still sends the reminder", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockNotifier := &mocks.MockNotifier{}
		mockReminders := &mocks.MockReminderLog{}

		svc := newSweepService(mockLoanRepo, mockNotifier, mockReminders)

		loan := activeLoan(dueSoon)

		mockLoanRepo.On("ListDueSoon", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Loan{loan}, nil)
		mockReminders.On("MarkSent", mock.Anything, loan.ID, mock.Anything).Return(false, errors.New("redis: connection refused"))
		mockNotifier.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

		result, err := svc.RunDueSoonCheck(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Transitioned)
		mockNotifier.AssertExpectations(t)
	})
}

func TestRunMonthlySummary(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockNotifier := &mocks.MockNotifier{}

	svc := newSweepService(mockLoanRepo, mockNotifier, &mocks.MockReminderLog{})

	summaries := []*domain.StatusSummary{
		{Status: domain.LoanStatusActive, Count: 12, TotalRemaining: decimal.NewFromInt(48000)},
		{Status: domain.LoanStatusOverdue, Count: 3, TotalRemaining: decimal.NewFromInt(9100)},
	}

	mockLoanRepo.On("StatusSummary", mock.Anything).Return(summaries, nil)
	mockNotifier.On("Emit", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.Type == domain.MessageTypeSystemAlert && msg.Title == "Monthly Loan Summary"
	})).Return(nil).Once()

	err := svc.RunMonthlySummary(context.Background())

	require.NoError(t, err)
	mockNotifier.AssertExpectations(t)
}
