package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/config"
	"github.com/chisomo/loan-ledger/internal/domain"
	"github.com/chisomo/loan-ledger/internal/repository"
	customError "github.com/chisomo/loan-ledger/pkg/errors"
	"github.com/chisomo/loan-ledger/pkg/utils"
)

// SweepResult reports what a sweep run did.
type SweepResult struct {
	Checked      int
	Transitioned int
}

// SweepService runs the scheduled batch checks over unsettled loans.
// Failures on individual loans are logged and skipped; one bad loan never
// aborts the batch.
type SweepService struct {
	loanRepo  repository.LoanRepository
	notifier  Notifier
	reminders repository.ReminderLog
	config    *config.Config
	logger    *zap.Logger
}

func NewSweepService(
	loanRepo repository.LoanRepository,
	notifier Notifier,
	reminders repository.ReminderLog,
	config *config.Config,
	logger *zap.Logger,
) *SweepService {
	return &SweepService{
		loanRepo:  loanRepo,
		notifier:  notifier,
		reminders: reminders,
		config:    config,
		logger:    logger,
	}
}

// RunOverdueSweep promotes unsettled loans past their due date to Overdue.
// The status flip is a conditional update, so running the sweep twice (or
// two sweeps racing) transitions a loan and emits its notification exactly
// once.
func (s *SweepService) RunOverdueSweep(ctx context.Context) (*SweepResult, error) {
	loans, err := s.loanRepo.ListUnsettled(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := &SweepResult{}
	now := time.Now()

	for _, loan := range loans {
		result.Checked++

		if !utils.IsPastDue(now, loan.DueDate) {
			continue
		}

		flipped, err := s.loanRepo.MarkOverdue(ctx, loan.ID)
		if err != nil {
			s.logger.Error("overdue transition failed",
				zap.String("loan_id", loan.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !flipped {
			continue
		}

		result.Transitioned++
		loan.Status = domain.LoanStatusOverdue

		if err := s.notifier.Emit(ctx, domain.NewOverdueMessage(loan)); err != nil {
			s.logger.Warn("overdue notification failed",
				zap.String("loan_id", loan.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("overdue sweep finished",
		zap.Int("checked", result.Checked),
		zap.Int("transitioned", result.Transitioned),
	)

	return result, nil
}

// RunDueSoonCheck emits payment reminders for unsettled loans due within
// the configured window. Reminders are deduplicated per loan per day via
// the reminder log; if the log is unavailable the reminder is sent anyway.
func (s *SweepService) RunDueSoonCheck(ctx context.Context) (*SweepResult, error) {
	now := time.Now()
	from := utils.DateOnly(now)
	to := from.AddDate(0, 0, s.config.Business.ReminderWindowDays+1)

	loans, err := s.loanRepo.ListDueSoon(ctx, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := &SweepResult{}

	for _, loan := range loans {
		result.Checked++

		first, err := s.reminders.MarkSent(ctx, loan.ID, now)
		if err != nil {
			s.logger.Warn("reminder dedupe unavailable, sending anyway",
				zap.String("loan_id", loan.ID.String()),
				zap.Error(err),
			)
			first = true
		}
		if !first {
			continue
		}

		if err := s.notifier.Emit(ctx, domain.NewPaymentReminderMessage(loan)); err != nil {
			s.logger.Warn("payment reminder failed",
				zap.String("loan_id", loan.ID.String()),
				zap.Error(err),
			)
			continue
		}

		result.Transitioned++
	}

	s.logger.Info("due-soon check finished",
		zap.Int("checked", result.Checked),
		zap.Int("reminded", result.Transitioned),
	)

	return result, nil
}

// RunMonthlySummary emits one digest message with per-status loan
// aggregates.
func (s *SweepService) RunMonthlySummary(ctx context.Context) error {
	summaries, err := s.loanRepo.StatusSummary(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if err := s.notifier.Emit(ctx, domain.NewMonthlySummaryMessage(summaries)); err != nil {
		return err
	}

	s.logger.Info("monthly summary emitted", zap.Int("statuses", len(summaries)))
	return nil
}
