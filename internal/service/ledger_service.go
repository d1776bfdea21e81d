package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/config"
	"github.com/chisomo/loan-ledger/internal/domain"
	"github.com/chisomo/loan-ledger/internal/repository"
	customError "github.com/chisomo/loan-ledger/pkg/errors"
	loancalc "github.com/chisomo/loan-ledger/pkg/loan"
	"github.com/chisomo/loan-ledger/pkg/utils"
)

// balanceRetryAttempts bounds how often a payment or reversal re-reads the
// loan after losing the balance compare-and-swap to a concurrent writer.
const balanceRetryAttempts = 3

type LedgerService struct {
	loanRepo     repository.LoanRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	notifier     Notifier
	config       *config.Config
	logger       *zap.Logger
}

func NewLedgerService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	notifier Notifier,
	config *config.Config,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		config:       config,
		logger:       logger,
	}
}

// CreateCustomer registers a customer with a normalized NRC and announces
// the registration.
func (s *LedgerService) CreateCustomer(ctx context.Context, request *domain.CreateCustomerRequest) (*domain.Customer, error) {
	now := time.Now()
	customer := &domain.Customer{
		ID:          uuid.New(),
		FullName:    strings.TrimSpace(request.FullName),
		NRCNumber:   strings.ToUpper(strings.TrimSpace(request.NRCNumber)),
		PhoneNumber: request.PhoneNumber,
		Employer:    request.Employer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, customError.ErrDuplicateCustomer) {
			return nil, customError.WrapDuplicateCustomer(customer.NRCNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("nrc", customer.NRCNumber),
	)

	if err := s.notifier.Emit(ctx, domain.NewCustomerMessage(customer)); err != nil {
		s.logger.Warn("new customer notification failed",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err),
		)
	}

	return customer, nil
}

// CreateLoan computes the loan terms and persists a new loan in Not Paid
// status, snapshotting the customer's name and NRC.
func (s *LedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest, actor domain.Actor) (*domain.Loan, error) {
	months := domain.MonthsForPeriod(request.LoanPeriod)
	if months == 0 {
		return nil, customError.WrapInvalidLoanPeriod(request.LoanPeriod)
	}

	if actor.Role == domain.RoleSubadmin {
		limit := s.config.GetSubadminLoanCap()
		if request.LoanAmount.GreaterThan(limit) {
			return nil, customError.WrapLoanLimitExceeded(limit.String())
		}
	}

	customer, err := s.customerRepo.GetByID(ctx, request.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(request.CustomerID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.ParentLoanID != nil {
		if _, err = s.loanRepo.GetByID(ctx, *request.ParentLoanID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapParentLoanNotFound(request.ParentLoanID.String())
			}
			return nil, customError.WrapDatabaseError(err)
		}
	}

	rate := request.InterestRate
	if rate.IsZero() {
		rate = s.config.GetDefaultInterestRate()
	}

	terms, err := loancalc.Calculate(request.LoanAmount, months, rate, time.Now())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:               uuid.New(),
		CustomerID:       customer.ID,
		CustomerName:     customer.FullName,
		CustomerNRC:      strings.ToUpper(customer.NRCNumber),
		LoanAmount:       request.LoanAmount,
		LoanPeriod:       request.LoanPeriod,
		LoanType:         request.LoanType,
		InterestRate:     rate,
		TotalAmount:      terms.TotalAmount,
		MonthlyPayment:   terms.MonthlyPayment,
		RemainingBalance: terms.RemainingBalance,
		Status:           domain.LoanStatusNotPaid,
		StartDate:        terms.StartDate,
		EndDate:          terms.EndDate,
		DueDate:          terms.DueDate,
		IsReloan:         request.IsReloan,
		ParentLoanID:     request.ParentLoanID,
		TotalPaid:        decimal.Zero,
		Purpose:          request.Purpose,
		Notes:            request.Notes,
		CreatedBy:        actor.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err = s.loanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("customer_id", loan.CustomerID.String()),
		zap.String("total_amount", loan.TotalAmount.String()),
	)

	return loan, nil
}

// GetLoan retrieves a loan by ID.
func (s *LedgerService) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// ListLoanPayments returns all payments recorded against a loan, along with
// the summed total of its effective (non-reversed, non-failed) payments.
// The sum comes from the payment rows, not the loan's denormalized counter.
func (s *LedgerService) ListLoanPayments(ctx context.Context, loanID uuid.UUID) (*domain.LoanPaymentsResponse, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalPaid, err := s.paymentRepo.GetTotalPaid(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LoanPaymentsResponse{
		LoanID:    loanID,
		Payments:  payments,
		TotalPaid: totalPaid,
	}, nil
}

// RecordPayment validates and records a payment against a loan, mutating
// the loan's balance and status. Payments with async methods (mobile money,
// bank transfer) start Pending; everything else is Completed immediately.
// Overpayment is rejected, not clamped.
func (s *LedgerService) RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest, actor domain.Actor) (*domain.PaymentResult, error) {
	method := request.Method
	if method == "" {
		method = domain.PaymentMethodCash
	}
	if !domain.IsValidMethod(method) {
		return nil, customError.WrapInvalidPaymentMethod(method)
	}
	if request.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String())
	}

	for attempt := 0; attempt < balanceRetryAttempts; attempt++ {
		loan, err := s.loanRepo.GetByID(ctx, request.LoanID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapLoanNotFound(request.LoanID.String())
			}
			return nil, customError.WrapDatabaseError(err)
		}

		if request.Amount.GreaterThan(loan.RemainingBalance) {
			return nil, customError.WrapExceedsBalance(request.Amount.String(), loan.RemainingBalance.String())
		}

		now := time.Now()
		balanceBefore := loan.RemainingBalance
		balanceAfter := balanceBefore.Sub(request.Amount)

		paymentStatus := domain.PaymentStatusCompleted
		if domain.IsAsyncMethod(method) {
			paymentStatus = domain.PaymentStatusPending
		}

		loanStatus := loan.Status
		if loanStatus == domain.LoanStatusNotPaid {
			loanStatus = domain.LoanStatusActive
		}
		completed := balanceAfter.IsZero()
		if completed {
			loanStatus = domain.LoanStatusCompleted
		}

		payment := &domain.Payment{
			ID:            uuid.New(),
			LoanID:        loan.ID,
			CustomerID:    loan.CustomerID,
			CustomerName:  loan.CustomerName,
			Amount:        request.Amount,
			Method:        method,
			Status:        paymentStatus,
			PaymentDate:   now,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
			ReceiptNumber: utils.GenerateReceiptNumber(now),
			Reference:     request.Reference,
			Notes:         request.Notes,
			RecordedBy:    actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		upd := &repository.LoanBalanceUpdate{
			LoanID:          loan.ID,
			ExpectedBalance: balanceBefore,
			NewBalance:      balanceAfter,
			Status:          loanStatus,
			TotalPaid:       loan.TotalPaid.Add(request.Amount),
			PaymentCount:    loan.PaymentCount + 1,
			LastPaymentDate: &now,
		}

		err = s.paymentRepo.Create(ctx, payment, upd)
		if errors.Is(err, customError.ErrBalanceConflict) {
			s.logger.Warn("loan balance moved during payment, retrying",
				zap.String("loan_id", loan.ID.String()),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		s.logger.Info("payment recorded",
			zap.String("loan_id", loan.ID.String()),
			zap.String("payment_id", payment.ID.String()),
			zap.String("receipt", payment.ReceiptNumber),
			zap.String("amount", payment.Amount.String()),
			zap.String("new_balance", balanceAfter.String()),
		)

		if completed {
			done := *loan
			done.RemainingBalance = balanceAfter
			done.Status = loanStatus
			if err := s.notifier.Emit(ctx, domain.NewLoanCompletedMessage(&done)); err != nil {
				s.logger.Warn("completion notification failed",
					zap.String("loan_id", loan.ID.String()),
					zap.Error(err),
				)
			}
		}

		return &domain.PaymentResult{
			Payment:          payment,
			LoanStatus:       loanStatus,
			RemainingBalance: balanceAfter,
		}, nil
	}

	return nil, customError.WrapBalanceConflict(request.LoanID.String())
}

// ReversePayment undoes a payment in full, restoring the loan balance and
// recomputing its status. Reversal is all-or-nothing per payment.
func (s *LedgerService) ReversePayment(ctx context.Context, paymentID uuid.UUID, reason string, actor domain.Actor) (*domain.PaymentResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, customError.WrapReasonRequired()
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if payment.Status == domain.PaymentStatusReversed {
		return nil, customError.WrapAlreadyReversed(paymentID.String())
	}

	for attempt := 0; attempt < balanceRetryAttempts; attempt++ {
		loan, err := s.loanRepo.GetByID(ctx, payment.LoanID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapLoanNotFound(payment.LoanID.String())
			}
			return nil, customError.WrapDatabaseError(err)
		}

		restored := decimal.Min(loan.TotalAmount, loan.RemainingBalance.Add(payment.Amount))
		totalPaid := decimal.Max(decimal.Zero, loan.TotalPaid.Sub(payment.Amount))
		count := loan.PaymentCount - 1
		if count < 0 {
			count = 0
		}

		loanStatus := loan.Status
		if restored.Equal(loan.TotalAmount) {
			loanStatus = domain.LoanStatusNotPaid
		} else if restored.GreaterThan(decimal.Zero) {
			loanStatus = domain.LoanStatusActive
		}

		now := time.Now()
		reversed := *payment
		reversed.Status = domain.PaymentStatusReversed
		reversed.ReversalReason = reason
		reversed.ReversedBy = actor.UserID
		reversed.ReversedAt = &now
		reversed.UpdatedAt = now

		upd := &repository.LoanBalanceUpdate{
			LoanID:          loan.ID,
			ExpectedBalance: loan.RemainingBalance,
			NewBalance:      restored,
			Status:          loanStatus,
			TotalPaid:       totalPaid,
			PaymentCount:    count,
			LastPaymentDate: loan.LastPaymentDate,
		}

		err = s.paymentRepo.Reverse(ctx, &reversed, upd)
		if errors.Is(err, customError.ErrAlreadyReversed) {
			return nil, customError.WrapAlreadyReversed(paymentID.String())
		}
		if errors.Is(err, customError.ErrBalanceConflict) {
			s.logger.Warn("loan balance moved during reversal, retrying",
				zap.String("loan_id", loan.ID.String()),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		s.logger.Info("payment reversed",
			zap.String("payment_id", paymentID.String()),
			zap.String("loan_id", loan.ID.String()),
			zap.String("restored_balance", restored.String()),
			zap.String("reason", reason),
		)

		return &domain.PaymentResult{
			Payment:          &reversed,
			LoanStatus:       loanStatus,
			RemainingBalance: restored,
		}, nil
	}

	return nil, customError.WrapBalanceConflict(payment.LoanID.String())
}

// ConfirmPayment settles a Pending payment (async methods only).
func (s *LedgerService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.settlePending(ctx, paymentID, domain.PaymentStatusCompleted, "")
}

// FailPayment marks a Pending payment Failed, keeping the failure reason in
// its notes.
func (s *LedgerService) FailPayment(ctx context.Context, paymentID uuid.UUID, reason string) (*domain.Payment, error) {
	return s.settlePending(ctx, paymentID, domain.PaymentStatusFailed, reason)
}

func (s *LedgerService) settlePending(ctx context.Context, paymentID uuid.UUID, status, notes string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if payment.Status != domain.PaymentStatusPending {
		return nil, customError.WrapNotPending(paymentID.String())
	}

	if err = s.paymentRepo.UpdateStatus(ctx, paymentID, status, notes); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	payment.Status = status
	if notes != "" {
		payment.Notes = notes
	}

	s.logger.Info("pending payment settled",
		zap.String("payment_id", paymentID.String()),
		zap.String("status", status),
	)

	return payment, nil
}
