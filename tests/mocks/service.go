package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/chisomo/loan-ledger/internal/domain"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateCustomer(ctx context.Context, request *domain.CreateCustomerRequest) (*domain.Customer, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockLedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest, actor domain.Actor) (*domain.Loan, error) {
	args := m.Called(ctx, request, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedgerService) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedgerService) ListLoanPayments(ctx context.Context, loanID uuid.UUID) (*domain.LoanPaymentsResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanPaymentsResponse), args.Error(1)
}

func (m *MockLedgerService) RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest, actor domain.Actor) (*domain.PaymentResult, error) {
	args := m.Called(ctx, request, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

func (m *MockLedgerService) ReversePayment(ctx context.Context, paymentID uuid.UUID, reason string, actor domain.Actor) (*domain.PaymentResult, error) {
	args := m.Called(ctx, paymentID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

func (m *MockLedgerService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockLedgerService) FailPayment(ctx context.Context, paymentID uuid.UUID, reason string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type MockMessageReader struct {
	mock.Mock
}

func (m *MockMessageReader) Messages(ctx context.Context, msgType string, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, msgType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageReader) UnreadCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
