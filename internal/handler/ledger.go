package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/domain"
	customError "github.com/chisomo/loan-ledger/pkg/errors"
	"github.com/chisomo/loan-ledger/pkg/response"
)

// LedgerService is the surface of the ledger the HTTP layer needs.
type LedgerService interface {
	CreateCustomer(ctx context.Context, request *domain.CreateCustomerRequest) (*domain.Customer, error)
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest, actor domain.Actor) (*domain.Loan, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	ListLoanPayments(ctx context.Context, loanID uuid.UUID) (*domain.LoanPaymentsResponse, error)
	RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest, actor domain.Actor) (*domain.PaymentResult, error)
	ReversePayment(ctx context.Context, paymentID uuid.UUID, reason string, actor domain.Actor) (*domain.PaymentResult, error)
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	FailPayment(ctx context.Context, paymentID uuid.UUID, reason string) (*domain.Payment, error)
}

type LedgerHandler struct {
	service   LedgerService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewLedgerHandler(service LedgerService, logger *zap.Logger) *LedgerHandler {
	v := validator.New()
	registerDecimalValidations(v)

	return &LedgerHandler{
		service:   service,
		validator: v,
		logger:    logger,
	}
}

func registerDecimalValidations(v *validator.Validate) {
	_ = v.RegisterValidation("decimal_gt", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return d.GreaterThan(param)
	})
	_ = v.RegisterValidation("decimal_gte", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return d.GreaterThanOrEqual(param)
	})
}

// actorFrom reads the gateway-verified identity headers.
func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		UserID: r.Header.Get("X-User-Id"),
		Role:   r.Header.Get("X-User-Role"),
	}
}

// CreateCustomer handles POST /customers
func (h *LedgerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	customer, err := h.service.CreateCustomer(r.Context(), &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, customer)
}

// CreateLoan handles POST /loans
func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &request, actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: loan})
}

// GetLoan handles GET /loans/{loanId}
func (h *LedgerHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loan)
}

// ListLoanPayments handles GET /loans/{loanId}/payments
func (h *LedgerHandler) ListLoanPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "loanId")
	if !ok {
		return
	}

	payments, err := h.service.ListLoanPayments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payments)
}

// RecordPayment handles POST /payments
func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), &request, actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, result)
}

// ReversePayment handles PUT /payments/{paymentId}/reverse
func (h *LedgerHandler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "paymentId")
	if !ok {
		return
	}

	var request domain.ReversePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := h.service.ReversePayment(r.Context(), id, request.Reason, actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, result)
}

// ConfirmPayment handles PUT /payments/{paymentId}/confirm
func (h *LedgerHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "paymentId")
	if !ok {
		return
	}

	payment, err := h.service.ConfirmPayment(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payment)
}

// FailPayment handles PUT /payments/{paymentId}/fail
func (h *LedgerHandler) FailPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "paymentId")
	if !ok {
		return
	}

	var request domain.FailPaymentRequest
	if r.Body != nil {
		// Body is optional here; a bare fail is allowed.
		_ = json.NewDecoder(r.Body).Decode(&request)
	}

	payment, err := h.service.FailPayment(r.Context(), id, request.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payment)
}

func (h *LedgerHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		h.logger.Error("unhandled error", zap.Error(err))
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	switch be.Code {
	case customError.ErrCodeLoanNotFound,
		customError.ErrCodePaymentNotFound,
		customError.ErrCodeCustomerNotFound,
		customError.ErrCodeParentLoanNotFound:
		response.ErrorWithCode(w, http.StatusNotFound, be.Code, be.Message)
	case customError.ErrCodeLoanLimitExceeded:
		response.ErrorWithCode(w, http.StatusForbidden, be.Code, be.Message)
	case customError.ErrCodeBalanceConflict, customError.ErrCodeDuplicateCustomer:
		response.ErrorWithCode(w, http.StatusConflict, be.Code, be.Message)
	case customError.ErrCodeDatabaseError, customError.ErrCodeCacheError:
		h.logger.Error("internal error", zap.String("code", be.Code), zap.Error(be))
		response.ErrorWithCode(w, http.StatusInternalServerError, be.Code, "Internal server error")
	default:
		response.ErrorWithCode(w, http.StatusBadRequest, be.Code, be.Message)
	}
}
