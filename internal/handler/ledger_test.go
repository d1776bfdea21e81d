package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/domain"
	"github.com/chisomo/loan-ledger/internal/handler"
	customError "github.com/chisomo/loan-ledger/pkg/errors"
	"github.com/chisomo/loan-ledger/tests/mocks"
)

func newTestRouter(svc *mocks.MockLedgerService) *mux.Router {
	h := handler.NewLedgerHandler(svc, zap.NewNop())

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/customers", h.CreateCustomer).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}", h.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/payments", h.ListLoanPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments", h.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}/reverse", h.ReversePayment).Methods(http.MethodPut)
	api.HandleFunc("/payments/{paymentId}/confirm", h.ConfirmPayment).Methods(http.MethodPut)
	api.HandleFunc("/payments/{paymentId}/fail", h.FailPayment).Methods(http.MethodPut)
	return router
}

func doJSON(router *mux.Router, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateCustomerEndpoint(t *testing.T) {
	t.Run("valid customer returns 201", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(req *domain.CreateCustomerRequest) bool {
			return req.FullName == "Chanda Mwila" && req.NRCNumber == "123456/10/1"
		})).Return(&domain.Customer{ID: uuid.New(), FullName: "Chanda Mwila"}, nil)

		rec := doJSON(router, http.MethodPost, "/api/v1/customers", map[string]interface{}{
			"full_name":  "Chanda Mwila",
			"nrc_number": "123456/10/1",
		}, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing NRC fails validation", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		rec := doJSON(router, http.MethodPost, "/api/v1/customers", map[string]interface{}{
			"full_name": "Chanda Mwila",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("duplicate NRC returns 409", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, customError.WrapDuplicateCustomer("123456/10/1"))

		rec := doJSON(router, http.MethodPost, "/api/v1/customers", map[string]interface{}{
			"full_name":  "Chanda Mwila",
			"nrc_number": "123456/10/1",
		}, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCreateLoanEndpoint(t *testing.T) {
	customerID := uuid.New()

	t.Run("valid request returns 201", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		created := &domain.Loan{
			ID:          uuid.New(),
			CustomerID:  customerID,
			TotalAmount: decimal.NewFromInt(1300),
			Status:      domain.LoanStatusNotPaid,
		}

		mockService.On("CreateLoan", mock.Anything, mock.MatchedBy(func(req *domain.CreateLoanRequest) bool {
			return req.CustomerID == customerID && req.LoanAmount.Equal(decimal.NewFromInt(1000))
		}), domain.Actor{UserID: "user-7", Role: domain.RoleSubadmin}).Return(created, nil)

		rec := doJSON(router, http.MethodPost, "/api/v1/loans", map[string]interface{}{
			"customer_id":   customerID.String(),
			"loan_amount":   "1000",
			"loan_period":   "3 Months",
			"loan_type":     "Personal",
			"interest_rate": "10",
		}, map[string]string{
			"X-User-Id":   "user-7",
			"X-User-Role": domain.RoleSubadmin,
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero loan amount fails validation", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		rec := doJSON(router, http.MethodPost, "/api/v1/loans", map[string]interface{}{
			"customer_id": customerID.String(),
			"loan_amount": "0",
			"loan_period": "3 Months",
			"loan_type":   "Personal",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("subadmin over cap returns 403", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("CreateLoan", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, customError.WrapLoanLimitExceeded("50000"))

		rec := doJSON(router, http.MethodPost, "/api/v1/loans", map[string]interface{}{
			"customer_id": customerID.String(),
			"loan_amount": "60000",
			"loan_period": "3 Months",
			"loan_type":   "Business",
		}, map[string]string{"X-User-Role": domain.RoleSubadmin})

		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, customError.ErrCodeLoanLimitExceeded, body["code"])
	})
}

func TestGetLoanEndpoint(t *testing.T) {
	t.Run("unknown loan returns 404", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		loanID := uuid.New()
		mockService.On("GetLoan", mock.Anything, loanID).
			Return(nil, customError.WrapLoanNotFound(loanID.String()))

		rec := doJSON(router, http.MethodGet, "/api/v1/loans/"+loanID.String(), nil, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-uuid path returns 400", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		rec := doJSON(router, http.MethodGet, "/api/v1/loans/not-a-uuid", nil, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "GetLoan", mock.Anything, mock.Anything)
	})
}

func TestRecordPaymentEndpoint(t *testing.T) {
	loanID := uuid.New()

	t.Run("valid payment returns 201", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		result := &domain.PaymentResult{
			Payment:          &domain.Payment{ID: uuid.New(), LoanID: loanID},
			LoanStatus:       domain.LoanStatusActive,
			RemainingBalance: decimal.NewFromInt(800),
		}

		mockService.On("RecordPayment", mock.Anything, mock.MatchedBy(func(req *domain.RecordPaymentRequest) bool {
			return req.LoanID == loanID && req.Amount.Equal(decimal.NewFromInt(500))
		}), mock.Anything).Return(result, nil)

		rec := doJSON(router, http.MethodPost, "/api/v1/payments", map[string]interface{}{
			"loan_id":        loanID.String(),
			"payment_amount": "500",
			"payment_method": "Cash",
		}, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("overpayment returns 400 with code", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("RecordPayment", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, customError.WrapExceedsBalance("900", "800"))

		rec := doJSON(router, http.MethodPost, "/api/v1/payments", map[string]interface{}{
			"loan_id":        loanID.String(),
			"payment_amount": "900",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, customError.ErrCodeExceedsBalance, body["code"])
	})

	t.Run("balance conflict returns 409", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("RecordPayment", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, customError.WrapBalanceConflict(loanID.String()))

		rec := doJSON(router, http.MethodPost, "/api/v1/payments", map[string]interface{}{
			"loan_id":        loanID.String(),
			"payment_amount": "500",
		}, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("database error hides detail behind 500", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("RecordPayment", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, customError.WrapDatabaseError(assert.AnError))

		rec := doJSON(router, http.MethodPost, "/api/v1/payments", map[string]interface{}{
			"loan_id":        loanID.String(),
			"payment_amount": "500",
		}, nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})
}

func TestReversePaymentEndpoint(t *testing.T) {
	paymentID := uuid.New()

	t.Run("reversal returns 200 and passes actor", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		result := &domain.PaymentResult{
			Payment:          &domain.Payment{ID: paymentID, Status: domain.PaymentStatusReversed},
			LoanStatus:       domain.LoanStatusActive,
			RemainingBalance: decimal.NewFromInt(1300),
		}

		mockService.On("ReversePayment", mock.Anything, paymentID, "wrong loan",
			domain.Actor{UserID: "admin-3", Role: domain.RoleAdmin}).Return(result, nil)

		rec := doJSON(router, http.MethodPut, "/api/v1/payments/"+paymentID.String()+"/reverse",
			map[string]interface{}{"reversal_reason": "wrong loan"},
			map[string]string{"X-User-Id": "admin-3", "X-User-Role": domain.RoleAdmin})

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing reason returns 400 with code", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("ReversePayment", mock.Anything, paymentID, "", mock.Anything).
			Return(nil, customError.WrapReasonRequired())

		rec := doJSON(router, http.MethodPut, "/api/v1/payments/"+paymentID.String()+"/reverse",
			map[string]interface{}{}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, customError.ErrCodeReasonRequired, body["code"])
	})

	t.Run("double reversal returns 400 with code", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("ReversePayment", mock.Anything, paymentID, "dup", mock.Anything).
			Return(nil, customError.WrapAlreadyReversed(paymentID.String()))

		rec := doJSON(router, http.MethodPut, "/api/v1/payments/"+paymentID.String()+"/reverse",
			map[string]interface{}{"reversal_reason": "dup"}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, customError.ErrCodeAlreadyReversed, body["code"])
	})
}

func TestConfirmAndFailEndpoints(t *testing.T) {
	paymentID := uuid.New()

	t.Run("confirm pending returns 200", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("ConfirmPayment", mock.Anything, paymentID).
			Return(&domain.Payment{ID: paymentID, Status: domain.PaymentStatusCompleted}, nil)

		rec := doJSON(router, http.MethodPut, "/api/v1/payments/"+paymentID.String()+"/confirm", nil, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("confirm settled payment returns 400", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("ConfirmPayment", mock.Anything, paymentID).
			Return(nil, customError.WrapNotPending(paymentID.String()))

		rec := doJSON(router, http.MethodPut, "/api/v1/payments/"+paymentID.String()+"/confirm", nil, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("fail with reason returns 200", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("FailPayment", mock.Anything, paymentID, "provider timeout").
			Return(&domain.Payment{ID: paymentID, Status: domain.PaymentStatusFailed}, nil)

		rec := doJSON(router, http.MethodPut, "/api/v1/payments/"+paymentID.String()+"/fail",
			map[string]interface{}{"failure_reason": "provider timeout"}, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown payment returns 404", func(t *testing.T) {
		mockService := &mocks.MockLedgerService{}
		router := newTestRouter(mockService)

		mockService.On("ConfirmPayment", mock.Anything, paymentID).
			Return(nil, customError.WrapPaymentNotFound(paymentID.String()))

		rec := doJSON(router, http.MethodPut, "/api/v1/payments/"+paymentID.String()+"/confirm", nil, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
