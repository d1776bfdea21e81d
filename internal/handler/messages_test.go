package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/domain"
	"github.com/chisomo/loan-ledger/internal/handler"
	"github.com/chisomo/loan-ledger/tests/mocks"
)

func newMessageRouter(reader *mocks.MockMessageReader) *mux.Router {
	h := handler.NewMessageHandler(reader, zap.NewNop())

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/messages", h.ListMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages/unread-count", h.UnreadCount).Methods(http.MethodGet)
	return router
}

func TestListMessages(t *testing.T) {
	t.Run("lists by type with explicit limit", func(t *testing.T) {
		mockReader := &mocks.MockMessageReader{}
		router := newMessageRouter(mockReader)

		mockReader.On("Messages", mock.Anything, domain.MessageTypeOverdue, 20).
			Return([]*domain.Message{
				{Type: domain.MessageTypeOverdue, Title: "Loan Overdue"},
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/messages?type=overdue&limit=20", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockReader.AssertExpectations(t)
	})

	t.Run("missing type returns 400", func(t *testing.T) {
		mockReader := &mocks.MockMessageReader{}
		router := newMessageRouter(mockReader)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockReader.AssertNotCalled(t, "Messages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad limit returns 400", func(t *testing.T) {
		mockReader := &mocks.MockMessageReader{}
		router := newMessageRouter(mockReader)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/messages?type=overdue&limit=zero", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUnreadCount(t *testing.T) {
	mockReader := &mocks.MockMessageReader{}
	router := newMessageRouter(mockReader)

	mockReader.On("UnreadCount", mock.Anything).Return(4, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/unread-count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), data["unread"])
}
