package handler

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/domain"
	"github.com/chisomo/loan-ledger/pkg/response"
)

const defaultMessageLimit = 50

// MessageReader is the read-side surface of the notification store.
type MessageReader interface {
	Messages(ctx context.Context, msgType string, limit int) ([]*domain.Message, error)
	UnreadCount(ctx context.Context) (int, error)
}

type MessageHandler struct {
	reader MessageReader
	logger *zap.Logger
}

func NewMessageHandler(reader MessageReader, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		reader: reader,
		logger: logger,
	}
}

// ListMessages handles GET /messages?type=overdue&limit=20
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgType := r.URL.Query().Get("type")
	if msgType == "" {
		response.BadRequest(w, "Query parameter 'type' is required", nil)
		return
	}

	limit := defaultMessageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	messages, err := h.reader.Messages(r.Context(), msgType, limit)
	if err != nil {
		h.logger.Error("listing messages failed", zap.String("type", msgType), zap.Error(err))
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	response.Success(w, messages)
}

// UnreadCount handles GET /messages/unread-count
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.reader.UnreadCount(r.Context())
	if err != nil {
		h.logger.Error("counting unread messages failed", zap.Error(err))
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	response.Success(w, map[string]int{"unread": count})
}
