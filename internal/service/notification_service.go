package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/domain"
	"github.com/chisomo/loan-ledger/internal/repository"
	customError "github.com/chisomo/loan-ledger/pkg/errors"
)

// Notifier is the port through which the ledger and the sweeps emit
// human-readable events. Callers treat emission as fire-and-forget: a
// failed notification is logged, never retried, and never fails the
// operation that produced it.
type Notifier interface {
	Emit(ctx context.Context, msg *domain.Message) error
}

// MessageNotifier records notifications in the message store.
type MessageNotifier struct {
	messages repository.MessageRepository
	logger   *zap.Logger
}

func NewMessageNotifier(messages repository.MessageRepository, logger *zap.Logger) *MessageNotifier {
	return &MessageNotifier{
		messages: messages,
		logger:   logger,
	}
}

func (n *MessageNotifier) Emit(ctx context.Context, msg *domain.Message) error {
	if err := n.messages.Create(ctx, msg); err != nil {
		n.logger.Error("failed to record notification",
			zap.String("type", msg.Type),
			zap.String("title", msg.Title),
			zap.Error(err),
		)
		return customError.WrapDatabaseError(err)
	}

	n.logger.Info("notification recorded",
		zap.String("type", msg.Type),
		zap.String("title", msg.Title),
		zap.String("priority", msg.Priority),
	)
	return nil
}

// Messages lists stored notifications of one type, newest first.
func (n *MessageNotifier) Messages(ctx context.Context, msgType string, limit int) ([]*domain.Message, error) {
	messages, err := n.messages.ListByType(ctx, msgType, limit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return messages, nil
}

// UnreadCount reports how many notifications are still unread.
func (n *MessageNotifier) UnreadCount(ctx context.Context) (int, error) {
	count, err := n.messages.CountUnread(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	return count, nil
}
