package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/horizonte-social/charla/telegram"
	"github.com/horizonte-social/charla/topicmod/admingate"
	"github.com/horizonte-social/charla/topicmod/engine"
)

// telegramSink adapts the Bot API client to the engine's MessageSink,
// classifying delete failures so the engine can log a missing permission
// differently from a transient fault.
type telegramSink struct {
	client *telegram.Client
}

func (s *telegramSink) DeleteMessage(ctx context.Context, chatID string, messageID int) (engine.DeleteResult, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return engine.DeleteTransient, fmt.Errorf("invalid chat identifier %q: %w", chatID, err)
	}
	err = s.client.DeleteMessage(ctx, id, messageID)
	if err == nil {
		messagesDeleted.Inc()
		return engine.DeleteOK, nil
	}
	deletesFailed.Inc()
	if apiErr, ok := telegram.AsError(err); ok && apiErr.IsPermissionDenied() {
		return engine.DeletePermissionDenied, err
	}
	return engine.DeleteTransient, err
}

func (s *telegramSink) Reply(ctx context.Context, chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat identifier %q: %w", chatID, err)
	}
	_, err = s.client.SendMessage(ctx, id, text)
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	repliesSent.Inc()
	return nil
}

// telegramMembers adapts getChatMember to the admin gate's role lookup.
type telegramMembers struct {
	client *telegram.Client
}

func (m *telegramMembers) RoleOf(ctx context.Context, chatID string, userID int64) (admingate.Role, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat identifier %q: %w", chatID, err)
	}
	member, err := m.client.GetChatMember(ctx, id, userID)
	if err != nil {
		return "", err
	}
	return admingate.Role(member.Status), nil
}
