package main

import (
	"context"
	"strconv"
	"time"

	"github.com/horizonte-social/charla/telegram"
	"github.com/horizonte-social/charla/topicmod"
)

// polling interval after an upstream failure; the Bot API has no resumable
// cursor beyond the update offset, so we just wait and re-poll
var errorRetryDelay = 10 * time.Second

// RunConsumer long-polls the Bot API for updates and feeds them to the
// moderation engine. Updates are handled sequentially, preserving per-chat
// ordering; deletes are scheduled off this goroutine by the engine. A
// failing poll or a failing update never terminates the loop.
func (s *Server) RunConsumer(ctx context.Context) error {
	if err := s.checkIdentity(ctx); err != nil {
		return err
	}

	// fast-forward past updates queued while we were down, matching the
	// previous instance having been the one responsible for them
	offset, err := s.dropPendingUpdates(ctx)
	if err != nil {
		s.logger.Warn("failed to drop pending updates", "err", err)
	}

	s.logger.Info("consuming updates", "offset", offset, "pollTimeout", s.pollTimeout)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := s.client.GetUpdates(ctx, offset, s.pollTimeout)
		if err != nil {
			s.logger.Warn("fetching updates failed, will retry", "err", err, "offset", offset)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(errorRetryDelay):
			}
			continue
		}

		for i := range updates {
			u := &updates[i]
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			s.handleUpdate(ctx, u)
		}
	}
}

func (s *Server) dropPendingUpdates(ctx context.Context) (int64, error) {
	// offset -1 asks for only the newest queued update
	updates, err := s.client.GetUpdates(ctx, -1, 0)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}
	last := updates[len(updates)-1].UpdateID
	s.logger.Info("dropped pending updates", "lastUpdateID", last)
	return last + 1, nil
}

// updateMessage picks the moderatable message out of an update: a fresh
// message, or an edit (editing a keyword into an old message counts the
// same as posting it).
func updateMessage(u *telegram.Update) *telegram.Message {
	if u.Message != nil {
		return u.Message
	}
	return u.EditedMessage
}

func (s *Server) handleUpdate(ctx context.Context, u *telegram.Update) {
	msg := updateMessage(u)
	if msg == nil {
		return
	}
	updatesReceived.Inc()

	ctx, span := tracer.Start(ctx, "handleUpdate")
	defer span.End()

	evt := messageEvent(msg)
	if evt.Command != "" {
		commandsReceived.Inc()
		if err := s.engine.ProcessCommand(ctx, evt); err != nil {
			processFailures.Inc()
			s.logger.Error("processing command failed", "err", err, "chatID", evt.ChatID, "command", evt.Command)
		}
		return
	}
	if err := s.engine.ProcessMessage(ctx, evt); err != nil {
		processFailures.Inc()
		s.logger.Error("processing message failed", "err", err, "chatID", evt.ChatID, "messageID", evt.MessageID)
	}
}

// messageEvent maps a Bot API message to the engine's transport-neutral
// event. Channel posts carry no sender; they are marked as bot-authored so
// the engine filters them out the same way it filters our own messages.
func messageEvent(msg *telegram.Message) *topicmod.MessageEvent {
	evt := &topicmod.MessageEvent{
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		ChatType:  topicmod.ChatType(msg.Chat.Type),
		MessageID: msg.MessageID,
		Text:      msg.Body(),
		Command:   msg.Command(),
	}
	if msg.From != nil {
		evt.UserID = msg.From.ID
		evt.FromBot = msg.From.IsBot
	} else {
		evt.FromBot = true
	}
	return evt
}
