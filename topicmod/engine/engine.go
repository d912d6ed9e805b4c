package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/horizonte-social/charla/topicmod/admingate"
	"github.com/horizonte-social/charla/topicmod/keyword"
	"github.com/horizonte-social/charla/topicmod/rategate"
)

// runtime wiring a message source through the keyword matcher and rate gate,
// invoking the sink to delete or reply.
//
// TODO: careful when initializing: several fields should not be null, even though they are pointer type.
type Engine struct {
	Logger  *slog.Logger
	Matcher *keyword.Matcher
	Gate    *rategate.Gate
	Admins  *admingate.Gate
	Sink    MessageSink

	// wait before deleting, to reduce visible flicker
	DeleteDelay time.Duration

	// Now is the clock; nil means time.Now. Tests override it.
	Now func() time.Time
}

func (eng *Engine) now() time.Time {
	if eng.Now != nil {
		return eng.Now()
	}
	return time.Now().UTC()
}

// ProcessMessage runs one plain (non-command) message through the gate.
// Non-group chats, the bot's own messages, and empty texts are ignored
// before any matching happens.
func (eng *Engine) ProcessMessage(ctx context.Context, evt *MessageEvent) error {
	// similar to an HTTP server, we want to recover any panics from event processing
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("moderation event execution exception", "err", r, "chatID", evt.ChatID, "messageID", evt.MessageID)
		}
	}()

	if !evt.ChatType.IsGroup() || evt.FromBot || evt.Text == "" {
		return nil
	}

	term := eng.Matcher.Match(evt.Text)
	if term == "" {
		return nil
	}

	verdict, counter, err := eng.Gate.HitWatched(ctx, evt.ChatID, eng.now())
	if err != nil {
		return fmt.Errorf("gating watched message: %w", err)
	}
	eng.Logger.Info("watched message processed",
		"chatID", evt.ChatID,
		"messageID", evt.MessageID,
		"term", term,
		"count", counter.Count,
		"verdict", verdict.String(),
	)

	if verdict == rategate.VerdictDelete {
		eng.scheduleDelete(ctx, evt.ChatID, evt.MessageID)
	}
	return nil
}

// Deletes happen outside the counter's critical section and off the
// dispatch goroutine, so one slow platform call never stalls delivery.
// In-flight deletes may be abandoned at shutdown; the counter mutation
// already persisted.
func (eng *Engine) scheduleDelete(ctx context.Context, chatID string, messageID int) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if eng.DeleteDelay > 0 {
			time.Sleep(eng.DeleteDelay)
		}
		res, err := eng.Sink.DeleteMessage(ctx, chatID, messageID)
		switch res {
		case DeleteOK:
		case DeletePermissionDenied:
			// counter state is unaffected; no retry storm
			eng.Logger.Warn("missing permission to delete message", "chatID", chatID, "messageID", messageID, "err", err)
		default:
			eng.Logger.Warn("failed to delete message", "chatID", chatID, "messageID", messageID, "result", res.String(), "err", err)
		}
	}()
}

// Command names understood by ProcessCommand. The Spanish names are what the
// venue's members know; the English ones are aliases.
const (
	CmdStart  = "start"
	CmdStatus = "tema_estado"
	CmdReset  = "tema_reset"
)

func canonicalCommand(name string) string {
	switch name {
	case "status", "count", CmdStatus:
		return CmdStatus
	case "reset", CmdReset:
		return CmdReset
	case CmdStart:
		return CmdStart
	default:
		return ""
	}
}

// ProcessCommand handles the bot's command surface. Status and reset are
// admin-gated in groups and silently ignored for everyone else; start only
// replies in one-to-one chats.
func (eng *Engine) ProcessCommand(ctx context.Context, evt *MessageEvent) error {
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("moderation command execution exception", "err", r, "chatID", evt.ChatID, "command", evt.Command)
		}
	}()

	switch canonicalCommand(evt.Command) {
	case CmdStart:
		if evt.ChatType.IsGroup() {
			return nil
		}
		text := fmt.Sprintf("Topic guard is up. Threshold is %d watched messages per chat; grant me the \"delete messages\" right in the group.", eng.Gate.Threshold)
		return eng.Sink.Reply(ctx, evt.ChatID, text)

	case CmdStatus:
		if !eng.Admins.IsAuthorized(ctx, evt.ChatID, evt.UserID, evt.ChatType == ChatTypePrivate) {
			eng.Logger.Debug("ignoring status command from non-admin", "chatID", evt.ChatID, "userID", evt.UserID)
			return nil
		}
		st, err := eng.Gate.Inspect(ctx, evt.ChatID, eng.now())
		if err != nil {
			return fmt.Errorf("inspecting chat state: %w", err)
		}
		return eng.Sink.Reply(ctx, evt.ChatID, statusText(st))

	case CmdReset:
		if !eng.Admins.IsAuthorized(ctx, evt.ChatID, evt.UserID, evt.ChatType == ChatTypePrivate) {
			eng.Logger.Debug("ignoring reset command from non-admin", "chatID", evt.ChatID, "userID", evt.UserID)
			return nil
		}
		if err := eng.Gate.Reset(ctx, evt.ChatID, eng.now()); err != nil {
			return fmt.Errorf("resetting chat state: %w", err)
		}
		eng.Logger.Info("chat counter reset by admin", "chatID", evt.ChatID, "userID", evt.UserID)
		return eng.Sink.Reply(ctx, evt.ChatID, "Topic reset: count back to 0 and any block lifted.")
	}
	return nil
}

func statusText(st rategate.Status) string {
	if st.State == rategate.StateBlocked {
		mins := int(st.BlockRemaining.Minutes())
		if mins < 0 {
			mins = 0
		}
		return fmt.Sprintf("Topic state: BLOCKED. ~%d min remaining. Count %d/%d.", mins, st.Count, st.Threshold)
	}
	return fmt.Sprintf("Topic state: ACTIVE. Count %d/%d. Blocks when the threshold is reached.", st.Count, st.Threshold)
}
