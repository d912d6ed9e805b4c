package engine

import "context"

type DeleteResult int

const (
	DeleteOK = DeleteResult(iota)
	DeletePermissionDenied
	DeleteTransient
)

func (r DeleteResult) String() string {
	switch r {
	case DeleteOK:
		return "ok"
	case DeletePermissionDenied:
		return "permission-denied"
	case DeleteTransient:
		return "transient-error"
	default:
		return "unknown"
	}
}

// MessageSink is the outbound half of the chat platform: deleting a message
// by identifier and replying with text. DeleteMessage classifies failures so
// the engine can log a missing "delete messages" permission differently from
// a network blip; err carries the underlying cause when the result is not
// DeleteOK.
type MessageSink interface {
	DeleteMessage(ctx context.Context, chatID string, messageID int) (DeleteResult, error)
	Reply(ctx context.Context, chatID string, text string) error
}
