package engine

type ChatType string

const (
	ChatTypePrivate    = ChatType("private")
	ChatTypeGroup      = ChatType("group")
	ChatTypeSupergroup = ChatType("supergroup")
	ChatTypeChannel    = ChatType("channel")
)

func (ct ChatType) IsGroup() bool {
	return ct == ChatTypeGroup || ct == ChatTypeSupergroup
}

// MessageEvent is one inbound chat message, already mapped from the
// transport's update format. Text carries the message text or, for media
// messages, the caption. Command is the parsed bot-command name (without
// slash or bot mention) when the message is a command, empty otherwise.
type MessageEvent struct {
	ChatID    string
	ChatType  ChatType
	UserID    int64
	FromBot   bool
	MessageID int
	Text      string
	Command   string
}
