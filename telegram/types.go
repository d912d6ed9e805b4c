package telegram

import "strings"

// Subset of the Bot API object model that the daemon consumes.
// https://core.telegram.org/bots/api#available-types

type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

type Message struct {
	MessageID int             `json:"message_id"`
	From      *User           `json:"from,omitempty"`
	Chat      Chat            `json:"chat"`
	Text      string          `json:"text,omitempty"`
	Caption   string          `json:"caption,omitempty"`
	Entities  []MessageEntity `json:"entities,omitempty"`
}

type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username,omitempty"`
}

type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type ChatMember struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

// Body returns the moderatable text of a message: the text itself, or the
// caption for media messages.
func (m *Message) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// Command extracts the bot command name from a message, without the leading
// slash or an @botname mention, lower-cased. Empty when the message is not a
// command (commands are marked by a bot_command entity at offset zero).
func (m *Message) Command() string {
	if m.Text == "" || !strings.HasPrefix(m.Text, "/") {
		return ""
	}
	for _, ent := range m.Entities {
		if ent.Type != "bot_command" || ent.Offset != 0 {
			continue
		}
		if ent.Length > len(m.Text) {
			return ""
		}
		cmd := m.Text[1:ent.Length]
		if i := strings.IndexByte(cmd, '@'); i >= 0 {
			cmd = cmd[:i]
		}
		return strings.ToLower(cmd)
	}
	return ""
}
