package topicmod

import (
	"github.com/horizonte-social/charla/topicmod/engine"
	"github.com/horizonte-social/charla/topicmod/rategate"
)

type Engine = engine.Engine
type MessageEvent = engine.MessageEvent
type MessageSink = engine.MessageSink
type ChatType = engine.ChatType
type DeleteResult = engine.DeleteResult

var (
	ChatTypePrivate    = engine.ChatTypePrivate
	ChatTypeGroup      = engine.ChatTypeGroup
	ChatTypeSupergroup = engine.ChatTypeSupergroup
	ChatTypeChannel    = engine.ChatTypeChannel

	DeleteOK               = engine.DeleteOK
	DeletePermissionDenied = engine.DeletePermissionDenied
	DeleteTransient        = engine.DeleteTransient

	VerdictAllow  = rategate.VerdictAllow
	VerdictDelete = rategate.VerdictDelete

	StateActive  = rategate.StateActive
	StateBlocked = rategate.StateBlocked
)
