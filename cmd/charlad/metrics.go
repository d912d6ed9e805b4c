package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("charlad")

var updatesReceived = promauto.NewCounter(prometheus.CounterOpts{
	Name: "charlad_updates_received",
	Help: "Number of updates received from the chat platform",
})

var commandsReceived = promauto.NewCounter(prometheus.CounterOpts{
	Name: "charlad_commands_received",
	Help: "Number of bot commands received",
})

var processFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "charlad_process_failures",
	Help: "Number of updates that failed processing",
})

var messagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "charlad_messages_deleted",
	Help: "Number of suppressed messages deleted",
})

var deletesFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "charlad_deletes_failed",
	Help: "Number of message deletions that failed",
})

var repliesSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: "charlad_replies_sent",
	Help: "Number of command replies sent",
})
