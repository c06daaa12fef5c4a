package bot

import (
	"groupme-bot/internal/models"
)

// CommandContext is the execution-time bundle handed to a command handler.
// It is built per invocation and owned by that invocation alone; queued
// commands get a fresh one rebuilt on the worker side.
type CommandContext struct {
	Command string
	// Args is the trailing text after the command, trimmed; empty means the
	// sender supplied none.
	Args  string
	Event models.InboundEvent

	// Group is the persisted group record, nil when the group has not been
	// initialized yet.
	Group *models.Group
	// Sender is the sender's persisted member record, nil when unknown.
	Sender *models.Member
}
