package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"groupme-bot/internal/groupme"
	"groupme-bot/internal/models"
	"groupme-bot/internal/observability"
	"groupme-bot/internal/queue"
	"groupme-bot/internal/repositories"
	"groupme-bot/internal/telemetry"
)

// commandPattern matches a leading ! followed by the characters a command
// name may contain. Matching is case-insensitive; names are folded to lower
// case before registry lookup.
var commandPattern = regexp.MustCompile("(?i)^!([\\w.,/#$%^&*;:{}=\\-_`~()]+)")

// Dispatcher routes inbound webhook events: parse, authorize, dispatch inline
// or enqueue, then fire due reminders.
type Dispatcher struct {
	registry  *Registry
	groups    repositories.GroupRepository
	members   repositories.MemberRepository
	commands  repositories.CommandRepository
	client    groupme.Client
	scheduler *ReminderScheduler
	jobs      queue.Enqueuer
	hub       ActivityBroadcaster
	audit     *telemetry.AuditEmitter
	now       func() time.Time
}

// NewDispatcher constructs a Dispatcher. The job queue is attached separately
// with SetJobQueue because queue workers need the dispatcher as their
// executor.
func NewDispatcher(
	registry *Registry,
	groups repositories.GroupRepository,
	members repositories.MemberRepository,
	commands repositories.CommandRepository,
	client groupme.Client,
	scheduler *ReminderScheduler,
	hub ActivityBroadcaster,
	audit *telemetry.AuditEmitter,
) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		groups:    groups,
		members:   members,
		commands:  commands,
		client:    client,
		scheduler: scheduler,
		hub:       hub,
		audit:     audit,
		now:       time.Now,
	}
}

// SetJobQueue attaches the queue used for commands that must not block the
// webhook response path.
func (d *Dispatcher) SetJobQueue(jobs queue.Enqueuer) {
	d.jobs = jobs
}

// SetClock overrides the dispatcher's clock.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Handle processes one inbound event. It never returns an error: the webhook
// answers 200 on every path and handler failures surface as chat replies (or
// their absence), not response codes.
func (d *Dispatcher) Handle(ctx context.Context, event models.InboundEvent) {
	// System and bot messages never trigger commands or reminders; answering
	// them risks bot-to-bot loops.
	if event.SenderType != "user" {
		return
	}

	ctx, span := otel.Tracer("groupme-bot/dispatch").Start(ctx, "dispatch.handle")
	span.SetAttributes(attribute.String("group_id", event.GroupID))
	defer span.End()

	d.process(ctx, event)

	// Reminders ride on any inbound traffic, not on command execution, so
	// they fire even when the event matched nothing or the sender is ignored.
	d.scheduler.FireDue(ctx, event.GroupID, d.now())
}

func (d *Dispatcher) process(ctx context.Context, event models.InboundEvent) {
	text := strings.TrimSpace(event.Text)
	requestID := uuid.NewString()

	group, err := d.groups.GetGroup(ctx, event.GroupID)
	hasGroup := err == nil
	if errors.Is(err, repositories.ErrGroupNotFound) {
		d.send(ctx, event.GroupID, Reply("initialize", "help"))
	} else if err != nil {
		log.Printf("dispatch: group lookup failed group=%s: %v", event.GroupID, err)
	}

	match := commandPattern.FindStringSubmatch(text)
	if match == nil {
		return
	}
	name := strings.ToLower(match[1])

	sender := d.senderRecord(ctx, event)
	if sender != nil && sender.Ignored {
		d.send(ctx, event.GroupID, Reply("dispatch", "ignored"))
		d.audit.Emit(ctx, "WARN", fmt.Sprintf("ignored member attempted !%s", name), requestID, event.GroupID, &event.UserID)
		observability.IncCommand(name, "ignored")
		return
	}

	args := ""
	if parts := strings.SplitN(text, " ", 2); len(parts) == 2 {
		args = strings.TrimSpace(parts[1])
	}

	desc, found := d.registry.Lookup(name)
	if !found {
		d.customCommand(ctx, event, name, args)
		return
	}

	cc := &CommandContext{Command: name, Args: args, Event: event, Sender: sender}
	if hasGroup {
		cc.Group = &group
	}

	if desc.Restricted && (sender == nil || !sender.Moderator) {
		d.send(ctx, event.GroupID, fmt.Sprintf(Reply("dispatch", "mod_only"), name))
		d.audit.Emit(ctx, "WARN", fmt.Sprintf("non-mod attempted !%s", name), requestID, event.GroupID, &event.UserID)
		observability.IncCommand(name, "denied")
		return
	}

	if desc.RequiresArgs && args == "" {
		d.send(ctx, event.GroupID, Reply(name, "help"))
		observability.IncCommand(name, "missing_args")
		return
	}

	if desc.Queued {
		job := queue.Job{
			ID:         uuid.NewString(),
			Command:    name,
			Args:       args,
			Event:      event,
			EnqueuedAt: d.now(),
		}
		if err := d.jobs.EnqueueJob(ctx, job); err != nil {
			log.Printf("dispatch: enqueue failed command=%s group=%s: %v", name, event.GroupID, err)
			observability.IncCommand(name, "enqueue_failed")
			return
		}
		observability.IncCommand(name, "queued")
		d.broadcast(event.GroupID, models.BotEvent{Type: "job_enqueued", GroupID: event.GroupID, Command: name, UserID: event.UserID, JobID: job.ID})
		return
	}

	if err := desc.Handler(ctx, cc); err != nil {
		log.Printf("dispatch: command failed command=%s group=%s: %v", name, event.GroupID, err)
		observability.IncCommand(name, "failed")
	} else {
		observability.IncCommand(name, "ok")
	}
	d.broadcast(event.GroupID, models.BotEvent{Type: "command_dispatched", GroupID: event.GroupID, Command: name, UserID: event.UserID})
}

// ExecuteJob is the queue worker's executor: it re-resolves the handler and
// rebuilds the command context from storage, then runs the handler to
// completion under the worker's timeout.
func (d *Dispatcher) ExecuteJob(ctx context.Context, job queue.Job) error {
	desc, found := d.registry.Lookup(job.Command)
	if !found {
		return fmt.Errorf("unknown queued command %q", job.Command)
	}

	cc := &CommandContext{Command: job.Command, Args: job.Args, Event: job.Event, Sender: d.senderRecord(ctx, job.Event)}
	if group, err := d.groups.GetGroup(ctx, job.Event.GroupID); err == nil {
		cc.Group = &group
	} else if !errors.Is(err, repositories.ErrGroupNotFound) {
		return fmt.Errorf("group lookup: %w", err)
	}

	if err := desc.Handler(ctx, cc); err != nil {
		return err
	}
	d.broadcast(job.Event.GroupID, models.BotEvent{Type: "command_completed", GroupID: job.Event.GroupID, Command: job.Command, UserID: job.Event.UserID, JobID: job.ID})
	return nil
}

// customCommand is the registry-miss fallback. It serves stored user-defined
// commands, supports the "!<name>: <response>" definition shorthand, and
// otherwise reports the command as unknown.
func (d *Dispatcher) customCommand(ctx context.Context, event models.InboundEvent, name, args string) {
	groupID := event.GroupID
	trimmed := strings.TrimSuffix(name, ":")

	if strings.HasSuffix(name, ":") && args != "" && trimmed != "" {
		d.defineCustomCommand(ctx, groupID, trimmed, args)
		return
	}

	cmd, err := d.commands.GetCommand(ctx, groupID, trimmed)
	if errors.Is(err, repositories.ErrCommandNotFound) {
		d.send(ctx, groupID, fmt.Sprintf(Reply("dispatch", "unknown"), name))
		observability.IncCommand("custom", "unknown")
		return
	}
	if err != nil {
		log.Printf("dispatch: custom command lookup failed group=%s name=%s: %v", groupID, trimmed, err)
		return
	}

	d.send(ctx, groupID, cmd.Response)
	if err := d.commands.IncrementUsage(ctx, groupID, cmd.Name); err != nil {
		log.Printf("dispatch: usage increment failed group=%s name=%s: %v", groupID, cmd.Name, err)
	}
	observability.IncCommand("custom", "ok")
}

func (d *Dispatcher) defineCustomCommand(ctx context.Context, groupID, name, response string) {
	if _, builtin := d.registry.Lookup(name); builtin {
		d.send(ctx, groupID, fmt.Sprintf(Reply("add", "failure"), name))
		return
	}
	if _, err := d.commands.GetCommand(ctx, groupID, name); err == nil {
		d.send(ctx, groupID, fmt.Sprintf(Reply("add", "failure"), name))
		return
	} else if !errors.Is(err, repositories.ErrCommandNotFound) {
		log.Printf("dispatch: custom command lookup failed group=%s name=%s: %v", groupID, name, err)
		return
	}

	cmd := models.CustomCommand{
		GroupID:     groupID,
		Name:        name,
		Response:    response,
		Description: "No description added yet!",
	}
	if err := d.commands.CreateCommand(ctx, cmd); err != nil {
		log.Printf("dispatch: custom command create failed group=%s name=%s: %v", groupID, name, err)
		return
	}
	d.send(ctx, groupID, fmt.Sprintf(Reply("add", "success"), name))
	observability.IncCommand("custom", "created")
}

func (d *Dispatcher) senderRecord(ctx context.Context, event models.InboundEvent) *models.Member {
	member, err := d.members.GetByUserID(ctx, event.GroupID, event.UserID)
	if err != nil {
		if !errors.Is(err, repositories.ErrMemberNotFound) {
			log.Printf("dispatch: sender lookup failed group=%s user=%s: %v", event.GroupID, event.UserID, err)
		}
		return nil
	}
	return &member
}

func (d *Dispatcher) send(ctx context.Context, groupID, text string) {
	if err := d.client.Send(ctx, groupID, text); err != nil {
		log.Printf("dispatch: send failed group=%s: %v", groupID, err)
	}
}

func (d *Dispatcher) broadcast(groupID string, event models.BotEvent) {
	if d.hub != nil {
		d.hub.BroadcastBotEvent(groupID, event)
	}
}
