package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"groupme-bot/internal/groupme"
	"groupme-bot/internal/models"
	"groupme-bot/internal/observability"
	"groupme-bot/internal/repositories"
)

// ActivityBroadcaster pushes bot activity events to connected websocket
// clients. A nil broadcaster disables the feed.
type ActivityBroadcaster interface {
	BroadcastBotEvent(groupID string, event models.BotEvent)
}

// ReminderScheduler fires due reminders. It runs on every inbound event for
// a group rather than on a timer, so reminders can fire late in a quiet group
// but never early.
type ReminderScheduler struct {
	reminders repositories.ReminderRepository
	members   repositories.MemberRepository
	client    groupme.Client
	hub       ActivityBroadcaster
}

// NewReminderScheduler constructs a ReminderScheduler.
func NewReminderScheduler(reminders repositories.ReminderRepository, members repositories.MemberRepository, client groupme.Client, hub ActivityBroadcaster) *ReminderScheduler {
	return &ReminderScheduler{reminders: reminders, members: members, client: client, hub: hub}
}

// FireDue sends every reminder in the group whose due time has passed and
// deletes each record only after its send succeeded. A failed send keeps the
// record so the reminder fires again on the next event instead of being lost.
func (s *ReminderScheduler) FireDue(ctx context.Context, groupID string, now time.Time) {
	due, err := s.reminders.ListDue(ctx, groupID, now)
	if err != nil {
		log.Printf("reminders: list due failed group=%s: %v", groupID, err)
		return
	}

	for _, reminder := range due {
		nickname := s.ownerNickname(ctx, reminder)
		text := fmt.Sprintf("Reminding @%s:\n%s", nickname, reminder.Message)
		mention := groupme.NewMentions([][2]int{{10, len(nickname) + 1}}, []string{reminder.UserID})

		if err := s.client.Send(ctx, groupID, text, mention); err != nil {
			log.Printf("reminders: send failed group=%s reminder=%d: %v", groupID, reminder.ID, err)
			continue
		}
		if err := s.reminders.DeleteReminder(ctx, reminder.ID); err != nil {
			log.Printf("reminders: delete failed group=%s reminder=%d: %v", groupID, reminder.ID, err)
			continue
		}

		observability.IncReminderFired()
		if s.hub != nil {
			s.hub.BroadcastBotEvent(groupID, models.BotEvent{
				Type:     "reminder_fired",
				GroupID:  groupID,
				UserID:   reminder.UserID,
				Reminder: reminder.ID,
			})
		}
	}
}

func (s *ReminderScheduler) ownerNickname(ctx context.Context, reminder models.Reminder) string {
	member, err := s.members.GetByUserID(ctx, reminder.GroupID, reminder.UserID)
	if err != nil {
		if !errors.Is(err, repositories.ErrMemberNotFound) {
			log.Printf("reminders: member lookup failed group=%s user=%s: %v", reminder.GroupID, reminder.UserID, err)
		}
		return "someone"
	}
	return member.Username
}
