package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"groupme-bot/internal/models"
)

// ReminderRepository abstracts reminder persistence.
type ReminderRepository interface {
	CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error)
	ListDue(ctx context.Context, groupID string, now time.Time) ([]models.Reminder, error)
	DeleteReminder(ctx context.Context, id int) error
}

// ReminderRepo is a sqlx implementation of ReminderRepository.
type ReminderRepo struct {
	db *sqlx.DB
}

// NewReminderRepo constructs a ReminderRepo.
func NewReminderRepo(db *sqlx.DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

// CreateReminder inserts a reminder.
func (r *ReminderRepo) CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error) {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO reminders (user_id, group_id, message, due_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		reminder.UserID, reminder.GroupID, reminder.Message, reminder.DueAt).
		Scan(&reminder.ID)
	return reminder, err
}

// ListDue returns reminders in the group whose due time has passed.
func (r *ReminderRepo) ListDue(ctx context.Context, groupID string, now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.SelectContext(ctx, &reminders, `SELECT id, user_id, group_id, message, due_at FROM reminders WHERE group_id=$1 AND due_at <= $2 ORDER BY due_at`, groupID, now)
	return reminders, err
}

// DeleteReminder removes a fired reminder.
func (r *ReminderRepo) DeleteReminder(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id=$1`, id)
	return err
}
