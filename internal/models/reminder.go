package models

import "time"

// Reminder is created by the remindme command and deleted when it fires.
type Reminder struct {
	ID      int       `db:"id" json:"id"`
	UserID  string    `db:"user_id" json:"user_id"`
	GroupID string    `db:"group_id" json:"group_id"`
	Message string    `db:"message" json:"message"`
	DueAt   time.Time `db:"due_at" json:"due_at"`
}
