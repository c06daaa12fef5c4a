package models

// CustomCommand is a user-defined text command scoped to a group. It is
// consulted when an inbound !command does not match any built-in.
type CustomCommand struct {
	ID          int    `db:"id" json:"id"`
	GroupID     string `db:"group_id" json:"group_id"`
	Name        string `db:"command" json:"command"`
	Response    string `db:"response" json:"response"`
	Description string `db:"description" json:"description"`
	TimesUsed   int    `db:"times_used" json:"times_used"`
}
