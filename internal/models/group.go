package models

import "time"

// Group holds the per-group aggregate counters maintained by the stats
// pipeline. LastUpdated is the high-water mark of the newest message that has
// already been folded into the counters; it only ever moves forward.
type Group struct {
	ID           int       `db:"id" json:"id"`
	GroupID      string    `db:"group_id" json:"group_id"`
	Name         string    `db:"group_name" json:"group_name"`
	MessageCount int       `db:"message_count" json:"message_count"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	MemberCount  int       `db:"member_count" json:"member_count"`
	TopMessage   string    `db:"top_message" json:"top_message"`
	TopLikes     int       `db:"top_likes" json:"top_likes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastUpdated  time.Time `db:"last_updated" json:"last_updated"`
}
