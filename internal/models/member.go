package models

// Member is the persisted record for one user in one group. The three
// counters are monotonically non-decreasing and only reset by a full
// backfill or the reset command.
type Member struct {
	ID           int    `db:"id" json:"id"`
	UserID       string `db:"user_id" json:"user_id"`
	GroupID      string `db:"group_id" json:"group_id"`
	Username     string `db:"username" json:"username"`
	AvatarURL    string `db:"avatar_url" json:"avatar_url"`
	MessageCount int    `db:"message_count" json:"message_count"`
	LikeCount    int    `db:"like_count" json:"like_count"`
	LikesGiven   int    `db:"likes_given" json:"likes_given"`
	Ignored      bool   `db:"is_ignored" json:"is_ignored"`
	Moderator    bool   `db:"is_mod" json:"is_mod"`
}
