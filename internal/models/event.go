package models

// InboundEvent is the GroupMe callback payload for one posted message.
// It lives for the duration of a single webhook request.
type InboundEvent struct {
	Text       string `json:"text"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url"`
	SenderType string `json:"sender_type"`
	GroupID    string `json:"group_id"`
}

// BotEvent is broadcast over the activity websocket feed.
type BotEvent struct {
	Type     string `json:"type"`
	GroupID  string `json:"group_id"`
	Command  string `json:"command,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
	JobID    string `json:"job_id,omitempty"`
	Reminder int    `json:"reminder_id,omitempty"`
}
