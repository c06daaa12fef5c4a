package groupme

import (
	"strconv"
	"time"
)

// Timestamp unmarshals GroupMe's unix-second timestamps.
type Timestamp time.Time

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*t = Timestamp(time.Unix(secs, 0).UTC())
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(time.Time(t).Unix(), 10)), nil
}

// Time returns the timestamp as a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Attachment is a GroupMe message attachment. Only the fields for the
// attachment kinds the bot uses are mapped.
type Attachment struct {
	Type    string   `json:"type"`
	URL     string   `json:"url,omitempty"`
	Loci    [][2]int `json:"loci,omitempty"`
	UserIDs []string `json:"user_ids,omitempty"`
}

// NewImage builds an image attachment from an uploaded image URL.
func NewImage(url string) Attachment {
	return Attachment{Type: "image", URL: url}
}

// NewMentions builds a mentions attachment. Each locus is the [offset, length]
// of the mention inside the message text, paired index-wise with userIDs.
func NewMentions(loci [][2]int, userIDs []string) Attachment {
	return Attachment{Type: "mentions", Loci: loci, UserIDs: userIDs}
}

// Message is one message in a group's history.
type Message struct {
	ID          string       `json:"id"`
	GroupID     string       `json:"group_id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`
	AvatarURL   string       `json:"avatar_url"`
	Text        string       `json:"text"`
	CreatedAt   Timestamp    `json:"created_at"`
	FavoritedBy []string     `json:"favorited_by"`
	Attachments []Attachment `json:"attachments"`
}

// ImageURL returns the message's first image attachment URL, if any.
func (m Message) ImageURL() (string, bool) {
	for _, a := range m.Attachments {
		if a.Type == "image" && a.URL != "" {
			return a.URL, true
		}
	}
	return "", false
}

// Member is a group member as reported by the platform.
type Member struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"image_url"`
}

// Group is the platform's view of a group.
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatorUserID string    `json:"creator_user_id"`
	CreatedAt     Timestamp `json:"created_at"`
	Members       []Member  `json:"members"`
	Messages      struct {
		Count int `json:"count"`
	} `json:"messages"`
}

// MemberByUserID finds a platform member by user id.
func (g Group) MemberByUserID(userID string) (Member, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// Bot is one registered GroupMe bot.
type Bot struct {
	BotID       string `json:"bot_id"`
	GroupID     string `json:"group_id"`
	CallbackURL string `json:"callback_url"`
}
