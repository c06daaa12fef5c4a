package bot

import (
	"fmt"
	"time"

	"groupme-bot/internal/groupme"
)

// MemberDelta is the per-member outcome of one aggregation pass.
type MemberDelta struct {
	Messages      int
	LikesReceived int
	LikesGiven    int
}

// Aggregate is the result of folding a batch of messages. Deltas are keyed by
// user id and only contain members present in the resolvable set.
type Aggregate struct {
	Deltas        map[string]MemberDelta
	TotalMessages int
	TotalLikes    int

	// TopMessage is the single most-liked message in the batch: its image
	// attachment URL when it has one, otherwise "name: text". Ties keep the
	// earliest-seen incumbent.
	TopMessage string
	TopLikes   int
	HasTop     bool

	// Newest is the latest created-at seen, the candidate high-water mark.
	Newest time.Time
}

// AggregateMessages folds a batch of messages into counter deltas. The input
// order is unconstrained. known is the set of resolvable member ids: messages
// from unknown authors (other bots, departed members) still count their
// resolvable likers but contribute no author-side increments.
//
// The fold is pure: running it twice over the same batch yields identical
// results.
func AggregateMessages(messages []groupme.Message, known map[string]bool) Aggregate {
	agg := Aggregate{Deltas: make(map[string]MemberDelta)}

	for _, msg := range messages {
		agg.TotalMessages++
		likes := len(msg.FavoritedBy)

		if known[msg.UserID] {
			delta := agg.Deltas[msg.UserID]
			delta.Messages++
			delta.LikesReceived += likes
			agg.Deltas[msg.UserID] = delta
		}

		for _, liker := range msg.FavoritedBy {
			agg.TotalLikes++
			if known[liker] {
				delta := agg.Deltas[liker]
				delta.LikesGiven++
				agg.Deltas[liker] = delta
			}
		}

		if !agg.HasTop || likes > agg.TopLikes {
			agg.HasTop = true
			agg.TopLikes = likes
			agg.TopMessage = renderMessage(msg)
		}

		if created := msg.CreatedAt.Time(); created.After(agg.Newest) {
			agg.Newest = created
		}
	}

	return agg
}

func renderMessage(msg groupme.Message) string {
	if url, ok := msg.ImageURL(); ok {
		return url
	}
	return fmt.Sprintf("%s: %s", msg.Name, msg.Text)
}
