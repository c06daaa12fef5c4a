package bot

import (
	"context"
	"fmt"
	"math"
	"strings"

	"groupme-bot/internal/groupme"
)

func (c *Commands) stats(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID
	if cc.Group == nil {
		return c.send(ctx, groupID, Reply("initialize", "help"))
	}

	if err := c.send(ctx, groupID, "Gathering group stats"); err != nil {
		return err
	}

	group, err := c.syncMembers(ctx, groupID)
	if err != nil {
		return err
	}

	// Only messages strictly newer than the high-water mark: the boundary
	// message was counted by the previous pass.
	messages, err := FetchSince(ctx, c.client, groupID, cc.Group.LastUpdated)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	if _, err := c.applyStats(ctx, groupID, group, messages); err != nil {
		return err
	}
	return c.send(ctx, groupID, fmt.Sprintf("%s/groups/%s/stats", c.baseURL, groupID))
}

func (c *Commands) slowStats(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID
	if cc.Group == nil {
		return c.send(ctx, groupID, Reply("initialize", "help"))
	}

	if err := c.send(ctx, groupID, "Loading all messages..."); err != nil {
		return err
	}

	if err := c.members.ResetCounters(ctx, groupID); err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}

	group, err := c.syncMembers(ctx, groupID)
	if err != nil {
		return err
	}

	messages, err := FetchAll(ctx, c.client, groupID)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	agg, err := c.applyStats(ctx, groupID, group, messages)
	if err != nil {
		return err
	}
	if !agg.Newest.IsZero() {
		if err := c.groups.SetLastUpdated(ctx, groupID, agg.Newest); err != nil {
			return fmt.Errorf("set last updated: %w", err)
		}
	}
	return c.send(ctx, groupID, fmt.Sprintf("%s/groups/%s/stats", c.baseURL, groupID))
}

// applyStats folds the batch and persists the deltas: per-member counters via
// atomic increments, then the group row's totals and high-water mark.
func (c *Commands) applyStats(ctx context.Context, groupID string, group groupme.Group, messages []groupme.Message) (Aggregate, error) {
	records, err := c.members.ListMembers(ctx, groupID)
	if err != nil {
		return Aggregate{}, fmt.Errorf("list members: %w", err)
	}
	known := make(map[string]bool, len(records))
	for _, record := range records {
		known[record.UserID] = true
	}

	agg := AggregateMessages(messages, known)

	for userID, delta := range agg.Deltas {
		if err := c.members.IncrementCounters(ctx, groupID, userID, delta.Messages, delta.LikesReceived, delta.LikesGiven); err != nil {
			return agg, fmt.Errorf("increment counters for %s: %w", userID, err)
		}
	}

	if err := c.groups.UpdateStats(ctx, groupID, group.Name, group.Messages.Count, len(group.Members), agg.TotalLikes, agg.Newest); err != nil {
		return agg, fmt.Errorf("update group stats: %w", err)
	}
	if agg.HasTop {
		if err := c.groups.SetTopMessage(ctx, groupID, agg.TopMessage, agg.TopLikes); err != nil {
			return agg, fmt.Errorf("set top message: %w", err)
		}
	}
	return agg, nil
}

// summary reports the last two hours without touching the long-lived
// counters.
func (c *Commands) summary(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID

	group, err := c.client.ShowGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("show group: %w", err)
	}

	boundary := c.now().Add(-summaryWindow)
	messages, err := FetchSince(ctx, c.client, groupID, boundary)
	if err != nil {
		return fmt.Errorf("fetch window: %w", err)
	}

	known := make(map[string]bool, len(group.Members))
	for _, member := range group.Members {
		known[member.UserID] = true
	}
	agg := AggregateMessages(messages, known)

	if agg.TotalMessages == 0 {
		return c.send(ctx, groupID, "Nothing happened in the past 2 hours")
	}

	topRecv, recv := c.topBy(group, agg, func(d MemberDelta) float64 { return float64(d.LikesReceived) })
	topGive, given := c.topBy(group, agg, func(d MemberDelta) float64 { return float64(d.LikesGiven) })
	topSend, sent := c.topBy(group, agg, func(d MemberDelta) float64 { return float64(d.Messages) })
	topRatio, ratio := c.topBy(group, agg, func(d MemberDelta) float64 { return likeRatio(d) })

	var report strings.Builder
	fmt.Fprintf(&report, "Summary of the past 2 hours:\n\n")
	fmt.Fprintf(&report, "Messages sent: %d\n", agg.TotalMessages)
	fmt.Fprintf(&report, "Likes given out: %d\n\n", agg.TotalLikes)
	fmt.Fprintf(&report, "Most likes received:\n  %s - %.0f\n", topRecv, recv)
	fmt.Fprintf(&report, "Most likes given:\n  %s - %.0f\n", topGive, given)
	fmt.Fprintf(&report, "Most messages sent:\n  %s - %.0f\n", topSend, sent)
	fmt.Fprintf(&report, "Best like/message ratio:\n  %s - %.2f\n\n", topRatio, ratio)
	fmt.Fprintf(&report, "Most liked message (%d likes):\n%s", agg.TopLikes, agg.TopMessage)

	return c.send(ctx, groupID, report.String())
}

// topBy walks the roster in order and keeps the first member with the
// strictly greatest value, so ties resolve to the earliest roster entry.
func (c *Commands) topBy(group groupme.Group, agg Aggregate, value func(MemberDelta) float64) (string, float64) {
	best := math.Inf(-1)
	name := "nobody"
	for _, member := range group.Members {
		v := value(agg.Deltas[member.UserID])
		if v > best {
			best = v
			name = member.Nickname
		}
	}
	if math.IsInf(best, -1) {
		return name, 0
	}
	return name, best
}

// likeRatio is likes received per message sent, defined as exactly 0.0 for
// members with no messages.
func likeRatio(d MemberDelta) float64 {
	if d.Messages == 0 {
		return 0.0
	}
	return math.Round(float64(d.LikesReceived)/float64(d.Messages)*100) / 100
}
