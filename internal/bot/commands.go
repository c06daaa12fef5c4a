package bot

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"groupme-bot/internal/groupme"
	"groupme-bot/internal/models"
	"groupme-bot/internal/repositories"
)

const summaryWindow = 2 * time.Hour

// galleryPages caps how far back randgal searches for image attachments.
const galleryPages = 10

// Commands bundles the built-in command handlers and their dependencies.
type Commands struct {
	registry  *Registry
	groups    repositories.GroupRepository
	members   repositories.MemberRepository
	commands  repositories.CommandRepository
	reminders repositories.ReminderRepository
	client    groupme.Client
	baseURL   string

	now     func() time.Time
	randInt func(n int) int
}

// NewCommands constructs the built-in command set.
func NewCommands(
	groups repositories.GroupRepository,
	members repositories.MemberRepository,
	commands repositories.CommandRepository,
	reminders repositories.ReminderRepository,
	client groupme.Client,
	baseURL string,
) *Commands {
	return &Commands{
		groups:    groups,
		members:   members,
		commands:  commands,
		reminders: reminders,
		client:    client,
		baseURL:   baseURL,
		now:       time.Now,
		randInt:   rand.Intn,
	}
}

// SetClock overrides the command clock.
func (c *Commands) SetClock(now func() time.Time) {
	c.now = now
}

// SetRand overrides the random source.
func (c *Commands) SetRand(randInt func(n int) int) {
	c.randInt = randInt
}

// Register installs every built-in command into the registry. Called once
// during startup composition, before the dispatcher serves events.
func (c *Commands) Register(reg *Registry) {
	c.registry = reg

	reg.Register(Descriptor{Name: "initialize", Handler: c.initialize})
	reg.Register(Descriptor{Name: "reset", Handler: c.reset, Restricted: true, Hidden: true})
	reg.Register(Descriptor{Name: "add", Handler: c.add, RequiresArgs: true})
	reg.Register(Descriptor{Name: "edit", Handler: c.edit, RequiresArgs: true, Restricted: true})
	reg.Register(Descriptor{Name: "delete", Handler: c.delete, RequiresArgs: true, Restricted: true})
	reg.Register(Descriptor{Name: "mod", Handler: c.mod, RequiresArgs: true, Restricted: true})
	reg.Register(Descriptor{Name: "unmod", Handler: c.unmod, RequiresArgs: true, Restricted: true})
	reg.Register(Descriptor{Name: "ignore", Handler: c.ignore, RequiresArgs: true, Restricted: true})
	reg.Register(Descriptor{Name: "unignore", Handler: c.unignore, RequiresArgs: true, Restricted: true})
	reg.Register(Descriptor{Name: "commands", Handler: c.commandsInfo})
	reg.Register(Descriptor{Name: "stats", Handler: c.stats, Queued: true})
	reg.Register(Descriptor{Name: "slow_stats", Handler: c.slowStats, Queued: true, Hidden: true})
	reg.Register(Descriptor{Name: "summary", Handler: c.summary, Queued: true})
	reg.Register(Descriptor{Name: "roll", Handler: c.roll, RequiresArgs: true})
	reg.Register(Descriptor{Name: "flip", Handler: c.flip})
	reg.Register(Descriptor{Name: "jpeg", Handler: c.jpeg, RequiresArgs: true})
	reg.Register(Descriptor{Name: "everyone", Handler: c.everyone})
	reg.Register(Descriptor{Name: "someone", Handler: c.someone})
	reg.Register(Descriptor{Name: "randgal", Handler: c.randgal})
	reg.Register(Descriptor{Name: "remindme", Handler: c.remindme, RequiresArgs: true})
}

func (c *Commands) send(ctx context.Context, groupID, text string, attachments ...groupme.Attachment) error {
	return c.client.Send(ctx, groupID, text, attachments...)
}

// syncMembers refreshes the roster from the platform and upserts every member
// record, so nickname changes and new joins are visible to the next lookup.
func (c *Commands) syncMembers(ctx context.Context, groupID string) (groupme.Group, error) {
	group, err := c.client.ShowGroup(ctx, groupID)
	if err != nil {
		return groupme.Group{}, fmt.Errorf("show group: %w", err)
	}
	for _, member := range group.Members {
		record := models.Member{
			UserID:    member.UserID,
			GroupID:   groupID,
			Username:  member.Nickname,
			AvatarURL: member.ImageURL,
		}
		if err := c.members.Upsert(ctx, record); err != nil {
			return group, fmt.Errorf("upsert member %s: %w", member.UserID, err)
		}
	}
	return group, nil
}

func (c *Commands) commandsInfo(ctx context.Context, cc *CommandContext) error {
	return c.send(ctx, cc.Event.GroupID, fmt.Sprintf("%s/groups/%s/info", c.baseURL, cc.Event.GroupID))
}

func (c *Commands) roll(ctx context.Context, cc *CommandContext) error {
	parsed, err := strconv.ParseFloat(cc.Args, 64)
	if err != nil {
		return c.send(ctx, cc.Event.GroupID, Reply("roll", "number_error"))
	}
	sides := int(math.Floor(parsed))
	if sides < 1 {
		return c.send(ctx, cc.Event.GroupID, Reply("roll", "number_error"))
	}

	if err := c.send(ctx, cc.Event.GroupID, fmt.Sprintf("Rolling %d sided die...", sides)); err != nil {
		return err
	}
	return c.send(ctx, cc.Event.GroupID, strconv.Itoa(1+c.randInt(sides)))
}

func (c *Commands) flip(ctx context.Context, cc *CommandContext) error {
	if err := c.send(ctx, cc.Event.GroupID, "Flipping coin..."); err != nil {
		return err
	}
	result := "Heads"
	if c.randInt(2) == 1 {
		result = "Tails"
	}
	return c.send(ctx, cc.Event.GroupID, result)
}

func (c *Commands) everyone(ctx context.Context, cc *CommandContext) error {
	group, err := c.client.ShowGroup(ctx, cc.Event.GroupID)
	if err != nil {
		return err
	}

	userIDs := make([]string, 0, len(group.Members))
	loci := make([][2]int, 0, len(group.Members))
	offset := 0
	for _, member := range group.Members {
		mention := "@" + member.Nickname
		loci = append(loci, [2]int{offset, len(mention)})
		offset += len(mention) + 1
		userIDs = append(userIDs, member.UserID)
	}

	return c.send(ctx, cc.Event.GroupID, "@everyone", groupme.NewMentions(loci, userIDs))
}

func (c *Commands) someone(ctx context.Context, cc *CommandContext) error {
	group, err := c.client.ShowGroup(ctx, cc.Event.GroupID)
	if err != nil {
		return err
	}
	if len(group.Members) == 0 {
		return nil
	}

	member := group.Members[c.randInt(len(group.Members))]
	mention := groupme.NewMentions([][2]int{{0, len(member.Nickname) + 1}}, []string{member.UserID})
	return c.send(ctx, cc.Event.GroupID, "@"+member.Nickname, mention)
}

func (c *Commands) randgal(ctx context.Context, cc *CommandContext) error {
	var urls []string
	beforeID := ""
	for page := 0; page < galleryPages; page++ {
		messages, err := c.client.ListMessages(ctx, cc.Event.GroupID, beforeID)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			break
		}
		for _, msg := range messages {
			if url, ok := msg.ImageURL(); ok {
				urls = append(urls, url)
			}
		}
		beforeID = messages[len(messages)-1].ID
	}

	if len(urls) == 0 {
		return c.send(ctx, cc.Event.GroupID, Reply("dispatch", "no_gallery"))
	}
	return c.send(ctx, cc.Event.GroupID, urls[c.randInt(len(urls))])
}

func (c *Commands) remindme(ctx context.Context, cc *CommandContext) error {
	fields := strings.SplitN(cc.Args, " ", 3)
	if len(fields) < 3 {
		return c.send(ctx, cc.Event.GroupID, Reply("remindme", "help"))
	}

	amount, err := strconv.Atoi(fields[0])
	if err != nil {
		return c.send(ctx, cc.Event.GroupID, fmt.Sprintf("%s is not a valid measurement of time", fields[0]))
	}
	if amount < 0 {
		amount = -amount
	}

	unit := fields[1]
	if amount > 1 && !strings.HasSuffix(unit, "s") {
		unit += "s"
	} else if amount < 2 && strings.HasSuffix(unit, "s") {
		unit = strings.TrimSuffix(unit, "s")
	}

	now := c.now()
	var dueAt time.Time
	switch {
	case strings.Contains(unit, "minute"):
		dueAt = now.Add(time.Duration(amount) * time.Minute)
	case strings.Contains(unit, "hour"):
		dueAt = now.Add(time.Duration(amount) * time.Hour)
	case strings.Contains(unit, "day"):
		dueAt = now.AddDate(0, 0, amount)
	case strings.Contains(unit, "week"):
		dueAt = now.AddDate(0, 0, 7*amount)
	case strings.Contains(unit, "month"):
		dueAt = now.AddDate(0, amount, 0)
	case strings.Contains(unit, "year"):
		dueAt = now.AddDate(amount, 0, 0)
	default:
		return c.send(ctx, cc.Event.GroupID, Reply("remindme", "unit_error"))
	}

	message := fields[2]
	reminder := models.Reminder{
		UserID:  cc.Event.UserID,
		GroupID: cc.Event.GroupID,
		Message: message,
		DueAt:   dueAt,
	}
	if _, err := c.reminders.CreateReminder(ctx, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}

	return c.send(ctx, cc.Event.GroupID, fmt.Sprintf("I will remind you in %d %s about %s", amount, unit, message))
}
