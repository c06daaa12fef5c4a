package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"groupme-bot/internal/models"
	"groupme-bot/internal/repositories"
)

func (c *Commands) initialize(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID
	if cc.Group != nil {
		return c.send(ctx, groupID, Reply("initialize", "already"))
	}

	group, err := c.client.ShowGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("show group: %w", err)
	}

	record := models.Group{
		GroupID:      groupID,
		Name:         group.Name,
		MessageCount: group.Messages.Count,
		MemberCount:  len(group.Members),
		CreatedAt:    group.CreatedAt.Time(),
	}
	if _, err := c.groups.CreateGroup(ctx, record); err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	for _, member := range group.Members {
		record := models.Member{
			UserID:    member.UserID,
			GroupID:   groupID,
			Username:  member.Nickname,
			AvatarURL: member.ImageURL,
		}
		if err := c.members.Upsert(ctx, record); err != nil {
			return fmt.Errorf("upsert member %s: %w", member.UserID, err)
		}
	}

	return c.send(ctx, groupID, Reply("initialize", "success"))
}

func (c *Commands) reset(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID
	if err := c.members.DeleteMembers(ctx, groupID); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	if err := c.groups.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return c.send(ctx, groupID, "Group reset")
}

// add creates a custom command from "<name>: <response>", or sets a command
// description from "description <name>: <text>".
func (c *Commands) add(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID

	if strings.EqualFold(strings.Fields(cc.Args)[0], "description") {
		return c.addDescription(ctx, cc)
	}

	name, response, ok := splitColon(cc.Args)
	if !ok {
		return c.send(ctx, groupID, Reply("add", "error"))
	}

	if c.commandExists(ctx, groupID, name) {
		return c.send(ctx, groupID, fmt.Sprintf(Reply("add", "failure"), name))
	}

	cmd := models.CustomCommand{
		GroupID:     groupID,
		Name:        name,
		Response:    response,
		Description: "No description added yet!",
	}
	if err := c.commands.CreateCommand(ctx, cmd); err != nil {
		return fmt.Errorf("create command: %w", err)
	}
	return c.send(ctx, groupID, fmt.Sprintf(Reply("add", "success"), name))
}

func (c *Commands) addDescription(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID

	fields := strings.Fields(cc.Args)
	_, description, ok := splitColon(cc.Args)
	if len(fields) < 2 || !ok {
		return c.send(ctx, groupID, Reply("add", "error"))
	}
	name := strings.ToLower(strings.TrimSuffix(fields[1], ":"))

	if err := c.commands.UpdateDescription(ctx, groupID, name, description); err != nil {
		if errors.Is(err, repositories.ErrCommandNotFound) {
			return c.send(ctx, groupID, fmt.Sprintf(Reply("dispatch", "unknown"), name))
		}
		return fmt.Errorf("update description: %w", err)
	}
	return c.send(ctx, groupID, fmt.Sprintf("%s description added!", name))
}

func (c *Commands) edit(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID

	name, response, ok := splitColon(cc.Args)
	if !ok {
		return c.send(ctx, groupID, Reply("edit", "error"))
	}

	if err := c.commands.UpdateResponse(ctx, groupID, name, response); err != nil {
		if errors.Is(err, repositories.ErrCommandNotFound) {
			return c.send(ctx, groupID, fmt.Sprintf(Reply("dispatch", "unknown"), name))
		}
		return fmt.Errorf("update response: %w", err)
	}
	return c.send(ctx, groupID, fmt.Sprintf(Reply("edit", "success"), name))
}

func (c *Commands) delete(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID
	name := strings.ToLower(cc.Args)

	if err := c.commands.DeleteCommand(ctx, groupID, name); err != nil {
		if errors.Is(err, repositories.ErrCommandNotFound) {
			return c.send(ctx, groupID, fmt.Sprintf(Reply("delete", "error"), name))
		}
		return fmt.Errorf("delete command: %w", err)
	}
	return c.send(ctx, groupID, fmt.Sprintf(Reply("delete", "success"), name))
}

func (c *Commands) mod(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID
	if _, err := c.syncMembers(ctx, groupID); err != nil {
		return err
	}

	member, err := c.members.GetByUsername(ctx, groupID, cc.Args)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return c.send(ctx, groupID, fmt.Sprintf(Reply("dispatch", "not_found"), cc.Args))
		}
		return err
	}

	if member.Moderator {
		return c.send(ctx, groupID, fmt.Sprintf("%s is already a mod", member.Username))
	}
	if err := c.members.SetModerator(ctx, groupID, member.UserID, true); err != nil {
		return err
	}
	return c.send(ctx, groupID, fmt.Sprintf("%s added as a mod", member.Username))
}

func (c *Commands) unmod(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID

	member, err := c.members.GetByUsername(ctx, groupID, cc.Args)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return c.send(ctx, groupID, fmt.Sprintf(Reply("dispatch", "not_found"), cc.Args))
		}
		return err
	}

	if !member.Moderator {
		return c.send(ctx, groupID, fmt.Sprintf("%s is not a mod", member.Username))
	}
	if err := c.members.SetModerator(ctx, groupID, member.UserID, false); err != nil {
		return err
	}
	return c.send(ctx, groupID, fmt.Sprintf("%s removed as mod", member.Username))
}

func (c *Commands) ignore(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID
	if _, err := c.syncMembers(ctx, groupID); err != nil {
		return err
	}

	victim, err := c.members.GetByUsername(ctx, groupID, cc.Args)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return c.send(ctx, groupID, fmt.Sprintf(Reply("dispatch", "not_found"), cc.Args))
		}
		return err
	}

	if victim.Moderator {
		return c.send(ctx, groupID, "You can not ignore a mod")
	}
	if victim.Ignored {
		return c.send(ctx, groupID, fmt.Sprintf("%s is already ignored", victim.Username))
	}
	if err := c.members.SetIgnored(ctx, groupID, victim.UserID, true); err != nil {
		return err
	}
	return c.send(ctx, groupID, fmt.Sprintf("%s ignored", victim.Username))
}

func (c *Commands) unignore(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID

	member, err := c.members.GetByUsername(ctx, groupID, cc.Args)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return c.send(ctx, groupID, fmt.Sprintf(Reply("dispatch", "not_found"), cc.Args))
		}
		return err
	}

	if !member.Ignored {
		return c.send(ctx, groupID, fmt.Sprintf("%s is not currently ignored", member.Username))
	}
	if err := c.members.SetIgnored(ctx, groupID, member.UserID, false); err != nil {
		return err
	}
	return c.send(ctx, groupID, fmt.Sprintf("%s unignored", member.Username))
}

// commandExists reports whether name collides with a visible built-in or an
// existing custom command in the group.
func (c *Commands) commandExists(ctx context.Context, groupID, name string) bool {
	if c.registry != nil {
		if desc, ok := c.registry.Lookup(name); ok && !desc.Hidden {
			return true
		}
	}
	_, err := c.commands.GetCommand(ctx, groupID, name)
	return err == nil
}

// splitColon parses "<name>: <rest>" definitions.
func splitColon(text string) (name, rest string, ok bool) {
	parts := strings.SplitN(text, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	name = strings.ToLower(strings.TrimSpace(parts[0]))
	rest = strings.TrimSpace(parts[1])
	if name == "" || rest == "" {
		return "", "", false
	}
	return name, rest, true
}
