package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"groupme-bot/internal/groupme"
	"groupme-bot/internal/models"
	"groupme-bot/internal/queue"
	"groupme-bot/internal/repositories"
)

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	args := m.Called(ctx, group)
	var created models.Group
	if val := args.Get(0); val != nil {
		created = val.(models.Group)
	}
	return created, args.Error(1)
}

func (m *GroupRepositoryMock) DeleteGroup(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) UpdateStats(ctx context.Context, groupID string, name string, messageCount, memberCount, likeDelta int, newest time.Time) error {
	args := m.Called(ctx, groupID, name, messageCount, memberCount, likeDelta, newest)
	return args.Error(0)
}

func (m *GroupRepositoryMock) SetTopMessage(ctx context.Context, groupID string, text string, likes int) error {
	args := m.Called(ctx, groupID, text, likes)
	return args.Error(0)
}

func (m *GroupRepositoryMock) SetLastUpdated(ctx context.Context, groupID string, t time.Time) error {
	args := m.Called(ctx, groupID, t)
	return args.Error(0)
}

type MemberRepositoryMock struct {
	mock.Mock
}

func (m *MemberRepositoryMock) GetByUserID(ctx context.Context, groupID, userID string) (models.Member, error) {
	args := m.Called(ctx, groupID, userID)
	var member models.Member
	if val := args.Get(0); val != nil {
		member = val.(models.Member)
	}
	return member, args.Error(1)
}

func (m *MemberRepositoryMock) GetByUsername(ctx context.Context, groupID, username string) (models.Member, error) {
	args := m.Called(ctx, groupID, username)
	var member models.Member
	if val := args.Get(0); val != nil {
		member = val.(models.Member)
	}
	return member, args.Error(1)
}

func (m *MemberRepositoryMock) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	args := m.Called(ctx, groupID)
	var members []models.Member
	if val := args.Get(0); val != nil {
		members = val.([]models.Member)
	}
	return members, args.Error(1)
}

func (m *MemberRepositoryMock) ListMods(ctx context.Context, groupID string) ([]models.Member, error) {
	args := m.Called(ctx, groupID)
	var members []models.Member
	if val := args.Get(0); val != nil {
		members = val.([]models.Member)
	}
	return members, args.Error(1)
}

func (m *MemberRepositoryMock) ListIgnored(ctx context.Context, groupID string) ([]models.Member, error) {
	args := m.Called(ctx, groupID)
	var members []models.Member
	if val := args.Get(0); val != nil {
		members = val.([]models.Member)
	}
	return members, args.Error(1)
}

func (m *MemberRepositoryMock) Upsert(ctx context.Context, member models.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MemberRepositoryMock) SetModerator(ctx context.Context, groupID, userID string, mod bool) error {
	args := m.Called(ctx, groupID, userID, mod)
	return args.Error(0)
}

func (m *MemberRepositoryMock) SetIgnored(ctx context.Context, groupID, userID string, ignored bool) error {
	args := m.Called(ctx, groupID, userID, ignored)
	return args.Error(0)
}

func (m *MemberRepositoryMock) IncrementCounters(ctx context.Context, groupID, userID string, messages, likesReceived, likesGiven int) error {
	args := m.Called(ctx, groupID, userID, messages, likesReceived, likesGiven)
	return args.Error(0)
}

func (m *MemberRepositoryMock) ResetCounters(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MemberRepositoryMock) DeleteMembers(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

type CommandRepositoryMock struct {
	mock.Mock
}

func (m *CommandRepositoryMock) GetCommand(ctx context.Context, groupID, name string) (models.CustomCommand, error) {
	args := m.Called(ctx, groupID, name)
	var cmd models.CustomCommand
	if val := args.Get(0); val != nil {
		cmd = val.(models.CustomCommand)
	}
	return cmd, args.Error(1)
}

func (m *CommandRepositoryMock) ListCommands(ctx context.Context, groupID string) ([]models.CustomCommand, error) {
	args := m.Called(ctx, groupID)
	var cmds []models.CustomCommand
	if val := args.Get(0); val != nil {
		cmds = val.([]models.CustomCommand)
	}
	return cmds, args.Error(1)
}

func (m *CommandRepositoryMock) CreateCommand(ctx context.Context, cmd models.CustomCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *CommandRepositoryMock) UpdateResponse(ctx context.Context, groupID, name, response string) error {
	args := m.Called(ctx, groupID, name, response)
	return args.Error(0)
}

func (m *CommandRepositoryMock) UpdateDescription(ctx context.Context, groupID, name, description string) error {
	args := m.Called(ctx, groupID, name, description)
	return args.Error(0)
}

func (m *CommandRepositoryMock) DeleteCommand(ctx context.Context, groupID, name string) error {
	args := m.Called(ctx, groupID, name)
	return args.Error(0)
}

func (m *CommandRepositoryMock) IncrementUsage(ctx context.Context, groupID, name string) error {
	args := m.Called(ctx, groupID, name)
	return args.Error(0)
}

type ReminderRepositoryMock struct {
	mock.Mock
}

func (m *ReminderRepositoryMock) CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error) {
	args := m.Called(ctx, reminder)
	var created models.Reminder
	if val := args.Get(0); val != nil {
		created = val.(models.Reminder)
	}
	return created, args.Error(1)
}

func (m *ReminderRepositoryMock) ListDue(ctx context.Context, groupID string, now time.Time) ([]models.Reminder, error) {
	args := m.Called(ctx, groupID, now)
	var due []models.Reminder
	if val := args.Get(0); val != nil {
		due = val.([]models.Reminder)
	}
	return due, args.Error(1)
}

func (m *ReminderRepositoryMock) DeleteReminder(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ClientMock struct {
	mock.Mock
}

func (m *ClientMock) Send(ctx context.Context, groupID, text string, attachments ...groupme.Attachment) error {
	args := m.Called(ctx, groupID, text, attachments)
	return args.Error(0)
}

func (m *ClientMock) ShowGroup(ctx context.Context, groupID string) (groupme.Group, error) {
	args := m.Called(ctx, groupID)
	var group groupme.Group
	if val := args.Get(0); val != nil {
		group = val.(groupme.Group)
	}
	return group, args.Error(1)
}

func (m *ClientMock) ListMessages(ctx context.Context, groupID, beforeID string) ([]groupme.Message, error) {
	args := m.Called(ctx, groupID, beforeID)
	var msgs []groupme.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]groupme.Message)
	}
	return msgs, args.Error(1)
}

func (m *ClientMock) UploadImage(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

type EnqueuerMock struct {
	mock.Mock
}

func (m *EnqueuerMock) EnqueueJob(ctx context.Context, job queue.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.MemberRepository = (*MemberRepositoryMock)(nil)
var _ repositories.CommandRepository = (*CommandRepositoryMock)(nil)
var _ repositories.ReminderRepository = (*ReminderRepositoryMock)(nil)
var _ groupme.Client = (*ClientMock)(nil)
var _ queue.Enqueuer = (*EnqueuerMock)(nil)
