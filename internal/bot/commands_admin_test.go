package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupme-bot/internal/groupme"
	"groupme-bot/internal/models"
	"groupme-bot/internal/repositories"
)

func TestInitializeCreatesGroupAndRoster(t *testing.T) {
	f := newCommandsFixture(t)
	platform := groupme.Group{
		Name:    "Test Group",
		Members: []groupme.Member{{UserID: "u1", Nickname: "alice"}, {UserID: "u2", Nickname: "bob"}},
	}
	platform.Messages.Count = 42

	f.client.On("ShowGroup", mock.Anything, "g1").Return(platform, nil).Once()
	f.groups.On("CreateGroup", mock.Anything, mock.MatchedBy(func(g models.Group) bool {
		return g.GroupID == "g1" && g.Name == "Test Group" && g.MessageCount == 42 && g.MemberCount == 2
	})).Return(models.Group{GroupID: "g1"}, nil).Once()
	f.members.On("Upsert", mock.Anything, mock.Anything).Return(nil).Twice()
	f.client.On("Send", mock.Anything, "g1", Reply("initialize", "success"), mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.initialize(context.Background(), ccFor("g1", "u1", "initialize", "")))
	f.groups.AssertExpectations(t)
	f.members.AssertExpectations(t)
}

func TestInitializeAlreadyInitialized(t *testing.T) {
	f := newCommandsFixture(t)
	cc := ccFor("g1", "u1", "initialize", "")
	cc.Group = &models.Group{GroupID: "g1"}

	f.client.On("Send", mock.Anything, "g1", Reply("initialize", "already"), mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.initialize(context.Background(), cc))
	f.client.AssertNotCalled(t, "ShowGroup", mock.Anything, mock.Anything)
}

func TestResetDeletesEverything(t *testing.T) {
	f := newCommandsFixture(t)
	f.members.On("DeleteMembers", mock.Anything, "g1").Return(nil).Once()
	f.groups.On("DeleteGroup", mock.Anything, "g1").Return(nil).Once()
	f.client.On("Send", mock.Anything, "g1", "Group reset", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.reset(context.Background(), ccFor("g1", "u1", "reset", "")))
	f.members.AssertExpectations(t)
	f.groups.AssertExpectations(t)
}

func TestAddCreatesCustomCommand(t *testing.T) {
	f := newCommandsFixture(t)
	f.custom.On("GetCommand", mock.Anything, "g1", "greet").Return(models.CustomCommand{}, repositories.ErrCommandNotFound).Once()
	f.custom.On("CreateCommand", mock.Anything, mock.MatchedBy(func(cmd models.CustomCommand) bool {
		return cmd.Name == "greet" && cmd.Response == "hello there" && cmd.Description == "No description added yet!"
	})).Return(nil).Once()
	f.client.On("Send", mock.Anything, "g1", "Command !greet added!", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.add(context.Background(), ccFor("g1", "u1", "add", "greet: hello there")))
	f.custom.AssertExpectations(t)
}

func TestAddRefusesBuiltinCollision(t *testing.T) {
	f := newCommandsFixture(t)
	f.client.On("Send", mock.Anything, "g1", "Command !roll already exists", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.add(context.Background(), ccFor("g1", "u1", "add", "roll: nope")))
	f.custom.AssertNotCalled(t, "CreateCommand", mock.Anything, mock.Anything)
}

func TestAddRejectsUnparseableDefinition(t *testing.T) {
	f := newCommandsFixture(t)
	f.client.On("Send", mock.Anything, "g1", Reply("add", "error"), mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.add(context.Background(), ccFor("g1", "u1", "add", "no colon here")))
}

func TestAddDescription(t *testing.T) {
	f := newCommandsFixture(t)
	f.custom.On("UpdateDescription", mock.Anything, "g1", "greet", "says hello").Return(nil).Once()
	f.client.On("Send", mock.Anything, "g1", "greet description added!", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.add(context.Background(), ccFor("g1", "u1", "add", "description greet: says hello")))
	f.custom.AssertExpectations(t)
}

func TestEditUnknownCommand(t *testing.T) {
	f := newCommandsFixture(t)
	f.custom.On("UpdateResponse", mock.Anything, "g1", "ghost", "boo").Return(repositories.ErrCommandNotFound).Once()
	f.client.On("Send", mock.Anything, "g1", "Command !ghost does not exist", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.edit(context.Background(), ccFor("g1", "u1", "edit", "ghost: boo")))
}

func TestDeleteCustomCommand(t *testing.T) {
	f := newCommandsFixture(t)
	f.custom.On("DeleteCommand", mock.Anything, "g1", "greet").Return(nil).Once()
	f.client.On("Send", mock.Anything, "g1", "Command !greet deleted", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.delete(context.Background(), ccFor("g1", "u1", "delete", "greet")))
}

func TestModPromotesMember(t *testing.T) {
	f := newCommandsFixture(t)
	platform := groupme.Group{Members: []groupme.Member{{UserID: "u2", Nickname: "bob"}}}
	f.client.On("ShowGroup", mock.Anything, "g1").Return(platform, nil).Once()
	f.members.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
	f.members.On("GetByUsername", mock.Anything, "g1", "bob").Return(models.Member{UserID: "u2", Username: "bob"}, nil).Once()
	f.members.On("SetModerator", mock.Anything, "g1", "u2", true).Return(nil).Once()
	f.client.On("Send", mock.Anything, "g1", "bob added as a mod", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.mod(context.Background(), ccFor("g1", "u1", "mod", "bob")))
	f.members.AssertExpectations(t)
}

func TestModUnknownUsername(t *testing.T) {
	f := newCommandsFixture(t)
	f.client.On("ShowGroup", mock.Anything, "g1").Return(groupme.Group{}, nil).Once()
	f.members.On("GetByUsername", mock.Anything, "g1", "nobody").Return(models.Member{}, repositories.ErrMemberNotFound).Once()
	f.client.On("Send", mock.Anything, "g1", "Could not find nobody in this group", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.mod(context.Background(), ccFor("g1", "u1", "mod", "nobody")))
}

func TestIgnoreRefusesMods(t *testing.T) {
	f := newCommandsFixture(t)
	f.client.On("ShowGroup", mock.Anything, "g1").Return(groupme.Group{}, nil).Once()
	f.members.On("GetByUsername", mock.Anything, "g1", "bob").Return(models.Member{UserID: "u2", Username: "bob", Moderator: true}, nil).Once()
	f.client.On("Send", mock.Anything, "g1", "You can not ignore a mod", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.ignore(context.Background(), ccFor("g1", "u1", "ignore", "bob")))
	f.members.AssertNotCalled(t, "SetIgnored", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnignoreNotIgnored(t *testing.T) {
	f := newCommandsFixture(t)
	f.members.On("GetByUsername", mock.Anything, "g1", "bob").Return(models.Member{UserID: "u2", Username: "bob"}, nil).Once()
	f.client.On("Send", mock.Anything, "g1", "bob is not currently ignored", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.unignore(context.Background(), ccFor("g1", "u1", "unignore", "bob")))
	f.members.AssertNotCalled(t, "SetIgnored", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
