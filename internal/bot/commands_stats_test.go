package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupme-bot/internal/groupme"
	"groupme-bot/internal/models"
)

func TestStatsRequiresInitializedGroup(t *testing.T) {
	f := newCommandsFixture(t)
	f.client.On("Send", mock.Anything, "g1", Reply("initialize", "help"), mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.stats(context.Background(), ccFor("g1", "u1", "stats", "")))
	f.client.AssertExpectations(t)
}

func TestStatsIncrementalPass(t *testing.T) {
	f := newCommandsFixture(t)

	lastUpdated := time.Unix(100, 0).UTC()
	cc := ccFor("g1", "u1", "stats", "")
	cc.Group = &models.Group{GroupID: "g1", LastUpdated: lastUpdated}

	platform := groupme.Group{
		Name:    "Test Group",
		Members: []groupme.Member{{UserID: "u1", Nickname: "alice"}},
	}
	platform.Messages.Count = 10

	f.client.On("Send", mock.Anything, "g1", "Gathering group stats", mock.Anything).Return(nil).Once()
	f.client.On("ShowGroup", mock.Anything, "g1").Return(platform, nil).Once()
	f.members.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

	// One message newer than the high-water mark, then the boundary message
	// itself, which must stop the walk without being recounted.
	page := []groupme.Message{
		{ID: "2", UserID: "u1", Name: "alice", Text: "new", CreatedAt: ts(200), FavoritedBy: []string{"u1"}},
		{ID: "1", UserID: "u1", Name: "alice", Text: "old", CreatedAt: ts(100)},
	}
	f.client.On("ListMessages", mock.Anything, "g1", "").Return(page, nil).Once()

	f.members.On("ListMembers", mock.Anything, "g1").Return([]models.Member{{UserID: "u1", Username: "alice"}}, nil).Once()
	f.members.On("IncrementCounters", mock.Anything, "g1", "u1", 1, 1, 1).Return(nil).Once()
	f.groups.On("UpdateStats", mock.Anything, "g1", "Test Group", 10, 1, 1, time.Unix(200, 0).UTC()).Return(nil).Once()
	f.groups.On("SetTopMessage", mock.Anything, "g1", "alice: new", 1).Return(nil).Once()
	f.client.On("Send", mock.Anything, "g1", "http://localhost:8080/groups/g1/stats", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.stats(context.Background(), cc))

	f.client.AssertExpectations(t)
	f.members.AssertExpectations(t)
	f.groups.AssertExpectations(t)
}

func TestSlowStatsResetsCountersFirst(t *testing.T) {
	f := newCommandsFixture(t)

	cc := ccFor("g1", "u1", "slow_stats", "")
	cc.Group = &models.Group{GroupID: "g1"}

	platform := groupme.Group{Name: "Test Group", Members: []groupme.Member{{UserID: "u1", Nickname: "alice"}}}

	f.client.On("Send", mock.Anything, "g1", "Loading all messages...", mock.Anything).Return(nil).Once()
	f.members.On("ResetCounters", mock.Anything, "g1").Return(nil).Once()
	f.client.On("ShowGroup", mock.Anything, "g1").Return(platform, nil).Once()
	f.members.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

	page := []groupme.Message{{ID: "1", UserID: "u1", Name: "alice", Text: "hi", CreatedAt: ts(150)}}
	f.client.On("ListMessages", mock.Anything, "g1", "").Return(page, nil).Once()
	f.client.On("ListMessages", mock.Anything, "g1", "1").Return([]groupme.Message(nil), nil).Once()

	f.members.On("ListMembers", mock.Anything, "g1").Return([]models.Member{{UserID: "u1", Username: "alice"}}, nil).Once()
	f.members.On("IncrementCounters", mock.Anything, "g1", "u1", 1, 0, 0).Return(nil).Once()
	f.groups.On("UpdateStats", mock.Anything, "g1", "Test Group", 0, 1, 0, time.Unix(150, 0).UTC()).Return(nil).Once()
	f.groups.On("SetTopMessage", mock.Anything, "g1", "alice: hi", 0).Return(nil).Once()
	f.groups.On("SetLastUpdated", mock.Anything, "g1", time.Unix(150, 0).UTC()).Return(nil).Once()
	f.client.On("Send", mock.Anything, "g1", "http://localhost:8080/groups/g1/stats", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.slowStats(context.Background(), cc))
	f.groups.AssertExpectations(t)
	f.members.AssertExpectations(t)
}

func TestSummaryQuietWindow(t *testing.T) {
	f := newCommandsFixture(t)
	now := time.Unix(10000, 0).UTC()
	f.commands.SetClock(func() time.Time { return now })

	f.client.On("ShowGroup", mock.Anything, "g1").Return(groupme.Group{}, nil).Once()
	f.client.On("ListMessages", mock.Anything, "g1", "").Return([]groupme.Message(nil), nil).Once()
	f.client.On("Send", mock.Anything, "g1", "Nothing happened in the past 2 hours", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.summary(context.Background(), ccFor("g1", "u1", "summary", "")))
	f.client.AssertExpectations(t)
}

func TestSummaryReport(t *testing.T) {
	f := newCommandsFixture(t)
	now := time.Unix(10000, 0).UTC()
	f.commands.SetClock(func() time.Time { return now })

	platform := groupme.Group{Members: []groupme.Member{
		{UserID: "u1", Nickname: "alice"},
		{UserID: "u2", Nickname: "bob"},
	}}
	f.client.On("ShowGroup", mock.Anything, "g1").Return(platform, nil).Once()

	page := []groupme.Message{
		{ID: "2", UserID: "u1", Name: "Alice", Text: "hey", CreatedAt: ts(9900), FavoritedBy: []string{"u2"}},
		{ID: "1", UserID: "u2", Name: "Bob", Text: "yo", CreatedAt: ts(9800)},
	}
	f.client.On("ListMessages", mock.Anything, "g1", "").Return(page, nil).Once()
	f.client.On("ListMessages", mock.Anything, "g1", "1").Return([]groupme.Message(nil), nil).Once()

	want := "Summary of the past 2 hours:\n\n" +
		"Messages sent: 2\n" +
		"Likes given out: 1\n\n" +
		"Most likes received:\n  alice - 1\n" +
		"Most likes given:\n  bob - 1\n" +
		"Most messages sent:\n  alice - 1\n" +
		"Best like/message ratio:\n  alice - 1.00\n\n" +
		"Most liked message (1 likes):\nAlice: hey"
	f.client.On("Send", mock.Anything, "g1", want, mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.summary(context.Background(), ccFor("g1", "u1", "summary", "")))
	f.client.AssertExpectations(t)
}

func TestLikeRatioZeroMessages(t *testing.T) {
	require.Equal(t, 0.0, likeRatio(MemberDelta{LikesReceived: 5}))
	require.Equal(t, 2.5, likeRatio(MemberDelta{Messages: 2, LikesReceived: 5}))
	require.Equal(t, 0.33, likeRatio(MemberDelta{Messages: 3, LikesReceived: 1}))
}
