package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupme-bot/internal/bot"
	"groupme-bot/internal/mocks"
	"groupme-bot/internal/models"
	"groupme-bot/internal/repositories"
)

func setupViewsRouter(handler *ViewsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/groups/:group_id/info", handler.GroupInfo)
	r.GET("/groups/:group_id/stats", handler.GroupStats)
	return r
}

func viewsRegistry() *bot.Registry {
	reg := bot.NewRegistry()
	reg.Register(bot.Descriptor{Name: "roll", RequiresArgs: true})
	reg.Register(bot.Descriptor{Name: "reset", Restricted: true, Hidden: true})
	return reg
}

func TestGroupInfoUnknownGroup(t *testing.T) {
	groups := new(mocks.GroupRepositoryMock)
	handler := NewViewsHandler(groups, new(mocks.MemberRepositoryMock), new(mocks.CommandRepositoryMock), viewsRegistry())
	router := setupViewsRouter(handler)

	groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/g1/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroupInfoSuccess(t *testing.T) {
	groups := new(mocks.GroupRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	commands := new(mocks.CommandRepositoryMock)
	handler := NewViewsHandler(groups, members, commands, viewsRegistry())
	router := setupViewsRouter(handler)

	groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{GroupID: "g1", Name: "Test Group"}, nil).Once()
	commands.On("ListCommands", mock.Anything, "g1").Return([]models.CustomCommand{{Name: "greet", Response: "hi"}}, nil).Once()
	members.On("ListMods", mock.Anything, "g1").Return([]models.Member{{UserID: "u1", Username: "alice"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/g1/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Builtins []builtinView          `json:"builtins"`
		Custom   []models.CustomCommand `json:"custom_commands"`
		Mods     []string               `json:"mods"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	// Hidden built-ins stay off the public listing.
	require.Len(t, resp.Builtins, 1)
	require.Equal(t, "roll", resp.Builtins[0].Name)
	require.Equal(t, []string{"alice"}, resp.Mods)
	require.Len(t, resp.Custom, 1)
}

func TestGroupStatsOrderings(t *testing.T) {
	groups := new(mocks.GroupRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	handler := NewViewsHandler(groups, members, new(mocks.CommandRepositoryMock), viewsRegistry())
	router := setupViewsRouter(handler)

	groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{GroupID: "g1"}, nil).Once()
	members.On("ListMembers", mock.Anything, "g1").Return([]models.Member{
		{UserID: "u1", Username: "alice", MessageCount: 10, LikeCount: 5},
		{UserID: "u2", Username: "bob", MessageCount: 2, LikeCount: 8, LikesGiven: 3},
		{UserID: "u3", Username: "carol"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/g1/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ByMessages []memberStatsView `json:"by_messages"`
		ByLikes    []memberStatsView `json:"by_likes_received"`
		ByRatio    []memberStatsView `json:"by_like_ratio"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Equal(t, "alice", resp.ByMessages[0].Username)
	require.Equal(t, "bob", resp.ByLikes[0].Username)

	// bob: 8 likes over 2 messages; carol has no messages so her ratio is 0.0.
	require.Equal(t, "bob", resp.ByRatio[0].Username)
	require.Equal(t, 4.0, resp.ByRatio[0].LikeRatio)
	require.Equal(t, 0.0, resp.ByRatio[2].LikeRatio)
}
