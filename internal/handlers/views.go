package handlers

import (
	"errors"
	"math"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"groupme-bot/internal/bot"
	"groupme-bot/internal/models"
	"groupme-bot/internal/repositories"
)

// ViewsHandler serves the read-only JSON views linked from chat replies.
type ViewsHandler struct {
	groups   repositories.GroupRepository
	members  repositories.MemberRepository
	commands repositories.CommandRepository
	registry *bot.Registry
}

// NewViewsHandler constructs a ViewsHandler.
func NewViewsHandler(
	groups repositories.GroupRepository,
	members repositories.MemberRepository,
	commands repositories.CommandRepository,
	registry *bot.Registry,
) *ViewsHandler {
	return &ViewsHandler{groups: groups, members: members, commands: commands, registry: registry}
}

type builtinView struct {
	Name         string `json:"name"`
	Help         string `json:"help,omitempty"`
	RequiresArgs bool   `json:"requires_args"`
	Restricted   bool   `json:"restricted"`
	Queued       bool   `json:"queued"`
}

// GroupInfo handles GET /groups/:group_id/info.
func (h *ViewsHandler) GroupInfo(c *gin.Context) {
	groupID := c.Param("group_id")

	group, err := h.groups.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not initialized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return
	}

	custom, err := h.commands.ListCommands(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load commands"})
		return
	}
	mods, err := h.members.ListMods(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mods"})
		return
	}

	builtins := make([]builtinView, 0)
	for _, desc := range h.registry.ListVisible() {
		builtins = append(builtins, builtinView{
			Name:         desc.Name,
			Help:         bot.Reply(desc.Name, "help"),
			RequiresArgs: desc.RequiresArgs,
			Restricted:   desc.Restricted,
			Queued:       desc.Queued,
		})
	}

	modNames := make([]string, 0, len(mods))
	for _, mod := range mods {
		modNames = append(modNames, mod.Username)
	}

	c.JSON(http.StatusOK, gin.H{
		"group":           group,
		"builtins":        builtins,
		"custom_commands": custom,
		"mods":            modNames,
	})
}

type memberStatsView struct {
	Username     string  `json:"username"`
	UserID       string  `json:"user_id"`
	MessageCount int     `json:"message_count"`
	LikeCount    int     `json:"like_count"`
	LikesGiven   int     `json:"likes_given"`
	LikeRatio    float64 `json:"like_ratio"`
}

// GroupStats handles GET /groups/:group_id/stats.
func (h *ViewsHandler) GroupStats(c *gin.Context) {
	groupID := c.Param("group_id")

	group, err := h.groups.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not initialized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return
	}

	records, err := h.members.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}

	views := make([]memberStatsView, 0, len(records))
	for _, m := range records {
		views = append(views, memberStatsView{
			Username:     m.Username,
			UserID:       m.UserID,
			MessageCount: m.MessageCount,
			LikeCount:    m.LikeCount,
			LikesGiven:   m.LikesGiven,
			LikeRatio:    memberLikeRatio(m),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"group":             group,
		"by_messages":       sortedBy(views, func(v memberStatsView) float64 { return float64(v.MessageCount) }),
		"by_likes_received": sortedBy(views, func(v memberStatsView) float64 { return float64(v.LikeCount) }),
		"by_likes_given":    sortedBy(views, func(v memberStatsView) float64 { return float64(v.LikesGiven) }),
		"by_like_ratio":     sortedBy(views, func(v memberStatsView) float64 { return v.LikeRatio }),
	})
}

// memberLikeRatio is likes received per message sent, defined as exactly 0.0
// for members who have not sent anything.
func memberLikeRatio(m models.Member) float64 {
	if m.MessageCount == 0 {
		return 0.0
	}
	return math.Round(float64(m.LikeCount)/float64(m.MessageCount)*100) / 100
}

// sortedBy returns a copy ordered descending by value. The sort is stable so
// equal members keep their roster order.
func sortedBy(views []memberStatsView, value func(memberStatsView) float64) []memberStatsView {
	out := make([]memberStatsView, len(views))
	copy(out, views)
	sort.SliceStable(out, func(i, j int) bool { return value(out[i]) > value(out[j]) })
	return out
}
