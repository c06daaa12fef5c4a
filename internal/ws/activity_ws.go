package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"groupme-bot/internal/observability"
	"groupme-bot/internal/repositories"
)

// ActivityHandler serves the per-group websocket feed of bot activity.
type ActivityHandler struct {
	hub    *Hub
	groups repositories.GroupRepository
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(hub *Hub, groups repositories.GroupRepository) *ActivityHandler {
	return &ActivityHandler{hub: hub, groups: groups}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client on the group's
// feed. Only initialized groups can be watched.
func (h *ActivityHandler) Handle(c *gin.Context) {
	groupID := c.Param("group_id")

	ctx, span := otel.Tracer("groupme-bot/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	if _, err := h.groups.GetGroup(ctx, groupID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not initialized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(groupID, conn, info)

	observability.IncWSActive("activity")
	observability.IncWSEvent("activity", "ws_connect")

	// Keep connection alive and clean on close
	go func() {
		defer func() {
			h.hub.RemoveClient(groupID, conn)
			observability.DecWSActive("activity")
			observability.IncWSEvent("activity", "ws_disconnect")
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.hub.reportWSError(groupID, conn, err)
				}
				return
			}
		}
	}()
}
