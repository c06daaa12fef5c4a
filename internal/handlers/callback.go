package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"groupme-bot/internal/models"
)

// EventDispatcher consumes one inbound webhook event.
type EventDispatcher interface {
	Handle(ctx context.Context, event models.InboundEvent)
}

// CallbackHandler is the webhook entry point for GroupMe callbacks.
type CallbackHandler struct {
	dispatcher EventDispatcher
}

// NewCallbackHandler constructs a CallbackHandler.
func NewCallbackHandler(dispatcher EventDispatcher) *CallbackHandler {
	return &CallbackHandler{dispatcher: dispatcher}
}

// Handle processes POST /callback. GroupMe retries on non-2xx responses, so
// the webhook answers 200 on every path; failures surface in logs and chat
// replies, never in the response code.
func (h *CallbackHandler) Handle(c *gin.Context) {
	var event models.InboundEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		log.Printf("callback: malformed payload request_id=%s: %v", requestIDFromContext(c), err)
		c.String(http.StatusOK, "ok")
		return
	}
	if event.GroupID == "" {
		log.Printf("callback: missing group_id request_id=%s", requestIDFromContext(c))
		c.String(http.StatusOK, "ok")
		return
	}

	h.dispatcher.Handle(c.Request.Context(), event)
	c.String(http.StatusOK, "ok")
}
