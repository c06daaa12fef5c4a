package ws

import (
	"testing"

	"groupme-bot/internal/models"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient("1234", nil, ConnInfo{ConnID: "abc"})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected room to be created")
	}

	info, ok := hub.getConnInfo("1234", nil)
	if !ok || info.ConnID != "abc" {
		t.Fatalf("expected conn info to be tracked")
	}

	hub.RemoveClient("1234", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected room to be removed")
	}
	if len(hub.connInfo) != 0 {
		t.Fatalf("expected conn info to be removed")
	}
}

func TestHubBroadcastToEmptyRoom(t *testing.T) {
	hub := NewHub()

	// No clients registered: broadcast must be a no-op, not a panic.
	hub.BroadcastBotEvent("1234", models.BotEvent{Type: "command_dispatched", GroupID: "1234"})
}
