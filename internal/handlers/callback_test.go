package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"groupme-bot/internal/models"
)

type dispatcherSpy struct {
	events []models.InboundEvent
}

func (s *dispatcherSpy) Handle(_ context.Context, event models.InboundEvent) {
	s.events = append(s.events, event)
}

func setupCallbackRouter(spy *dispatcherSpy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/callback", NewCallbackHandler(spy).Handle)
	return r
}

func TestCallbackDispatchesEvent(t *testing.T) {
	spy := &dispatcherSpy{}
	router := setupCallbackRouter(spy)

	body := bytes.NewBufferString(`{"text":"!flip","user_id":"u1","name":"Alice","sender_type":"user","group_id":"g1"}`)
	req := httptest.NewRequest(http.MethodPost, "/callback", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Len(t, spy.events, 1)
	require.Equal(t, "!flip", spy.events[0].Text)
	require.Equal(t, "g1", spy.events[0].GroupID)
}

func TestCallbackMalformedPayloadStillAnswers200(t *testing.T) {
	spy := &dispatcherSpy{}
	router := setupCallbackRouter(spy)

	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// GroupMe retries non-2xx responses, so even garbage gets a 200.
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, spy.events)
}

func TestCallbackMissingGroupIDIsDropped(t *testing.T) {
	spy := &dispatcherSpy{}
	router := setupCallbackRouter(spy)

	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewBufferString(`{"text":"!flip","sender_type":"user"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, spy.events)
}
