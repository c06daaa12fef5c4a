package groupme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Send chunks messages at GroupMe's hard limit.
const messageCharLimit = 1000

// Client is the surface of the GroupMe API the bot consumes.
type Client interface {
	Send(ctx context.Context, groupID, text string, attachments ...Attachment) error
	ShowGroup(ctx context.Context, groupID string) (Group, error)
	ListMessages(ctx context.Context, groupID, beforeID string) ([]Message, error)
	UploadImage(ctx context.Context, data []byte) (string, error)
}

// HTTPClient talks to the GroupMe REST API v3.
type HTTPClient struct {
	apiBase  string
	imageURL string
	token    string
	http     *http.Client

	mu     sync.Mutex
	botIDs map[string]string
}

// NewClient constructs an HTTPClient.
func NewClient(apiBase, imageURL, token string) *HTTPClient {
	return &HTTPClient{
		apiBase:  apiBase,
		imageURL: imageURL,
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
		botIDs:   make(map[string]string),
	}
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Meta     struct {
		Code   int      `json:"code"`
		Errors []string `json:"errors"`
	} `json:"meta"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", c.token)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path+"?"+query.Encode(), body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// GroupMe answers 304 for an exhausted message index.
	if resp.StatusCode == http.StatusNotModified {
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("groupme %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("groupme %s %s: decode: %w", method, path, err)
	}
	if len(env.Response) == 0 {
		return nil
	}
	return json.Unmarshal(env.Response, out)
}

// Send posts a bot message to the group, splitting text longer than the
// platform limit into ordered sequential messages. Attachments ride on the
// first chunk.
func (c *HTTPClient) Send(ctx context.Context, groupID, text string, attachments ...Attachment) error {
	botID, err := c.botForGroup(ctx, groupID)
	if err != nil {
		return err
	}

	for i, chunk := range splitMessage(text, messageCharLimit) {
		payload := map[string]any{"bot_id": botID, "text": chunk}
		if i == 0 && len(attachments) > 0 {
			payload["attachments"] = attachments
		}
		if err := c.do(ctx, http.MethodPost, "/bots/post", nil, payload, nil); err != nil {
			return fmt.Errorf("post message: %w", err)
		}
	}
	return nil
}

// ShowGroup fetches the group's metadata and member roster.
func (c *HTTPClient) ShowGroup(ctx context.Context, groupID string) (Group, error) {
	var group Group
	err := c.do(ctx, http.MethodGet, "/groups/"+groupID, nil, nil, &group)
	return group, err
}

// ListMessages returns one page of the group's history, newest first. An
// empty beforeID starts at the most recent message; an empty result means the
// history is exhausted.
func (c *HTTPClient) ListMessages(ctx context.Context, groupID, beforeID string) ([]Message, error) {
	query := url.Values{"limit": {"100"}}
	if beforeID != "" {
		query.Set("before_id", beforeID)
	}

	var page struct {
		Count    int       `json:"count"`
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/groups/"+groupID+"/messages", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Messages, nil
}

// UploadImage pushes raw image bytes to the GroupMe image service and returns
// the hosted URL.
func (c *HTTPClient) UploadImage(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.imageURL+"?token="+url.QueryEscape(c.token), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("image upload: status %d", resp.StatusCode)
	}

	var result struct {
		Payload struct {
			URL string `json:"url"`
		} `json:"payload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("image upload: decode: %w", err)
	}
	return result.Payload.URL, nil
}

// botForGroup resolves the bot id posting into a group, caching the bots
// index after the first lookup. A cache miss refreshes the index once in case
// a bot was registered after startup.
func (c *HTTPClient) botForGroup(ctx context.Context, groupID string) (string, error) {
	c.mu.Lock()
	botID, ok := c.botIDs[groupID]
	c.mu.Unlock()
	if ok {
		return botID, nil
	}

	var bots []Bot
	if err := c.do(ctx, http.MethodGet, "/bots", nil, nil, &bots); err != nil {
		return "", fmt.Errorf("list bots: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, bot := range bots {
		c.botIDs[bot.GroupID] = bot.BotID
	}
	if botID, ok = c.botIDs[groupID]; !ok {
		return "", fmt.Errorf("no bot registered for group %s", groupID)
	}
	return botID, nil
}

func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(text) > limit {
		chunks = append(chunks, text[:limit])
		text = text[limit:]
	}
	return append(chunks, text)
}
