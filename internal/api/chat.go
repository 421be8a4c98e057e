package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyReply is returned when the chat backend answers without a reply.
var ErrEmptyReply = errors.New("chat backend returned no reply")

// ChatClient sends messages to the chat backend.
type ChatClient struct {
	client *Client
	path   string
}

// NewChatClient creates a chat client. path is appended to the client's base URL.
func NewChatClient(client *Client, path string) *ChatClient {
	return &ChatClient{client: client, path: path}
}

// Send posts message and returns the reply text.
func (c *ChatClient) Send(ctx context.Context, message string) (string, error) {
	body, err := c.client.postJSON(ctx, c.path, ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("send chat message: %w", err)
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal chat reply: %w", err)
	}
	if resp.Reply == "" {
		return "", ErrEmptyReply
	}
	return resp.Reply, nil
}
