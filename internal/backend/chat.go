package backend

import (
	"context"
	"net/http"
)

// AnonymousUser is sent as user_id when nobody is signed in.
const AnonymousUser = "anonymous"

type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	const route = "/api/chat"
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, route, route, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterHackathon only cares about the HTTP status.
func (c *Client) RegisterHackathon(ctx context.Context, req ChatRequest) error {
	const route = "/api/register_hackathon"
	return c.do(ctx, http.MethodPost, route, route, req, nil)
}
