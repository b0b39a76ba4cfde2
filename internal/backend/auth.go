package backend

import (
	"context"
	"net/http"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	StudentID int    `json:"student_id"`
	Name      string `json:"name"`
	Onboarded bool   `json:"onboarded"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	StudentID int `json:"student_id"`
}

type OnboardRequest struct {
	StudentID       int      `json:"student_id"`
	Department      string   `json:"department"`
	ExperienceLevel string   `json:"experience_level"`
	Skills          []string `json:"skills"`
	Interests       []string `json:"interests"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	const route = "/api/auth/login"
	var out struct {
		envelope
		LoginResponse
	}
	if err := c.do(ctx, http.MethodPost, route, route, req, &out); err != nil {
		return nil, err
	}
	if err := out.check(route); err != nil {
		return nil, err
	}
	return &out.LoginResponse, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	const route = "/api/auth/register"
	var out struct {
		envelope
		RegisterResponse
	}
	if err := c.do(ctx, http.MethodPost, route, route, req, &out); err != nil {
		return nil, err
	}
	if err := out.check(route); err != nil {
		return nil, err
	}
	return &out.RegisterResponse, nil
}

func (c *Client) Onboard(ctx context.Context, req OnboardRequest) error {
	const route = "/api/student/onboard"
	var out envelope
	if err := c.do(ctx, http.MethodPost, route, route, req, &out); err != nil {
		return err
	}
	return out.check(route)
}
