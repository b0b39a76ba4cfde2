package backend

import (
	"context"
	"hackassist_web/internal/model"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListHackathons(ctx context.Context) ([]model.Hackathon, error) {
	const route = "/api/hackathons"
	var out []model.Hackathon
	if err := c.do(ctx, http.MethodGet, route, route, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHackathon returns nil when the backend has no such mission (it answers null).
func (c *Client) GetHackathon(ctx context.Context, id string) (*model.Hackathon, error) {
	var out *model.Hackathon
	if err := c.do(ctx, http.MethodGet, "/api/hackathon/{id}", "/api/hackathon/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Recommendations(ctx context.Context, studentID int) ([]model.Recommendation, error) {
	var out []model.Recommendation
	path := "/api/recommendations/" + strconv.Itoa(studentID)
	if err := c.do(ctx, http.MethodGet, "/api/recommendations/{student_id}", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type RoadmapRequest struct {
	UserID       string   `json:"user_id,omitempty"`
	HackathonID  string   `json:"hackathon_id,omitempty"`
	ProjectTitle string   `json:"project_title"`
	Theme        string   `json:"theme"`
	TechStack    []string `json:"tech_stack"`
}

func (c *Client) Roadmap(ctx context.Context, req RoadmapRequest) (*model.Roadmap, error) {
	const route = "/api/roadmap"
	var out model.Roadmap
	if err := c.do(ctx, http.MethodPost, route, route, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StudentProgress(ctx context.Context, studentID int) ([]model.ProgressEntry, error) {
	var out []model.ProgressEntry
	path := "/api/student_progress/" + strconv.Itoa(studentID)
	if err := c.do(ctx, http.MethodGet, "/api/student_progress/{id}", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DepartmentAnalytics(ctx context.Context) (string, error) {
	const route = "/api/analytics/department"
	var out struct {
		Report string `json:"report"`
	}
	if err := c.do(ctx, http.MethodGet, route, route, nil, &out); err != nil {
		return "", err
	}
	return out.Report, nil
}

// Sync asks the backend to refresh its scraped mission data.
func (c *Client) Sync(ctx context.Context) (string, error) {
	const route = "/api/sync"
	var out envelope
	if err := c.do(ctx, http.MethodPost, route, route, nil, &out); err != nil {
		return "", err
	}
	if err := out.check(route); err != nil {
		return "", err
	}
	return out.Message, nil
}
