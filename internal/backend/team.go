package backend

import (
	"context"
	"hackassist_web/internal/model"
	"net/http"
	"net/url"
	"strconv"
)

const membershipExists = "exists"

type Membership struct {
	Exists   bool
	TeamID   int
	TeamName string
	TeamCode string
}

type CreateTeamRequest struct {
	HackathonID int    `json:"hackathon_id"`
	StudentID   int    `json:"student_id"`
	TeamName    string `json:"team_name"`
}

type CreateTeamResponse struct {
	TeamCode string `json:"team_code"`
	TeamID   int    `json:"team_id"`
}

type JoinTeamRequest struct {
	StudentID int    `json:"student_id"`
	TeamCode  string `json:"team_code"`
}

type JoinTeamResponse struct {
	TeamName    string `json:"team_name"`
	HackathonID int    `json:"hackathon_id"`
}

// CheckMembership reports whether the student already has a team for the mission.
func (c *Client) CheckMembership(ctx context.Context, studentID int, hackathonID string) (*Membership, error) {
	var out struct {
		Status   string `json:"status"`
		TeamID   int    `json:"team_id"`
		TeamName string `json:"team_name"`
		TeamCode string `json:"team_code"`
	}
	path := "/api/team/check/" + strconv.Itoa(studentID) + "/" + url.PathEscape(hackathonID)
	if err := c.do(ctx, http.MethodGet, "/api/team/check/{student_id}/{hackathon_id}", path, nil, &out); err != nil {
		return nil, err
	}
	return &Membership{
		Exists:   out.Status == membershipExists,
		TeamID:   out.TeamID,
		TeamName: out.TeamName,
		TeamCode: out.TeamCode,
	}, nil
}

func (c *Client) CreateTeam(ctx context.Context, req CreateTeamRequest) (*CreateTeamResponse, error) {
	const route = "/api/team/create"
	var out struct {
		envelope
		CreateTeamResponse
	}
	if err := c.do(ctx, http.MethodPost, route, route, req, &out); err != nil {
		return nil, err
	}
	if err := out.check(route); err != nil {
		return nil, err
	}
	return &out.CreateTeamResponse, nil
}

func (c *Client) JoinTeam(ctx context.Context, req JoinTeamRequest) (*JoinTeamResponse, error) {
	const route = "/api/team/join"
	var out struct {
		envelope
		JoinTeamResponse
	}
	if err := c.do(ctx, http.MethodPost, route, route, req, &out); err != nil {
		return nil, err
	}
	if err := out.check(route); err != nil {
		return nil, err
	}
	return &out.JoinTeamResponse, nil
}

func (c *Client) TeamMembers(ctx context.Context, teamID int) ([]model.TeamMember, error) {
	var out []model.TeamMember
	path := "/api/team/members/" + strconv.Itoa(teamID)
	if err := c.do(ctx, http.MethodGet, "/api/team/members/{team_id}", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
