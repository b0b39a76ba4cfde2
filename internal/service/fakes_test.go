package service

import (
	"context"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/model"
	"hackassist_web/internal/repository"
	"hackassist_web/internal/session"
	"sync"
	"testing"
)

// fakeBackend records every call; unset hooks return a plain success.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	chat       func(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
	register   func(ctx context.Context, req backend.ChatRequest) error
	login      func(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error)
	signup     func(ctx context.Context, req backend.RegisterRequest) (*backend.RegisterResponse, error)
	onboard    func(ctx context.Context, req backend.OnboardRequest) error
	hackathon  func(ctx context.Context, id string) (*model.Hackathon, error)
	membership func(ctx context.Context, studentID int, hackathonID string) (*backend.Membership, error)
	createTeam func(ctx context.Context, req backend.CreateTeamRequest) (*backend.CreateTeamResponse, error)
	joinTeam   func(ctx context.Context, req backend.JoinTeamRequest) (*backend.JoinTeamResponse, error)
	members    func(ctx context.Context, teamID int) ([]model.TeamMember, error)
	list       func(ctx context.Context) ([]model.Hackathon, error)
	recs       func(ctx context.Context, studentID int) ([]model.Recommendation, error)
	progress   func(ctx context.Context, studentID int) ([]model.ProgressEntry, error)
	roadmap    func(ctx context.Context, req backend.RoadmapRequest) (*model.Roadmap, error)
	analytics  func(ctx context.Context) (string, error)
	sync       func(ctx context.Context) (string, error)
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
	f.record("chat")
	if f.chat != nil {
		return f.chat(ctx, req)
	}
	return &backend.ChatResponse{Response: "ok"}, nil
}

func (f *fakeBackend) RegisterHackathon(ctx context.Context, req backend.ChatRequest) error {
	f.record("register_hackathon")
	if f.register != nil {
		return f.register(ctx, req)
	}
	return nil
}

func (f *fakeBackend) Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error) {
	f.record("login")
	if f.login != nil {
		return f.login(ctx, req)
	}
	return &backend.LoginResponse{StudentID: 1}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req backend.RegisterRequest) (*backend.RegisterResponse, error) {
	f.record("register")
	if f.signup != nil {
		return f.signup(ctx, req)
	}
	return &backend.RegisterResponse{StudentID: 1}, nil
}

func (f *fakeBackend) Onboard(ctx context.Context, req backend.OnboardRequest) error {
	f.record("onboard")
	if f.onboard != nil {
		return f.onboard(ctx, req)
	}
	return nil
}

func (f *fakeBackend) GetHackathon(ctx context.Context, id string) (*model.Hackathon, error) {
	f.record("hackathon")
	if f.hackathon != nil {
		return f.hackathon(ctx, id)
	}
	return &model.Hackathon{HackathonID: 1, Name: "AI Innovation Challenge"}, nil
}

func (f *fakeBackend) CheckMembership(ctx context.Context, studentID int, hackathonID string) (*backend.Membership, error) {
	f.record("membership")
	if f.membership != nil {
		return f.membership(ctx, studentID, hackathonID)
	}
	return &backend.Membership{}, nil
}

func (f *fakeBackend) CreateTeam(ctx context.Context, req backend.CreateTeamRequest) (*backend.CreateTeamResponse, error) {
	f.record("create_team")
	if f.createTeam != nil {
		return f.createTeam(ctx, req)
	}
	return &backend.CreateTeamResponse{TeamCode: "ABC123", TeamID: 1}, nil
}

func (f *fakeBackend) JoinTeam(ctx context.Context, req backend.JoinTeamRequest) (*backend.JoinTeamResponse, error) {
	f.record("join_team")
	if f.joinTeam != nil {
		return f.joinTeam(ctx, req)
	}
	return &backend.JoinTeamResponse{TeamName: "Squad"}, nil
}

func (f *fakeBackend) TeamMembers(ctx context.Context, teamID int) ([]model.TeamMember, error) {
	f.record("members")
	if f.members != nil {
		return f.members(ctx, teamID)
	}
	return []model.TeamMember{}, nil
}

func (f *fakeBackend) ListHackathons(ctx context.Context) ([]model.Hackathon, error) {
	f.record("list")
	if f.list != nil {
		return f.list(ctx)
	}
	return []model.Hackathon{}, nil
}

func (f *fakeBackend) Recommendations(ctx context.Context, studentID int) ([]model.Recommendation, error) {
	f.record("recommendations")
	if f.recs != nil {
		return f.recs(ctx, studentID)
	}
	return []model.Recommendation{}, nil
}

func (f *fakeBackend) StudentProgress(ctx context.Context, studentID int) ([]model.ProgressEntry, error) {
	f.record("progress")
	if f.progress != nil {
		return f.progress(ctx, studentID)
	}
	return []model.ProgressEntry{}, nil
}

func (f *fakeBackend) Roadmap(ctx context.Context, req backend.RoadmapRequest) (*model.Roadmap, error) {
	f.record("roadmap")
	if f.roadmap != nil {
		return f.roadmap(ctx, req)
	}
	return &model.Roadmap{}, nil
}

func (f *fakeBackend) DepartmentAnalytics(ctx context.Context) (string, error) {
	f.record("analytics")
	if f.analytics != nil {
		return f.analytics(ctx)
	}
	return "", nil
}

func (f *fakeBackend) Sync(ctx context.Context) (string, error) {
	f.record("sync")
	if f.sync != nil {
		return f.sync(ctx)
	}
	return "Synced", nil
}

func newStore(t *testing.T, user *model.User) *session.Store {
	t.Helper()
	store, err := session.Open(context.Background(), repository.NewMemorySessionRepository(), "hackassist_user:test")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if user != nil {
		if err := store.SetUser(context.Background(), user); err != nil {
			t.Fatalf("SetUser() error = %v", err)
		}
	}
	return store
}

func onboardedUser(id int) *model.User {
	return &model.User{
		StudentID:   id,
		Name:        "Ada",
		Email:       "ada@example.com",
		Skills:      []string{"Go"},
		Interests:   []string{"Web3"},
		IsOnboarded: true,
	}
}

func transportErr() error {
	return &backend.TransportError{Route: "/test", StatusCode: 500}
}
