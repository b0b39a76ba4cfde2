package service

import (
	"context"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/model"
	"hackassist_web/internal/util"
	"hackassist_web/pkg/logger"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 路线图请求的默认值
const (
	DefaultProjectTitle = "My Project"
	DefaultTheme        = "AI"
)

var DefaultTechStack = []string{"React"}

type DashboardBackend interface {
	ListHackathons(ctx context.Context) ([]model.Hackathon, error)
	GetHackathon(ctx context.Context, id string) (*model.Hackathon, error)
	Recommendations(ctx context.Context, studentID int) ([]model.Recommendation, error)
	StudentProgress(ctx context.Context, studentID int) ([]model.ProgressEntry, error)
	Roadmap(ctx context.Context, req backend.RoadmapRequest) (*model.Roadmap, error)
	DepartmentAnalytics(ctx context.Context) (string, error)
	Sync(ctx context.Context) (string, error)
}

// StudentDashboard sections load independently; a failed section is empty.
type StudentDashboard struct {
	Hackathons      []model.Hackathon      `json:"hackathons"`
	Recommendations []model.Recommendation `json:"recommendations"`
	Progress        []model.ProgressEntry  `json:"progress"`
}

type AnalyticsDashboard struct {
	Report string `json:"report"`
	Failed bool   `json:"failed,omitempty"`
}

type Dashboard struct {
	Role      model.DashboardRole `json:"role"`
	User      *model.User         `json:"user"`
	Student   *StudentDashboard   `json:"student,omitempty"`
	Analytics *AnalyticsDashboard `json:"analytics,omitempty"`
}

type RoadmapInput struct {
	HackathonID  string   `json:"hackathon_id"`
	ProjectTitle string   `json:"project_title" validate:"max=200"`
	Theme        string   `json:"theme" validate:"max=100"`
	TechStack    []string `json:"tech_stack" validate:"max=20,dive,max=50"`
}

type DashboardService struct {
	backend DashboardBackend
}

func NewDashboardService(b DashboardBackend) *DashboardService {
	return &DashboardService{backend: b}
}

// Overview builds the dashboard for the user's selected role.
func (s *DashboardService) Overview(ctx context.Context, user *model.User, role model.DashboardRole) (*Dashboard, error) {
	d := &Dashboard{Role: role, User: user}
	switch role {
	case model.RoleFaculty, model.RoleHOD:
		d.Analytics = s.Analytics(ctx)
	default:
		sd, err := s.Student(ctx, user.StudentID)
		if err != nil {
			return nil, err
		}
		d.Student = sd
	}
	return d, nil
}

func (s *DashboardService) Student(ctx context.Context, studentID int) (*StudentDashboard, error) {
	sd := &StudentDashboard{
		Hackathons:      []model.Hackathon{},
		Recommendations: []model.Recommendation{},
		Progress:        []model.ProgressEntry{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.backend.ListHackathons(gctx)
		if err != nil {
			logger.Log.Warn("Failed to load missions", zap.Error(err))
			return nil
		}
		if list != nil {
			sd.Hackathons = list
		}
		return nil
	})
	g.Go(func() error {
		recs, err := s.backend.Recommendations(gctx, studentID)
		if err != nil {
			logger.Log.Warn("Failed to load recommendations", zap.Int("studentId", studentID), zap.Error(err))
			return nil
		}
		if recs != nil {
			sd.Recommendations = recs
		}
		return nil
	})
	g.Go(func() error {
		progress, err := s.backend.StudentProgress(gctx, studentID)
		if err != nil {
			logger.Log.Warn("Failed to load progress", zap.Int("studentId", studentID), zap.Error(err))
			return nil
		}
		if progress != nil {
			sd.Progress = progress
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// 请求被取消时不返回半成品
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sd, nil
}

func (s *DashboardService) Hackathons(ctx context.Context) ([]model.Hackathon, error) {
	list, err := s.backend.ListHackathons(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Hackathon{}
	}
	return list, nil
}

// Hackathon returns util.ErrInvalidHackathon for a malformed id and nil for an unknown one.
func (s *DashboardService) Hackathon(ctx context.Context, id string) (*model.Hackathon, error) {
	if !ValidHackathonID(id) {
		return nil, util.ErrInvalidHackathon
	}
	return s.backend.GetHackathon(ctx, strings.TrimSpace(id))
}

func (s *DashboardService) Recommendations(ctx context.Context, studentID int) ([]model.Recommendation, error) {
	recs, err := s.backend.Recommendations(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return recs, nil
}

func (s *DashboardService) Progress(ctx context.Context, studentID int) ([]model.ProgressEntry, error) {
	progress, err := s.backend.StudentProgress(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = []model.ProgressEntry{}
	}
	return progress, nil
}

// Roadmap fills the defaults the dashboard uses when the student gives none.
func (s *DashboardService) Roadmap(ctx context.Context, studentID int, in RoadmapInput) (*model.Roadmap, error) {
	if err := validate.Struct(in); err != nil {
		return nil, util.ErrMissingField
	}
	req := backend.RoadmapRequest{
		HackathonID:  strings.TrimSpace(in.HackathonID),
		ProjectTitle: strings.TrimSpace(in.ProjectTitle),
		Theme:        strings.TrimSpace(in.Theme),
		TechStack:    in.TechStack,
	}
	if studentID > 0 {
		req.UserID = strconv.Itoa(studentID)
	}
	if req.ProjectTitle == "" {
		req.ProjectTitle = DefaultProjectTitle
	}
	if req.Theme == "" {
		req.Theme = DefaultTheme
	}
	if len(req.TechStack) == 0 {
		req.TechStack = DefaultTechStack
	}

	roadmap, err := s.backend.Roadmap(ctx, req)
	if err != nil {
		logger.Log.Warn("Failed to generate roadmap", zap.Int("studentId", studentID), zap.Error(err))
		return nil, err
	}
	if roadmap.Steps == nil {
		roadmap.Steps = []model.RoadmapStep{}
	}
	return roadmap, nil
}

// Analytics never fails; a failed call yields the fixed error report.
func (s *DashboardService) Analytics(ctx context.Context) *AnalyticsDashboard {
	report, err := s.backend.DepartmentAnalytics(ctx)
	if err != nil {
		logger.Log.Warn("Failed to load department analytics", zap.Error(err))
		return &AnalyticsDashboard{Report: util.MsgAnalyticsFailure, Failed: true}
	}
	return &AnalyticsDashboard{Report: report}
}

// Sync returns the backend message, or an error whose text is user-facing.
func (s *DashboardService) Sync(ctx context.Context) (string, error) {
	msg, err := s.backend.Sync(ctx)
	if err != nil {
		logger.Log.Warn("Mission sync failed", zap.Error(err))
		return "", err
	}
	return msg, nil
}
