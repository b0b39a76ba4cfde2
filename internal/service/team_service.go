package service

import (
	"context"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/events"
	"hackassist_web/internal/model"
	"hackassist_web/internal/session"
	"hackassist_web/internal/util"
	"hackassist_web/pkg/logger"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	TeamCodeLength = 6
	// 路由参数异常时的跳转延迟
	DefaultRedirectDelay = 3 * time.Second
)

var upper = cases.Upper(language.Und)

// NormalizeTeamCode trims and upper-cases a join code as it is typed.
func NormalizeTeamCode(code string) string {
	return upper.String(strings.TrimSpace(code))
}

// ValidHackathonID rejects a missing route parameter and the literal "undefined".
func ValidHackathonID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && id != "undefined"
}

type TeamBackend interface {
	GetHackathon(ctx context.Context, id string) (*model.Hackathon, error)
	CheckMembership(ctx context.Context, studentID int, hackathonID string) (*backend.Membership, error)
	CreateTeam(ctx context.Context, req backend.CreateTeamRequest) (*backend.CreateTeamResponse, error)
	JoinTeam(ctx context.Context, req backend.JoinTeamRequest) (*backend.JoinTeamResponse, error)
	TeamMembers(ctx context.Context, teamID int) ([]model.TeamMember, error)
}

type TeamView struct {
	HackathonID   string             `json:"hackathon_id"`
	Hackathon     *model.Hackathon   `json:"hackathon"`
	Mode          model.TeamMode     `json:"mode"`
	TeamName      string             `json:"team_name"`
	TeamCode      string             `json:"team_code"`
	GeneratedCode string             `json:"generated_code,omitempty"`
	TeamID        int                `json:"team_id,omitempty"`
	Members       []model.TeamMember `json:"members"`
	Busy          bool               `json:"busy"`
	Notice        string             `json:"notice,omitempty"`
	Redirect      *util.Redirect     `json:"redirect,omitempty"`
}

type JoinResult struct {
	TeamName   string
	Navigation *Navigation
}

// TeamFlow is the create/join state machine for one mission:
// selection → create|join → success, with a membership pre-check on entry.
type TeamFlow struct {
	mu      sync.Mutex
	backend TeamBackend
	store   *session.Store
	events  events.Publisher
	life    *Lifetime
	delay   time.Duration

	hackathonID   string
	hackathon     *model.Hackathon
	mode          model.TeamMode
	teamName      string
	teamCode      string
	generatedCode string
	teamID        int
	members       []model.TeamMember
	busy          bool
	invalid       bool
}

func NewTeamFlow(b TeamBackend, store *session.Store, pub events.Publisher, hackathonID string, redirectDelay time.Duration) *TeamFlow {
	if pub == nil {
		pub = events.Nop{}
	}
	if redirectDelay <= 0 {
		redirectDelay = DefaultRedirectDelay
	}
	hackathonID = strings.TrimSpace(hackathonID)
	return &TeamFlow{
		backend:     b,
		store:       store,
		events:      pub,
		life:        NewLifetime(),
		delay:       redirectDelay,
		hackathonID: hackathonID,
		mode:        model.TeamModeSelection,
		members:     []model.TeamMember{},
		invalid:     !ValidHackathonID(hackathonID),
	}
}

func (f *TeamFlow) HackathonID() string {
	return f.hackathonID
}

func (f *TeamFlow) Mode() model.TeamMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Enter loads the mission and runs the membership pre-check concurrently.
// An invalid mission id makes no calls and asks for a delayed redirect.
func (f *TeamFlow) Enter(ctx context.Context, forceJoin bool) (*Navigation, error) {
	if f.invalid {
		logger.Log.Info("Invalid mission id, redirecting", zap.String("hackathonId", f.hackathonID))
		return &Navigation{To: util.PathDashboard, After: f.delay}, nil
	}
	if !f.life.Alive() {
		return nil, util.ErrViewClosed
	}

	f.mu.Lock()
	if forceJoin && f.mode == model.TeamModeSelection {
		f.mode = model.TeamModeJoin
	}
	f.mu.Unlock()

	callCtx, cancel := f.life.Bind(ctx)
	defer cancel()

	studentID := f.store.StudentID()
	var (
		hack       *model.Hackathon
		membership *backend.Membership
	)
	g, gctx := errgroup.WithContext(callCtx)
	g.Go(func() error {
		h, err := f.backend.GetHackathon(gctx, f.hackathonID)
		if err != nil {
			// 活动详情拉取失败不影响组队流程
			logger.Log.Warn("Failed to load mission", zap.String("hackathonId", f.hackathonID), zap.Error(err))
			return nil
		}
		hack = h
		return nil
	})
	if studentID > 0 {
		g.Go(func() error {
			m, err := f.backend.CheckMembership(gctx, studentID, f.hackathonID)
			if err != nil {
				logger.Log.Warn("Membership pre-check failed", zap.Int("studentId", studentID), zap.String("hackathonId", f.hackathonID), zap.Error(err))
				return nil
			}
			membership = m
			return nil
		})
	}
	_ = g.Wait()

	if !f.life.Alive() {
		return nil, util.ErrViewClosed
	}

	f.mu.Lock()
	f.hackathon = hack
	if membership == nil || !membership.Exists {
		f.mu.Unlock()
		return nil, nil
	}
	f.mode = model.TeamModeSuccess
	f.teamID = membership.TeamID
	f.generatedCode = membership.TeamCode
	if membership.TeamName != "" {
		f.teamName = membership.TeamName
	}
	teamID := f.teamID
	f.mu.Unlock()

	logger.Log.Debug("Existing team found", zap.Int("studentId", studentID), zap.Int("teamId", teamID))
	f.loadMembers(ctx, teamID)
	return nil, nil
}

// SetMode moves selection → create|join.
func (f *TeamFlow) SetMode(mode model.TeamMode) error {
	if mode != model.TeamModeCreate && mode != model.TeamModeJoin {
		return util.ErrInvalidTransition
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalid {
		return util.ErrInvalidHackathon
	}
	if f.mode != model.TeamModeSelection {
		return util.ErrInvalidTransition
	}
	f.mode = mode
	return nil
}

// Abort returns from create|join to selection.
func (f *TeamFlow) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != model.TeamModeCreate && f.mode != model.TeamModeJoin {
		return util.ErrInvalidTransition
	}
	if f.busy {
		return util.ErrBusy
	}
	f.mode = model.TeamModeSelection
	return nil
}

func (f *TeamFlow) Create(ctx context.Context, teamName string) error {
	teamName = strings.TrimSpace(teamName)

	f.mu.Lock()
	if !f.life.Alive() {
		f.mu.Unlock()
		return util.ErrViewClosed
	}
	if f.mode != model.TeamModeCreate {
		f.mu.Unlock()
		return util.ErrInvalidTransition
	}
	if teamName == "" {
		f.mu.Unlock()
		return util.ErrTeamNameRequired
	}
	if f.busy {
		f.mu.Unlock()
		return util.ErrBusy
	}
	hackathonID, ok := util.ParseID(f.hackathonID)
	if !ok {
		f.mu.Unlock()
		return util.ErrInvalidHackathon
	}
	studentID := f.store.StudentID()
	if studentID <= 0 {
		f.mu.Unlock()
		return util.ErrNotAuthenticated
	}
	f.teamName = teamName
	f.busy = true
	f.mu.Unlock()

	callCtx, cancel := f.life.Bind(ctx)
	resp, err := f.backend.CreateTeam(callCtx, backend.CreateTeamRequest{
		HackathonID: hackathonID,
		StudentID:   studentID,
		TeamName:    teamName,
	})
	cancel()

	f.mu.Lock()
	f.busy = false
	if !f.life.Alive() {
		f.mu.Unlock()
		return util.ErrViewClosed
	}
	if err != nil {
		f.mu.Unlock()
		logger.Log.Warn("Team creation failed", zap.Int("studentId", studentID), zap.Int("hackathonId", hackathonID), zap.Error(err))
		return err
	}
	f.generatedCode = resp.TeamCode
	f.teamID = resp.TeamID
	f.mode = model.TeamModeSuccess
	f.mu.Unlock()

	f.events.Publish(ctx, events.TopicTeamCreated, events.Event{
		StudentID: studentID,
		Detail: map[string]string{
			"hackathon_id": f.hackathonID,
			"team_id":      strconv.Itoa(resp.TeamID),
		},
	})
	f.loadMembers(ctx, resp.TeamID)
	return nil
}

// Join links the student to the team behind code and navigates to the dashboard.
// A failure keeps the flow in join mode.
func (f *TeamFlow) Join(ctx context.Context, code string) (*JoinResult, error) {
	code = NormalizeTeamCode(code)

	f.mu.Lock()
	if !f.life.Alive() {
		f.mu.Unlock()
		return nil, util.ErrViewClosed
	}
	if f.mode != model.TeamModeJoin {
		f.mu.Unlock()
		return nil, util.ErrInvalidTransition
	}
	f.teamCode = code
	if utf8.RuneCountInString(code) != TeamCodeLength {
		f.mu.Unlock()
		return nil, util.ErrInvalidTeamCode
	}
	if f.busy {
		f.mu.Unlock()
		return nil, util.ErrBusy
	}
	studentID := f.store.StudentID()
	if studentID <= 0 {
		f.mu.Unlock()
		return nil, util.ErrNotAuthenticated
	}
	f.busy = true
	f.mu.Unlock()

	callCtx, cancel := f.life.Bind(ctx)
	resp, err := f.backend.JoinTeam(callCtx, backend.JoinTeamRequest{StudentID: studentID, TeamCode: code})
	cancel()

	f.mu.Lock()
	f.busy = false
	if !f.life.Alive() {
		f.mu.Unlock()
		return nil, util.ErrViewClosed
	}
	f.mu.Unlock()
	if err != nil {
		logger.Log.Warn("Joining team failed", zap.Int("studentId", studentID), zap.String("teamCode", code), zap.Error(err))
		return nil, err
	}

	f.events.Publish(ctx, events.TopicTeamJoined, events.Event{
		StudentID: studentID,
		Detail: map[string]string{
			"team_code": code,
			"team_name": resp.TeamName,
		},
	})
	return &JoinResult{
		TeamName:   resp.TeamName,
		Navigation: &Navigation{To: util.PathDashboard},
	}, nil
}

// Return is the only exit from success.
func (f *TeamFlow) Return() (*Navigation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != model.TeamModeSuccess {
		return nil, util.ErrInvalidTransition
	}
	return &Navigation{To: util.PathDashboard}, nil
}

func (f *TeamFlow) loadMembers(ctx context.Context, teamID int) {
	callCtx, cancel := f.life.Bind(ctx)
	members, err := f.backend.TeamMembers(callCtx, teamID)
	cancel()
	if err != nil {
		logger.Log.Warn("Failed to load team roster", zap.Int("teamId", teamID), zap.Error(err))
		return
	}
	if members == nil {
		members = []model.TeamMember{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.life.Alive() && f.teamID == teamID {
		f.members = members
	}
}

func (f *TeamFlow) View() TeamView {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := TeamView{
		HackathonID:   f.hackathonID,
		Hackathon:     f.hackathon,
		Mode:          f.mode,
		TeamName:      f.teamName,
		TeamCode:      f.teamCode,
		GeneratedCode: f.generatedCode,
		TeamID:        f.teamID,
		Members:       append([]model.TeamMember{}, f.members...),
		Busy:          f.busy,
	}
	if f.invalid {
		v.Notice = util.MsgInvalidMission
		v.Redirect = (&Navigation{To: util.PathDashboard, After: f.delay}).Redirect()
	}
	return v
}

func (f *TeamFlow) Close() {
	f.life.Close()
}
