package service

import (
	"context"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/events"
	"hackassist_web/internal/model"
	"hackassist_web/internal/session"
	"hackassist_web/internal/util"
	"hackassist_web/pkg/logger"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type OnboardingStep int

const (
	StepAuth OnboardingStep = iota
	StepDepartment
	StepExperience
	StepSkills
	StepInterests
)

func (s OnboardingStep) String() string {
	switch s {
	case StepAuth:
		return "auth"
	case StepDepartment:
		return "department"
	case StepExperience:
		return "experience"
	case StepSkills:
		return "skills"
	case StepInterests:
		return "interests"
	}
	return "unknown"
}

type AuthMode string

const (
	AuthModeRegister AuthMode = "register"
	AuthModeLogin    AuthMode = "login"
)

// 向导中可选的选项
var (
	Departments     = []string{"CSE", "IT", "ECE", "AI/ML", "MECH", "CIVIL"}
	SkillOptions    = []string{"React", "Python", "Go", "Typescript", "Rust", "PostgreSQL", "ThreeJS", "TensorFlow", "LLMs", "Solidity"}
	InterestOptions = []string{"FinTech", "HealthTech", "Web3", "AI Safety", "Green Tech", "Social Impact", "Security", "Automation"}
)

const defaultDepartment = "CSE"

type AuthBackend interface {
	Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.RegisterResponse, error)
	Onboard(ctx context.Context, req backend.OnboardRequest) error
}

type Credentials struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OnboardingForm accumulates account and profile data across the steps.
type OnboardingForm struct {
	Name            string
	Email           string
	Password        string
	StudentID       int
	Department      string
	ExperienceLevel model.ExperienceLevel
	Skills          *model.TagSet
	Interests       *model.TagSet
}

func newOnboardingForm() OnboardingForm {
	return OnboardingForm{
		Department:      defaultDepartment,
		ExperienceLevel: model.Intermediate,
		Skills:          model.NewTagSet(),
		Interests:       model.NewTagSet(),
	}
}

type OnboardingOptions struct {
	Departments      []string                `json:"departments"`
	ExperienceLevels []model.ExperienceLevel `json:"experience_levels"`
	Skills           []string                `json:"skills"`
	Interests        []string                `json:"interests"`
}

type OnboardingView struct {
	Step             OnboardingStep        `json:"step"`
	StepName         string                `json:"step_name"`
	Mode             AuthMode              `json:"mode"`
	Name             string                `json:"name"`
	Email            string                `json:"email"`
	Department       string                `json:"department"`
	ExperienceLevel  model.ExperienceLevel `json:"experience_level"`
	Skills           []string              `json:"skills"`
	Interests        []string              `json:"interests"`
	CanConfirmSkills bool                  `json:"can_confirm_skills"`
	CanSubmit        bool                  `json:"can_submit"`
	Submitting       bool                  `json:"submitting"`
	Done             bool                  `json:"done"`
	Options          OnboardingOptions     `json:"options"`
}

// OnboardingWizard walks Auth → Department → Experience → Skills → Interests.
// Steps only move forward and only through the methods below.
type OnboardingWizard struct {
	mu      sync.Mutex
	backend AuthBackend
	store   *session.Store
	events  events.Publisher
	life    *Lifetime

	step OnboardingStep
	mode AuthMode
	form OnboardingForm

	// 只有账号步骤成功后才置位，资料提交以此为准
	pendingOnboarding bool
	submitting        bool
	done              bool
}

func NewOnboardingWizard(b AuthBackend, store *session.Store, pub events.Publisher) *OnboardingWizard {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OnboardingWizard{
		backend: b,
		store:   store,
		events:  pub,
		life:    NewLifetime(),
		step:    StepAuth,
		mode:    AuthModeRegister,
		form:    newOnboardingForm(),
	}
}

func (w *OnboardingWizard) Step() OnboardingStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *OnboardingWizard) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

func (w *OnboardingWizard) View() OnboardingView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return OnboardingView{
		Step:             w.step,
		StepName:         w.step.String(),
		Mode:             w.mode,
		Name:             w.form.Name,
		Email:            w.form.Email,
		Department:       w.form.Department,
		ExperienceLevel:  w.form.ExperienceLevel,
		Skills:           w.form.Skills.Values(),
		Interests:        w.form.Interests.Values(),
		CanConfirmSkills: w.step == StepSkills && w.form.Skills.Len() > 0,
		CanSubmit:        w.step == StepInterests && w.form.Interests.Len() > 0 && !w.submitting,
		Submitting:       w.submitting,
		Done:             w.done,
		Options: OnboardingOptions{
			Departments:      Departments,
			ExperienceLevels: model.ExperienceLevels,
			Skills:           SkillOptions,
			Interests:        InterestOptions,
		},
	}
}

// at reports whether the wizard may act at step; caller holds w.mu.
func (w *OnboardingWizard) at(step OnboardingStep) error {
	if w.done || w.step != step {
		return util.ErrWrongStep
	}
	return nil
}

func (w *OnboardingWizard) advance(to OnboardingStep) {
	logger.Log.Debug("Onboarding step", zap.String("from", w.step.String()), zap.String("to", to.String()))
	w.step = to
}

func (w *OnboardingWizard) SetMode(mode AuthMode) error {
	if mode != AuthModeLogin && mode != AuthModeRegister {
		return util.ErrUnknownOption
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepAuth); err != nil {
		return err
	}
	if w.submitting {
		return util.ErrBusy
	}
	w.mode = mode
	return nil
}

// SubmitAuth runs phase one (login or register). On failure the wizard stays on the auth step.
func (w *OnboardingWizard) SubmitAuth(ctx context.Context, creds Credentials) (*Navigation, error) {
	creds.Name = strings.TrimSpace(creds.Name)
	creds.Email = strings.TrimSpace(creds.Email)

	w.mu.Lock()
	if err := w.at(StepAuth); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, util.ErrBusy
	}
	mode := w.mode
	if err := validate.Struct(creds); err != nil || (mode == AuthModeRegister && creds.Name == "") {
		w.mu.Unlock()
		return nil, util.ErrMissingField
	}
	w.form.Name = creds.Name
	w.form.Email = creds.Email
	w.form.Password = creds.Password
	w.submitting = true
	w.mu.Unlock()

	callCtx, cancel := w.life.Bind(ctx)
	var (
		studentID int
		name      string
		onboarded bool
		err       error
	)
	if mode == AuthModeLogin {
		var resp *backend.LoginResponse
		resp, err = w.backend.Login(callCtx, backend.LoginRequest{Email: creds.Email, Password: creds.Password})
		if err == nil {
			studentID, name, onboarded = resp.StudentID, resp.Name, resp.Onboarded
		}
	} else {
		var resp *backend.RegisterResponse
		resp, err = w.backend.Register(callCtx, backend.RegisterRequest{Name: creds.Name, Email: creds.Email, Password: creds.Password})
		if err == nil {
			studentID = resp.StudentID
		}
	}
	cancel()

	w.mu.Lock()
	w.submitting = false
	if !w.life.Alive() {
		w.mu.Unlock()
		return nil, util.ErrViewClosed
	}
	if err != nil {
		w.mu.Unlock()
		logger.Log.Warn("Account step failed", zap.String("mode", string(mode)), zap.String("email", creds.Email), zap.Error(err))
		return nil, err
	}

	w.form.StudentID = studentID
	w.pendingOnboarding = studentID > 0

	if mode == AuthModeLogin && onboarded {
		user := &model.User{
			StudentID:   studentID,
			Name:        name,
			Email:       creds.Email,
			Skills:      []string{},
			Interests:   []string{},
			IsOnboarded: true,
		}
		w.finishLocked()
		w.mu.Unlock()

		w.signIn(ctx, user)
		return &Navigation{To: util.PathDashboard}, nil
	}

	if mode == AuthModeLogin && name != "" {
		w.form.Name = name
	}
	w.advance(StepDepartment)
	w.mu.Unlock()
	return nil, nil
}

func (w *OnboardingWizard) SelectDepartment(dept string) error {
	if !contains(Departments, dept) {
		return util.ErrUnknownOption
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepDepartment); err != nil {
		return err
	}
	w.form.Department = dept
	w.advance(StepExperience)
	return nil
}

func (w *OnboardingWizard) SelectExperience(level model.ExperienceLevel) error {
	if !level.Valid() {
		return util.ErrUnknownOption
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepExperience); err != nil {
		return err
	}
	w.form.ExperienceLevel = level
	w.advance(StepSkills)
	return nil
}

// ToggleSkill reports whether the skill is selected afterwards.
func (w *OnboardingWizard) ToggleSkill(skill string) (bool, error) {
	if !contains(SkillOptions, skill) {
		return false, util.ErrUnknownOption
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepSkills); err != nil {
		return false, err
	}
	return w.form.Skills.Toggle(skill), nil
}

func (w *OnboardingWizard) ConfirmSkills() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepSkills); err != nil {
		return err
	}
	if w.form.Skills.Len() == 0 {
		return util.ErrSelectionRequired
	}
	w.advance(StepInterests)
	return nil
}

func (w *OnboardingWizard) ToggleInterest(interest string) (bool, error) {
	if !contains(InterestOptions, interest) {
		return false, util.ErrUnknownOption
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepInterests); err != nil {
		return false, err
	}
	return w.form.Interests.Toggle(interest), nil
}

// SubmitProfile runs phase two with the whole accumulator and signs the user in.
func (w *OnboardingWizard) SubmitProfile(ctx context.Context) (*Navigation, error) {
	w.mu.Lock()
	if err := w.at(StepInterests); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.form.Interests.Len() == 0 {
		w.mu.Unlock()
		return nil, util.ErrSelectionRequired
	}
	if !w.pendingOnboarding || w.form.StudentID <= 0 {
		w.mu.Unlock()
		return nil, util.ErrNotAuthenticated
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, util.ErrBusy
	}
	form := w.form
	skills := form.Skills.Values()
	interests := form.Interests.Values()
	w.submitting = true
	w.mu.Unlock()

	callCtx, cancel := w.life.Bind(ctx)
	err := w.backend.Onboard(callCtx, backend.OnboardRequest{
		StudentID:       form.StudentID,
		Department:      form.Department,
		ExperienceLevel: string(form.ExperienceLevel),
		Skills:          skills,
		Interests:       interests,
	})
	cancel()

	w.mu.Lock()
	w.submitting = false
	if !w.life.Alive() {
		w.mu.Unlock()
		return nil, util.ErrViewClosed
	}
	if err != nil {
		w.mu.Unlock()
		logger.Log.Warn("Profile step failed", zap.Int("studentId", form.StudentID), zap.Error(err))
		return nil, err
	}

	user := &model.User{
		StudentID:       form.StudentID,
		Name:            form.Name,
		Email:           form.Email,
		Skills:          skills,
		Interests:       interests,
		ExperienceLevel: form.ExperienceLevel,
		IsOnboarded:     true,
	}
	w.finishLocked()
	w.mu.Unlock()

	w.signIn(ctx, user)
	w.events.Publish(ctx, events.TopicOnboardingCompleted, events.Event{
		StudentID: user.StudentID,
		Detail: map[string]string{
			"department":       form.Department,
			"experience_level": string(form.ExperienceLevel),
		},
	})
	return &Navigation{To: util.PathDashboard}, nil
}

// finishLocked discards the accumulator; caller holds w.mu.
func (w *OnboardingWizard) finishLocked() {
	w.done = true
	w.pendingOnboarding = false
	w.form.Password = ""
}

func (w *OnboardingWizard) signIn(ctx context.Context, user *model.User) {
	// 持久化失败时内存中的会话仍然有效，Store 已记录错误
	if err := w.store.SetUser(ctx, user); err != nil {
		logger.Log.Warn("Signed in without a durable session", zap.Int("studentId", user.StudentID))
	}
	w.events.Publish(ctx, events.TopicSessionChanged, events.Event{
		StudentID: user.StudentID,
		Detail:    map[string]string{"action": "sign_in"},
	})
}

func (w *OnboardingWizard) Close() {
	w.life.Close()
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
