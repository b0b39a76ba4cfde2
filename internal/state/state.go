// Package state keeps one application state per browser client.
package state

import (
	"context"
	"hackassist_web/internal/events"
	"hackassist_web/internal/service"
	"hackassist_web/internal/session"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Backend is everything the flows call on the HackAssist API.
type Backend interface {
	service.ChatBackend
	service.AuthBackend
	service.TeamBackend
	service.DashboardBackend
}

// AppState groups the session store and the flows of one browser.
type AppState struct {
	ClientID string
	Session  *session.Store
	Chat     *service.ChatSession

	backend       Backend
	events        events.Publisher
	redirectDelay time.Duration
	lastSeen      atomic.Int64

	mu     sync.Mutex
	wizard *service.OnboardingWizard
	team   *service.TeamFlow
}

func newAppState(clientID string, store *session.Store, b Backend, pub events.Publisher, redirectDelay time.Duration) *AppState {
	a := &AppState{
		ClientID:      clientID,
		Session:       store,
		Chat:          service.NewChatSession(b, store, pub),
		backend:       b,
		events:        pub,
		redirectDelay: redirectDelay,
	}
	a.touch(time.Now())
	return a
}

func (a *AppState) touch(now time.Time) {
	a.lastSeen.Store(now.UnixNano())
}

func (a *AppState) LastSeen() time.Time {
	return time.Unix(0, a.lastSeen.Load())
}

// Wizard returns the running onboarding wizard, starting a new one when none
// is running or the previous one finished.
func (a *AppState) Wizard() *service.OnboardingWizard {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.wizard == nil || a.wizard.Done() {
		a.wizard = service.NewOnboardingWizard(a.backend, a.Session, a.events)
	}
	return a.wizard
}

// MountTeamFlow starts a fresh team flow for the mission and tears down the previous one.
func (a *AppState) MountTeamFlow(hackathonID string) *service.TeamFlow {
	flow := service.NewTeamFlow(a.backend, a.Session, a.events, hackathonID, a.redirectDelay)

	a.mu.Lock()
	prev := a.team
	a.team = flow
	a.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return flow
}

// TeamFlow returns the mounted flow if it belongs to hackathonID.
func (a *AppState) TeamFlow(hackathonID string) (*service.TeamFlow, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.team == nil || a.team.HackathonID() != hackathonID {
		return nil, false
	}
	return a.team, true
}

// Logout clears the user and tears down the flows that depend on it.
func (a *AppState) Logout(ctx context.Context) error {
	studentID := a.Session.StudentID()

	a.mu.Lock()
	wizard, team := a.wizard, a.team
	a.wizard, a.team = nil, nil
	a.mu.Unlock()

	if wizard != nil {
		wizard.Close()
	}
	if team != nil {
		team.Close()
	}

	err := a.Session.SetUser(ctx, nil)
	a.events.Publish(ctx, events.TopicSessionChanged, events.Event{
		StudentID: studentID,
		Detail:    map[string]string{"action": "sign_out"},
	})
	return err
}

// Close cancels everything still in flight for this browser.
func (a *AppState) Close() {
	a.Chat.Close()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.wizard != nil {
		a.wizard.Close()
	}
	if a.team != nil {
		a.team.Close()
	}
}

const contextKey = "app_state"

// Attach stores the client's state on the request context.
func Attach(c *gin.Context, a *AppState) {
	c.Set(contextKey, a)
}

// FromContext returns the state set by the client middleware, or nil.
func FromContext(c *gin.Context) *AppState {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	a, _ := v.(*AppState)
	return a
}
