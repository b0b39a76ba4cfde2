package state

import (
	"context"
	"hackassist_web/internal/events"
	"hackassist_web/internal/repository"
	"hackassist_web/internal/session"
	"hackassist_web/pkg/logger"
	"hackassist_web/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultIdleTimeout = 30 * time.Minute
	minSweepInterval   = 10 * time.Second
)

type Options struct {
	// SessionKey 是持久化快照的固定 key，每个客户端追加自己的 id
	SessionKey    string
	IdleTimeout   time.Duration
	RedirectDelay time.Duration
}

// Registry owns the AppState of every active browser. A state is built on the
// first request of a client (a fresh load) and evicted after it idles.
type Registry struct {
	mu      sync.Mutex
	states  map[string]*AppState
	repo    repository.SessionRepository
	backend Backend
	events  events.Publisher
	opts    Options
	now     func() time.Time
}

func NewRegistry(repo repository.SessionRepository, b Backend, pub events.Publisher, opts Options) *Registry {
	if pub == nil {
		pub = events.Nop{}
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		states:  make(map[string]*AppState),
		repo:    repo,
		backend: b,
		events:  pub,
		opts:    opts,
		now:     time.Now,
	}
}

func (r *Registry) SessionKey(clientID string) string {
	return r.opts.SessionKey + ":" + clientID
}

// Get returns the client's state, restoring the session on a fresh load.
func (r *Registry) Get(ctx context.Context, clientID string) (*AppState, error) {
	now := r.now()

	r.mu.Lock()
	if a, ok := r.states[clientID]; ok {
		r.mu.Unlock()
		a.touch(now)
		return a, nil
	}
	r.mu.Unlock()

	store, err := session.Open(ctx, r.repo, r.SessionKey(clientID))
	if err != nil {
		return nil, err
	}
	fresh := newAppState(clientID, store, r.backend, r.events, r.opts.RedirectDelay)

	r.mu.Lock()
	defer r.mu.Unlock()
	// 并发请求可能已经创建了同一客户端的状态
	if a, ok := r.states[clientID]; ok {
		a.touch(now)
		return a, nil
	}
	fresh.touch(now)
	r.states[clientID] = fresh
	monitoring.ActiveClients.Set(float64(len(r.states)))
	logger.Log.Debug("Client state created", zap.String("clientId", clientID), zap.Bool("signedIn", store.StudentID() > 0))
	return fresh, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Sweep evicts states idle for longer than the idle timeout and returns how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.opts.IdleTimeout)

	var evicted []*AppState
	r.mu.Lock()
	for id, a := range r.states {
		if a.LastSeen().Before(cutoff) {
			evicted = append(evicted, a)
			delete(r.states, id)
		}
	}
	monitoring.ActiveClients.Set(float64(len(r.states)))
	r.mu.Unlock()

	for _, a := range evicted {
		a.Close()
	}
	if len(evicted) > 0 {
		logger.Log.Info("Evicted idle client states", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps periodically until ctx ends, then closes every state.
func (r *Registry) Run(ctx context.Context) {
	interval := r.opts.IdleTimeout / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	states := r.states
	r.states = make(map[string]*AppState)
	monitoring.ActiveClients.Set(0)
	r.mu.Unlock()

	for _, a := range states {
		a.Close()
	}
}
