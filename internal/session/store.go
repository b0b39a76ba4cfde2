package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hackassist_web/internal/model"
	"hackassist_web/internal/repository"
	"hackassist_web/internal/util"
	"hackassist_web/pkg/logger"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store holds the signed-in user and the dashboard role for one browser.
// The user is persisted under key; the role lives in memory only.
type Store struct {
	mu   sync.RWMutex
	repo repository.SessionRepository
	key  string
	user *model.User
	role model.DashboardRole

	// 串行化 SetUser，内存与持久化按同一顺序生效
	writeMu sync.Mutex
}

// Open builds a store and restores the persisted user, if any.
// A snapshot that fails validation is deleted and the store starts signed out.
func Open(ctx context.Context, repo repository.SessionRepository, key string) (*Store, error) {
	s := &Store{
		repo: repo,
		key:  key,
		role: model.RoleStudent,
	}

	user, err := s.restore(ctx)
	switch {
	case err == nil:
		s.user = user
	case errors.Is(err, util.ErrSessionNotFound):
	case errors.Is(err, util.ErrInvalidSession):
		logger.Log.Warn("Discarding invalid stored session", zap.String("key", key), zap.Error(err))
		if delErr := repo.Delete(ctx, key); delErr != nil {
			logger.Log.Error("Failed to delete invalid session", zap.String("key", key), zap.Error(delErr))
		}
	default:
		return nil, err
	}
	return s, nil
}

func (s *Store) restore(ctx context.Context) (*model.User, error) {
	data, err := s.repo.Load(ctx, s.key)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidSession, err)
	}
	if err := ValidateUser(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ValidateUser checks a snapshot before it is trusted as a signed-in user.
func ValidateUser(u *model.User) error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidSession, err)
	}
	return nil
}

func (s *Store) Key() string {
	return s.key
}

// User returns a copy of the current user, or nil when signed out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// StudentID is 0 when signed out.
func (s *Store) StudentID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.StudentID
}

func (s *Store) Role() model.DashboardRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// SetUser replaces the user and writes or removes the durable snapshot.
// Memory is updated even when persistence fails; the last call wins.
func (s *Store) SetUser(ctx context.Context, user *model.User) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.user = user.Clone()
	s.mu.Unlock()

	if user == nil {
		if err := s.repo.Delete(ctx, s.key); err != nil {
			logger.Log.Error("Failed to remove session snapshot", zap.String("key", s.key), zap.Error(err))
			return err
		}
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, s.key, data); err != nil {
		logger.Log.Error("Failed to persist session snapshot", zap.String("key", s.key), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) SetRole(role model.DashboardRole) error {
	parsed, ok := model.ParseDashboardRole(string(role))
	if !ok {
		return util.ErrInvalidRole
	}
	s.mu.Lock()
	s.role = parsed
	s.mu.Unlock()
	return nil
}

// Authorized is the route guard predicate: signed in and onboarded.
func Authorized(u *model.User) bool {
	return u != nil && u.IsOnboarded
}

func (s *Store) Authorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Authorized(s.user)
}
