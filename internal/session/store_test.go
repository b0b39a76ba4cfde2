package session

import (
	"context"
	"errors"
	"hackassist_web/internal/model"
	"hackassist_web/internal/repository"
	"hackassist_web/internal/util"
	"reflect"
	"testing"
	"time"
)

const testKey = "hackassist_user:test"

type failingRepo struct {
	*repository.MemorySessionRepository
}

func (failingRepo) Save(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func sampleUser() *model.User {
	return &model.User{
		StudentID:       12,
		Name:            "Ada Lovelace",
		Email:           "ada@example.com",
		Skills:          []string{"Go", "Rust"},
		Interests:       []string{"Web3"},
		ExperienceLevel: model.Expert,
		IsOnboarded:     true,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySessionRepository()

	s, err := Open(ctx, repo, testKey)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.User() != nil || s.Authorized() {
		t.Fatal("fresh store should be signed out")
	}
	if err := s.SetUser(ctx, sampleUser()); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}

	reloaded, err := Open(ctx, repo, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.User(); !reflect.DeepEqual(got, sampleUser()) {
		t.Fatalf("restored user = %+v, want %+v", got, sampleUser())
	}
	if !reloaded.Authorized() || reloaded.StudentID() != 12 {
		t.Fatal("restored user should pass the guard")
	}
}

func TestStoreSetUserNilRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySessionRepository()
	s, _ := Open(ctx, repo, testKey)
	_ = s.SetUser(ctx, sampleUser())

	if err := s.SetUser(ctx, nil); err != nil {
		t.Fatalf("SetUser(nil) error = %v", err)
	}
	if s.User() != nil || s.StudentID() != 0 {
		t.Fatal("user still set after sign-out")
	}
	if _, err := repo.Load(ctx, testKey); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("snapshot still present, Load() error = %v", err)
	}
}

func TestOpenDiscardsInvalidSnapshot(t *testing.T) {
	tests := map[string]string{
		"corrupt json":  `{"student_id":`,
		"missing id":    `{"name":"Ada","email":"ada@example.com","isOnboarded":true}`,
		"bad email":     `{"student_id":3,"email":"nope","isOnboarded":true}`,
		"unknown level": `{"student_id":3,"email":"ada@example.com","experience_level":"Guru"}`,
		"negative id":   `{"student_id":-1,"email":"ada@example.com"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := repository.NewMemorySessionRepository()
			_ = repo.Save(ctx, testKey, []byte(raw))

			s, err := Open(ctx, repo, testKey)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if s.User() != nil {
				t.Fatalf("invalid snapshot restored as %+v", s.User())
			}
			if _, err := repo.Load(ctx, testKey); !errors.Is(err, util.ErrSessionNotFound) {
				t.Fatal("invalid snapshot not deleted")
			}
		})
	}
}

func TestRoleResetsOnLoad(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySessionRepository()
	s, _ := Open(ctx, repo, testKey)
	_ = s.SetUser(ctx, sampleUser())

	if err := s.SetRole(model.RoleHOD); err != nil {
		t.Fatal(err)
	}
	if s.Role() != model.RoleHOD {
		t.Fatalf("Role() = %s, want hod", s.Role())
	}
	if err := s.SetRole("admin"); !errors.Is(err, util.ErrInvalidRole) {
		t.Fatalf("SetRole(admin) error = %v, want ErrInvalidRole", err)
	}

	reloaded, _ := Open(ctx, repo, testKey)
	if reloaded.Role() != model.RoleStudent {
		t.Fatalf("Role() after reload = %s, want student", reloaded.Role())
	}
}

func TestSetUserKeepsMemoryWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, failingRepo{repository.NewMemorySessionRepository()}, testKey)

	if err := s.SetUser(ctx, sampleUser()); err == nil {
		t.Fatal("SetUser() error = nil, want persistence error")
	}
	if !s.Authorized() {
		t.Fatal("in-memory user lost after a persistence failure")
	}
}

func TestUserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, repository.NewMemorySessionRepository(), testKey)
	_ = s.SetUser(ctx, sampleUser())

	u := s.User()
	u.Skills[0] = "COBOL"
	if s.User().Skills[0] != "Go" {
		t.Fatal("User() exposes the stored slice")
	}
}

func TestAuthorized(t *testing.T) {
	if Authorized(nil) {
		t.Fatal("Authorized(nil) = true")
	}
	u := sampleUser()
	u.IsOnboarded = false
	if Authorized(u) {
		t.Fatal("Authorized() = true for a user who has not onboarded")
	}
}

// blockingRepo holds every Save until release is closed.
type blockingRepo struct {
	*repository.MemorySessionRepository
	saving  chan struct{}
	release chan struct{}
}

func (r *blockingRepo) Save(ctx context.Context, key string, data []byte) error {
	close(r.saving)
	<-r.release
	return r.MemorySessionRepository.Save(ctx, key, data)
}

func TestSetUserCallsApplyInOrder(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{
		MemorySessionRepository: repository.NewMemorySessionRepository(),
		saving:                  make(chan struct{}),
		release:                 make(chan struct{}),
	}
	s, _ := Open(ctx, repo, testKey)

	signIn := make(chan error, 1)
	go func() { signIn <- s.SetUser(ctx, sampleUser()) }()
	<-repo.saving

	signOut := make(chan error, 1)
	go func() { signOut <- s.SetUser(ctx, nil) }()

	select {
	case <-signOut:
		t.Fatal("sign-out finished while the sign-in was still saving")
	case <-time.After(50 * time.Millisecond):
	}

	close(repo.release)
	if err := <-signIn; err != nil {
		t.Fatalf("SetUser(user) error = %v", err)
	}
	if err := <-signOut; err != nil {
		t.Fatalf("SetUser(nil) error = %v", err)
	}

	if s.User() != nil {
		t.Fatal("memory still signed in after the last SetUser(nil)")
	}
	reloaded, err := Open(ctx, repo.MemorySessionRepository, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if u := reloaded.User(); u != nil {
		t.Fatalf("fresh load restored %+v after sign-out", u)
	}
}
