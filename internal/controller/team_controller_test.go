package controller

import (
	"context"
	"encoding/json"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/config"
	"hackassist_web/internal/middleware"
	"hackassist_web/internal/model"
	"hackassist_web/internal/repository"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

var testSession = config.SessionConfig{
	Key:        "hackassist_user",
	CookieName: "hackassist_client",
	Secret:     "test-secret",
}

type testEnv struct {
	router   *gin.Engine
	registry *state.Registry
	hits     *atomic.Int64
	cookie   *http.Cookie
}

// newTestEnv wires the registration routes against a stub backend; every backend hit is counted.
func newTestEnv(t *testing.T, api http.HandlerFunc) *testEnv {
	t.Helper()
	hits := &atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		api(w, r)
	}))
	t.Cleanup(srv.Close)

	client := backend.NewClient(config.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 5})
	reg := state.NewRegistry(repository.NewMemorySessionRepository(), client, nil, state.Options{
		SessionKey:    testSession.Key,
		IdleTimeout:   time.Hour,
		RedirectDelay: 3 * time.Second,
	})
	t.Cleanup(reg.Close)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	team := NewTeamController()
	chat := NewChatController()
	g := r.Group("/", middleware.ClientMiddleware(reg, testSession))
	g.POST("/api/chat", chat.Send)
	g.POST("/api/chat/register", chat.Register)
	guarded := g.Group("/register", middleware.RequireOnboarded())
	guarded.GET("", team.Enter)
	guarded.GET("/:hackathonId", team.Enter)
	guarded.POST("/:hackathonId/mode", team.SetMode)
	guarded.POST("/:hackathonId/join", team.Join)

	token, _ := util.GenerateClientToken("client-1", testSession.Secret, 0)
	return &testEnv{
		router:   r,
		registry: reg,
		hits:     hits,
		cookie:   &http.Cookie{Name: testSession.CookieName, Value: token},
	}
}

func (e *testEnv) signIn(t *testing.T, id int) {
	t.Helper()
	a, err := e.registry.Get(context.Background(), "client-1")
	if err != nil {
		t.Fatal(err)
	}
	_ = a.Session.SetUser(context.Background(), &model.User{StudentID: id, Name: "Ada", Email: "ada@example.com", IsOnboarded: true})
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.AddCookie(e.cookie)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestEnterInvalidMissionRedirectsWithoutCalls(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})
	env.signIn(t, 5)

	for _, path := range []string{"/register/undefined", "/register"} {
		w, resp := env.do(t, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, w.Code)
		}
		data := resp["data"].(map[string]interface{})
		redirect, ok := data["redirect"].(map[string]interface{})
		if !ok || redirect["to"] != util.PathDashboard || redirect["after_ms"] != float64(3000) {
			t.Fatalf("%s redirect = %v", path, data["redirect"])
		}
		if data["message"] != util.MsgInvalidMission {
			t.Fatalf("%s message = %v", path, data["message"])
		}
	}
	if env.hits.Load() != 0 {
		t.Fatalf("backend hits = %d, want 0", env.hits.Load())
	}
}

func TestEnterRequiresOnboardedUser(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	w, _ := env.do(t, http.MethodGet, "/register/1", "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != util.PathAuth {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	if env.hits.Load() != 0 {
		t.Fatal("guarded route reached the backend")
	}
}

func TestJoinFailureShowsServerMessage(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/hackathon/"):
			w.Write([]byte(`{"hackathon_id":1,"name":"AI Innovation Challenge"}`))
		case strings.HasPrefix(r.URL.Path, "/api/team/check/"):
			w.Write([]byte(`{"status":"none"}`))
		case r.URL.Path == "/api/team/join":
			w.Write([]byte(`{"status":"error","message":"Invalid team code"}`))
		default:
			http.NotFound(w, r)
		}
	})
	env.signIn(t, 5)

	w, resp := env.do(t, http.MethodGet, "/register/1?mode=join", "")
	if w.Code != http.StatusOK {
		t.Fatalf("enter status = %d", w.Code)
	}
	view := resp["data"].(map[string]interface{})["view"].(map[string]interface{})
	if view["mode"] != string(model.TeamModeJoin) {
		t.Fatalf("mode = %v, want join", view["mode"])
	}

	w, resp = env.do(t, http.MethodPost, "/register/1/join", `{"team_code":"zzzzzz"}`)
	if w.Code != http.StatusUnprocessableEntity || resp["message"] != "Invalid team code" {
		t.Fatalf("join = %d %v", w.Code, resp["message"])
	}

	w, _ = env.do(t, http.MethodPost, "/register/1/join", `{"team_code":"abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short code status = %d, want 400", w.Code)
	}
}

func TestFlowActionWithoutMountedFlow(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.signIn(t, 5)

	w, _ := env.do(t, http.MethodPost, "/register/9/mode", `{"mode":"create"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestChatBackendDownUsesFallback(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	w, resp := env.do(t, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body, _ := json.Marshal(resp["data"])
	if !strings.Contains(string(body), util.MsgConnectionFailure) {
		t.Fatalf("data = %s, want fallback reply", body)
	}
}

func TestChatRegisterRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})

	w, _ := env.do(t, http.MethodPost, "/api/chat/register", `{"hackathon_id":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", w.Code)
	}

	// 空请求体合法，但还没有推荐可报名
	w, _ = env.do(t, http.MethodPost, "/api/chat/register", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("empty body status = %d, want 409", w.Code)
	}
	if env.hits.Load() != 0 {
		t.Fatalf("backend hits = %d, want 0", env.hits.Load())
	}
}
