package service

import (
	"context"
	"errors"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/model"
	"hackassist_web/internal/util"
	"testing"
	"time"
)

func TestChatSessionStartsWithGreeting(t *testing.T) {
	c := NewChatSession(&fakeBackend{}, newStore(t, nil), nil)

	h := c.History()
	if len(h) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(h))
	}
	if h[0].Role != model.ChatRoleAI || h[0].Text != util.MsgChatGreeting {
		t.Fatalf("history[0] = %+v, want greeting", h[0])
	}
	if c.ShowRegisterAction() {
		t.Fatal("ShowRegisterAction() = true on a fresh chat")
	}
}

func TestChatSendAppendsInOrder(t *testing.T) {
	fb := &fakeBackend{
		chat: func(_ context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
			return &backend.ChatResponse{Response: "echo: " + req.Message}, nil
		},
	}
	c := NewChatSession(fb, newStore(t, nil), nil)

	sent := []string{"first", "second", "third", "fourth"}
	for _, m := range sent {
		reply, err := c.Send(context.Background(), m)
		if err != nil {
			t.Fatalf("Send(%q) error = %v", m, err)
		}
		if reply.Text != "echo: "+m {
			t.Fatalf("reply = %q, want %q", reply.Text, "echo: "+m)
		}
	}

	h := c.History()
	if want := 1 + 2*len(sent); len(h) != want {
		t.Fatalf("len(history) = %d, want %d", len(h), want)
	}
	for i, m := range sent {
		user, ai := h[1+2*i], h[2+2*i]
		if user.Role != model.ChatRoleUser || user.Text != m {
			t.Errorf("history[%d] = %+v, want user %q", 1+2*i, user, m)
		}
		if ai.Role != model.ChatRoleAI || ai.Text != "echo: "+m {
			t.Errorf("history[%d] = %+v, want ai reply", 2+2*i, ai)
		}
	}
}

func TestChatSendIdentifiesUser(t *testing.T) {
	var got []string
	fb := &fakeBackend{
		chat: func(_ context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
			got = append(got, req.UserID)
			return &backend.ChatResponse{Response: "ok"}, nil
		},
	}

	anon := NewChatSession(fb, newStore(t, nil), nil)
	signedIn := NewChatSession(fb, newStore(t, onboardedUser(42)), nil)
	if _, err := anon.Send(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if _, err := signedIn.Send(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}

	if got[0] != backend.AnonymousUser || got[1] != "42" {
		t.Fatalf("user ids = %v, want [anonymous 42]", got)
	}
}

func TestChatSendTransportFailureAppendsFallback(t *testing.T) {
	fb := &fakeBackend{
		chat: func(context.Context, backend.ChatRequest) (*backend.ChatResponse, error) {
			return nil, transportErr()
		},
	}
	c := NewChatSession(fb, newStore(t, nil), nil)

	reply, err := c.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if reply.Text != util.MsgConnectionFailure {
		t.Fatalf("reply = %q, want fallback", reply.Text)
	}
	if c.Typing() {
		t.Fatal("Typing() = true after settlement")
	}
	if n := len(c.History()); n != 3 {
		t.Fatalf("len(history) = %d, want 3", n)
	}
	if c.LastIntent() != model.IntentNone {
		t.Fatalf("LastIntent() = %q, want none", c.LastIntent())
	}
}

func TestChatSendRejectsEmptyMessage(t *testing.T) {
	fb := &fakeBackend{}
	c := NewChatSession(fb, newStore(t, nil), nil)

	if _, err := c.Send(context.Background(), "   "); !errors.Is(err, util.ErrEmptyMessage) {
		t.Fatalf("Send() error = %v, want ErrEmptyMessage", err)
	}
	if fb.total() != 0 || len(c.History()) != 1 {
		t.Fatal("empty message reached the backend or the history")
	}
}

func TestChatRegisterActionFollowsIntent(t *testing.T) {
	tests := []struct {
		intent string
		want   bool
	}{
		{"RECOMMENDATION", true},
		{"recommendation", true},
		{"RECOMMENDATION.", true},
		{"**RECOMMENDATION**", true},
		{"INTENT: RECOMMENDATION", true},
		{"TEAM_MATCHING", false},
		{"IDEA_GEN", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			fb := &fakeBackend{
				chat: func(context.Context, backend.ChatRequest) (*backend.ChatResponse, error) {
					return &backend.ChatResponse{Response: "Try the AI Innovation Challenge", Intent: tt.intent}, nil
				},
			}
			c := NewChatSession(fb, newStore(t, nil), nil)
			if _, err := c.Send(context.Background(), "recommend something"); err != nil {
				t.Fatal(err)
			}
			if got := c.ShowRegisterAction(); got != tt.want {
				t.Fatalf("ShowRegisterAction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChatRegisterActionHiddenAfterUserMessage(t *testing.T) {
	c := NewChatSession(&fakeBackend{}, newStore(t, nil), nil)
	c.AddMessage(model.ChatMessage{Role: model.ChatRoleAI, Text: "pick this"})
	c.lastIntent = model.IntentRecommendation
	if !c.ShowRegisterAction() {
		t.Fatal("ShowRegisterAction() = false after a recommendation")
	}

	c.AddMessage(model.ChatMessage{Role: model.ChatRoleUser, Text: "hmm"})
	if c.ShowRegisterAction() {
		t.Fatal("ShowRegisterAction() = true when the last message is the user's")
	}
}

func TestChatRegisterRecommendedIsOneShot(t *testing.T) {
	var sent backend.ChatRequest
	fb := &fakeBackend{
		chat: func(context.Context, backend.ChatRequest) (*backend.ChatResponse, error) {
			return &backend.ChatResponse{Response: "Try mission 1", Intent: "RECOMMENDATION"}, nil
		},
		register: func(_ context.Context, req backend.ChatRequest) error {
			sent = req
			return nil
		},
	}
	c := NewChatSession(fb, newStore(t, onboardedUser(7)), nil)

	if _, err := c.RegisterRecommended(context.Background(), ""); !errors.Is(err, util.ErrNoRecommendation) {
		t.Fatalf("RegisterRecommended() before a recommendation error = %v", err)
	}
	if _, err := c.Send(context.Background(), "what should I join?"); err != nil {
		t.Fatal(err)
	}

	reply, err := c.RegisterRecommended(context.Background(), "")
	if err != nil {
		t.Fatalf("RegisterRecommended() error = %v", err)
	}
	if reply.Text != util.MsgRegisterSuccess {
		t.Fatalf("reply = %q, want success message", reply.Text)
	}
	if sent.Message != DefaultRecommendedHackathon || sent.UserID != "7" {
		t.Fatalf("request = %+v, want default mission for student 7", sent)
	}
	if c.ShowRegisterAction() {
		t.Fatal("ShowRegisterAction() = true after registering")
	}
	if _, err := c.RegisterRecommended(context.Background(), ""); !errors.Is(err, util.ErrNoRecommendation) {
		t.Fatalf("second RegisterRecommended() error = %v, want ErrNoRecommendation", err)
	}
	if fb.count("register_hackathon") != 1 {
		t.Fatalf("register calls = %d, want 1", fb.count("register_hackathon"))
	}
}

func TestChatRegisterRecommendedFailure(t *testing.T) {
	fb := &fakeBackend{
		chat: func(context.Context, backend.ChatRequest) (*backend.ChatResponse, error) {
			return &backend.ChatResponse{Response: "Try mission 1", Intent: "RECOMMENDATION"}, nil
		},
		register: func(context.Context, backend.ChatRequest) error {
			return transportErr()
		},
	}
	c := NewChatSession(fb, newStore(t, nil), nil)
	if _, err := c.Send(context.Background(), "recommend"); err != nil {
		t.Fatal(err)
	}

	reply, err := c.RegisterRecommended(context.Background(), "3")
	if err != nil {
		t.Fatalf("RegisterRecommended() error = %v", err)
	}
	if reply.Text != util.MsgRegisterFailure {
		t.Fatalf("reply = %q, want failure message", reply.Text)
	}
	if n := len(c.History()); n != 4 {
		t.Fatalf("len(history) = %d, want 4", n)
	}
}

func TestChatCloseDropsInFlightReply(t *testing.T) {
	started := make(chan struct{})
	fb := &fakeBackend{
		chat: func(ctx context.Context, _ backend.ChatRequest) (*backend.ChatResponse, error) {
			close(started)
			<-ctx.Done()
			return nil, &backend.TransportError{Route: "/api/chat", Err: ctx.Err()}
		},
	}
	c := NewChatSession(fb, newStore(t, nil), nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "slow question")
		done <- err
	}()
	<-started

	if _, err := c.Send(context.Background(), "again"); !errors.Is(err, util.ErrBusy) {
		t.Fatalf("concurrent Send() error = %v, want ErrBusy", err)
	}

	c.Close()
	select {
	case err := <-done:
		if !errors.Is(err, util.ErrViewClosed) {
			t.Fatalf("Send() error = %v, want ErrViewClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send() did not return after Close")
	}

	// 只剩问候语和用户消息，关闭后的结果被丢弃
	if n := len(c.History()); n != 2 {
		t.Fatalf("len(history) = %d, want 2", n)
	}
}
