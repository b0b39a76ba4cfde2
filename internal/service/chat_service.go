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

	"go.uber.org/zap"
)

// 聊天组件默认报名的活动（与助手推荐的 AI Innovation Challenge 对应）
const DefaultRecommendedHackathon = "1"

type ChatBackend interface {
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
	RegisterHackathon(ctx context.Context, req backend.ChatRequest) error
}

type ChatView struct {
	History      []model.ChatMessage `json:"history"`
	Typing       bool                `json:"typing"`
	Registering  bool                `json:"registering"`
	ShowRegister bool                `json:"show_register"`
}

// ChatSession is the conversation with the assistant for one browser.
// History is append-only and always starts with the greeting.
type ChatSession struct {
	mu          sync.Mutex
	backend     ChatBackend
	store       *session.Store
	events      events.Publisher
	life        *Lifetime
	history     []model.ChatMessage
	lastIntent  model.Intent
	typing      bool
	registering bool
}

func NewChatSession(b ChatBackend, store *session.Store, pub events.Publisher) *ChatSession {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ChatSession{
		backend: b,
		store:   store,
		events:  pub,
		life:    NewLifetime(),
		history: []model.ChatMessage{{Role: model.ChatRoleAI, Text: util.MsgChatGreeting}},
	}
}

// AddMessage is the only way history grows.
func (c *ChatSession) AddMessage(msg model.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(msg)
}

func (c *ChatSession) addLocked(msg model.ChatMessage) {
	c.history = append(c.history, msg)
}

func (c *ChatSession) History() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatMessage(nil), c.history...)
}

func (c *ChatSession) LastIntent() model.Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastIntent
}

func (c *ChatSession) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// ShowRegisterAction is derived on every read: the last message is from the
// assistant and its intent is a recommendation.
func (c *ChatSession) ShowRegisterAction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showRegisterLocked()
}

func (c *ChatSession) showRegisterLocked() bool {
	n := len(c.history)
	return n > 0 && c.history[n-1].Role == model.ChatRoleAI && c.lastIntent == model.IntentRecommendation
}

func (c *ChatSession) View() ChatView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChatView{
		History:      append([]model.ChatMessage(nil), c.history...),
		Typing:       c.typing,
		Registering:  c.registering,
		ShowRegister: c.showRegisterLocked(),
	}
}

func (c *ChatSession) userID() string {
	if id := c.store.StudentID(); id > 0 {
		return strconv.Itoa(id)
	}
	return backend.AnonymousUser
}

// Send appends the user's message, asks the assistant and appends its reply.
// A failed call appends the fallback message instead; it is not an error.
func (c *ChatSession) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, util.ErrEmptyMessage
	}

	if !c.life.Alive() {
		return model.ChatMessage{}, util.ErrViewClosed
	}

	c.mu.Lock()
	if c.typing {
		c.mu.Unlock()
		return model.ChatMessage{}, util.ErrBusy
	}
	c.addLocked(model.ChatMessage{Role: model.ChatRoleUser, Text: text})
	c.typing = true
	c.mu.Unlock()

	userID := c.userID()
	callCtx, cancel := c.life.Bind(ctx)
	resp, err := c.backend.Chat(callCtx, backend.ChatRequest{Message: text, UserID: userID})
	cancel()

	c.mu.Lock()
	c.typing = false

	if !c.life.Alive() {
		c.mu.Unlock()
		return model.ChatMessage{}, util.ErrViewClosed
	}

	if err != nil {
		reply := model.ChatMessage{Role: model.ChatRoleAI, Text: util.MsgConnectionFailure}
		c.addLocked(reply)
		c.lastIntent = model.IntentNone
		c.mu.Unlock()

		logger.Log.Warn("Assistant call failed", zap.String("userId", userID), zap.Error(err))
		return reply, nil
	}

	reply := model.ChatMessage{Role: model.ChatRoleAI, Text: resp.Response}
	intent := model.ParseIntent(resp.Intent)
	c.addLocked(reply)
	c.lastIntent = intent
	c.mu.Unlock()

	c.events.Publish(ctx, events.TopicChatSent, events.Event{
		StudentID: c.store.StudentID(),
		Detail:    map[string]string{"intent": string(intent)},
	})
	return reply, nil
}

// RegisterRecommended acts on the assistant's recommendation. It is only
// available while ShowRegisterAction holds and succeeds at most once per reply.
func (c *ChatSession) RegisterRecommended(ctx context.Context, hackathonID string) (model.ChatMessage, error) {
	hackathonID = strings.TrimSpace(hackathonID)
	if hackathonID == "" {
		hackathonID = DefaultRecommendedHackathon
	}

	c.mu.Lock()
	if c.registering {
		c.mu.Unlock()
		return model.ChatMessage{}, util.ErrBusy
	}
	if !c.showRegisterLocked() {
		c.mu.Unlock()
		return model.ChatMessage{}, util.ErrNoRecommendation
	}
	c.registering = true
	c.mu.Unlock()

	userID := c.userID()
	callCtx, cancel := c.life.Bind(ctx)
	err := c.backend.RegisterHackathon(callCtx, backend.ChatRequest{Message: hackathonID, UserID: userID})
	cancel()

	c.mu.Lock()
	c.registering = false

	if !c.life.Alive() {
		c.mu.Unlock()
		return model.ChatMessage{}, util.ErrViewClosed
	}

	if err != nil {
		reply := model.ChatMessage{Role: model.ChatRoleAI, Text: util.MsgRegisterFailure}
		c.addLocked(reply)
		c.mu.Unlock()

		logger.Log.Warn("Hackathon registration from chat failed", zap.String("hackathonId", hackathonID), zap.Error(err))
		return reply, nil
	}

	reply := model.ChatMessage{Role: model.ChatRoleAI, Text: util.MsgRegisterSuccess}
	c.addLocked(reply)
	c.lastIntent = model.IntentNone
	c.mu.Unlock()

	c.events.Publish(ctx, events.TopicHackathonRegistered, events.Event{
		StudentID: c.store.StudentID(),
		Detail:    map[string]string{"hackathon_id": hackathonID},
	})
	return reply, nil
}

func (c *ChatSession) Close() {
	c.life.Close()
}
