package events

import (
	"context"
	"encoding/json"
	"hackassist_web/pkg/logger"
	"hackassist_web/pkg/monitoring"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

const (
	TopicSessionChanged      = "session.changed"
	TopicOnboardingCompleted = "onboarding.completed"
	TopicTeamCreated         = "team.created"
	TopicTeamJoined          = "team.joined"
	TopicChatSent            = "chat.sent"
	TopicHackathonRegistered = "hackathon.registered"
)

var Topics = []string{
	TopicSessionChanged,
	TopicOnboardingCompleted,
	TopicTeamCreated,
	TopicTeamJoined,
	TopicChatSent,
	TopicHackathonRegistered,
}

type Event struct {
	StudentID int               `json:"student_id,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
	At        time.Time         `json:"at"`
}

// Publisher 由各个流程使用，发布失败只记录日志不影响流程
type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, string, Event) {}

// Bus is an in-process pub/sub on a watermill go channel.
type Bus struct {
	pubsub *gochannel.GoChannel
	wg     sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, zapAdapter{log: logger.Log}),
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("Failed to encode event", zap.String("topic", topic), zap.Error(err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		logger.Log.Error("Failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}

// Subscribe exposes the underlying subscriber, mainly for tests.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Run consumes every topic until ctx ends: each event is counted and logged.
func (b *Bus) Run(ctx context.Context) error {
	for _, topic := range Topics {
		messages, err := b.pubsub.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		b.wg.Add(1)
		go func(topic string, messages <-chan *message.Message) {
			defer b.wg.Done()
			for msg := range messages {
				var ev Event
				if err := json.Unmarshal(msg.Payload, &ev); err != nil {
					logger.Log.Warn("Dropping malformed event", zap.String("topic", topic), zap.Error(err))
					msg.Ack()
					continue
				}
				monitoring.FlowEvents.WithLabelValues(topic).Inc()
				logger.Log.Info("Flow event",
					zap.String("topic", topic),
					zap.Int("studentId", ev.StudentID),
					zap.Any("detail", ev.Detail),
				)
				msg.Ack()
			}
		}(topic, messages)
	}
	return nil
}

func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

type zapAdapter struct {
	log    *zap.Logger
	fields watermill.LogFields
}

func (a zapAdapter) zapFields(fields watermill.LogFields) []zap.Field {
	all := a.fields.Add(fields)
	out := make([]zap.Field, 0, len(all))
	for k, v := range all {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (a zapAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(a.zapFields(fields), zap.Error(err))...)
}

func (a zapAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, a.zapFields(fields)...)
}

func (a zapAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.zapFields(fields)...)
}

func (a zapAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.zapFields(fields)...)
}

func (a zapAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return zapAdapter{log: a.log, fields: a.fields.Add(fields)}
}
