package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestBusDeliversEvents(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := bus.Subscribe(ctx, TopicTeamJoined)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	bus.Publish(ctx, TopicTeamJoined, Event{StudentID: 8, Detail: map[string]string{"team_code": "AB12CD"}})

	select {
	case msg := <-messages:
		var ev Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatal(err)
		}
		msg.Ack()
		if ev.StudentID != 8 || ev.Detail["team_code"] != "AB12CD" {
			t.Fatalf("event = %+v", ev)
		}
		if ev.At.IsZero() {
			t.Fatal("event time not stamped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusRunStopsOnClose(t *testing.T) {
	bus := NewBus()
	if err := bus.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	bus.Publish(context.Background(), TopicSessionChanged, Event{StudentID: 1})

	done := make(chan struct{})
	go func() {
		bus.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not wait for consumers to finish")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	p.Publish(context.Background(), TopicChatSent, Event{})
}
