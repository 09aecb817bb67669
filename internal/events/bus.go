package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	topicPrefix       = "rental."
	metadataEventType = "event_type"
)

// Topic is the watermill topic a workflow event type is published on.
func Topic(t domain.EventType) string {
	return topicPrefix + string(t)
}

// Handler consumes one decoded workflow event.
type Handler func(ctx context.Context, e domain.Event) error

// Bus publishes workflow events to in-process subscribers.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus(log *slog.Logger, buffer int64) *Bus {
	if log == nil {
		log = logger.Get()
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: buffer},
			watermill.NewSlogLogger(log),
		),
	}
}

// Handle publishes e. Subscribers run detached from ctx so they outlive the
// request that caused the event.
func (b *Bus) Handle(ctx context.Context, e domain.Event) error {
	msg, err := marshalEvent(e)
	if err != nil {
		return err
	}
	if err := b.pubSub.Publish(Topic(e.Type), msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	logger.Debug("Event published", "type", e.Type, "entityID", e.EntityID, "messageID", msg.UUID)
	return nil
}

// Subscribe runs h for every event of type t until ctx is done. Handler
// errors are logged and the message is acked; the bus never redelivers.
func (b *Bus) Subscribe(ctx context.Context, t domain.EventType, name string, h Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic(t))
	if err != nil {
		return fmt.Errorf("failed to subscribe %s to %s: %w", name, t, err)
	}

	go func() {
		for msg := range messages {
			e, err := unmarshalEvent(msg)
			if err != nil {
				logger.Error("Dropping undecodable event", "subscriber", name, "messageID", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := h(msg.Context(), e); err != nil {
				logger.Error("Event handler failed", "subscriber", name, "type", e.Type, "entityID", e.EntityID, "error", err)
			}
			msg.Ack()
		}
		logger.Info("Subscriber stopped", "subscriber", name, "topic", Topic(t))
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

func marshalEvent(e domain.Event) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	id := e.ID
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, payload)
	msg.Metadata.Set(metadataEventType, string(e.Type))
	return msg, nil
}

func unmarshalEvent(msg *message.Message) (domain.Event, error) {
	var e domain.Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return domain.Event{}, err
	}
	return e, nil
}
