package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"commerce-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishUserRegistered publishes a UserRegistered event
func (ep *EventPublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	key := fmt.Sprintf("user-%s", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPasswordResetRequested publishes a PasswordResetRequested event
func (ep *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event *models.PasswordResetRequestedEvent) error {
	key := fmt.Sprintf("user-%s", event.Email)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishTicketCreated publishes a TicketCreated event
func (ep *EventPublisher) PublishTicketCreated(ctx context.Context, event *models.TicketCreatedEvent) error {
	key := fmt.Sprintf("ticket-%s", event.TicketID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onUserRegistered         func(context.Context, *models.UserRegisteredEvent) error
	onPasswordResetRequested func(context.Context, *models.PasswordResetRequestedEvent) error
	onTicketCreated          func(context.Context, *models.TicketCreatedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnUserRegistered registers a handler for UserRegistered events
func (eh *EventHandler) OnUserRegistered(handler func(context.Context, *models.UserRegisteredEvent) error) {
	eh.onUserRegistered = handler
}

// OnPasswordResetRequested registers a handler for PasswordResetRequested events
func (eh *EventHandler) OnPasswordResetRequested(handler func(context.Context, *models.PasswordResetRequestedEvent) error) {
	eh.onPasswordResetRequested = handler
}

// OnTicketCreated registers a handler for TicketCreated events
func (eh *EventHandler) OnTicketCreated(handler func(context.Context, *models.TicketCreatedEvent) error) {
	eh.onTicketCreated = handler
}

// HandleMessage routes messages to the appropriate handler
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeUserRegistered:
		if eh.onUserRegistered != nil {
			var event models.UserRegisteredEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal UserRegistered event: %w", err)
			}
			return eh.onUserRegistered(ctx, &event)
		}

	case models.EventTypePasswordResetRequested:
		if eh.onPasswordResetRequested != nil {
			var event models.PasswordResetRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PasswordResetRequested event: %w", err)
			}
			return eh.onPasswordResetRequested(ctx, &event)
		}

	case models.EventTypeTicketCreated:
		if eh.onTicketCreated != nil {
			var event models.TicketCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TicketCreated event: %w", err)
			}
			return eh.onTicketCreated(ctx, &event)
		}

	default:
		log.Printf("Ignoring unknown event type: %s", baseEvent.EventType)
	}

	return nil
}
