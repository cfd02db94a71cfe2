package models

import "time"

// Event types
const (
	EventTypeUserRegistered         = "user.registered"
	EventTypePasswordResetRequested = "user.password_reset"
	EventTypeTicketCreated          = "ticket.created"
)

// BaseEvent contains common event fields
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// UserRegisteredEvent is published when a new user is created
type UserRegisteredEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// PasswordResetRequestedEvent is published when a reset token is issued
type PasswordResetRequestedEvent struct {
	BaseEvent
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TicketCreatedEvent is published after a successful purchase
type TicketCreatedEvent struct {
	BaseEvent
	TicketID  string       `json:"ticket_id"`
	Code      string       `json:"code"`
	Purchaser string       `json:"purchaser"`
	Amount    float64      `json:"amount"`
	Lines     []TicketLine `json:"lines"`
}
