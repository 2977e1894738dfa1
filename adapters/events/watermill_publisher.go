package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/hashgate/ports"
)

// LoginEvent notifies other instances that a wallet authenticated
type LoginEvent struct {
	AccountID string    `json:"account_id"`
	UserID    string    `json:"user_id"`
	At        time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "hashgate.login",
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, accountID, userID string) error {
	event := LoginEvent{
		AccountID: accountID,
		UserID:    userID,
		At:        time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
