package ports

import "context"

// EventPublisher notifies other instances about authentication events.
type EventPublisher interface {
	PublishLogin(ctx context.Context, accountID, userID string) error
}
