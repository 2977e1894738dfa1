package ports

import "context"

// Directory is the external user-identity collaborator. UpsertUser returns
// the stable internal user id for a wallet account, creating the user on
// first sight and never overwriting existing fields on conflict.
type Directory interface {
	UpsertUser(ctx context.Context, accountID string) (string, error)
}
