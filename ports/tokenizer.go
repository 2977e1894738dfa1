package ports

import "github.com/layer-3/hashgate/core"

// SessionTokenizer mints and validates session tokens.
type SessionTokenizer interface {
	Issue(userID, accountID string) (string, error)
	Parse(token string) (core.Session, error)
}
