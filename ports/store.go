package ports

import (
	"context"
	"time"

	"github.com/layer-3/hashgate/core"
)

// NonceStore holds pending authentication challenges, keyed by nonce, with
// per-key expiry. Delete reports whether the key existed so that exactly one
// of any number of concurrent login attempts can consume a nonce.
type NonceStore interface {
	Put(ctx context.Context, nonce string, record core.NonceRecord, ttl time.Duration) error
	Get(ctx context.Context, nonce string) (core.NonceRecord, bool, error)
	Delete(ctx context.Context, nonce string) (bool, error)
}
