package ports

import (
	"context"
	"crypto/ed25519"

	"github.com/layer-3/hashgate/core"
)

// BalancePager is a lazy sequence of token balance pages. Next returns the
// following page and true, or a zero page and false once the listing is
// exhausted, the page cap is reached, or enough entries have been collected.
type BalancePager interface {
	Next(ctx context.Context) (core.BalancePage, bool)
	PagesFetched() int
}

// Ledger is the read-only ledger-query collaborator (a Hedera Mirror Node in
// production).
type Ledger interface {
	// AccountKey resolves the account's primary public key. Accounts whose
	// key is a key list, threshold key, or non-Ed25519 algorithm yield
	// core.ErrUnsupportedKey; unknown accounts yield core.ErrAccountNotFound.
	AccountKey(ctx context.Context, accountID string) (ed25519.PublicKey, error)

	// TokenBalances returns a pager over the token's balance listing.
	// target is the number of entries after which fetching may stop early;
	// zero means no target.
	TokenBalances(tokenID string, limit, maxPages, target int) BalancePager
}
