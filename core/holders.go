package core

import "time"

// Clamping bounds for holder aggregation parameters.
const (
	MinTopN      = 1
	MaxTopN      = 1000
	MinPageLimit = 1
	MaxPageLimit = 1000
	MinMaxPages  = 1
	MaxMaxPages  = 200
	MinTTL       = 60
	MaxTTL       = 3600
)

// HolderEntry is a single account's balance of a token, in the token's
// smallest unit.
type HolderEntry struct {
	Account   string `json:"account"`
	Balance   int64  `json:"balance"`
	Formatted string `json:"formatted,omitempty"` // set when the caller supplies decimals
}

// HolderParams are the per-call parameters of a top-holders aggregation.
// Decimals is -1 when the caller did not ask for formatted balances.
type HolderParams struct {
	TokenID    string
	TopN       int
	PageLimit  int
	MaxPages   int
	TTLSeconds int
	Decimals   int
}

// Clamped returns a copy with every numeric parameter forced into its valid
// range. Out-of-range values are silently clamped, never rejected.
func (p HolderParams) Clamped() HolderParams {
	p.TopN = clampInt(p.TopN, MinTopN, MaxTopN)
	p.PageLimit = clampInt(p.PageLimit, MinPageLimit, MaxPageLimit)
	p.MaxPages = clampInt(p.MaxPages, MinMaxPages, MaxMaxPages)
	p.TTLSeconds = clampInt(p.TTLSeconds, MinTTL, MaxTTL)
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BalancePage is one page of a token's balance listing. Degraded marks a
// page that came back empty because every retry against the upstream failed.
type BalancePage struct {
	Entries   []HolderEntry
	Timestamp string
	Degraded  bool
}

// HoldersMeta describes how a top-holders result was assembled. PagesFetched
// equal to MaxPages signals the listing may have been truncated by the page
// cap rather than exhausted.
type HoldersMeta struct {
	TokenID      string    `json:"tokenId"`
	TopN         int       `json:"topN"`
	PageLimit    int       `json:"pageLimit"`
	MaxPages     int       `json:"maxPages"`
	TTLSeconds   int       `json:"ttlSeconds"`
	PagesFetched int       `json:"pagesFetched"`
	Partial      bool      `json:"partial,omitempty"` // at least one page degraded
	Timestamp    string    `json:"timestamp,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// HoldersResult is the ranked, truncated holder listing returned to callers.
type HoldersResult struct {
	Data []HolderEntry `json:"data"`
	Meta HoldersMeta   `json:"meta"`
}
