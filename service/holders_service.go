package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
	"github.com/shopspring/decimal"
)

// HoldersService ranks the accounts holding a token by balance
type HoldersService struct {
	ledger ports.Ledger
	logger *slog.Logger
}

// NewHoldersService creates a new top-holders service
func NewHoldersService(ledger ports.Ledger, logger *slog.Logger) *HoldersService {
	return &HoldersService{
		ledger: ledger,
		logger: logger,
	}
}

// TopHolders pages through the token's balance listing and returns the topN
// holders by descending balance. Numeric parameters are silently clamped;
// only a missing token id is a client error.
func (s *HoldersService) TopHolders(ctx context.Context, params core.HolderParams) (core.HoldersResult, error) {
	if params.TokenID == "" {
		return core.HoldersResult{}, fmt.Errorf("missing token id: %w", core.ErrInvalidRequest)
	}
	p := params.Clamped()

	pager := s.ledger.TokenBalances(p.TokenID, p.PageLimit, p.MaxPages, p.TopN)

	entries := []core.HolderEntry{}
	var (
		timestamp string
		partial   bool
	)
	for {
		page, ok := pager.Next(ctx)
		if !ok {
			break
		}
		if timestamp == "" {
			timestamp = page.Timestamp
		}
		if page.Degraded {
			partial = true
		}
		entries = append(entries, page.Entries...)
	}

	// Stable sort keeps the upstream order for equal balances.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Balance > entries[j].Balance
	})
	if len(entries) > p.TopN {
		entries = entries[:p.TopN]
	}

	if p.Decimals >= 0 {
		for i := range entries {
			entries[i].Formatted = decimal.NewFromInt(entries[i].Balance).Shift(int32(-p.Decimals)).String()
		}
	}

	if partial {
		s.logger.Warn("top holders aggregation degraded",
			slog.String("token", p.TokenID),
			slog.Int("pagesFetched", pager.PagesFetched()),
		)
	}

	return core.HoldersResult{
		Data: entries,
		Meta: core.HoldersMeta{
			TokenID:      p.TokenID,
			TopN:         p.TopN,
			PageLimit:    p.PageLimit,
			MaxPages:     p.MaxPages,
			TTLSeconds:   p.TTLSeconds,
			PagesFetched: pager.PagesFetched(),
			Partial:      partial,
			Timestamp:    timestamp,
			FetchedAt:    time.Now().UTC(),
		},
	}, nil
}
