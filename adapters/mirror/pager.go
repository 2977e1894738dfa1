package mirror

import (
	"context"
	"log/slog"

	"github.com/layer-3/hashgate/core"
)

type balancesResponse struct {
	Timestamp string `json:"timestamp"`
	Balances  []struct {
		Account string `json:"account"`
		Balance int64  `json:"balance"`
	} `json:"balances"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// balancePager walks a token balance listing page by page, following the
// mirror node's next links. Pages are fetched sequentially; a page whose
// retries are exhausted degrades to an empty page instead of failing the
// walk, but still counts against the page cap.
type balancePager struct {
	client    *Client
	nextPath  string
	maxPages  int
	target    int
	fetched   int
	collected int
	done      bool
}

func (p *balancePager) Next(ctx context.Context) (core.BalancePage, bool) {
	if p.done || p.nextPath == "" {
		return core.BalancePage{}, false
	}
	if p.fetched >= p.maxPages {
		return core.BalancePage{}, false
	}
	if p.target > 0 && p.collected >= p.target {
		return core.BalancePage{}, false
	}

	url := p.client.baseURL + p.nextPath
	p.fetched++

	var resp balancesResponse
	if err := p.client.getJSON(ctx, url, &resp); err != nil {
		p.client.logger.Warn("token balance page unavailable, degrading to empty page",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		p.done = true
		return core.BalancePage{Degraded: true}, true
	}

	page := core.BalancePage{
		Entries:   make([]core.HolderEntry, 0, len(resp.Balances)),
		Timestamp: resp.Timestamp,
	}
	for _, b := range resp.Balances {
		page.Entries = append(page.Entries, core.HolderEntry{Account: b.Account, Balance: b.Balance})
	}
	p.collected += len(page.Entries)

	if resp.Links.Next == nil || *resp.Links.Next == "" {
		p.done = true
	} else {
		p.nextPath = *resp.Links.Next
	}

	return page, true
}

func (p *balancePager) PagesFetched() int {
	return p.fetched
}
