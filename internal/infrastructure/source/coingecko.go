package source

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"pricefeed-service/internal/domain"
	"pricefeed-service/internal/infrastructure/httpx"
)

// coinIDs maps ticker symbols to CoinGecko asset ids for the tokens the
// service is expected to hold. Anything else falls back to the lowercased
// symbol, which matches the ids of many smaller listings and costs nothing
// when it misses.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"SOL":   "solana",
	"MATIC": "polygon",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
}

func coinID(symbol string) string {
	if id, ok := coinIDs[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// CoinGecko resolves crypto quotes through the simple/price batch endpoint.
// One round trip covers the whole crypto book, so no pacing is needed here.
type CoinGecko struct {
	BaseURL string
	Client  *httpx.Client
	Log     *zap.Logger
}

type coinGeckoEntry struct {
	USD       *float64 `json:"usd"`
	USDChange *float64 `json:"usd_24h_change"`
}

func (c *CoinGecko) ID() string { return "coingecko" }

func (c *CoinGecko) Fetch(ctx context.Context, instruments []domain.Instrument) domain.SourceResult {
	if len(instruments) == 0 {
		return domain.SourceResult{Status: domain.SourceSuccess}
	}

	ids := make([]string, 0, len(instruments))
	byID := make(map[string]domain.Instrument, len(instruments))
	for _, inst := range instruments {
		id := coinID(inst.Symbol)
		if _, dup := byID[id]; dup {
			continue
		}
		ids = append(ids, id)
		byID[id] = inst
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	endpoint := c.BaseURL + "/api/v3/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.FailedSource()
	}
	req.Header.Set("Accept", "application/json")

	var payload map[string]coinGeckoEntry
	if err := c.client().DoJSON(ctx, req, &payload); err != nil {
		c.log().Warn("coingecko fetch failed", zap.Error(err))
		return domain.FailedSource()
	}

	quotes := make(map[domain.Instrument]domain.Quote)
	for id, entry := range payload {
		inst, ok := byID[id]
		if !ok {
			continue
		}
		if entry.USD == nil {
			quotes[inst] = domain.Quote{Provenance: domain.ProvenanceLiveAPI, Unavailable: true}
			continue
		}
		change := 0.0
		if entry.USDChange != nil {
			change = *entry.USDChange
		}
		quotes[inst] = domain.Quote{
			Price:      entry.USD,
			Change24h:  domain.Float(change),
			Provenance: domain.ProvenanceLiveAPI,
		}
	}

	return domain.SourceResult{Status: batchStatus(len(quotes), len(ids)), Quotes: quotes}
}

func (c *CoinGecko) client() *httpx.Client {
	if c.Client != nil {
		return c.Client
	}
	return &httpx.Client{}
}

func (c *CoinGecko) log() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop()
}

// batchStatus grades a per-symbol source run by how much of the batch it
// managed to resolve.
func batchStatus(resolved, requested int) domain.SourceStatus {
	switch {
	case resolved == 0:
		return domain.SourceFailure
	case resolved < requested:
		return domain.SourcePartial
	default:
		return domain.SourceSuccess
	}
}
