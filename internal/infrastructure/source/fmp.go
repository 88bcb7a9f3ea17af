package source

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"pricefeed-service/internal/domain"
	"pricefeed-service/internal/infrastructure/httpx"
)

const fmpPlaceholderKey = "YOUR_FMP_API_KEY"

// FMP resolves equity quotes through Financial Modeling Prep, one symbol per
// request. A missing or placeholder API key fails the source up front so the
// caller moves on without issuing doomed paced calls.
type FMP struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
	Pacer   *Pacer
	Log     *zap.Logger
}

type fmpQuote struct {
	Price             *float64 `json:"price"`
	ChangesPercentage *float64 `json:"changesPercentage"`
}

func (f *FMP) ID() string { return "fmp" }

func (f *FMP) Fetch(ctx context.Context, instruments []domain.Instrument) domain.SourceResult {
	if f.APIKey == "" || f.APIKey == fmpPlaceholderKey {
		return domain.FailedSource()
	}
	if len(instruments) == 0 {
		return domain.SourceResult{Status: domain.SourceSuccess}
	}

	quotes := make(map[domain.Instrument]domain.Quote)
	for i, inst := range instruments {
		if i > 0 {
			if err := f.Pacer.Wait(ctx); err != nil {
				break
			}
		}
		q, ok := f.fetchOne(ctx, inst.Symbol)
		if !ok {
			continue
		}
		quotes[inst] = q
	}
	return domain.SourceResult{Status: batchStatus(len(quotes), len(instruments)), Quotes: quotes}
}

func (f *FMP) fetchOne(ctx context.Context, symbol string) (domain.Quote, bool) {
	endpoint := f.BaseURL + "/api/v3/quote/" + url.PathEscape(symbol) + "?apikey=" + url.QueryEscape(f.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, false
	}
	req.Header.Set("Accept", "application/json")

	var payload []fmpQuote
	if err := f.client().DoJSON(ctx, req, &payload); err != nil {
		f.log().Warn("fmp quote failed", zap.String("symbol", symbol), zap.Error(err))
		return domain.Quote{}, false
	}
	if len(payload) == 0 || payload[0].Price == nil {
		return domain.Quote{}, false
	}
	change := 0.0
	if payload[0].ChangesPercentage != nil {
		change = *payload[0].ChangesPercentage
	}
	return domain.Quote{
		Price:      payload[0].Price,
		Change24h:  domain.Float(change),
		Provenance: domain.ProvenanceLiveAPI,
	}, true
}

func (f *FMP) client() *httpx.Client {
	if f.Client != nil {
		return f.Client
	}
	return &httpx.Client{}
}

func (f *FMP) log() *zap.Logger {
	if f.Log != nil {
		return f.Log
	}
	return zap.NewNop()
}
