package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricefeed-service/internal/domain"
	"pricefeed-service/internal/infrastructure/httpx"
)

const (
	alphaVantagePlaceholderKey = "YOUR_ALPHA_VANTAGE_API_KEY"

	// AlphaVantageCooldown is how long the source stays benched after the
	// API reports its daily quota exhausted. The free tier resets daily.
	AlphaVantageCooldown = 24 * time.Hour
)

// AlphaVantage resolves equity quotes through the GLOBAL_QUOTE endpoint, one
// symbol per request. The API signals quota exhaustion inside an HTTP 200
// body, so every response is inspected for the rate-limit wording; the first
// hit aborts the remaining batch and reports a retry window.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
	Pacer   *Pacer
	Log     *zap.Logger
}

type alphaVantageResponse struct {
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	ErrorMessage string            `json:"Error Message"`
	GlobalQuote  map[string]string `json:"Global Quote"`
}

func (a *alphaVantageResponse) rateLimited() bool {
	for _, msg := range []string{a.Note, a.Information} {
		if msg == "" {
			continue
		}
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "rate limit") ||
			strings.Contains(lower, "call frequency") ||
			strings.Contains(lower, "requests per day") {
			return true
		}
	}
	return false
}

func (a *AlphaVantage) ID() string { return "alphavantage" }

func (a *AlphaVantage) Fetch(ctx context.Context, instruments []domain.Instrument) domain.SourceResult {
	if a.APIKey == "" || a.APIKey == alphaVantagePlaceholderKey {
		return domain.FailedSource()
	}
	if len(instruments) == 0 {
		return domain.SourceResult{Status: domain.SourceSuccess}
	}

	quotes := make(map[domain.Instrument]domain.Quote)
	for i, inst := range instruments {
		if i > 0 {
			if err := a.Pacer.Wait(ctx); err != nil {
				break
			}
		}
		q, ok, limited := a.fetchOne(ctx, inst.Symbol)
		if limited {
			a.log().Warn("alphavantage rate limited, benching source",
				zap.String("symbol", inst.Symbol),
				zap.Duration("retry_after", AlphaVantageCooldown))
			status := domain.SourceFailure
			if len(quotes) > 0 {
				status = domain.SourcePartial
			}
			return domain.SourceResult{Status: status, Quotes: quotes, RetryAfter: AlphaVantageCooldown}
		}
		if ok {
			quotes[inst] = q
		}
	}
	return domain.SourceResult{Status: batchStatus(len(quotes), len(instruments)), Quotes: quotes}
}

func (a *AlphaVantage) fetchOne(ctx context.Context, symbol string) (q domain.Quote, ok, limited bool) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", a.APIKey)
	endpoint := a.BaseURL + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, false, false
	}
	req.Header.Set("Accept", "application/json")

	var payload alphaVantageResponse
	if err := a.client().DoJSON(ctx, req, &payload); err != nil {
		a.log().Warn("alphavantage quote failed", zap.String("symbol", symbol), zap.Error(err))
		return domain.Quote{}, false, false
	}
	if payload.rateLimited() {
		return domain.Quote{}, false, true
	}

	price, err := strconv.ParseFloat(payload.GlobalQuote["05. price"], 64)
	if err != nil || price == 0 {
		return domain.Quote{}, false, false
	}
	change := 0.0
	if prev, err := strconv.ParseFloat(payload.GlobalQuote["08. previous close"], 64); err == nil && prev > 0 {
		change = (price - prev) / prev * 100
	}
	return domain.Quote{
		Price:      domain.Float(price),
		Change24h:  domain.Float(change),
		Provenance: domain.ProvenanceLiveAPI,
	}, true, false
}

func (a *AlphaVantage) client() *httpx.Client {
	if a.Client != nil {
		return a.Client
	}
	return &httpx.Client{}
}

func (a *AlphaVantage) log() *zap.Logger {
	if a.Log != nil {
		return a.Log
	}
	return zap.NewNop()
}
