package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pricefeed-service/internal/application"
	"pricefeed-service/internal/domain"
)

// HistoryReader exposes the resolved-price audit trail.
type HistoryReader interface {
	Recent(ctx context.Context, symbol string, limit int) ([]application.PriceHistory, error)
}

type Server struct {
	svc     *application.PortfolioService
	history HistoryReader
	ping    func(ctx context.Context) error
}

type ServerOption func(*Server)

func WithHistory(h HistoryReader) ServerOption {
	return func(s *Server) { s.history = h }
}

func WithPing(fn func(ctx context.Context) error) ServerOption {
	return func(s *Server) { s.ping = fn }
}

func NewServer(svc *application.PortfolioService, opts ...ServerOption) *Server {
	s := &Server{svc: svc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type pricesResponse struct {
	Prices     map[string]domain.Quote `json:"prices"`
	ResolvedAt time.Time               `json:"resolvedAt"`
}

func (s *Server) GetPrices(w http.ResponseWriter, r *http.Request) {
	_, res, err := s.svc.ResolvePrices(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrCycleInProgress) {
			writeError(w, http.StatusConflict, "a resolution cycle is already running")
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, pricesResponse{Prices: res.Quotes, ResolvedAt: res.ResolvedAt})
}

func (s *Server) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Valuation(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrCycleInProgress) {
			writeError(w, http.StatusConflict, "a resolution cycle is already running")
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.svc.ListPositions(r.Context())
	if err != nil {
		internalError(w)
		return
	}
	if positions == nil {
		positions = []domain.Position{}
	}
	writeJSON(w, http.StatusOK, positions)
}

type positionRequest struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	AssetClass string  `json:"assetClass"`
	EntryPrice float64 `json:"entryPrice"`
	Multiplier float64 `json:"multiplier"`
	Notes      string  `json:"notes"`
}

func (s *Server) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var body positionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := s.svc.AddPosition(r.Context(), application.NewPositionInput{
		Symbol:     body.Symbol,
		Name:       body.Name,
		Class:      domain.AssetClass(body.AssetClass),
		EntryPrice: body.EntryPrice,
		Multiplier: body.Multiplier,
		Notes:      body.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DeletePosition(r.Context(), id); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			notFound(w)
			return
		}
		internalError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type symbolRequest struct {
	Symbol     string `json:"symbol"`
	AssetClass string `json:"assetClass"`
}

func (s *Server) AddSymbol(w http.ResponseWriter, r *http.Request) {
	var body symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.svc.RegisterSymbol(r.Context(), body.Symbol, domain.AssetClass(body.AssetClass)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		notFound(w)
		return
	}
	symbol := chi.URLParam(r, "symbol")
	entries, err := s.history.Recent(r.Context(), symbol, 100)
	if err != nil {
		internalError(w)
		return
	}
	if entries == nil {
		entries = []application.PriceHistory{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var unknown *application.SymbolUnknownError
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":     unknown.Error(),
			"searchUrl": unknown.SearchURL,
		})
	case errors.Is(err, application.ErrBadRequest), errors.Is(err, domain.ErrUnknownAssetClass):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound):
		notFound(w)
	default:
		internalError(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
