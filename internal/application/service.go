package application

import (
	"context"
	"fmt"
	"strings"

	"pricefeed-service/internal/domain"

	"github.com/google/uuid"
)

type IDGen interface {
	New() string
}

type defaultIDGen struct{}

func (defaultIDGen) New() string { return uuid.NewString() }

// PortfolioService fronts position CRUD, price resolution and valuation for
// the HTTP layer.
type PortfolioService struct {
	positions PositionRepo
	resolver  *Resolver
	idgen     IDGen
}

type ServiceOption func(*PortfolioService)

func WithIDGen(g IDGen) ServiceOption {
	return func(s *PortfolioService) { s.idgen = g }
}

func NewPortfolioService(positions PositionRepo, resolver *Resolver, opts ...ServiceOption) *PortfolioService {
	s := &PortfolioService{positions: positions, resolver: resolver}
	for _, opt := range opts {
		opt(s)
	}
	if s.idgen == nil {
		s.idgen = defaultIDGen{}
	}
	return s
}

// ResolvePrices runs one resolution cycle over every tracked position.
func (s *PortfolioService) ResolvePrices(ctx context.Context) ([]domain.Position, Result, error) {
	positions, err := s.positions.List(ctx)
	if err != nil {
		return nil, Result{}, fmt.Errorf("list positions: %w", err)
	}
	res, err := s.resolver.Resolve(ctx, positions)
	if err != nil {
		return nil, Result{}, err
	}
	return positions, res, nil
}

// Valuation resolves prices and folds them into a portfolio report.
func (s *PortfolioService) Valuation(ctx context.Context) (Report, error) {
	positions, res, err := s.ResolvePrices(ctx)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(positions, res.Quotes), nil
}

func (s *PortfolioService) ListPositions(ctx context.Context) ([]domain.Position, error) {
	return s.positions.List(ctx)
}

func (s *PortfolioService) DeletePosition(ctx context.Context, id string) error {
	return s.positions.Delete(ctx, id)
}

// NewPositionInput carries the user-entered fields of a position.
type NewPositionInput struct {
	Symbol     string
	Name       string
	Class      domain.AssetClass
	EntryPrice float64
	Multiplier float64
	Notes      string
}

// SymbolUnknownError is returned when no data source recognizes a symbol.
// SearchURL points the user at the relevant provider's lookup page.
type SymbolUnknownError struct {
	Symbol    string
	SearchURL string
}

func (e *SymbolUnknownError) Error() string {
	return fmt.Sprintf("symbol %s not found in any data source", e.Symbol)
}

func (e *SymbolUnknownError) Unwrap() error { return domain.ErrSymbolNotResolvable }

// AddPosition validates the input, checks the symbol against the live data
// sources for its asset class, and persists the position.
func (s *PortfolioService) AddPosition(ctx context.Context, in NewPositionInput) (domain.Position, error) {
	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	if symbol == "" {
		return domain.Position{}, fmt.Errorf("%w: symbol is required", ErrBadRequest)
	}
	if !domain.ValidAssetClass(in.Class) {
		return domain.Position{}, fmt.Errorf("%w: %s", domain.ErrUnknownAssetClass, in.Class)
	}
	if in.EntryPrice <= 0 {
		return domain.Position{}, fmt.Errorf("%w: entry price must be positive", ErrBadRequest)
	}
	if in.Multiplier <= 0 {
		return domain.Position{}, fmt.Errorf("%w: multiplier must be positive", ErrBadRequest)
	}

	// Static classes are synthetic-priced and need no provider lookup.
	if !in.Class.Static() {
		if !s.resolver.CheckSymbol(ctx, domain.Instrument{Symbol: symbol, Class: in.Class}) {
			return domain.Position{}, &SymbolUnknownError{Symbol: symbol, SearchURL: searchURL(in.Class)}
		}
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = symbol
	}
	p := domain.Position{
		ID:         s.idgen.New(),
		Symbol:     symbol,
		Name:       name,
		Class:      in.Class,
		EntryPrice: in.EntryPrice,
		Multiplier: in.Multiplier,
		Notes:      in.Notes,
	}
	if err := s.positions.Create(ctx, p); err != nil {
		return domain.Position{}, fmt.Errorf("create position: %w", err)
	}
	return p, nil
}

// RegisterSymbol checks whether a symbol can be priced by the live sources
// for its asset class, without persisting anything. A static class always
// passes since synthetic pricing needs no provider.
func (s *PortfolioService) RegisterSymbol(ctx context.Context, symbol string, class domain.AssetClass) error {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return fmt.Errorf("%w: symbol is required", ErrBadRequest)
	}
	if !domain.ValidAssetClass(class) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAssetClass, class)
	}
	if class.Static() {
		return nil
	}
	if !s.resolver.CheckSymbol(ctx, domain.Instrument{Symbol: sym, Class: class}) {
		return &SymbolUnknownError{Symbol: sym, SearchURL: searchURL(class)}
	}
	return nil
}

func searchURL(c domain.AssetClass) string {
	if c == domain.AssetCrypto {
		return "https://www.coingecko.com/"
	}
	return "https://finance.yahoo.com/lookup/"
}
