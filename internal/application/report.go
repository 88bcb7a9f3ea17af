package application

import (
	"sort"

	"pricefeed-service/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PositionValue is one position priced by the current cycle's quote.
// Valuation uses the entry price when no current price is available, the
// same degradation the quote itself reports via Unavailable.
type PositionValue struct {
	Position   domain.Position `json:"position"`
	Quote      domain.Quote    `json:"quote"`
	Value      decimal.Decimal `json:"value"`
	CostBasis  decimal.Decimal `json:"costBasis"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPercent decimal.Decimal `json:"pnlPercent"`
}

type ClassAllocation struct {
	Class   domain.AssetClass `json:"class"`
	Value   decimal.Decimal   `json:"value"`
	Percent decimal.Decimal   `json:"percent"`
	Count   int               `json:"count"`
}

// Report aggregates a priced portfolio: totals, P&L and categorical
// allocation, plus the best performer (cash excluded).
type Report struct {
	TotalValue      decimal.Decimal   `json:"totalValue"`
	TotalCost       decimal.Decimal   `json:"totalCost"`
	TotalPnL        decimal.Decimal   `json:"totalPnl"`
	TotalPnLPercent decimal.Decimal   `json:"totalPnlPercent"`
	BestPerformer   *PositionValue    `json:"bestPerformer,omitempty"`
	Allocation      []ClassAllocation `json:"allocation"`
	Positions       []PositionValue   `json:"positions"`
}

// BuildReport folds the resolution cycle's quotes (keyed by position ID)
// into an aggregate view. Pure; no I/O.
func BuildReport(positions []domain.Position, quotes map[string]domain.Quote) Report {
	rep := Report{}
	byClass := map[domain.AssetClass]*ClassAllocation{}

	for _, p := range positions {
		q := quotes[p.ID]
		price := p.EntryPrice
		if q.Price != nil {
			price = *q.Price
		}
		mult := decimal.NewFromFloat(p.Multiplier)
		value := decimal.NewFromFloat(price).Mul(mult)
		cost := decimal.NewFromFloat(p.EntryPrice).Mul(mult)
		pnl := value.Sub(cost)
		var pnlPct decimal.Decimal
		if cost.IsPositive() {
			pnlPct = pnl.Div(cost).Mul(hundred)
		}

		pv := PositionValue{Position: p, Quote: q, Value: value, CostBasis: cost, PnL: pnl, PnLPercent: pnlPct}
		rep.Positions = append(rep.Positions, pv)
		rep.TotalValue = rep.TotalValue.Add(value)
		rep.TotalCost = rep.TotalCost.Add(cost)

		if p.Class != domain.AssetCash {
			if rep.BestPerformer == nil || pv.PnLPercent.GreaterThan(rep.BestPerformer.PnLPercent) {
				best := pv
				rep.BestPerformer = &best
			}
		}

		alloc, ok := byClass[p.Class]
		if !ok {
			alloc = &ClassAllocation{Class: p.Class}
			byClass[p.Class] = alloc
		}
		alloc.Value = alloc.Value.Add(value)
		alloc.Count++
	}

	rep.TotalPnL = rep.TotalValue.Sub(rep.TotalCost)
	if rep.TotalCost.IsPositive() {
		rep.TotalPnLPercent = rep.TotalPnL.Div(rep.TotalCost).Mul(hundred)
	}

	for _, alloc := range byClass {
		if rep.TotalValue.IsPositive() {
			alloc.Percent = alloc.Value.Div(rep.TotalValue).Mul(hundred)
		}
		rep.Allocation = append(rep.Allocation, *alloc)
	}
	sort.Slice(rep.Allocation, func(i, j int) bool {
		return rep.Allocation[i].Value.GreaterThan(rep.Allocation[j].Value)
	})
	return rep
}
