package source

import (
	"math/rand"
	"sync"

	"pricefeed-service/internal/domain"
)

// Synthetic generates quotes for asset classes that have no live market:
// bonds and P2P loans drift a little around the entry price so the dashboard
// does not look frozen, cash is always quoted exactly at entry with zero
// change.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

func (s *Synthetic) Generate(class domain.AssetClass, entryPrice float64) domain.Quote {
	var price, change float64
	switch class {
	case domain.AssetCashEquivalent:
		price = entryPrice + (s.float()-0.5)*2
		change = (s.float() - 0.5) * 1
	case domain.AssetP2P:
		price = entryPrice + (s.float()-0.5)*1
		change = (s.float() - 0.5) * 0.5
	default:
		price = entryPrice
		change = 0
	}
	return domain.Quote{
		Price:      domain.Float(price),
		Change24h:  domain.Float(change),
		Provenance: domain.ProvenanceSynthetic,
	}
}

func (s *Synthetic) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
