package domain

// Provenance records which fallback tier actually produced the value used,
// not the first tier attempted.
type Provenance string

const (
	ProvenanceBackend   Provenance = "primary-backend"
	ProvenanceCache     Provenance = "local-cache"
	ProvenanceLiveAPI   Provenance = "live-api"
	ProvenanceSynthetic Provenance = "synthetic"
	ProvenanceEntry     Provenance = "entry-fallback"
)

// Quote is the resolved (or failed) price fact for one instrument at one
// point in time. Built fresh every resolution cycle and never mutated;
// the next cycle's Quote supersedes it.
type Quote struct {
	Price       *float64   `json:"price"`
	Change24h   *float64   `json:"change_24h"`
	Provenance  Provenance `json:"provenance"`
	AgeSeconds  *float64   `json:"age_seconds"`
	Unavailable bool       `json:"unavailable"`
}

// UnavailableQuote marks a symbol for which every source tier was exhausted.
func UnavailableQuote() Quote {
	return Quote{Provenance: ProvenanceEntry, Unavailable: true}
}

// EntryFallbackQuote is used when a backend/cache payload validated but had
// no entry for the symbol: the entry price stands in, the quote stays usable.
func EntryFallbackQuote(entryPrice float64) Quote {
	return Quote{Price: &entryPrice, Provenance: ProvenanceEntry}
}

func Float(v float64) *float64 { return &v }
