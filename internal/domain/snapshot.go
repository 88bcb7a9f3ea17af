package domain

import "time"

// SnapshotEntry is one symbol's pre-computed price inside an aggregated
// payload. Price and Change are independently nullable: the aggregator may
// know a symbol without having a current price for it.
type SnapshotEntry struct {
	Price     *float64  `json:"price"`
	Change    *float64  `json:"change"`
	Timestamp time.Time `json:"timestamp"`
	Fallback  bool      `json:"fallback,omitempty"`
}

// Snapshot is the shared payload shape of the primary backend response and
// the locally persisted cache document: a freshness stamp plus per-asset-class
// sub-maps keyed by symbol.
type Snapshot struct {
	LastUpdated time.Time                `json:"lastUpdated"`
	Stocks      map[string]SnapshotEntry `json:"stocks"`
	Crypto      map[string]SnapshotEntry `json:"crypto"`
	Bonds       map[string]SnapshotEntry `json:"bonds"`
	Cash        map[string]SnapshotEntry `json:"cash"`
	P2P         map[string]SnapshotEntry `json:"p2p"`
}

// ByClass returns the sub-map holding the given asset class, or nil when the
// payload carries none.
func (s Snapshot) ByClass(c AssetClass) map[string]SnapshotEntry {
	switch c {
	case AssetEquity:
		return s.Stocks
	case AssetCrypto:
		return s.Crypto
	case AssetCashEquivalent:
		return s.Bonds
	case AssetCash:
		return s.Cash
	case AssetP2P:
		return s.P2P
	}
	return nil
}

// Set places an entry in the sub-map for the given class, allocating it if
// needed. Used when building snapshots from a resolution cycle.
func (s *Snapshot) Set(c AssetClass, symbol string, e SnapshotEntry) {
	var m *map[string]SnapshotEntry
	switch c {
	case AssetEquity:
		m = &s.Stocks
	case AssetCrypto:
		m = &s.Crypto
	case AssetCashEquivalent:
		m = &s.Bonds
	case AssetCash:
		m = &s.Cash
	case AssetP2P:
		m = &s.P2P
	default:
		return
	}
	if *m == nil {
		*m = map[string]SnapshotEntry{}
	}
	(*m)[symbol] = e
}
