package source

import (
	"time"

	"pricefeed-service/internal/domain"
)

// quotesFromSnapshot maps an aggregated snapshot payload onto per-instrument
// quotes. Entries carrying a null price become unavailable quotes rather than
// being dropped, so a downstream consumer can tell "source had no opinion"
// (absent) from "source says the symbol is dead" (unavailable). Entry
// timestamps fall back to the snapshot-level lastUpdated for age reporting.
func quotesFromSnapshot(snap domain.Snapshot, instruments []domain.Instrument, prov domain.Provenance, now time.Time) map[domain.Instrument]domain.Quote {
	out := make(map[domain.Instrument]domain.Quote, len(instruments))
	for _, inst := range instruments {
		entry, ok := snap.ByClass(inst.Class)[inst.Symbol]
		if !ok {
			continue
		}
		q := domain.Quote{Provenance: prov}
		if entry.Price != nil {
			q.Price = entry.Price
			q.Change24h = entry.Change
		} else {
			q.Unavailable = true
		}
		ts := entry.Timestamp
		if ts.IsZero() {
			ts = snap.LastUpdated
		}
		if !ts.IsZero() {
			age := now.Sub(ts).Seconds()
			q.AgeSeconds = &age
		}
		out[inst] = q
	}
	return out
}
