package domain

import "time"

type SourceStatus string

const (
	SourceSuccess SourceStatus = "success"
	SourcePartial SourceStatus = "partial"
	SourceFailure SourceStatus = "failure"
)

// SourceResult is the outcome of querying one price source for one batch.
// Quotes covers only the instruments the source could answer; the rest are
// implicitly unresolved. RetryAfter is set when the source detected an
// explicit rate-limit signal and calls should be suppressed for that window.
type SourceResult struct {
	Status     SourceStatus
	Quotes     map[Instrument]Quote
	RetryAfter time.Duration
}

func FailedSource() SourceResult {
	return SourceResult{Status: SourceFailure, Quotes: map[Instrument]Quote{}}
}

// Resolved reports whether the result carries a usable price for inst.
func (r SourceResult) Resolved(inst Instrument) bool {
	q, ok := r.Quotes[inst]
	return ok && q.Price != nil
}
