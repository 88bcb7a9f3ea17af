package application

import (
	"context"
	"sync/atomic"
	"time"

	"pricefeed-service/internal/domain"

	"go.uber.org/zap"
)

// Sources is the ordered set of fallback tiers the resolver walks.
// Backend and Cache cover all asset classes in one shot; Crypto, EquityA and
// EquityB are class-specific live tiers.
type Sources struct {
	Backend PriceSource
	Cache   PriceSource
	Crypto  PriceSource
	EquityA PriceSource
	EquityB PriceSource
}

// Resolver walks the fallback ladder once per cycle and merges the first
// validated results into a quote per position. It owns the Quote set for the
// cycle; callers only ever read it.
type Resolver struct {
	sources   Sources
	synth     Synthesizer
	cooldowns CooldownStore
	clock     Clock
	log       *zap.Logger

	busy atomic.Bool
}

type ResolverOption func(*Resolver)

func WithClock(c Clock) ResolverOption {
	return func(r *Resolver) { r.clock = c }
}

func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

func NewResolver(sources Sources, synth Synthesizer, cooldowns CooldownStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{sources: sources, synth: synth, cooldowns: cooldowns}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = realClock{}
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// Result is one cycle's merged quote set, keyed by position ID.
type Result struct {
	Quotes     map[string]domain.Quote
	ResolvedAt time.Time
}

// Resolve runs one resolution cycle for the given positions. A cycle in
// progress rejects a concurrent trigger with ErrCycleInProgress. Every
// position ends in a deterministic state: a resolved quote or an explicit
// unavailable one.
func (r *Resolver) Resolve(ctx context.Context, positions []domain.Position) (Result, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return Result{}, ErrCycleInProgress
	}
	defer r.busy.Store(false)

	now := r.clock.Now()
	out := Result{Quotes: make(map[string]domain.Quote, len(positions)), ResolvedAt: now}
	if len(positions) == 0 {
		return out, nil
	}
	instruments := instrumentSet(positions)

	// Tier 1: primary backend, all classes in a single call. A fresh payload
	// short-circuits the whole cycle.
	if res := r.sources.Backend.Fetch(ctx, instruments); res.Status == domain.SourceSuccess {
		r.applyAggregated(out.Quotes, positions, res)
		return out, nil
	}
	r.log.Debug("backend tier failed or stale, trying cache")

	// Tier 2: persisted snapshot, same all-or-nothing semantics.
	if res := r.sources.Cache.Fetch(ctx, instruments); res.Status == domain.SourceSuccess {
		r.applyAggregated(out.Quotes, positions, res)
		return out, nil
	}
	r.log.Debug("cache tier failed or stale, falling back to live APIs")

	// Tier 3: per-asset-class live calls; static classes go synthetic.
	r.resolveLive(ctx, positions, out.Quotes)
	return out, nil
}

// applyAggregated maps an accepted backend/cache result onto positions.
// Cash is always generated from the entry price so its quote stays exact.
// Symbols the payload does not cover fall back to the entry price.
func (r *Resolver) applyAggregated(quotes map[string]domain.Quote, positions []domain.Position, res domain.SourceResult) {
	for _, p := range positions {
		if p.Class == domain.AssetCash {
			quotes[p.ID] = r.synth.Generate(p.Class, p.EntryPrice)
			continue
		}
		if q, ok := res.Quotes[p.Instrument()]; ok {
			quotes[p.ID] = q
			continue
		}
		quotes[p.ID] = domain.EntryFallbackQuote(p.EntryPrice)
	}
}

func (r *Resolver) resolveLive(ctx context.Context, positions []domain.Position, quotes map[string]domain.Quote) {
	var cryptoInsts, equityInsts []domain.Instrument
	for _, inst := range instrumentSet(positions) {
		switch inst.Class {
		case domain.AssetCrypto:
			cryptoInsts = append(cryptoInsts, inst)
		case domain.AssetEquity:
			equityInsts = append(equityInsts, inst)
		}
	}

	var cryptoRes domain.SourceResult
	if len(cryptoInsts) > 0 {
		cryptoRes = r.sources.Crypto.Fetch(ctx, cryptoInsts)
		if cryptoRes.Status == domain.SourceFailure {
			r.log.Warn("crypto live source failed", zap.String("source", r.sources.Crypto.ID()))
		}
	}

	var tierARes, tierBRes domain.SourceResult
	if len(equityInsts) > 0 {
		tierARes = r.sources.EquityA.Fetch(ctx, equityInsts)

		// Tier B is consulted only for symbols tier A left unresolved, and
		// only when its rate-limit cooldown window has elapsed.
		var leftovers []domain.Instrument
		for _, inst := range equityInsts {
			if !tierARes.Resolved(inst) {
				leftovers = append(leftovers, inst)
			}
		}
		if len(leftovers) > 0 {
			tierBRes = r.fetchGuarded(ctx, r.sources.EquityB, leftovers)
		}
	}

	for _, p := range positions {
		switch {
		case p.Class.Static():
			quotes[p.ID] = r.synth.Generate(p.Class, p.EntryPrice)
		case p.Class == domain.AssetCrypto:
			quotes[p.ID] = pickLive(p.Instrument(), cryptoRes)
		case p.Class == domain.AssetEquity:
			// Tier A's answer wins whenever it produced a price.
			if tierARes.Resolved(p.Instrument()) {
				quotes[p.ID] = tierARes.Quotes[p.Instrument()]
				continue
			}
			quotes[p.ID] = pickLive(p.Instrument(), tierBRes)
		}
	}
}

// fetchGuarded consults the rate-limit guard before calling a source and
// records a new cooldown window when the source signals exceeded quota.
func (r *Resolver) fetchGuarded(ctx context.Context, src PriceSource, instruments []domain.Instrument) domain.SourceResult {
	onCooldown, err := r.cooldowns.OnCooldown(ctx, src.ID())
	if err != nil {
		r.log.Warn("cooldown lookup failed", zap.String("source", src.ID()), zap.Error(err))
	}
	if onCooldown {
		r.log.Info("source on rate-limit cooldown, skipping", zap.String("source", src.ID()))
		return domain.FailedSource()
	}
	res := src.Fetch(ctx, instruments)
	if res.RetryAfter > 0 {
		if err := r.cooldowns.RecordRateLimit(ctx, src.ID(), res.RetryAfter); err != nil {
			r.log.Warn("recording rate limit failed", zap.String("source", src.ID()), zap.Error(err))
		} else {
			r.log.Info("source rate limited, cooldown recorded",
				zap.String("source", src.ID()), zap.Duration("window", res.RetryAfter))
		}
	}
	return res
}

// CheckSymbol reports whether a live source for the instrument's class can
// produce a price for it right now. Used when registering a new symbol.
func (r *Resolver) CheckSymbol(ctx context.Context, inst domain.Instrument) bool {
	batch := []domain.Instrument{inst}
	switch inst.Class {
	case domain.AssetCrypto:
		return r.sources.Crypto.Fetch(ctx, batch).Resolved(inst)
	case domain.AssetEquity:
		if r.sources.EquityA.Fetch(ctx, batch).Resolved(inst) {
			return true
		}
		return r.fetchGuarded(ctx, r.sources.EquityB, batch).Resolved(inst)
	}
	return true
}

func pickLive(inst domain.Instrument, res domain.SourceResult) domain.Quote {
	if res.Resolved(inst) {
		return res.Quotes[inst]
	}
	return domain.UnavailableQuote()
}

func instrumentSet(positions []domain.Position) []domain.Instrument {
	seen := make(map[domain.Instrument]struct{}, len(positions))
	out := make([]domain.Instrument, 0, len(positions))
	for _, p := range positions {
		inst := p.Instrument()
		if _, dup := seen[inst]; dup {
			continue
		}
		seen[inst] = struct{}{}
		out = append(out, inst)
	}
	return out
}
