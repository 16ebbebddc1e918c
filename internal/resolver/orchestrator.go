// Package resolver coordinates the fallback pipeline that turns a raw
// identifier string into a contract record: primary store first, then a
// sequence of increasingly expensive remote search tiers. The first
// acceptable match wins; exhaustion is a normal outcome, not an error.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bidlens.app/resolver/common/logger"
	"bidlens.app/resolver/internal/identifier"
	"bidlens.app/resolver/internal/match"
	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/sam"
)

// Tier names, in precedence order. They appear in trace lines, audit rows
// and MatchResult.Tier.
const (
	TierStoreExact = "store:exact"
	TierStoreFuzzy = "store:fuzzy"
	TierCanonical  = "remote:canonical"
	TierFullScan   = "remote:full-scan"
	TierWindow     = "remote:window"
	TierBroad      = "remote:broad"
)

const (
	day          = 24 * time.Hour
	defaultReach = 180 * day
	broadReach   = 365 * day

	// broadLimit is the single-page limit for the last-resort fetch.
	broadLimit = 5000
)

// StoreFinder is the primary-store surface the orchestrator needs.
type StoreFinder interface {
	FindByIdentifier(ctx context.Context, raw string) (*model.ContractRecord, *float64, error)
}

// Orchestrator runs the tier pipeline. Tiers are strictly sequential: each
// later tier is materially more expensive and only attempted after cheaper
// tiers have provably missed.
type Orchestrator struct {
	store     StoreFinder
	remote    sam.Searcher
	threshold float64
	now       func() time.Time
}

// Config tunes the orchestrator. Zero values mean defaults.
type Config struct {
	// Threshold is the fuzzy acceptance threshold; zero means
	// match.AcceptanceThreshold.
	Threshold float64
	// Now is an injectable clock for tests.
	Now func() time.Time
}

func New(store StoreFinder, remote sam.Searcher, cfg Config) *Orchestrator {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = match.AcceptanceThreshold
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{store: store, remote: remote, threshold: threshold, now: now}
}

// Resolve locates the single contract a raw identifier refers to. A nil
// result with a nil error means not found — every tier was exhausted. The
// trace sink receives one line per tier attempted; pass nil to discard.
// I/O failures inside a tier are logged and treated as tier misses; the
// only error Resolve returns is context cancellation.
func (o *Orchestrator) Resolve(ctx context.Context, raw string, trace *Trace) (*model.MatchResult, error) {
	raw = strings.TrimSpace(raw)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Identifier: raw,
		Component:  "resolver.orchestrator",
	})

	// Tier 0: primary store, exact then fuzzy. Store failure is soft.
	if result := o.storeTier(ctx, raw, trace); result != nil {
		return result, nil
	}

	if raw == "" {
		// Nothing to classify; remote scans on an empty identifier
		// would only match records with empty key fields.
		return nil, nil
	}

	analysis := identifier.Classify(raw)
	ctx = logger.WithLogFields(ctx, logger.LogFields{Kind: string(analysis.Kind)})
	slog.DebugContext(ctx, "identifier classified", "variants", len(analysis.Variants))

	now := o.now()

	// Tier 1: canonical probe, only for canonical ids.
	if analysis.Kind == identifier.CanonicalID {
		if result := o.canonicalTier(ctx, analysis, now, trace); result != nil {
			return result, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Tier 2: full-scan exact/partial, for human-facing codes. The remote
	// endpoint cannot filter by solicitation number server-side, so the
	// whole window is fetched and filtered locally.
	if analysis.Kind == identifier.HumanCode || analysis.Kind == identifier.SolicitationNumber {
		if result := o.fullScanTier(ctx, analysis, now, trace); result != nil {
			return result, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Tier 3: narrower windows, exact equality only.
	for _, window := range narrowWindows(now) {
		if result := o.windowTier(ctx, analysis, window, trace); result != nil {
			return result, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	// Tier 4: broad last resort.
	if result := o.broadTier(ctx, analysis, now, trace); result != nil {
		return result, nil
	}

	slog.InfoContext(ctx, "resolution exhausted, no contract found")
	return nil, ctx.Err()
}

func (o *Orchestrator) storeTier(ctx context.Context, raw string, trace *Trace) *model.MatchResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Tier: TierStoreExact})

	rec, score, err := o.store.FindByIdentifier(ctx, raw)
	if err != nil {
		slog.WarnContext(ctx, "primary store unavailable, falling through to remote", "error", err)
		trace.Append(Line{Tier: TierStoreExact, Note: "store unavailable"})
		return nil
	}
	if rec == nil {
		trace.Append(Line{Tier: TierStoreExact, Note: "miss"})
		return nil
	}
	if score != nil && *score < o.threshold {
		// The store should not hand back sub-threshold candidates, but
		// the acceptance invariant is enforced here regardless.
		trace.Append(Line{Tier: TierStoreFuzzy, Note: "below threshold"})
		return nil
	}

	tier := TierStoreExact
	if score != nil {
		tier = TierStoreFuzzy
	}
	trace.Append(Line{Tier: tier, Scanned: 1, Note: "hit"})
	slog.InfoContext(ctx, "resolved from primary store", "tier", tier, "notice_id", rec.NoticeID)
	return &model.MatchResult{Record: rec, Tier: tier, Score: score}
}

// canonicalTier issues a single scoped remote query and accepts the result
// only on byte equality of the returned id, guarding against result-shape
// surprises from the endpoint.
func (o *Orchestrator) canonicalTier(ctx context.Context, analysis identifier.Analysis, now time.Time, trace *Trace) *model.MatchResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Tier: TierCanonical})
	window := model.Window(now, defaultReach, defaultReach)

	records, err := o.remote.ByNoticeID(ctx, window, analysis.Normalized)
	if err != nil {
		slog.WarnContext(ctx, "canonical probe failed", "error", err)
		trace.Append(Line{Tier: TierCanonical, Window: window.String(), Note: "error: " + err.Error()})
		return nil
	}

	trace.Append(Line{Tier: TierCanonical, Window: window.String(), Scanned: len(records)})
	for i := range records {
		if records[i].NoticeID == analysis.Normalized {
			slog.InfoContext(ctx, "resolved via canonical probe", "notice_id", analysis.Normalized)
			return &model.MatchResult{Record: &records[i], Tier: TierCanonical}
		}
	}
	return nil
}

// fullScanTier pages the whole default window and filters locally: every
// variant tested for exact equality first, then for substring containment.
func (o *Orchestrator) fullScanTier(ctx context.Context, analysis identifier.Analysis, now time.Time, trace *Trace) *model.MatchResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Tier: TierFullScan})
	window := model.Window(now, defaultReach, defaultReach)

	records, err := o.remote.FetchAll(ctx, window)
	if err != nil {
		slog.WarnContext(ctx, "full scan failed", "error", err)
		trace.Append(Line{Tier: TierFullScan, Window: window.String(), Note: "error: " + err.Error()})
		return nil
	}
	trace.Append(Line{Tier: TierFullScan, Window: window.String(), Scanned: len(records)})

	if rec := findExact(records, analysis.Variants); rec != nil {
		slog.InfoContext(ctx, "resolved via full scan", "notice_id", rec.NoticeID)
		return &model.MatchResult{Record: rec, Tier: TierFullScan}
	}
	if rec, score := findContained(records, analysis.Variants); rec != nil && score >= o.threshold {
		slog.InfoContext(ctx, "resolved via full scan containment", "notice_id", rec.NoticeID, "score", score)
		return &model.MatchResult{Record: rec, Tier: TierFullScan, Score: &score}
	}
	return nil
}

// windowTier re-runs the scan over one narrower window, exact equality only.
func (o *Orchestrator) windowTier(ctx context.Context, analysis identifier.Analysis, window model.SearchWindow, trace *Trace) *model.MatchResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Tier: TierWindow})

	records, err := o.remote.FetchAll(ctx, window)
	if err != nil {
		slog.WarnContext(ctx, "window scan failed", "window", window.String(), "error", err)
		trace.Append(Line{Tier: TierWindow, Window: window.String(), Note: "error: " + err.Error()})
		return nil
	}
	trace.Append(Line{Tier: TierWindow, Window: window.String(), Scanned: len(records)})

	if rec := findExact(records, analysis.Variants); rec != nil {
		slog.InfoContext(ctx, "resolved via narrowed window", "notice_id", rec.NoticeID, "window", window.String())
		return &model.MatchResult{Record: rec, Tier: TierWindow}
	}
	return nil
}

// broadTier is the last resort: one page over a ±365-day window at a higher
// limit, exact equality only.
func (o *Orchestrator) broadTier(ctx context.Context, analysis identifier.Analysis, now time.Time, trace *Trace) *model.MatchResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Tier: TierBroad})
	window := model.Window(now, broadReach, broadReach)

	page, err := o.remote.Page(ctx, window, 0, broadLimit)
	if err != nil {
		slog.WarnContext(ctx, "broad fetch failed", "error", err)
		trace.Append(Line{Tier: TierBroad, Window: window.String(), Note: "error: " + err.Error()})
		return nil
	}
	trace.Append(Line{Tier: TierBroad, Window: window.String(), Scanned: len(page.Records)})

	if rec := findExact(page.Records, analysis.Variants); rec != nil {
		slog.InfoContext(ctx, "resolved via broad fallback", "notice_id", rec.NoticeID)
		return &model.MatchResult{Record: rec, Tier: TierBroad}
	}
	return nil
}

// narrowWindows is the fixed set of tighter ranges tried when the default
// window misses — useful when the posting month is roughly known.
func narrowWindows(now time.Time) []model.SearchWindow {
	return []model.SearchWindow{
		model.Window(now, 30*day, 30*day),
		model.Window(now, 60*day, 0),
		model.Window(now, 90*day, 30*day),
	}
}

// findExact returns the first record whose notice id or solicitation
// number equals any variant byte-for-byte. Matching is set-based: the
// first record hit wins, not the first variant.
func findExact(records []model.ContractRecord, variants []string) *model.ContractRecord {
	set := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	for i := range records {
		if _, ok := set[records[i].NoticeID]; ok && records[i].NoticeID != "" {
			return &records[i]
		}
		if _, ok := set[records[i].SolicitationNumber]; ok && records[i].SolicitationNumber != "" {
			return &records[i]
		}
	}
	return nil
}

// findContained returns the first record where some variant and the
// record's identifier fields are in a substring relationship, scored with
// the flat containment bonus.
func findContained(records []model.ContractRecord, variants []string) (*model.ContractRecord, float64) {
	for i := range records {
		for _, v := range variants {
			if v == "" {
				continue
			}
			if contained(records[i].SolicitationNumber, v) || contained(records[i].NoticeID, v) {
				return &records[i], match.ContainmentScore
			}
		}
	}
	return nil, 0
}

func contained(field, variant string) bool {
	if field == "" {
		return false
	}
	f, v := strings.ToUpper(field), strings.ToUpper(variant)
	return strings.Contains(f, v) || strings.Contains(v, f)
}
