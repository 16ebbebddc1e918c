package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bidlens.app/resolver/common/id"
	"bidlens.app/resolver/internal/identifier"
	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/repository"
	"bidlens.app/resolver/internal/resolver"
)

// ErrAuditDisabled is returned by Recent when no audit database is
// configured.
var ErrAuditDisabled = errors.New("resolution audit is not configured")

// Resolver is the pipeline surface the service drives.
type Resolver interface {
	Resolve(ctx context.Context, raw string, trace *resolver.Trace) (*model.MatchResult, error)
}

// ResolutionCache sits in front of the pipeline. Implementations must treat
// their own failures as misses.
type ResolutionCache interface {
	Get(ctx context.Context, identifier string) (*model.MatchResult, bool)
	Set(ctx context.Context, identifier string, result *model.MatchResult)
}

// ResolutionService is the entry point downstream collaborators consume:
// an identifier in, a record or not-found out, plus the tier trace.
type ResolutionService interface {
	Resolve(ctx context.Context, identifier string) (*model.MatchResult, []resolver.Line, error)
	Recent(ctx context.Context, limit int) ([]repository.Resolution, error)
}

type resolutionService struct {
	pipeline Resolver
	cache    ResolutionCache                 // nil disables caching
	audit    repository.ResolutionRepository // nil disables auditing
}

// NewResolutionService wires the pipeline with its optional cache and
// audit log. Either may be nil.
func NewResolutionService(pipeline Resolver, cache ResolutionCache, audit repository.ResolutionRepository) ResolutionService {
	return &resolutionService{pipeline: pipeline, cache: cache, audit: audit}
}

func (s *resolutionService) Resolve(ctx context.Context, raw string) (*model.MatchResult, []resolver.Line, error) {
	raw = strings.TrimSpace(raw)

	if s.cache != nil {
		if result, ok := s.cache.Get(ctx, raw); ok {
			slog.DebugContext(ctx, "resolution cache hit", "identifier", raw)
			return result, []resolver.Line{{Tier: "cache", Scanned: 1, Note: "hit"}}, nil
		}
	}

	trace := &resolver.Trace{}
	start := time.Now()
	result, err := s.pipeline.Resolve(ctx, raw, trace)
	if err != nil {
		return nil, trace.Lines(), err
	}
	duration := time.Since(start)

	s.record(ctx, raw, result, trace, duration)

	if result != nil && s.cache != nil {
		s.cache.Set(ctx, raw, result)
	}
	return result, trace.Lines(), nil
}

func (s *resolutionService) Recent(ctx context.Context, limit int) ([]repository.Resolution, error) {
	if s.audit == nil {
		return nil, ErrAuditDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.audit.ListRecent(ctx, limit)
}

// record persists the audit row. Audit failures are logged, never surfaced:
// auditing must not break resolution.
func (s *resolutionService) record(ctx context.Context, raw string, result *model.MatchResult, trace *resolver.Trace, duration time.Duration) {
	if s.audit == nil {
		return
	}

	row := &repository.Resolution{
		ID:         id.New(),
		Identifier: raw,
		Kind:       string(identifier.Classify(raw).Kind),
		Found:      result != nil,
		DurationMS: duration.Milliseconds(),
		Trace:      trace.Strings(),
	}
	if result != nil {
		row.Tier = result.Tier
		row.Score = result.Score
		row.NoticeID = result.Record.NoticeID
	}

	if err := s.audit.Create(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to record resolution audit row", "error", err)
	}
}
