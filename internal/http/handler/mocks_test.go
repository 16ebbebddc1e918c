package handler_test

import (
	"context"

	"bidlens.app/resolver/internal/history"
	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/repository"
	"bidlens.app/resolver/internal/resolver"
)

type mockResolutionService struct {
	resolveFn func(ctx context.Context, raw string) (*model.MatchResult, []resolver.Line, error)
	recentFn  func(ctx context.Context, limit int) ([]repository.Resolution, error)
}

func (m *mockResolutionService) Resolve(ctx context.Context, raw string) (*model.MatchResult, []resolver.Line, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, raw)
	}
	return nil, nil, nil
}

func (m *mockResolutionService) Recent(ctx context.Context, limit int) ([]repository.Resolution, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

type mockStatsProvider struct {
	statsFn func(ctx context.Context, naics string, window model.SearchWindow) (*history.Stats, error)
}

func (m *mockStatsProvider) Stats(ctx context.Context, naics string, window model.SearchWindow) (*history.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, naics, window)
	}
	return nil, nil
}
