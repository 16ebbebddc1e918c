package service_test

import (
	"context"

	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/repository"
	"bidlens.app/resolver/internal/resolver"
)

type mockResolver struct {
	resolveFn func(ctx context.Context, raw string, trace *resolver.Trace) (*model.MatchResult, error)
	calls     int
}

func (m *mockResolver) Resolve(ctx context.Context, raw string, trace *resolver.Trace) (*model.MatchResult, error) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, raw, trace)
	}
	return nil, nil
}

type mockCache struct {
	entries map[string]*model.MatchResult
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*model.MatchResult)}
}

func (m *mockCache) Get(_ context.Context, identifier string) (*model.MatchResult, bool) {
	result, ok := m.entries[identifier]
	return result, ok
}

func (m *mockCache) Set(_ context.Context, identifier string, result *model.MatchResult) {
	m.sets++
	m.entries[identifier] = result
}

type mockAudit struct {
	createFn func(ctx context.Context, res *repository.Resolution) error
	rows     []repository.Resolution
}

func (m *mockAudit) Create(ctx context.Context, res *repository.Resolution) error {
	if m.createFn != nil {
		return m.createFn(ctx, res)
	}
	m.rows = append(m.rows, *res)
	return nil
}

func (m *mockAudit) GetByID(_ context.Context, id int64) (*repository.Resolution, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return &m.rows[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAudit) ListRecent(_ context.Context, limit int) ([]repository.Resolution, error) {
	if limit > len(m.rows) {
		limit = len(m.rows)
	}
	return m.rows[:limit], nil
}
