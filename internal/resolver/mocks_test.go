package resolver_test

import (
	"context"
	"sync"

	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/sam"
)

type fakeStore struct {
	findFn func(ctx context.Context, raw string) (*model.ContractRecord, *float64, error)
	calls  int
}

func (f *fakeStore) FindByIdentifier(ctx context.Context, raw string) (*model.ContractRecord, *float64, error) {
	f.calls++
	if f.findFn != nil {
		return f.findFn(ctx, raw)
	}
	return nil, nil, nil
}

type fakeSearcher struct {
	mu sync.Mutex

	pageFn       func(ctx context.Context, window model.SearchWindow, offset, limit int) (sam.PageResult, error)
	fetchAllFn   func(ctx context.Context, window model.SearchWindow) ([]model.ContractRecord, error)
	byNoticeIDFn func(ctx context.Context, window model.SearchWindow, noticeID string) ([]model.ContractRecord, error)

	pageCalls       int
	fetchAllCalls   int
	byNoticeIDCalls int
	fetchAllWindows []model.SearchWindow
}

func (f *fakeSearcher) Page(ctx context.Context, window model.SearchWindow, offset, limit int) (sam.PageResult, error) {
	f.mu.Lock()
	f.pageCalls++
	f.mu.Unlock()
	if f.pageFn != nil {
		return f.pageFn(ctx, window, offset, limit)
	}
	return sam.PageResult{}, nil
}

func (f *fakeSearcher) FetchAll(ctx context.Context, window model.SearchWindow) ([]model.ContractRecord, error) {
	f.mu.Lock()
	f.fetchAllCalls++
	f.fetchAllWindows = append(f.fetchAllWindows, window)
	f.mu.Unlock()
	if f.fetchAllFn != nil {
		return f.fetchAllFn(ctx, window)
	}
	return nil, nil
}

func (f *fakeSearcher) ByNoticeID(ctx context.Context, window model.SearchWindow, noticeID string) ([]model.ContractRecord, error) {
	f.mu.Lock()
	f.byNoticeIDCalls++
	f.mu.Unlock()
	if f.byNoticeIDFn != nil {
		return f.byNoticeIDFn(ctx, window, noticeID)
	}
	return nil, nil
}
