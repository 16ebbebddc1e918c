package resolver_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/resolver"
	"bidlens.app/resolver/internal/sam"
)

const canonicalID = "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4"

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

var _ = Describe("Orchestrator", func() {
	var (
		store  *fakeStore
		remote *fakeSearcher
		orch   *resolver.Orchestrator
		trace  *resolver.Trace
		ctx    context.Context
	)

	BeforeEach(func() {
		store = &fakeStore{}
		remote = &fakeSearcher{}
		orch = resolver.New(store, remote, resolver.Config{Now: fixedNow})
		trace = &resolver.Trace{}
		ctx = context.Background()
	})

	Describe("tier precedence", func() {
		It("returns the store's record even when a remote tier would also match", func() {
			storeRec := &model.ContractRecord{NoticeID: canonicalID, Title: "from store"}
			store.findFn = func(_ context.Context, _ string) (*model.ContractRecord, *float64, error) {
				return storeRec, nil, nil
			}
			remote.byNoticeIDFn = func(_ context.Context, _ model.SearchWindow, _ string) ([]model.ContractRecord, error) {
				return []model.ContractRecord{{NoticeID: canonicalID, Title: "from remote"}}, nil
			}

			result, err := orch.Resolve(ctx, canonicalID, trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Tier).To(Equal(resolver.TierStoreExact))
			Expect(result.Record.Title).To(Equal("from store"))
			Expect(remote.byNoticeIDCalls).To(BeZero())
		})

		It("labels scored store hits as fuzzy", func() {
			score := 0.8
			store.findFn = func(_ context.Context, _ string) (*model.ContractRecord, *float64, error) {
				return &model.ContractRecord{NoticeID: "FA527025R0012-0001"}, &score, nil
			}

			result, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tier).To(Equal(resolver.TierStoreFuzzy))
			Expect(*result.Score).To(Equal(0.8))
		})
	})

	Describe("canonical probe", func() {
		It("resolves a canonical id remotely when the store misses", func() {
			remote.byNoticeIDFn = func(_ context.Context, _ model.SearchWindow, noticeID string) ([]model.ContractRecord, error) {
				Expect(noticeID).To(Equal(canonicalID))
				return []model.ContractRecord{{NoticeID: canonicalID, Title: "found"}}, nil
			}

			result, err := orch.Resolve(ctx, canonicalID, trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Tier).To(Equal(resolver.TierCanonical))
			Expect(result.Score).To(BeNil())
		})

		It("rejects a remote record whose id does not equal the query", func() {
			remote.byNoticeIDFn = func(_ context.Context, _ model.SearchWindow, _ string) ([]model.ContractRecord, error) {
				return []model.ContractRecord{{NoticeID: "something-else", Title: "surprise"}}, nil
			}

			result, err := orch.Resolve(ctx, canonicalID, trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
		})

		It("does not run the full-scan tier for canonical ids", func() {
			_, err := orch.Resolve(ctx, canonicalID, trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(remote.byNoticeIDCalls).To(Equal(1))
			// Narrow windows and broad fallback still run after the miss.
			Expect(remote.fetchAllCalls).To(Equal(3))
		})
	})

	Describe("full scan", func() {
		It("resolves a solicitation number by exact variant equality", func() {
			remote.fetchAllFn = func(_ context.Context, _ model.SearchWindow) ([]model.ContractRecord, error) {
				return []model.ContractRecord{
					{NoticeID: "n-1", SolicitationNumber: "OTHER"},
					{NoticeID: "n-2", SolicitationNumber: "FA527025R0012"},
				}, nil
			}

			result, err := orch.Resolve(ctx, "fa527025r0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Tier).To(Equal(resolver.TierFullScan))
			Expect(result.Record.NoticeID).To(Equal("n-2"))
			Expect(result.Score).To(BeNil())
		})

		It("falls back to containment with the flat bonus score", func() {
			remote.fetchAllFn = func(_ context.Context, _ model.SearchWindow) ([]model.ContractRecord, error) {
				return []model.ContractRecord{
					{NoticeID: "n-1", SolicitationNumber: "FA527025R0012-BASE-AWARD"},
				}, nil
			}

			result, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Tier).To(Equal(resolver.TierFullScan))
			Expect(result.Score).NotTo(BeNil())
			Expect(*result.Score).To(BeNumerically(">=", 0.5))
		})

		It("matches dash-stripped variants of human codes", func() {
			remote.fetchAllFn = func(_ context.Context, _ model.SearchWindow) ([]model.ContractRecord, error) {
				return []model.ContractRecord{
					{NoticeID: "n-1", SolicitationNumber: "W912DY25R0012"},
				}, nil
			}

			result, err := orch.Resolve(ctx, "W912DY-25-R-0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Record.SolicitationNumber).To(Equal("W912DY25R0012"))
		})
	})

	Describe("failure semantics", func() {
		It("continues to remote tiers when the store is unavailable", func() {
			store.findFn = func(_ context.Context, _ string) (*model.ContractRecord, *float64, error) {
				return nil, nil, errors.New("primary store unavailable: connection refused")
			}
			remote.fetchAllFn = func(_ context.Context, _ model.SearchWindow) ([]model.ContractRecord, error) {
				return []model.ContractRecord{{SolicitationNumber: "FA527025R0012"}}, nil
			}

			result, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Tier).To(Equal(resolver.TierFullScan))
		})

		It("treats a failing tier as a miss and tries the next one", func() {
			fullScanAttempts := 0
			remote.fetchAllFn = func(_ context.Context, _ model.SearchWindow) ([]model.ContractRecord, error) {
				fullScanAttempts++
				return nil, sam.ErrTransport
			}
			remote.pageFn = func(_ context.Context, _ model.SearchWindow, _, _ int) (sam.PageResult, error) {
				return sam.PageResult{Records: []model.ContractRecord{
					{SolicitationNumber: "FA527025R0012"},
				}}, nil
			}

			result, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result.Tier).To(Equal(resolver.TierBroad))
			// Full scan once, three narrow windows, all failed.
			Expect(fullScanAttempts).To(Equal(4))
		})

		It("returns not found as a value when every tier is exhausted", func() {
			result, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
		})
	})

	Describe("empty input", func() {
		It("runs the store tier then returns not found without remote calls", func() {
			result, err := orch.Resolve(ctx, "", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
			Expect(store.calls).To(Equal(1))
			Expect(remote.fetchAllCalls).To(BeZero())
			Expect(remote.pageCalls).To(BeZero())
		})
	})

	Describe("acceptance threshold", func() {
		It("never returns a sub-threshold store score", func() {
			low := 0.3
			store.findFn = func(_ context.Context, _ string) (*model.ContractRecord, *float64, error) {
				return &model.ContractRecord{NoticeID: "weak"}, &low, nil
			}

			result, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
		})
	})

	Describe("trace", func() {
		It("appends one line per tier attempted", func() {
			_, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())

			lines := trace.Lines()
			tiers := make([]string, len(lines))
			for i, l := range lines {
				tiers[i] = l.Tier
			}
			// store miss, full scan, three narrow windows, broad.
			Expect(tiers).To(Equal([]string{
				resolver.TierStoreExact,
				resolver.TierFullScan,
				resolver.TierWindow,
				resolver.TierWindow,
				resolver.TierWindow,
				resolver.TierBroad,
			}))
			Expect(lines[1].Window).NotTo(BeEmpty())
		})

		It("records scanned counts for remote tiers", func() {
			remote.fetchAllFn = func(_ context.Context, _ model.SearchWindow) ([]model.ContractRecord, error) {
				return make([]model.ContractRecord, 42), nil
			}

			_, err := orch.Resolve(ctx, "FA527025R0012", trace)
			Expect(err).NotTo(HaveOccurred())
			Expect(trace.Lines()[1].Scanned).To(Equal(42))
		})
	})
})
