package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bidlens.app/resolver/internal/http/handler"
	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/repository"
	"bidlens.app/resolver/internal/resolver"
	"bidlens.app/resolver/internal/service"
)

var _ = Describe("ResolveHandler", func() {
	var (
		router *gin.Engine
		svc    *mockResolutionService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockResolutionService{}
		h := handler.NewResolveHandler(svc)
		router.POST("/v1/resolve", h.Resolve)
		router.GET("/v1/resolutions", h.ListRecent)
	})

	post := func(path string, body any) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Resolve", func() {
		It("returns 200 with the record on a hit", func() {
			svc.resolveFn = func(_ context.Context, raw string) (*model.MatchResult, []resolver.Line, error) {
				Expect(raw).To(Equal("FA527025R0012"))
				return &model.MatchResult{
					Record: &model.ContractRecord{NoticeID: "abc123", SolicitationNumber: "FA527025R0012"},
					Tier:   resolver.TierStoreExact,
				}, nil, nil
			}

			w := post("/v1/resolve", map[string]string{"identifier": "FA527025R0012"})

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["tier"]).To(Equal("store:exact"))
			record := resp["record"].(map[string]any)
			Expect(record["notice_id"]).To(Equal("abc123"))
			Expect(resp).NotTo(HaveKey("trace"))
		})

		It("returns 404 with a message when every tier misses", func() {
			svc.resolveFn = func(_ context.Context, _ string) (*model.MatchResult, []resolver.Line, error) {
				return nil, []resolver.Line{{Tier: resolver.TierStoreExact}}, nil
			}

			w := post("/v1/resolve", map[string]string{"identifier": "NOPE-123"})

			Expect(w.Code).To(Equal(http.StatusNotFound))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["message"]).To(Equal("no contract found for NOPE-123"))
		})

		It("includes the trace only when asked for it", func() {
			svc.resolveFn = func(_ context.Context, _ string) (*model.MatchResult, []resolver.Line, error) {
				trace := []resolver.Line{
					{Tier: resolver.TierStoreExact, Note: "miss"},
					{Tier: resolver.TierFullScan, Scanned: 1200, Note: "miss"},
				}
				return nil, trace, nil
			}

			w := post("/v1/resolve?trace=true", map[string]string{"identifier": "NOPE-123"})

			Expect(w.Code).To(Equal(http.StatusNotFound))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			trace := resp["trace"].([]any)
			Expect(trace).To(HaveLen(2))
			Expect(trace[0]).To(ContainSubstring("store:exact"))
		})

		It("rejects a missing identifier with 400", func() {
			w := post("/v1/resolve", map[string]string{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when the pipeline aborts", func() {
			svc.resolveFn = func(_ context.Context, _ string) (*model.MatchResult, []resolver.Line, error) {
				return nil, nil, context.Canceled
			}

			w := post("/v1/resolve", map[string]string{"identifier": "X1Y2"})
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("ListRecent", func() {
		It("returns recent audit entries", func() {
			score := 0.8
			svc.recentFn = func(_ context.Context, limit int) ([]repository.Resolution, error) {
				Expect(limit).To(Equal(5))
				return []repository.Resolution{{
					ID:         42,
					Identifier: "FA527025R0012",
					Kind:       "solicitation_number",
					Tier:       resolver.TierFullScan,
					Score:      &score,
					NoticeID:   "abc123",
					Found:      true,
					DurationMS: 830,
					CreatedAt:  time.Now(),
				}}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/resolutions?limit=5", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string][]map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["resolutions"]).To(HaveLen(1))
			Expect(resp["resolutions"][0]["tier"]).To(Equal("remote:full-scan"))
			Expect(resp["resolutions"][0]["found"]).To(Equal(true))
		})

		It("rejects a non-numeric limit", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/resolutions?limit=abc", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 501 when the audit store is not configured", func() {
			svc.recentFn = func(_ context.Context, _ int) ([]repository.Resolution, error) {
				return nil, service.ErrAuditDisabled
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/resolutions", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusNotImplemented))
		})

		It("returns 500 on repository failure", func() {
			svc.recentFn = func(_ context.Context, _ int) ([]repository.Resolution, error) {
				return nil, errors.New("connection refused")
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/resolutions", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
