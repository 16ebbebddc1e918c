package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bidlens.app/resolver/internal/history"
	"bidlens.app/resolver/internal/http/handler"
	"bidlens.app/resolver/internal/model"
)

var _ = Describe("HistoryHandler", func() {
	var (
		router *gin.Engine
		svc    *mockStatsProvider
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockStatsProvider{}
		h := handler.NewHistoryHandler(svc)
		router.GET("/v1/pricing/history", h.AwardStats)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns aggregated stats for a NAICS code", func() {
		svc.statsFn = func(_ context.Context, naics string, window model.SearchWindow) (*history.Stats, error) {
			Expect(naics).To(Equal("541511"))
			Expect(window.To.Sub(window.From)).To(BeNumerically(">", 0))
			return &history.Stats{
				NAICS:    "541511",
				Count:    3,
				Mean:     200,
				Variance: 6666.67,
				Min:      100,
				Max:      300,
				Sources:  []string{"store", "remote"},
			}, nil
		}

		w := get("/v1/pricing/history?naics=541511")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["count"]).To(BeNumerically("==", 3))
		Expect(resp["mean"]).To(BeNumerically("==", 200))
		Expect(resp["sources"]).To(ConsistOf("store", "remote"))
		Expect(resp["from"]).NotTo(BeEmpty())
	})

	It("requires a naics parameter", func() {
		w := get("/v1/pricing/history")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects an out-of-range months parameter", func() {
		Expect(get("/v1/pricing/history?naics=541511&months=0").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/v1/pricing/history?naics=541511&months=120").Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 502 when every source fails", func() {
		svc.statsFn = func(_ context.Context, _ string, _ model.SearchWindow) (*history.Stats, error) {
			return nil, errors.New("store and remote both unavailable")
		}

		w := get("/v1/pricing/history?naics=541511")
		Expect(w.Code).To(Equal(http.StatusBadGateway))
	})
})
