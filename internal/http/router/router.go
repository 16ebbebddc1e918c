package router

import (
	"github.com/gin-gonic/gin"

	"bidlens.app/resolver/internal/http/handler"
	"bidlens.app/resolver/internal/service"
)

func SetupRoutes(router *gin.Engine, resolutions service.ResolutionService, stats handler.StatsProvider) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	resolveHandler := handler.NewResolveHandler(resolutions)
	historyHandler := handler.NewHistoryHandler(stats)

	v1 := router.Group("/v1")
	{
		v1.POST("/resolve", resolveHandler.Resolve)
		v1.GET("/resolutions", resolveHandler.ListRecent)
		v1.GET("/pricing/history", historyHandler.AwardStats)
	}
}
