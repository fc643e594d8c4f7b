package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "stocks/internal/errors"
	"stocks/internal/middleware"
)

// Router bundles the handlers mounted by RegisterRoutes.
type Router struct {
	Stocks         *StockHandler
	Analytics      *AnalyticsHandler
	Fetch          *FetchHandler
	PipelineAPIKey string
}

// RegisterRoutes mounts every read route twice: at the root rendering HTML
// pages and under /api rendering JSON. Pipeline routes exist only under /api.
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/", rt.Stocks.ListStocks)
	rt.registerReads(r.Group("/"))

	r.GET("/analytics/form", rt.Analytics.ShowAnalyticsForm)
	r.POST("/analytics/form", rt.Analytics.SubmitAnalyticsForm)
	r.GET("/delta/form", rt.Analytics.ShowDeltaForm)
	r.POST("/delta/form", rt.Analytics.SubmitDeltaForm)

	api := r.Group("/api")
	api.GET("", rt.Stocks.ListStocks)
	api.GET("/", rt.Stocks.ListStocks)
	rt.registerReads(api)

	pipeline := api.Group("/fetch")
	pipeline.Use(middleware.PipelineAuthMiddleware(rt.PipelineAPIKey))
	pipeline.POST("", rt.Fetch.StartFetch)
	pipeline.GET("", rt.Fetch.FetchStatus)

	r.NoRoute(func(c *gin.Context) {
		respondWithError(c, apperrors.ErrNotFound)
	})
}

func (rt *Router) registerReads(g *gin.RouterGroup) {
	g.GET("/:ticker", rt.Stocks.GetQuotes)
	g.GET("/:ticker/insider", rt.Stocks.ListTrades)
	g.GET("/:ticker/insider/:name", rt.Stocks.ListInsiderTrades)
	g.GET("/:ticker/analytics", rt.Analytics.Analytics)
	g.GET("/:ticker/delta", rt.Analytics.Delta)
}
