package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig toggles optional endpoints
type RouterConfig struct {
	Metrics bool
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(h *PortfolioHandler, hub *SSEHub, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/portfolios", h.CreatePortfolio)
		v1.GET("/portfolios", h.ListPortfolios)

		p := v1.Group("/portfolios/:id")
		p.GET("", h.GetPortfolio)
		p.DELETE("", h.DeletePortfolio)

		p.GET("/evaluations", h.ListEvaluations)
		p.POST("/evaluations", h.AddEvaluations)
		p.POST("/evaluations/import", h.ImportEvaluations)
		p.DELETE("/evaluations/:recordId", h.RemoveEvaluation)

		p.GET("/constraints", h.Constraints)
		p.GET("/optimization", h.Optimization)
		p.GET("/validation", h.Validation)

		p.GET("/vertices", h.Vertices)
		p.GET("/properties", h.Properties)
		p.GET("/projection", h.Projection)
		p.GET("/geometry", h.Geometry)

		p.GET("/report", h.Report)
		p.GET("/workbook", h.Workbook)

		if hub != nil {
			p.GET("/events", hub.HandleSSE)
		}
	}

	return router
}
