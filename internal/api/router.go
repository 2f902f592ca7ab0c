// Package api is the HTTP surface of skillforge.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillforge/internal/observability"
	"github.com/abhisek/skillforge/internal/platform/logger"
)

type RouterConfig struct {
	Logger      *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string

	SkillHandler  *SkillHandler
	HealthHandler *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(metricsMiddleware(cfg.Metrics))
	r.Use(corsMiddleware(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	if h := cfg.SkillHandler; h != nil {
		r.GET("/catalog", h.GetCatalog)

		users := r.Group("/users/:id")
		{
			users.POST("", h.Provision)
			users.POST("/skill-graph/recompute", h.Recompute)
			users.GET("/skill-graph", h.GetSkillGraph)
			users.GET("/recommendations", h.GetRecommendations)
			users.GET("/readiness", h.GetReadiness)
			users.GET("/reviews", h.GetReviews)
			users.POST("/activities", h.RecordActivity)
			users.GET("/activities", h.ListActivities)
			users.PUT("/signals", h.PutSignals)
			users.GET("/events", h.ListEvents)
		}
	}

	return r
}
