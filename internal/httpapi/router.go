package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Handler     *Handler
	Logger      *zap.Logger
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger.Named("http")))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins))
	}

	h := cfg.Handler
	r.GET("/healthcheck", h.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/progress", h.GetProgress)
		api.GET("/history", h.GetHistory)
		api.GET("/status", h.GetStatus)
		api.GET("/welcome", h.GetWelcome)
		api.GET("/export", h.ExportProgress)

		api.POST("/turns", h.SubmitTurn)
		api.POST("/answers", h.RecordAnswer)
		api.POST("/session", h.NewSession)
		api.POST("/progress/reset", h.ResetProgress)
	}
	return r
}
