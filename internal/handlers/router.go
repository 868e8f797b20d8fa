package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/utils"
	"github.com/SAP-F-2025/screening-service/internal/validator"
)

type HandlerManager struct {
	screeningHandler *ScreeningHandler
	analysisHandler  *AnalysisHandler
}

func NewHandlerManager(
	screeningService services.ScreeningService,
	scanService services.ScanService,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		screeningHandler: NewScreeningHandler(screeningService, v, logger),
		analysisHandler:  NewAnalysisHandler(scanService, v, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.screeningHandler.CreateSession)
			sessions.GET("/:id", hm.screeningHandler.GetSession)
			sessions.DELETE("/:id", hm.screeningHandler.DeleteSession)

			// Quiz steps
			sessions.POST("/:id/orientation", hm.screeningHandler.SubmitOrientation)
			sessions.POST("/:id/clock", hm.screeningHandler.UploadClock)
			sessions.POST("/:id/next", hm.screeningHandler.Advance)

			// Memory game
			sessions.POST("/:id/game/cards/:index", hm.screeningHandler.SelectCard)
			sessions.POST("/:id/game/restart", hm.screeningHandler.RestartGame)

			// Results
			sessions.POST("/:id/finish", hm.screeningHandler.Finish)
			sessions.GET("/:id/report", hm.screeningHandler.GetReport)
		}

		v1.POST("/analyze", hm.analysisHandler.Analyze)
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "screening-service",
	})
}
