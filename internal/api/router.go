package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with all framework routes mounted.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/activity-types", handler.ListActivityTypes)
		v1.GET("/activity-types/:kind/schema", handler.GetActivityTypeSchema)
		v1.GET("/activity-states", handler.GetStateMachine)

		sessions := v1.Group("/sessions/:sessionId")
		{
			sessions.POST("/activities", handler.CreateActivity)
			sessions.GET("/activities", handler.ListActivities)
		}

		activities := v1.Group("/activities/:activityId")
		{
			activities.GET("", handler.GetActivity)
			activities.PATCH("", handler.UpdateActivity)
			activities.DELETE("", handler.DeleteActivity)
			activities.POST("/state", handler.TransitionActivity)
			activities.GET("/state/validate", handler.ValidateTransition)
			activities.POST("/responses", handler.SubmitResponse)
			activities.GET("/responses/summary", handler.GetResponseSummary)
			activities.GET("/results", handler.GetResults)
		}
	}

	return router
}
