package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/metrics"
)

type RouterDeps struct {
	Appointments *AppointmentHandler
	Schedules    *ScheduleHandler
	JWTManager   *auth.JWTManager
	Metrics      *metrics.Collector
}

func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(deps.JWTManager))

	appts := api.Group("/appointments")
	{
		appts.GET("", deps.Appointments.List)
		appts.POST("", deps.Appointments.Book)
		appts.GET("/check-availability", deps.Appointments.CheckAvailability)
		appts.GET("/user/:userId", deps.Appointments.ListByUser)
		appts.GET("/doctor/:doctorId", deps.Appointments.ListByDoctor)
		appts.GET("/:id", deps.Appointments.Get)
		appts.PUT("/:id", deps.Appointments.Update)
		appts.DELETE("/:id", deps.Appointments.Cancel)
		appts.PATCH("/:id/status", deps.Appointments.SetStatus)
	}

	schedules := api.Group("/schedules")
	{
		schedules.GET("/doctor/:doctorId", deps.Schedules.ListWindows)
		schedules.GET("/doctor/:doctorId/days", deps.Schedules.AvailableDays)
		schedules.GET("/doctor/:doctorId/slots", deps.Schedules.Slots)
		schedules.GET("/doctor/:doctorId/free-slots", deps.Schedules.FreeSlots)

		// Only doctors and admins manage availability windows.
		manage := schedules.Group("")
		manage.Use(middleware.RequireRoles(auth.RoleDoctor, auth.RoleAdmin))
		{
			manage.POST("/doctor/:doctorId", deps.Schedules.AddWindow)
			manage.DELETE("/:windowId", deps.Schedules.RemoveWindow)
		}
	}

	return router
}
