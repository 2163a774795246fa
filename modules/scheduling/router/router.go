package router

import (
	"meeting-slot-api/core/middleware"
	"meeting-slot-api/modules/scheduling/controller"

	"github.com/labstack/echo/v4"
)

// SchedulingRouter handles scheduling routes
type SchedulingRouter struct {
	SchedulingController *controller.SchedulingController
}

// NewSchedulingRouter creates a new router
func NewSchedulingRouter(schedulingController *controller.SchedulingController) *SchedulingRouter {
	return &SchedulingRouter{
		SchedulingController: schedulingController,
	}
}

// Setup registers scheduling routes
func (r *SchedulingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private", mw.AuthMiddleware())

	privateRoutes.POST("/slots/suggest", r.SchedulingController.SuggestSlots)

	privateRoutes.GET("/preferences", r.SchedulingController.GetPreferences)
	privateRoutes.PUT("/preferences", r.SchedulingController.UpdatePreferences)

	privateRoutes.POST("/emails/inbound", r.SchedulingController.EnqueueInboundEmail)
	privateRoutes.GET("/drafts", r.SchedulingController.ListDrafts)
}
