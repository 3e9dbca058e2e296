package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-slot-booking/internal/handler"
	"github.com/iliyamo/tutor-slot-booking/internal/middleware"
	"github.com/iliyamo/tutor-slot-booking/internal/model"
)

// RegisterTutor registers tutor-scoped endpoints under /v1. Admins
// pass the role gate too and may act on any tutor's bookings; the
// service layer enforces per-tutor ownership for everyone else.
func RegisterTutor(e *echo.Echo, h *handler.TutorHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		append([]echo.MiddlewareFunc{
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole(model.RoleTutor, model.RoleAdmin),
		}, mw...)...,
	)
	g.POST("/schedule", h.AddSchedule)
	g.GET("/schedule", h.ListSchedule)
	g.POST("/bookings/:id/complete", h.CompleteBooking)
	g.POST("/bookings/:id/cancel", h.CancelBooking)
	g.POST("/bookings/cancel", h.CancelByRef)
	g.PATCH("/bookings/:id", h.UpdateBooking)
	g.DELETE("/bookings/:id", h.DeleteBooking)
	g.GET("/tutor/bookings", h.ListBookings)
}
