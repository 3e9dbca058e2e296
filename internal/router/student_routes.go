package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-slot-booking/internal/handler"
	"github.com/iliyamo/tutor-slot-booking/internal/middleware"
	"github.com/iliyamo/tutor-slot-booking/internal/model"
)

// RegisterStudent registers student-scoped endpoints under /v1. All
// routes require a valid JWT with the STUDENT role. Students reserve
// and release slots, turn reservations into bookings, rate completed
// lessons and list their own bookings.
func RegisterStudent(e *echo.Echo, h *handler.StudentHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		append([]echo.MiddlewareFunc{
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole(model.RoleStudent),
		}, mw...)...,
	)
	g.POST("/slots/:id/reserve", h.ReserveSlot)
	g.DELETE("/slots/:id/reserve", h.ReleaseSlot)
	g.POST("/slots/:id/book", h.BookSlot)
	g.POST("/bookings/:id/rating", h.RateBooking)
	g.POST("/bookings/:id/feedback", h.SubmitFeedback)
	g.GET("/my-bookings", h.MyBookings)
}
