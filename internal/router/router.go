// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-slot-booking/internal/handler"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterPublic registers the guest-facing browse endpoints. The
// optional extra middleware (response cache) applies only here, never
// to authenticated writes.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	// Availability never exposes who reserved a slot.
	g.GET("/tutors/:id/slots", p.GetAvailability)
	g.GET("/tutors/:id/feedback", p.GetFeedback)
	g.GET("/search/tutors", p.SearchTutors)
}
