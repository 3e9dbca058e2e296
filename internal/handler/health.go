package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutor-slot-booking/internal/database"
)

// Health answers liveness probes. When a database handle is wired in
// the response carries the applied schema version, so a probe can
// tell a fully migrated binary from one still waiting on migrations.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := echo.Map{"status": "ok"}
		if db != nil {
			if v, err := database.SchemaVersion(c.Request().Context(), db); err == nil {
				resp["schema_version"] = v
			}
		}
		return c.JSON(http.StatusOK, resp)
	}
}
