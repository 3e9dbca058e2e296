package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tutor-slot-booking/internal/repository"
    "github.com/iliyamo/tutor-slot-booking/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// actorFrom builds the service.Actor for the current request from
// the session claims the middleware stored on the context.
func actorFrom(c echo.Context) (service.Actor, error) {
    userID, err := getUserID(c)
    if err != nil {
        return service.Actor{}, err
    }
    role, _ := c.Get("role").(string)
    if role == "" {
        return service.Actor{}, errors.New("missing role in context")
    }
    return service.Actor{UserID: userID, Role: role}, nil
}

// respondError maps a flow error onto the HTTP taxonomy.  Validation
// reasons are shown to the caller; everything unexpected collapses
// to a generic 500 so store internals never leak.
func respondError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrSlotNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
    case errors.Is(err, repository.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    case errors.Is(err, repository.ErrTutorNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "tutor not found"})
    case errors.Is(err, repository.ErrStudentNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
    case errors.Is(err, repository.ErrAlreadyRated):
        return c.JSON(http.StatusConflict, echo.Map{"error": "already rated"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

// pathID parses the ":id" path parameter as a positive integer.
func pathID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}
