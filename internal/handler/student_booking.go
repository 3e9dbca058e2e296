package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
    "github.com/iliyamo/tutor-slot-booking/internal/service"
)

// StudentHandler groups the endpoints students use to hold, pay for
// and rate sessions.  All methods assume JWT authentication and role
// validation were performed by the middleware chain; each flow runs
// its critical section inside one database transaction owned by the
// booking service.
type StudentHandler struct {
    Svc *service.BookingService
}

// NewStudentHandler constructs a StudentHandler.  The service must be non-nil.
func NewStudentHandler(svc *service.BookingService) *StudentHandler {
    if svc == nil {
        panic("nil service passed to NewStudentHandler")
    }
    return &StudentHandler{Svc: svc}
}

// ReserveSlot handles POST /v1/slots/:id/reserve.  It places a hold
// on a free slot for the acting student.  When several students race
// on the same slot, exactly one receives 200; the rest get 409.
func (h *StudentHandler) ReserveSlot(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    if err := h.Svc.Reserve(c.Request().Context(), actor, id); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"slot_id": id, "status": model.SlotReserved})
}

// ReleaseSlot handles DELETE /v1/slots/:id/reserve.  It drops the
// acting student's own hold, returning the slot to FREE.
func (h *StudentHandler) ReleaseSlot(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    if err := h.Svc.Release(c.Request().Context(), actor, id); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"slot_id": id, "status": model.SlotFree})
}

// BookSlot handles POST /v1/slots/:id/book.  It converts the acting
// student's reservation into a confirmed booking after payment; the
// optional payment_ref is stored as an opaque label.  Responds 201
// with the new booking.
func (h *StudentHandler) BookSlot(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    var body struct {
        Subject    *string `json:"subject"`
        PaymentRef *string `json:"payment_ref"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    booking, err := h.Svc.Book(c.Request().Context(), actor, id, body.Subject, body.PaymentRef)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "booking_id": booking.ID,
        "date":       booking.Date,
        "start_time": booking.StartTime,
        "end_time":   booking.EndTime,
        "status":     booking.Status,
    })
}

// RateBooking handles POST /v1/bookings/:id/rating, the inline
// rating path.  The rating is write-once: a second attempt with any
// value returns 409.
func (h *StudentHandler) RateBooking(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var body struct {
        Rating uint8 `json:"rating"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := h.Svc.Rate(c.Request().Context(), actor, id, body.Rating); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "rating": body.Rating})
}

// SubmitFeedback handles POST /v1/bookings/:id/feedback, the
// feedback path, carrying a rating plus an optional comment.  Both
// paths flow into the same write-once aggregate.
func (h *StudentHandler) SubmitFeedback(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var body struct {
        Rating  uint8   `json:"rating"`
        Comment *string `json:"comment"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := h.Svc.SubmitFeedback(c.Request().Context(), actor, id, body.Rating, body.Comment); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"booking_id": id, "rating": body.Rating})
}

// MyBookings handles GET /v1/my-bookings.  It returns all bookings
// created by the acting student, newest first; an empty array when
// none exist.
func (h *StudentHandler) MyBookings(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Svc.MyBookings(c.Request().Context(), actor)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
