package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
    "github.com/iliyamo/tutor-slot-booking/internal/repository"
    "github.com/iliyamo/tutor-slot-booking/internal/service"
    "github.com/iliyamo/tutor-slot-booking/internal/utils"
)

// CompleteBooking handles POST /v1/bookings/:id/complete.  The
// booking moves to COMPLETED and the matching slot returns to FREE
// in one transaction; a 409 means the booking was already terminal.
func (h *TutorHandler) CompleteBooking(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Svc.Complete(c.Request().Context(), actor, id); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "status": model.BookingCompleted})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Only the
// owning tutor or an admin may cancel; students receive 403.
func (h *TutorHandler) CancelBooking(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Svc.Cancel(c.Request().Context(), actor, service.CancelRef{BookingID: &id}); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "status": model.BookingCancelled})
}

// CancelByRef handles POST /v1/bookings/cancel.  It accepts the
// alternative session references: a slot id holding a reservation,
// or the (date, start_time) position on the acting tutor's calendar.
func (h *TutorHandler) CancelByRef(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        BookingID *uint64 `json:"booking_id"`
        SlotID    *uint64 `json:"slot_id"`
        Date      string  `json:"date"`
        StartTime string  `json:"start_time"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ref := service.CancelRef{
        BookingID: body.BookingID,
        SlotID:    body.SlotID,
        Date:      body.Date,
        StartTime: body.StartTime,
    }
    if err := h.Svc.Cancel(c.Request().Context(), actor, ref); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": model.BookingCancelled})
}

// DeleteBooking handles DELETE /v1/bookings/:id.  The ledger row is
// removed and its slot freed atomically.  Responds 204 on success.
func (h *TutorHandler) DeleteBooking(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Svc.DeleteBooking(c.Request().Context(), actor, id); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// UpdateBooking handles PATCH /v1/bookings/:id.  Only the
// allow-listed fields (subject, notes) can be changed; anything else
// in the body is ignored by the typed bind.
func (h *TutorHandler) UpdateBooking(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var body struct {
        Subject *string `json:"subject"`
        Notes   *string `json:"notes"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    upd := model.BookingUpdate{Subject: body.Subject, Notes: body.Notes}
    if err := h.Svc.UpdateBooking(c.Request().Context(), actor, id, upd); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking_id": id})
}

// ListBookings handles GET /v1/tutor/bookings and returns the acting
// tutor's ledger, newest first.  An optional ?student=s000045 query
// narrows the list to sessions with that student.
func (h *TutorHandler) ListBookings(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Svc.TutorBookings(c.Request().Context(), actor)
    if err != nil {
        return respondError(c, err)
    }
    if ref := c.QueryParam("student"); ref != "" {
        studentID, err := utils.ParseStudentRef(ref)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student ref"})
        }
        filtered := make([]repository.BookingDetail, 0, len(items))
        for _, d := range items {
            if d.StudentID == studentID {
                filtered = append(filtered, d)
            }
        }
        items = filtered
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
