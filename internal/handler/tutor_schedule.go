package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tutor-slot-booking/internal/service"
    "github.com/iliyamo/tutor-slot-booking/internal/utils"
)

// TutorHandler groups the endpoints available to tutors (and, where
// noted, admins): publishing schedule entries and driving the
// booking lifecycle through completion and cancellation.  JWT
// authentication and role validation are assumed to have been
// performed by middleware.
type TutorHandler struct {
    Svc *service.BookingService
}

// NewTutorHandler constructs a TutorHandler.  The service must be non-nil.
func NewTutorHandler(svc *service.BookingService) *TutorHandler {
    if svc == nil {
        panic("nil service passed to NewTutorHandler")
    }
    return &TutorHandler{Svc: svc}
}

// AddSchedule handles POST /v1/schedule.  The body carries the date
// and the start/end times of a new availability window.  Responds
// 201 with the created slot, 400 on a malformed window (start not
// before end, past date) and 409 when the window already exists.
func (h *TutorHandler) AddSchedule(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        Date      string `json:"date"`
        StartTime string `json:"start_time"`
        EndTime   string `json:"end_time"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Date == "" || body.StartTime == "" || body.EndTime == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, start_time and end_time are required"})
    }
    slot, err := h.Svc.AddSchedule(c.Request().Context(), actor, body.Date, body.StartTime, body.EndTime)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "slot_id":    slot.ID,
        "tutor_ref":  utils.FormatTutorRef(slot.TutorID),
        "date":       slot.Date,
        "start_time": slot.StartTime,
        "end_time":   slot.EndTime,
        "status":     slot.Status,
    })
}

// ListSchedule handles GET /v1/schedule.  It returns all of the
// acting tutor's slots, optionally restricted to ?date=YYYY-MM-DD.
func (h *TutorHandler) ListSchedule(c echo.Context) error {
    actor, err := actorFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slots, err := h.Svc.ListSchedule(c.Request().Context(), actor, c.QueryParam("date"))
    if err != nil {
        return respondError(c, err)
    }
    views := make([]slotView, 0, len(slots))
    for _, s := range slots {
        views = append(views, slotView{
            SlotID:    s.ID,
            Date:      s.Date,
            StartTime: s.StartTime,
            EndTime:   s.EndTime,
            Status:    s.Status,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": views})
}
