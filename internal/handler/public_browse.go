package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tutor-slot-booking/internal/repository"
    "github.com/iliyamo/tutor-slot-booking/internal/service"
    "github.com/iliyamo/tutor-slot-booking/internal/utils"
)

// PublicHandler exposes unauthenticated browse endpoints: a tutor's
// availability calendar and the feedback left for them.  These
// routes carry no session middleware so guests can inspect a tutor
// before registering.
type PublicHandler struct {
    Svc *service.BookingService
}

// NewPublicHandler constructs a PublicHandler.  The service must be non-nil.
func NewPublicHandler(svc *service.BookingService) *PublicHandler {
    if svc == nil {
        panic("nil service passed to NewPublicHandler")
    }
    return &PublicHandler{Svc: svc}
}

// tutorPathID resolves the ":id" path parameter as either the plain
// numeric tutor id or its display reference form, so both
// /v1/tutors/123/slots and /v1/tutors/t000123/slots work.
func tutorPathID(c echo.Context) (uint64, bool) {
    if id, ok := pathID(c); ok {
        return id, true
    }
    id, err := utils.ParseTutorRef(c.Param("id"))
    if err != nil {
        return 0, false
    }
    return id, true
}

// slotView is the sanitized slot representation returned to guests.
// The reserving student is never exposed; only the status matters to
// someone browsing the calendar.
type slotView struct {
    SlotID    uint64 `json:"slot_id"`
    Date      string `json:"date"`
    StartTime string `json:"start_time"`
    EndTime   string `json:"end_time"`
    Status    string `json:"status"`
}

// GetAvailability handles GET /v1/tutors/:id/slots.  It returns the
// tutor profile with the aggregate rating and the slot calendar,
// optionally restricted to ?date=YYYY-MM-DD.  Responses are cached
// by the response-cache middleware when enabled.
func (h *PublicHandler) GetAvailability(c echo.Context) error {
    id, ok := tutorPathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tutor id"})
    }
    tutor, slots, err := h.Svc.Availability(c.Request().Context(), id, c.QueryParam("date"))
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
    return c.JSON(http.StatusOK, echo.Map{
        "tutor": echo.Map{
            "ref":          utils.FormatTutorRef(tutor.ID),
            "display_name": tutor.DisplayName,
            "subject":      tutor.Subject,
            "rating":       tutor.Rating,
            "rating_count": tutor.RatingCount,
        },
        "items": views,
    })
}

// GetFeedback handles GET /v1/tutors/:id/feedback and returns all
// feedback left for a tutor, newest first.
func (h *PublicHandler) GetFeedback(c echo.Context) error {
    id, ok := tutorPathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tutor id"})
    }
    items, err := h.Svc.TutorFeedback(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    type feedbackView struct {
        Rating    uint8   `json:"rating"`
        Comment   *string `json:"comment,omitempty"`
        CreatedAt string  `json:"created_at"`
    }
    views := make([]feedbackView, 0, len(items))
    for _, fb := range items {
        views = append(views, feedbackView{
            Rating:    fb.Rating,
            Comment:   fb.Comment,
            CreatedAt: fb.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// SearchTutors handles GET /v1/search/tutors.  Supported query
// parameters: name, subject, min_rating, page, page_size.  Results
// are ordered by rating, best first.
func (h *PublicHandler) SearchTutors(c echo.Context) error {
    q := repository.TutorSearchQuery{
        Name:    c.QueryParam("name"),
        Subject: c.QueryParam("subject"),
    }
    if v := c.QueryParam("min_rating"); v != "" {
        f, err := strconv.ParseFloat(v, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_rating"})
        }
        q.MinRating = f
    }
    if v := c.QueryParam("page"); v != "" {
        q.Page, _ = strconv.Atoi(v)
    }
    if v := c.QueryParam("page_size"); v != "" {
        q.PageSize, _ = strconv.Atoi(v)
    }
    items, total, err := h.Svc.SearchTutors(c.Request().Context(), q)
    if err != nil {
        return respondError(c, err)
    }
    type tutorView struct {
        Ref         string  `json:"ref"`
        DisplayName string  `json:"display_name"`
        Subject     string  `json:"subject,omitempty"`
        Rating      float64 `json:"rating"`
        RatingCount uint32  `json:"rating_count"`
        OpenSlots   int64   `json:"open_slots"`
    }
    views := make([]tutorView, 0, len(items))
    for _, t := range items {
        views = append(views, tutorView{
            Ref:         utils.FormatTutorRef(t.ID),
            DisplayName: t.DisplayName,
            Subject:     t.Subject,
            Rating:      t.Rating,
            RatingCount: t.RatingCount,
            OpenSlots:   t.OpenSlots,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": views, "total": total})
}
