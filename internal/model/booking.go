package model

import "time"

// Booking status values.  CONFIRMED is assigned at creation when a
// reserved slot is paid for.  COMPLETED and CANCELLED are terminal;
// both transitions free the matching slot.
const (
    BookingPending   = "PENDING"
    BookingConfirmed = "CONFIRMED"
    BookingCompleted = "COMPLETED"
    BookingCancelled = "CANCELLED"
)

// Booking records a confirmed tutoring session created from a booked
// slot.  Date and times are copied from the slot at booking time so
// the row stays meaningful even if the schedule is later edited.
// Rating is settable at most once, and only while the booking is
// COMPLETED.
//
// Fields:
//  ID         – primary key identifier.
//  TutorID    – tutor delivering the session.
//  StudentID  – student who booked it.
//  Date       – session date, copied from the slot.
//  StartTime  – session start, copied from the slot.
//  EndTime    – session end, copied from the slot.
//  Subject    – optional subject label.
//  Status     – PENDING, CONFIRMED, COMPLETED or CANCELLED.
//  Rating     – inline 1–5 rating (nullable, write-once).
//  PaymentRef – opaque caller-supplied payment label (nullable).
//  Notes      – free-form notes (nullable).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Booking struct {
    ID         uint64    // bookings.id
    TutorID    uint64    // bookings.tutor_id
    StudentID  uint64    // bookings.student_id
    Date       string    // bookings.booking_date (YYYY-MM-DD)
    StartTime  string    // bookings.start_time
    EndTime    string    // bookings.end_time
    Subject    *string   // bookings.subject (nullable)
    Status     string    // bookings.status
    Rating     *uint8    // bookings.rating (nullable)
    PaymentRef *string   // bookings.payment_ref (nullable)
    Notes      *string   // bookings.notes (nullable)
    CreatedAt  time.Time // bookings.created_at
    UpdatedAt  time.Time // bookings.updated_at
}

// BookingUpdate is the allow-listed partial update applied by
// PATCH /v1/bookings/:id.  Only the fields present here can ever be
// written through that path; a nil pointer leaves the column alone.
type BookingUpdate struct {
    Subject *string
    Notes   *string
}
