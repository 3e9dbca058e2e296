package model

import "time"

// Feedback is a rating plus optional comment tied 1:1 to a completed
// booking.  The feedback table is the source of truth for the tutor
// aggregate: the inline Booking.Rating path mirrors its value into a
// feedback row before the recompute runs, so a session can never be
// counted twice.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – completed booking being rated (unique).
//  TutorID   – tutor receiving the rating.
//  StudentID – student issuing the rating.
//  Rating    – 1–5.
//  Comment   – optional free-form text.
//  CreatedAt – creation timestamp.
type Feedback struct {
    ID        uint64    // feedback.id
    BookingID uint64    // feedback.booking_id
    TutorID   uint64    // feedback.tutor_id
    StudentID uint64    // feedback.student_id
    Rating    uint8     // feedback.rating
    Comment   *string   // feedback.comment (nullable)
    CreatedAt time.Time // feedback.created_at
}
