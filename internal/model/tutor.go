package model

import "time"

// Tutor is a tutor profile row.  Rating and RatingCount are derived
// aggregates maintained by the rating recompute; they are never
// written directly by request handlers.
type Tutor struct {
    ID          uint64    // tutors.id
    UserID      uint64    // tutors.user_id
    DisplayName string    // tutors.display_name
    Subject     *string   // tutors.subject (nullable)
    Rating      float64   // tutors.rating (mean of feedback ratings)
    RatingCount uint32    // tutors.rating_count
    CreatedAt   time.Time // tutors.created_at
    UpdatedAt   time.Time // tutors.updated_at
}

// Student is a student profile row.
type Student struct {
    ID          uint64    // students.id
    UserID      uint64    // students.user_id
    DisplayName string    // students.display_name
    CreatedAt   time.Time // students.created_at
    UpdatedAt   time.Time // students.updated_at
}
