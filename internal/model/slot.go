package model

import "time"

// Slot status values.  A slot moves FREE → RESERVED → BOOKED and
// returns to FREE when the matching booking is completed or
// cancelled, or when a reservation is released before payment.
const (
    SlotFree     = "FREE"
    SlotReserved = "RESERVED"
    SlotBooked   = "BOOKED"
)

// Slot is one tutor availability window offered for booking.  The
// combination (tutor, date, start, end) is unique.  ReservedBy is
// set exactly while the slot is RESERVED or BOOKED and identifies
// the student who holds it.
//
// Fields:
//  ID         – primary key identifier.
//  TutorID    – tutor offering the window.
//  Date       – calendar date of the window.
//  StartTime  – wall-clock start, "HH:MM:SS".
//  EndTime    – wall-clock end, "HH:MM:SS".
//  Status     – FREE, RESERVED or BOOKED.
//  ReservedBy – student holding the slot (nullable).
//  ReservedAt – when the hold was taken (nullable).
//  BookedAt   – when the hold was converted to a booking (nullable).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Slot struct {
    ID         uint64     // slots.id
    TutorID    uint64     // slots.tutor_id
    Date       string     // slots.slot_date (YYYY-MM-DD)
    StartTime  string     // slots.start_time
    EndTime    string     // slots.end_time
    Status     string     // slots.status
    ReservedBy *uint64    // slots.reserved_by (nullable)
    ReservedAt *time.Time // slots.reserved_at (nullable)
    BookedAt   *time.Time // slots.booked_at (nullable)
    CreatedAt  time.Time  // slots.created_at
    UpdatedAt  time.Time  // slots.updated_at
}
