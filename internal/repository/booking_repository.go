package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
)

// BookingRepo provides CRUD operations for the booking ledger.  A
// booking row is derived from a booked slot and tracks the session
// through completion or cancellation.  Mutations that participate in
// an orchestrated flow are exposed as ...Tx methods running inside a
// caller-owned transaction; the caller must commit or roll back.
// All timestamp columns are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, tutor_id, student_id, DATE_FORMAT(booking_date, '%Y-%m-%d'),
       TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'),
       subject, status, rating, payment_ref, notes, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
    var b model.Booking
    var subject, paymentRef, notes sql.NullString
    var rating sql.NullInt64
    err := row.Scan(
        &b.ID, &b.TutorID, &b.StudentID, &b.Date, &b.StartTime, &b.EndTime,
        &subject, &b.Status, &rating, &paymentRef, &notes,
        &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if subject.Valid {
        v := subject.String
        b.Subject = &v
    }
    if rating.Valid {
        v := uint8(rating.Int64)
        b.Rating = &v
    }
    if paymentRef.Valid {
        v := paymentRef.String
        b.PaymentRef = &v
    }
    if notes.Valid {
        v := notes.String
        b.Notes = &v
    }
    return &b, nil
}

// CreateFromSlotTx inserts a booking derived from a slot that has
// just transitioned to BOOKED in the same transaction.  Date, start
// and end are copied from the slot so the ledger row survives later
// schedule edits.  The booking is created directly in CONFIRMED
// status; the generated id is populated on the returned value.
func (r *BookingRepo) CreateFromSlotTx(ctx context.Context, tx *sql.Tx, slot *model.Slot, studentID uint64, subject, paymentRef *string) (*model.Booking, error) {
    const q = `INSERT INTO bookings (tutor_id, student_id, booking_date, start_time, end_time, subject, status, payment_ref)
               VALUES (?, ?, ?, ?, ?, ?, 'CONFIRMED', ?)`
    result, err := tx.ExecContext(ctx, q, slot.TutorID, studentID, slot.Date, slot.StartTime, slot.EndTime, subject, paymentRef)
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    // Query back the full row to populate timestamps and defaults.
    b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetByID returns a single booking outside of any transaction.  It
// returns ErrBookingNotFound when the id does not exist.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetForUpdateTx loads a booking within a transaction and locks the
// row with SELECT ... FOR UPDATE.  Flows that check a precondition
// and then mutate (status transitions, the rating null-check) must
// go through this method so two concurrent callers cannot both pass
// the check.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetByWindowForUpdateTx resolves a booking by the (tutor, date,
// start) triple, restricted to non-terminal statuses, and locks the
// row.  The cancel flow uses this when the caller identifies the
// session by its calendar position instead of the booking id.
func (r *BookingRepo) GetByWindowForUpdateTx(ctx context.Context, tx *sql.Tx, tutorID uint64, date, startTime string) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE tutor_id = ? AND booking_date = ? AND start_time = ?
                 AND status IN ('PENDING', 'CONFIRMED')
               FOR UPDATE`
    b, err := scanBooking(tx.QueryRowContext(ctx, q, tutorID, date, startTime))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// UpdateStatusTx transitions a booking to newStatus.  Only
// non-terminal rows can move; a booking already completed or
// cancelled matches zero rows and yields ErrConflict.  Authorization
// (owning tutor or admin) is enforced by the service before this
// call.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, newStatus string) error {
    const q = `UPDATE bookings SET status = ?
               WHERE id = ? AND status IN ('PENDING', 'CONFIRMED')`
    result, err := tx.ExecContext(ctx, q, newStatus, bookingID)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// SetRatingTx writes the inline rating onto a booking.  The caller
// must already hold the row lock via GetForUpdateTx and have checked
// status and ownership; the rating IS NULL predicate here is the
// final guard making the write happen at most once.
func (r *BookingRepo) SetRatingTx(ctx context.Context, tx *sql.Tx, bookingID uint64, rating uint8) error {
    const q = `UPDATE bookings SET rating = ? WHERE id = ? AND rating IS NULL`
    result, err := tx.ExecContext(ctx, q, rating, bookingID)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrAlreadyRated
    }
    return nil
}

// DeleteTx removes a booking row.  The matching slot must be freed
// in the same transaction by the caller.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
    result, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, bookingID)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrBookingNotFound
    }
    return nil
}

// UpdateDetails applies an allow-listed partial update to a booking
// owned by the given tutor.  Only the fields carried by
// model.BookingUpdate can ever be written through this path; the SET
// clause is assembled from the explicit field list, never from an
// open-ended key/value map.  A nil update is a no-op.
func (r *BookingRepo) UpdateDetails(ctx context.Context, bookingID, tutorID uint64, upd model.BookingUpdate) error {
    sets := make([]string, 0, 2)
    args := make([]interface{}, 0, 4)
    if upd.Subject != nil {
        sets = append(sets, "subject = ?")
        args = append(args, *upd.Subject)
    }
    if upd.Notes != nil {
        sets = append(sets, "notes = ?")
        args = append(args, *upd.Notes)
    }
    if len(sets) == 0 {
        return nil
    }
    q := `UPDATE bookings SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND tutor_id = ?`
    args = append(args, bookingID, tutorID)
    result, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish a missing booking from one owned by another tutor.
        var ownerID uint64
        err := r.db.QueryRowContext(ctx, `SELECT tutor_id FROM bookings WHERE id = ?`, bookingID).Scan(&ownerID)
        if errors.Is(err, sql.ErrNoRows) {
            return ErrBookingNotFound
        }
        if err != nil {
            return err
        }
        if ownerID != tutorID {
            return ErrForbidden
        }
    }
    return nil
}

// BookingDetail is a ledger row joined with the display names of
// both parties.  It is returned by the listing queries for students
// and tutors.
type BookingDetail struct {
    ID          uint64  `json:"id"`
    TutorID     uint64  `json:"tutor_id"`
    TutorName   string  `json:"tutor_name"`
    StudentID   uint64  `json:"student_id"`
    StudentName string  `json:"student_name"`
    Date        string  `json:"date"`
    StartTime   string  `json:"start_time"`
    EndTime     string  `json:"end_time"`
    Subject     *string `json:"subject,omitempty"`
    Status      string  `json:"status"`
    Rating      *uint8  `json:"rating,omitempty"`
    Notes       *string `json:"notes,omitempty"`
}

const bookingDetailQuery = `SELECT b.id, b.tutor_id, t.display_name, b.student_id, s.display_name,
       DATE_FORMAT(b.booking_date, '%Y-%m-%d'),
       TIME_FORMAT(b.start_time, '%H:%i:%s'), TIME_FORMAT(b.end_time, '%H:%i:%s'),
       b.subject, b.status, b.rating, b.notes
FROM bookings b
JOIN tutors t ON t.id = b.tutor_id
JOIN students s ON s.id = b.student_id`

func (r *BookingRepo) listDetails(ctx context.Context, where string, arg uint64) ([]BookingDetail, error) {
    q := bookingDetailQuery + " " + where + " ORDER BY b.booking_date DESC, b.start_time DESC"
    rows, err := r.db.QueryContext(ctx, q, arg)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]BookingDetail, 0)
    for rows.Next() {
        var d BookingDetail
        var subject, notes sql.NullString
        var rating sql.NullInt64
        if err := rows.Scan(
            &d.ID, &d.TutorID, &d.TutorName, &d.StudentID, &d.StudentName,
            &d.Date, &d.StartTime, &d.EndTime,
            &subject, &d.Status, &rating, &notes,
        ); err != nil {
            return nil, err
        }
        if subject.Valid {
            v := subject.String
            d.Subject = &v
        }
        if rating.Valid {
            v := uint8(rating.Int64)
            d.Rating = &v
        }
        if notes.Valid {
            v := notes.String
            d.Notes = &v
        }
        details = append(details, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}

// ListByStudent returns all bookings made by a student, newest first.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID uint64) ([]BookingDetail, error) {
    return r.listDetails(ctx, "WHERE b.student_id = ?", studentID)
}

// ListByTutor returns all bookings on a tutor's ledger, newest first.
func (r *BookingRepo) ListByTutor(ctx context.Context, tutorID uint64) ([]BookingDetail, error) {
    return r.listDetails(ctx, "WHERE b.tutor_id = ?", tutorID)
}
