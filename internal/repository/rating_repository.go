package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
)

// RatingRepo owns the feedback table and the tutor aggregate derived
// from it.  There is exactly one recomputation strategy: the
// aggregate is always rebuilt from the feedback rows.  The inline
// booking-rating path mirrors its value into a feedback row first
// and then runs the same recompute, so both capture paths converge
// on identical numbers and a session is never counted twice.
type RatingRepo struct {
    db *sql.DB
}

// NewRatingRepo returns a new RatingRepo bound to the given database.
func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// CreateFeedbackTx inserts a feedback row for a completed booking.
// The table is unique on booking_id; a duplicate insert means the
// session has already been rated and returns ErrAlreadyRated.  The
// generated id is populated on the passed record.
func (r *RatingRepo) CreateFeedbackTx(ctx context.Context, tx *sql.Tx, fb *model.Feedback) error {
    const q = `INSERT INTO feedback (booking_id, tutor_id, student_id, rating, comment)
               VALUES (?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, fb.BookingID, fb.TutorID, fb.StudentID, fb.Rating, fb.Comment)
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == 1062 { // duplicate key on booking_id
            return ErrAlreadyRated
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    fb.ID = uint64(id)
    return nil
}

// RecomputeTx rebuilds a tutor's aggregate rating from all feedback
// rows inside the caller's transaction.  Rating is the arithmetic
// mean rounded to two decimals; rating_count is the row count.  A
// tutor with no feedback ends at 0 / 0.
func (r *RatingRepo) RecomputeTx(ctx context.Context, tx *sql.Tx, tutorID uint64) error {
    const q = `UPDATE tutors
               SET rating = COALESCE((SELECT ROUND(AVG(rating), 2) FROM feedback WHERE tutor_id = ?), 0),
                   rating_count = (SELECT COUNT(*) FROM feedback WHERE tutor_id = ?)
               WHERE id = ?`
    // RowsAffected is not inspected: MySQL reports zero when the new
    // values equal the old ones, and tutor existence is validated by
    // the flow before this point.
    _, err := tx.ExecContext(ctx, q, tutorID, tutorID, tutorID)
    return err
}

// ListFeedbackByTutor returns all feedback left for a tutor, newest
// first.  Used by the public tutor view.
func (r *RatingRepo) ListFeedbackByTutor(ctx context.Context, tutorID uint64) ([]model.Feedback, error) {
    const q = `SELECT id, booking_id, tutor_id, student_id, rating, comment, created_at
               FROM feedback WHERE tutor_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, tutorID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.Feedback, 0)
    for rows.Next() {
        var fb model.Feedback
        var comment sql.NullString
        if err := rows.Scan(&fb.ID, &fb.BookingID, &fb.TutorID, &fb.StudentID, &fb.Rating, &comment, &fb.CreatedAt); err != nil {
            return nil, err
        }
        if comment.Valid {
            v := comment.String
            fb.Comment = &v
        }
        items = append(items, fb)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}
