package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
)

// SlotRepo owns the tutor availability calendar and its state
// machine.  Every mutation is a single conditional UPDATE whose
// state predicate is embedded in the WHERE clause, so two actors
// racing on the same slot are serialized by the row lock and at
// most one statement reports an affected row.  The loser observes
// zero rows and must surface ErrConflict, never retry on its own.
// All timestamp columns are stored in UTC.
type SlotRepo struct {
    db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotColumns = `id, tutor_id, DATE_FORMAT(slot_date, '%Y-%m-%d'),
       TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'),
       status, reserved_by, reserved_at, booked_at, created_at, updated_at`

// scanSlot reads one slots row into a model.Slot.  The row argument
// accepts both *sql.Row and *sql.Rows.
func scanSlot(row interface{ Scan(...interface{}) error }) (*model.Slot, error) {
    var s model.Slot
    var reservedBy sql.NullInt64
    var reservedAt, bookedAt sql.NullTime
    err := row.Scan(
        &s.ID, &s.TutorID, &s.Date, &s.StartTime, &s.EndTime,
        &s.Status, &reservedBy, &reservedAt, &bookedAt,
        &s.CreatedAt, &s.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if reservedBy.Valid {
        v := uint64(reservedBy.Int64)
        s.ReservedBy = &v
    }
    if reservedAt.Valid {
        t := reservedAt.Time
        s.ReservedAt = &t
    }
    if bookedAt.Valid {
        t := bookedAt.Time
        s.BookedAt = &t
    }
    return &s, nil
}

// Create inserts a new availability slot for a tutor.  The slots
// table is unique on (tutor_id, slot_date, start_time, end_time);
// inserting a duplicate window returns ErrConflict.  Validation of
// the window itself (start before end, date not in the past) is the
// caller's responsibility.
func (r *SlotRepo) Create(ctx context.Context, slot *model.Slot) error {
    const q = `INSERT INTO slots (tutor_id, slot_date, start_time, end_time, status)
               VALUES (?, ?, ?, ?, 'FREE')`
    result, err := r.db.ExecContext(ctx, q, slot.TutorID, slot.Date, slot.StartTime, slot.EndTime)
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == 1062 { // duplicate key
            return ErrConflict
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    slot.ID = uint64(id)
    slot.Status = model.SlotFree
    return nil
}

// GetByID returns a single slot outside of any transaction.  It
// returns ErrSlotNotFound when the id does not exist.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.Slot, error) {
    s, err := scanSlot(r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrSlotNotFound
    }
    return s, err
}

// GetForUpdateTx loads a slot within the given transaction and
// locks the row with SELECT ... FOR UPDATE so that subsequent
// conditional updates in the same flow cannot race another
// transaction.  It returns ErrSlotNotFound when no row matches.
func (r *SlotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Slot, error) {
    s, err := scanSlot(tx.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = ? FOR UPDATE`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrSlotNotFound
    }
    return s, err
}

// ReserveTx transitions a slot FREE → RESERVED on behalf of a
// student.  The status check lives in the UPDATE predicate; when the
// slot is already reserved or booked the statement matches nothing
// and ErrConflict is returned.  ErrSlotNotFound is returned when the
// id does not exist at all.
func (r *SlotRepo) ReserveTx(ctx context.Context, tx *sql.Tx, slotID, studentID uint64) error {
    const q = `UPDATE slots
               SET status = 'RESERVED', reserved_by = ?, reserved_at = UTC_TIMESTAMP()
               WHERE id = ? AND status = 'FREE'`
    result, err := tx.ExecContext(ctx, q, studentID, slotID)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return r.missingOrConflictTx(ctx, tx, slotID)
    }
    return nil
}

// ReleaseTx transitions a slot RESERVED → FREE, but only when the
// releasing student is the one holding the reservation.  Any other
// state, or a hold owned by someone else, yields ErrConflict.
func (r *SlotRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, slotID, studentID uint64) error {
    const q = `UPDATE slots
               SET status = 'FREE', reserved_by = NULL, reserved_at = NULL
               WHERE id = ? AND status = 'RESERVED' AND reserved_by = ?`
    result, err := tx.ExecContext(ctx, q, slotID, studentID)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return r.missingOrConflictTx(ctx, tx, slotID)
    }
    return nil
}

// CommitBookingTx transitions a slot RESERVED → BOOKED.  It succeeds
// only when the slot is currently reserved by the same student who
// is paying for it.
func (r *SlotRepo) CommitBookingTx(ctx context.Context, tx *sql.Tx, slotID, studentID uint64) error {
    const q = `UPDATE slots
               SET status = 'BOOKED', booked_at = UTC_TIMESTAMP()
               WHERE id = ? AND status = 'RESERVED' AND reserved_by = ?`
    result, err := tx.ExecContext(ctx, q, slotID, studentID)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return r.missingOrConflictTx(ctx, tx, slotID)
    }
    return nil
}

// FreeTx returns the slot matching (tutor, date, start) to FREE from
// either RESERVED or BOOKED, clearing every reservation field.  The
// cancel and complete paths call this after the booking transition.
// It is idempotent: when no row matches, nothing happens and no
// error is reported.
func (r *SlotRepo) FreeTx(ctx context.Context, tx *sql.Tx, tutorID uint64, date, startTime string) error {
    const q = `UPDATE slots
               SET status = 'FREE', reserved_by = NULL, reserved_at = NULL, booked_at = NULL
               WHERE tutor_id = ? AND slot_date = ? AND start_time = ?
                 AND status IN ('RESERVED', 'BOOKED')`
    _, err := tx.ExecContext(ctx, q, tutorID, date, startTime)
    return err
}

// missingOrConflictTx disambiguates a zero-row conditional update:
// a missing row means ErrSlotNotFound, an existing row in the wrong
// state means ErrConflict.
func (r *SlotRepo) missingOrConflictTx(ctx context.Context, tx *sql.Tx, slotID uint64) error {
    var exists bool
    err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM slots WHERE id = ?)`, slotID).Scan(&exists)
    if err != nil {
        return err
    }
    if !exists {
        return ErrSlotNotFound
    }
    return ErrConflict
}

// ListByTutor returns all slots belonging to a tutor, optionally
// filtered to a single date.  Slots are ordered by date then start
// time.  An empty slice is returned when the tutor has no schedule.
func (r *SlotRepo) ListByTutor(ctx context.Context, tutorID uint64, date string) ([]model.Slot, error) {
    q := `SELECT ` + slotColumns + ` FROM slots WHERE tutor_id = ?`
    args := []interface{}{tutorID}
    if date != "" {
        q += ` AND slot_date = ?`
        args = append(args, date)
    }
    q += ` ORDER BY slot_date, start_time`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    slots := make([]model.Slot, 0)
    for rows.Next() {
        s, err := scanSlot(rows)
        if err != nil {
            return nil, err
        }
        slots = append(slots, *s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return slots, nil
}
