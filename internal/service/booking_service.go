package service

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
    "github.com/iliyamo/tutor-slot-booking/internal/queue"
    "github.com/iliyamo/tutor-slot-booking/internal/repository"
)

// ErrValidation marks request-shaped failures: malformed or missing
// fields, a schedule window that ends before it starts, a date in
// the past.  Wrapped errors carry the human-readable reason.
var ErrValidation = errors.New("validation")

// Actor identifies the authenticated caller of a flow, as resolved
// from the bearer credential by the session middleware.
type Actor struct {
    UserID uint64
    Role   string
}

// SlotStore is the slice of the slot repository the orchestrator
// depends on.  *repository.SlotRepo satisfies it.
type SlotStore interface {
    Create(ctx context.Context, slot *model.Slot) error
    GetByID(ctx context.Context, id uint64) (*model.Slot, error)
    GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Slot, error)
    ReserveTx(ctx context.Context, tx *sql.Tx, slotID, studentID uint64) error
    ReleaseTx(ctx context.Context, tx *sql.Tx, slotID, studentID uint64) error
    CommitBookingTx(ctx context.Context, tx *sql.Tx, slotID, studentID uint64) error
    FreeTx(ctx context.Context, tx *sql.Tx, tutorID uint64, date, startTime string) error
    ListByTutor(ctx context.Context, tutorID uint64, date string) ([]model.Slot, error)
}

// BookingLedger is the slice of the booking repository the
// orchestrator depends on.  *repository.BookingRepo satisfies it.
type BookingLedger interface {
    CreateFromSlotTx(ctx context.Context, tx *sql.Tx, slot *model.Slot, studentID uint64, subject, paymentRef *string) (*model.Booking, error)
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error)
    GetByWindowForUpdateTx(ctx context.Context, tx *sql.Tx, tutorID uint64, date, startTime string) (*model.Booking, error)
    UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, newStatus string) error
    SetRatingTx(ctx context.Context, tx *sql.Tx, bookingID uint64, rating uint8) error
    DeleteTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error
    UpdateDetails(ctx context.Context, bookingID, tutorID uint64, upd model.BookingUpdate) error
    ListByStudent(ctx context.Context, studentID uint64) ([]repository.BookingDetail, error)
    ListByTutor(ctx context.Context, tutorID uint64) ([]repository.BookingDetail, error)
}

// RatingStore is the slice of the rating repository the orchestrator
// depends on.  *repository.RatingRepo satisfies it.
type RatingStore interface {
    CreateFeedbackTx(ctx context.Context, tx *sql.Tx, fb *model.Feedback) error
    RecomputeTx(ctx context.Context, tx *sql.Tx, tutorID uint64) error
    ListFeedbackByTutor(ctx context.Context, tutorID uint64) ([]model.Feedback, error)
}

// ProfileResolver adapts the external profile component.
// *repository.ProfileRepo satisfies it.
type ProfileResolver interface {
    ResolveStudent(ctx context.Context, userID uint64) (*model.Student, error)
    ResolveTutor(ctx context.Context, userID uint64) (*model.Tutor, error)
    GetTutorByID(ctx context.Context, tutorID uint64) (*model.Tutor, error)
    StudentUserID(ctx context.Context, studentID uint64) (uint64, error)
    SearchTutors(ctx context.Context, q repository.TutorSearchQuery) ([]repository.PublicTutorRow, int64, error)
}

// BookingService coordinates the slot store, booking ledger and
// rating aggregator inside single atomic transactions.  Every flow
// is all-or-nothing: any step failure after a partial mutation rolls
// the whole transaction back, so no other transaction can ever
// observe an intermediate state such as a booked slot without a
// ledger row.  Cross-instance safety comes entirely from the
// database's row locks; the service holds no mutable state of its
// own.
type BookingService struct {
    db       *sql.DB
    slots    SlotStore
    bookings BookingLedger
    ratings  RatingStore
    profiles ProfileResolver
    notifier Notifier
    logger   *zap.Logger
}

// NewBookingService wires the orchestrator.  All dependencies must
// be non-nil; a nil notifier or logger panics at construction rather
// than mid-flow.
func NewBookingService(db *sql.DB, slots SlotStore, bookings BookingLedger, ratings RatingStore, profiles ProfileResolver, notifier Notifier, logger *zap.Logger) *BookingService {
    if db == nil || slots == nil || bookings == nil || ratings == nil || profiles == nil || notifier == nil || logger == nil {
        panic("nil dependency passed to NewBookingService")
    }
    return &BookingService{
        db:       db,
        slots:    slots,
        bookings: bookings,
        ratings:  ratings,
        profiles: profiles,
        notifier: notifier,
        logger:   logger,
    }
}

// normalizeClock accepts "HH:MM" or "HH:MM:SS" and returns the
// canonical "HH:MM:SS" form.
func normalizeClock(v string) (string, error) {
    if t, err := time.Parse("15:04:05", v); err == nil {
        return t.Format("15:04:05"), nil
    }
    if t, err := time.Parse("15:04", v); err == nil {
        return t.Format("15:04:05"), nil
    }
    return "", fmt.Errorf("%w: invalid time %q, expected HH:MM or HH:MM:SS", ErrValidation, v)
}

// validateWindow checks and normalizes an availability window: the
// date must parse and not lie in the past (UTC), and the start must
// be strictly before the end.  A zero-length window is rejected.
func validateWindow(date, startTime, endTime string) (string, string, string, error) {
    d, err := time.Parse("2006-01-02", date)
    if err != nil {
        return "", "", "", fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, date)
    }
    today := time.Now().UTC().Truncate(24 * time.Hour)
    if d.Before(today) {
        return "", "", "", fmt.Errorf("%w: date is in the past", ErrValidation)
    }
    start, err := normalizeClock(startTime)
    if err != nil {
        return "", "", "", err
    }
    end, err := normalizeClock(endTime)
    if err != nil {
        return "", "", "", err
    }
    if start >= end {
        return "", "", "", fmt.Errorf("%w: start_time must be before end_time", ErrValidation)
    }
    return d.Format("2006-01-02"), start, end, nil
}

// begin opens a transaction with the rollback-unless-committed
// guard used by every flow.  The returned commit function commits
// and disarms the guard.
func (s *BookingService) begin(ctx context.Context) (*sql.Tx, func() error, func(), error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, nil, nil, err
    }
    committed := false
    commit := func() error {
        if err := tx.Commit(); err != nil {
            return err
        }
        committed = true
        return nil
    }
    cleanup := func() {
        if !committed {
            _ = tx.Rollback()
        }
    }
    return tx, commit, cleanup, nil
}

// AddSchedule creates a new availability slot for the acting tutor.
// Only tutors may publish schedule entries.  The window is validated
// and a duplicate (date, start, end) window yields ErrConflict.
func (s *BookingService) AddSchedule(ctx context.Context, actor Actor, date, startTime, endTime string) (*model.Slot, error) {
    if actor.Role != model.RoleTutor {
        return nil, repository.ErrForbidden
    }
    tutor, err := s.profiles.ResolveTutor(ctx, actor.UserID)
    if err != nil {
        return nil, err
    }
    date, startTime, endTime, err = validateWindow(date, startTime, endTime)
    if err != nil {
        return nil, err
    }
    slot := &model.Slot{
        TutorID:   tutor.ID,
        Date:      date,
        StartTime: startTime,
        EndTime:   endTime,
    }
    if err := s.slots.Create(ctx, slot); err != nil {
        return nil, err
    }
    s.logger.Info("schedule slot created",
        zap.Uint64("slot_id", slot.ID),
        zap.Uint64("tutor_id", tutor.ID),
        zap.String("date", date),
        zap.String("start", startTime),
    )
    return slot, nil
}

// ListSchedule returns the acting tutor's own slots, optionally for
// one date.
func (s *BookingService) ListSchedule(ctx context.Context, actor Actor, date string) ([]model.Slot, error) {
    if actor.Role != model.RoleTutor {
        return nil, repository.ErrForbidden
    }
    tutor, err := s.profiles.ResolveTutor(ctx, actor.UserID)
    if err != nil {
        return nil, err
    }
    return s.slots.ListByTutor(ctx, tutor.ID, date)
}

// Availability returns a tutor's slots for public browsing along
// with the tutor profile (name, subject, aggregate rating).
func (s *BookingService) Availability(ctx context.Context, tutorID uint64, date string) (*model.Tutor, []model.Slot, error) {
    tutor, err := s.profiles.GetTutorByID(ctx, tutorID)
    if err != nil {
        return nil, nil, err
    }
    slots, err := s.slots.ListByTutor(ctx, tutorID, date)
    if err != nil {
        return nil, nil, err
    }
    return tutor, slots, nil
}

// Reserve places a temporary hold on a free slot for the acting
// student.  Exactly one of any number of concurrent callers wins;
// the rest receive ErrConflict from the conditional update.
func (s *BookingService) Reserve(ctx context.Context, actor Actor, slotID uint64) error {
    student, err := s.requireStudent(ctx, actor)
    if err != nil {
        return err
    }
    tx, commit, cleanup, err := s.begin(ctx)
    if err != nil {
        return err
    }
    defer cleanup()
    if err := s.slots.ReserveTx(ctx, tx, slotID, student.ID); err != nil {
        return err
    }
    if err := commit(); err != nil {
        return err
    }
    s.logger.Info("slot reserved",
        zap.Uint64("slot_id", slotID),
        zap.Uint64("student_id", student.ID),
    )
    return nil
}

// Release drops a hold previously taken by the same student,
// returning the slot to FREE.
func (s *BookingService) Release(ctx context.Context, actor Actor, slotID uint64) error {
    student, err := s.requireStudent(ctx, actor)
    if err != nil {
        return err
    }
    tx, commit, cleanup, err := s.begin(ctx)
    if err != nil {
        return err
    }
    defer cleanup()
    if err := s.slots.ReleaseTx(ctx, tx, slotID, student.ID); err != nil {
        return err
    }
    if err := commit(); err != nil {
        return err
    }
    s.logger.Info("slot released",
        zap.Uint64("slot_id", slotID),
        zap.Uint64("student_id", student.ID),
    )
    return nil
}

// Book converts the acting student's reservation into a confirmed
// booking.  The slot transitions RESERVED → BOOKED and the ledger
// row is created in the same transaction, copying the slot's date
// and times.  Payment happens outside this service; paymentRef is an
// opaque label supplied by the caller.
func (s *BookingService) Book(ctx context.Context, actor Actor, slotID uint64, subject, paymentRef *string) (*model.Booking, error) {
    student, err := s.requireStudent(ctx, actor)
    if err != nil {
        return nil, err
    }
    tx, commit, cleanup, err := s.begin(ctx)
    if err != nil {
        return nil, err
    }
    defer cleanup()
    slot, err := s.slots.GetForUpdateTx(ctx, tx, slotID)
    if err != nil {
        return nil, err
    }
    if err := s.slots.CommitBookingTx(ctx, tx, slotID, student.ID); err != nil {
        return nil, err
    }
    booking, err := s.bookings.CreateFromSlotTx(ctx, tx, slot, student.ID, subject, paymentRef)
    if err != nil {
        return nil, err
    }
    if err := commit(); err != nil {
        return nil, err
    }
    s.logger.Info("booking created",
        zap.Uint64("booking_id", booking.ID),
        zap.Uint64("slot_id", slotID),
        zap.Uint64("student_id", student.ID),
        zap.Uint64("tutor_id", slot.TutorID),
    )
    // Tell the tutor, best effort: the booking is already durable.
    if tutor, terr := s.profiles.GetTutorByID(ctx, slot.TutorID); terr == nil {
        _ = s.notifier.Notify(ctx, tutor.UserID, actor.UserID, booking.ID,
            fmt.Sprintf("New booking for %s %s", booking.Date, booking.StartTime), queue.NotificationTypeBooking)
    }
    return booking, nil
}

// CancelRef identifies the session to cancel: by booking id, by the
// slot a reservation is held on, or by the (date, start) position on
// the acting tutor's calendar.  Exactly one form must be set.
type CancelRef struct {
    BookingID *uint64
    SlotID    *uint64
    Date      string
    StartTime string
}

// Cancel tears a session down.  Authorization is restricted to the
// tutor who owns it, or an admin.  A booked session moves to
// CANCELLED and its slot returns to FREE; a reservation that never
// became a booking is simply released.  When the acting role is
// tutor, the student is notified after commit.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, ref CancelRef) error {
    tutor, err := s.requireTutorOrAdmin(ctx, actor)
    if err != nil {
        return err
    }
    tx, commit, cleanup, err := s.begin(ctx)
    if err != nil {
        return err
    }
    defer cleanup()

    var booking *model.Booking
    switch {
    case ref.BookingID != nil:
        booking, err = s.bookings.GetForUpdateTx(ctx, tx, *ref.BookingID)
        if err != nil {
            return err
        }
    case ref.SlotID != nil:
        slot, err := s.slots.GetForUpdateTx(ctx, tx, *ref.SlotID)
        if err != nil {
            return err
        }
        if !s.ownsTutorResource(actor, tutor, slot.TutorID) {
            return repository.ErrForbidden
        }
        if slot.Status == model.SlotReserved {
            // Reservation without a ledger row: freeing the slot is the
            // whole cancellation.
            reservedBy := slot.ReservedBy
            if err := s.slots.FreeTx(ctx, tx, slot.TutorID, slot.Date, slot.StartTime); err != nil {
                return err
            }
            if err := commit(); err != nil {
                return err
            }
            s.logger.Info("reservation cancelled",
                zap.Uint64("slot_id", slot.ID),
                zap.Uint64("tutor_id", slot.TutorID),
            )
            s.notifyStudentCancelled(ctx, actor, reservedBy, 0)
            return nil
        }
        booking, err = s.bookings.GetByWindowForUpdateTx(ctx, tx, slot.TutorID, slot.Date, slot.StartTime)
        if err != nil {
            return err
        }
    case ref.Date != "" && ref.StartTime != "":
        if tutor == nil {
            // Admins must reference a concrete booking or slot.
            return fmt.Errorf("%w: booking_id or slot_id is required", ErrValidation)
        }
        start, err2 := normalizeClock(ref.StartTime)
        if err2 != nil {
            return err2
        }
        booking, err = s.bookings.GetByWindowForUpdateTx(ctx, tx, tutor.ID, ref.Date, start)
        if err != nil {
            return err
        }
    default:
        return fmt.Errorf("%w: booking_id, slot_id or (date, start_time) is required", ErrValidation)
    }

    if !s.ownsTutorResource(actor, tutor, booking.TutorID) {
        return repository.ErrForbidden
    }
    if err := s.bookings.UpdateStatusTx(ctx, tx, booking.ID, model.BookingCancelled); err != nil {
        return err
    }
    if err := s.slots.FreeTx(ctx, tx, booking.TutorID, booking.Date, booking.StartTime); err != nil {
        return err
    }
    if err := commit(); err != nil {
        return err
    }
    s.logger.Info("booking cancelled",
        zap.Uint64("booking_id", booking.ID),
        zap.Uint64("tutor_id", booking.TutorID),
        zap.String("actor_role", actor.Role),
    )
    studentID := booking.StudentID
    s.notifyStudentCancelled(ctx, actor, &studentID, booking.ID)
    return nil
}

// Complete marks a booking COMPLETED and frees the matching slot.
// Only the owning tutor or an admin may complete a session; the
// student is notified when the acting role is tutor.
func (s *BookingService) Complete(ctx context.Context, actor Actor, bookingID uint64) error {
    tutor, err := s.requireTutorOrAdmin(ctx, actor)
    if err != nil {
        return err
    }
    tx, commit, cleanup, err := s.begin(ctx)
    if err != nil {
        return err
    }
    defer cleanup()
    booking, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if !s.ownsTutorResource(actor, tutor, booking.TutorID) {
        return repository.ErrForbidden
    }
    if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, model.BookingCompleted); err != nil {
        return err
    }
    if err := s.slots.FreeTx(ctx, tx, booking.TutorID, booking.Date, booking.StartTime); err != nil {
        return err
    }
    if err := commit(); err != nil {
        return err
    }
    s.logger.Info("booking completed",
        zap.Uint64("booking_id", bookingID),
        zap.Uint64("tutor_id", booking.TutorID),
    )
    if actor.Role == model.RoleTutor {
        if userID, uerr := s.profiles.StudentUserID(ctx, booking.StudentID); uerr == nil {
            _ = s.notifier.Notify(ctx, userID, actor.UserID, bookingID,
                "Your session was marked completed", queue.NotificationTypeBooking)
        }
    }
    return nil
}

// DeleteBooking removes a ledger row entirely and frees its slot in
// one transaction.  Same authorization as Cancel.
func (s *BookingService) DeleteBooking(ctx context.Context, actor Actor, bookingID uint64) error {
    tutor, err := s.requireTutorOrAdmin(ctx, actor)
    if err != nil {
        return err
    }
    tx, commit, cleanup, err := s.begin(ctx)
    if err != nil {
        return err
    }
    defer cleanup()
    booking, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if !s.ownsTutorResource(actor, tutor, booking.TutorID) {
        return repository.ErrForbidden
    }
    if err := s.bookings.DeleteTx(ctx, tx, bookingID); err != nil {
        return err
    }
    if err := s.slots.FreeTx(ctx, tx, booking.TutorID, booking.Date, booking.StartTime); err != nil {
        return err
    }
    if err := commit(); err != nil {
        return err
    }
    s.logger.Info("booking deleted",
        zap.Uint64("booking_id", bookingID),
        zap.Uint64("tutor_id", booking.TutorID),
    )
    return nil
}

// Rate records the inline 1–5 rating on a booking.  See rate for
// the shared semantics with SubmitFeedback.
func (s *BookingService) Rate(ctx context.Context, actor Actor, bookingID uint64, rating uint8) error {
    return s.rate(ctx, actor, bookingID, rating, nil)
}

// SubmitFeedback records a rating with an optional comment through
// the feedback path.
func (s *BookingService) SubmitFeedback(ctx context.Context, actor Actor, bookingID uint64, rating uint8, comment *string) error {
    return s.rate(ctx, actor, bookingID, rating, comment)
}

// rate is the single implementation behind both rating-capture
// paths.  The booking row is locked before the write-once check, the
// rating is mirrored into a feedback row (the aggregate's source of
// truth), and the tutor aggregate is recomputed, all in one
// transaction, so a second concurrent rater blocks on the lock and
// then fails the write-once guard with ErrAlreadyRated.
func (s *BookingService) rate(ctx context.Context, actor Actor, bookingID uint64, rating uint8, comment *string) error {
    if rating < 1 || rating > 5 {
        return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
    }
    student, err := s.requireStudent(ctx, actor)
    if err != nil {
        return err
    }
    tx, commit, cleanup, err := s.begin(ctx)
    if err != nil {
        return err
    }
    defer cleanup()
    booking, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if booking.StudentID != student.ID {
        return repository.ErrForbidden
    }
    if booking.Status != model.BookingCompleted {
        return repository.ErrConflict
    }
    if err := s.bookings.SetRatingTx(ctx, tx, bookingID, rating); err != nil {
        return err
    }
    fb := &model.Feedback{
        BookingID: bookingID,
        TutorID:   booking.TutorID,
        StudentID: student.ID,
        Rating:    rating,
        Comment:   comment,
    }
    if err := s.ratings.CreateFeedbackTx(ctx, tx, fb); err != nil {
        return err
    }
    if err := s.ratings.RecomputeTx(ctx, tx, booking.TutorID); err != nil {
        return err
    }
    if err := commit(); err != nil {
        return err
    }
    s.logger.Info("booking rated",
        zap.Uint64("booking_id", bookingID),
        zap.Uint64("tutor_id", booking.TutorID),
        zap.Uint8("rating", rating),
    )
    if tutor, terr := s.profiles.GetTutorByID(ctx, booking.TutorID); terr == nil {
        _ = s.notifier.Notify(ctx, tutor.UserID, actor.UserID, bookingID,
            fmt.Sprintf("You received a %d-star rating", rating), queue.NotificationTypeFeedback)
    }
    return nil
}

// UpdateBooking applies the allow-listed partial update (subject,
// notes) to a booking owned by the acting tutor.
func (s *BookingService) UpdateBooking(ctx context.Context, actor Actor, bookingID uint64, upd model.BookingUpdate) error {
    if actor.Role != model.RoleTutor {
        return repository.ErrForbidden
    }
    tutor, err := s.profiles.ResolveTutor(ctx, actor.UserID)
    if err != nil {
        return err
    }
    return s.bookings.UpdateDetails(ctx, bookingID, tutor.ID, upd)
}

// MyBookings lists the acting student's bookings, newest first.
func (s *BookingService) MyBookings(ctx context.Context, actor Actor) ([]repository.BookingDetail, error) {
    student, err := s.requireStudent(ctx, actor)
    if err != nil {
        return nil, err
    }
    return s.bookings.ListByStudent(ctx, student.ID)
}

// TutorBookings lists the acting tutor's ledger, newest first.
func (s *BookingService) TutorBookings(ctx context.Context, actor Actor) ([]repository.BookingDetail, error) {
    if actor.Role != model.RoleTutor {
        return nil, repository.ErrForbidden
    }
    tutor, err := s.profiles.ResolveTutor(ctx, actor.UserID)
    if err != nil {
        return nil, err
    }
    return s.bookings.ListByTutor(ctx, tutor.ID)
}

// TutorFeedback lists all feedback left for a tutor.
func (s *BookingService) TutorFeedback(ctx context.Context, tutorID uint64) ([]model.Feedback, error) {
    if _, err := s.profiles.GetTutorByID(ctx, tutorID); err != nil {
        return nil, err
    }
    return s.ratings.ListFeedbackByTutor(ctx, tutorID)
}

// SearchTutors returns a page of tutors matching the filters.  Page
// and page size are clamped into a sane range before they reach the
// store.
func (s *BookingService) SearchTutors(ctx context.Context, q repository.TutorSearchQuery) ([]repository.PublicTutorRow, int64, error) {
    if q.Page < 1 {
        q.Page = 1
    }
    if q.PageSize < 1 {
        q.PageSize = 20
    }
    if q.PageSize > 100 {
        q.PageSize = 100
    }
    if q.MinRating < 0 || q.MinRating > 5 {
        return nil, 0, fmt.Errorf("%w: min_rating must be between 0 and 5", ErrValidation)
    }
    return s.profiles.SearchTutors(ctx, q)
}

// requireStudent enforces the STUDENT role and resolves the profile.
func (s *BookingService) requireStudent(ctx context.Context, actor Actor) (*model.Student, error) {
    if actor.Role != model.RoleStudent {
        return nil, repository.ErrForbidden
    }
    return s.profiles.ResolveStudent(ctx, actor.UserID)
}

// requireTutorOrAdmin resolves the tutor profile for tutors and
// returns nil for admins, who may act on any booking.
func (s *BookingService) requireTutorOrAdmin(ctx context.Context, actor Actor) (*model.Tutor, error) {
    switch actor.Role {
    case model.RoleTutor:
        return s.profiles.ResolveTutor(ctx, actor.UserID)
    case model.RoleAdmin:
        return nil, nil
    default:
        return nil, repository.ErrForbidden
    }
}

// ownsTutorResource reports whether the actor may mutate a resource
// belonging to ownerTutorID.  Admins always may; tutors only their
// own.
func (s *BookingService) ownsTutorResource(actor Actor, tutor *model.Tutor, ownerTutorID uint64) bool {
    if actor.Role == model.RoleAdmin {
        return true
    }
    return tutor != nil && tutor.ID == ownerTutorID
}

// notifyStudentCancelled sends the post-cancel notification when the
// actor is a tutor and the student is known.  Best effort only.
func (s *BookingService) notifyStudentCancelled(ctx context.Context, actor Actor, studentID *uint64, bookingID uint64) {
    if actor.Role != model.RoleTutor || studentID == nil {
        return
    }
    userID, err := s.profiles.StudentUserID(ctx, *studentID)
    if err != nil {
        return
    }
    _ = s.notifier.Notify(ctx, userID, actor.UserID, bookingID,
        "Your session was cancelled by the tutor", queue.NotificationTypeBooking)
}
