package service

import (
    "context"
    "database/sql"
    "database/sql/driver"
    "errors"
    "sync"
    "testing"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
    "github.com/iliyamo/tutor-slot-booking/internal/repository"
)

// inertDriver satisfies database/sql with no-op transactions so the
// orchestrator's begin/commit/rollback plumbing runs against the
// in-memory fakes below.
type inertDriver struct{}

func (inertDriver) Open(string) (driver.Conn, error) { return inertConn{}, nil }

type inertConn struct{}

func (inertConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (inertConn) Close() error                        { return nil }
func (inertConn) Begin() (driver.Tx, error)           { return inertTx{}, nil }

type inertTx struct{}

func (inertTx) Commit() error   { return nil }
func (inertTx) Rollback() error { return nil }

var registerInert sync.Once

func inertDB(t *testing.T) *sql.DB {
    t.Helper()
    registerInert.Do(func() { sql.Register("inert", inertDriver{}) })
    db, err := sql.Open("inert", "")
    if err != nil {
        t.Fatalf("open inert db: %v", err)
    }
    return db
}

type fakeSlots struct {
    mu    sync.Mutex
    seq   uint64
    slots map[uint64]*model.Slot
}

func newFakeSlots() *fakeSlots { return &fakeSlots{slots: map[uint64]*model.Slot{}} }

func (f *fakeSlots) Create(_ context.Context, slot *model.Slot) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, s := range f.slots {
        if s.TutorID == slot.TutorID && s.Date == slot.Date && s.StartTime == slot.StartTime && s.EndTime == slot.EndTime {
            return repository.ErrConflict
        }
    }
    f.seq++
    slot.ID = f.seq
    slot.Status = model.SlotFree
    cp := *slot
    f.slots[slot.ID] = &cp
    return nil
}

func (f *fakeSlots) get(id uint64) (*model.Slot, error) {
    s, ok := f.slots[id]
    if !ok {
        return nil, repository.ErrSlotNotFound
    }
    cp := *s
    return &cp, nil
}

func (f *fakeSlots) GetByID(_ context.Context, id uint64) (*model.Slot, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.get(id)
}

func (f *fakeSlots) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Slot, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.get(id)
}

func (f *fakeSlots) ReserveTx(_ context.Context, _ *sql.Tx, slotID, studentID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    s, ok := f.slots[slotID]
    if !ok {
        return repository.ErrSlotNotFound
    }
    if s.Status != model.SlotFree {
        return repository.ErrConflict
    }
    now := time.Now()
    s.Status = model.SlotReserved
    s.ReservedBy = &studentID
    s.ReservedAt = &now
    return nil
}

func (f *fakeSlots) ReleaseTx(_ context.Context, _ *sql.Tx, slotID, studentID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    s, ok := f.slots[slotID]
    if !ok {
        return repository.ErrSlotNotFound
    }
    if s.Status != model.SlotReserved || s.ReservedBy == nil || *s.ReservedBy != studentID {
        return repository.ErrConflict
    }
    s.Status = model.SlotFree
    s.ReservedBy = nil
    s.ReservedAt = nil
    return nil
}

func (f *fakeSlots) CommitBookingTx(_ context.Context, _ *sql.Tx, slotID, studentID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    s, ok := f.slots[slotID]
    if !ok {
        return repository.ErrSlotNotFound
    }
    if s.Status != model.SlotReserved || s.ReservedBy == nil || *s.ReservedBy != studentID {
        return repository.ErrConflict
    }
    now := time.Now()
    s.Status = model.SlotBooked
    s.BookedAt = &now
    return nil
}

func (f *fakeSlots) FreeTx(_ context.Context, _ *sql.Tx, tutorID uint64, date, startTime string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, s := range f.slots {
        if s.TutorID == tutorID && s.Date == date && s.StartTime == startTime &&
            (s.Status == model.SlotReserved || s.Status == model.SlotBooked) {
            s.Status = model.SlotFree
            s.ReservedBy = nil
            s.ReservedAt = nil
            s.BookedAt = nil
        }
    }
    return nil
}

func (f *fakeSlots) ListByTutor(_ context.Context, tutorID uint64, date string) ([]model.Slot, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := []model.Slot{}
    for _, s := range f.slots {
        if s.TutorID == tutorID && (date == "" || s.Date == date) {
            out = append(out, *s)
        }
    }
    return out, nil
}

type fakeBookings struct {
    mu       sync.Mutex
    seq      uint64
    bookings map[uint64]*model.Booking
}

func newFakeBookings() *fakeBookings { return &fakeBookings{bookings: map[uint64]*model.Booking{}} }

func (f *fakeBookings) CreateFromSlotTx(_ context.Context, _ *sql.Tx, slot *model.Slot, studentID uint64, subject, paymentRef *string) (*model.Booking, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.seq++
    b := &model.Booking{
        ID:         f.seq,
        TutorID:    slot.TutorID,
        StudentID:  studentID,
        Date:       slot.Date,
        StartTime:  slot.StartTime,
        EndTime:    slot.EndTime,
        Subject:    subject,
        Status:     model.BookingConfirmed,
        PaymentRef: paymentRef,
        CreatedAt:  time.Now(),
    }
    f.bookings[b.ID] = b
    cp := *b
    return &cp, nil
}

func (f *fakeBookings) get(id uint64) (*model.Booking, error) {
    b, ok := f.bookings[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *b
    return &cp, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.get(id)
}

func (f *fakeBookings) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Booking, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.get(id)
}

func (f *fakeBookings) GetByWindowForUpdateTx(_ context.Context, _ *sql.Tx, tutorID uint64, date, startTime string) (*model.Booking, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, b := range f.bookings {
        if b.TutorID == tutorID && b.Date == date && b.StartTime == startTime &&
            (b.Status == model.BookingPending || b.Status == model.BookingConfirmed) {
            cp := *b
            return &cp, nil
        }
    }
    return nil, repository.ErrBookingNotFound
}

func (f *fakeBookings) UpdateStatusTx(_ context.Context, _ *sql.Tx, bookingID uint64, newStatus string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    b, ok := f.bookings[bookingID]
    if !ok {
        return repository.ErrBookingNotFound
    }
    if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
        return repository.ErrConflict
    }
    b.Status = newStatus
    return nil
}

func (f *fakeBookings) SetRatingTx(_ context.Context, _ *sql.Tx, bookingID uint64, rating uint8) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    b, ok := f.bookings[bookingID]
    if !ok {
        return repository.ErrBookingNotFound
    }
    if b.Rating != nil {
        return repository.ErrAlreadyRated
    }
    b.Rating = &rating
    return nil
}

func (f *fakeBookings) DeleteTx(_ context.Context, _ *sql.Tx, bookingID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if _, ok := f.bookings[bookingID]; !ok {
        return repository.ErrBookingNotFound
    }
    delete(f.bookings, bookingID)
    return nil
}

func (f *fakeBookings) UpdateDetails(_ context.Context, bookingID, tutorID uint64, upd model.BookingUpdate) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    b, ok := f.bookings[bookingID]
    if !ok {
        return repository.ErrBookingNotFound
    }
    if b.TutorID != tutorID {
        return repository.ErrForbidden
    }
    if upd.Subject != nil {
        b.Subject = upd.Subject
    }
    if upd.Notes != nil {
        b.Notes = upd.Notes
    }
    return nil
}

func (f *fakeBookings) list(match func(*model.Booking) bool) []repository.BookingDetail {
    out := []repository.BookingDetail{}
    for _, b := range f.bookings {
        if match(b) {
            out = append(out, repository.BookingDetail{
                ID:        b.ID,
                TutorID:   b.TutorID,
                StudentID: b.StudentID,
                Date:      b.Date,
                StartTime: b.StartTime,
                EndTime:   b.EndTime,
                Subject:   b.Subject,
                Status:    b.Status,
                Rating:    b.Rating,
                Notes:     b.Notes,
            })
        }
    }
    return out
}

func (f *fakeBookings) ListByStudent(_ context.Context, studentID uint64) ([]repository.BookingDetail, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.list(func(b *model.Booking) bool { return b.StudentID == studentID }), nil
}

func (f *fakeBookings) ListByTutor(_ context.Context, tutorID uint64) ([]repository.BookingDetail, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.list(func(b *model.Booking) bool { return b.TutorID == tutorID }), nil
}

type fakeProfiles struct {
    mu         sync.Mutex
    students   map[uint64]*model.Student // keyed by user id
    tutors     map[uint64]*model.Tutor   // keyed by user id
    tutorsByID map[uint64]*model.Tutor
}

func newFakeProfiles() *fakeProfiles {
    return &fakeProfiles{
        students:   map[uint64]*model.Student{},
        tutors:     map[uint64]*model.Tutor{},
        tutorsByID: map[uint64]*model.Tutor{},
    }
}

func (f *fakeProfiles) addStudent(userID, id uint64, name string) {
    f.students[userID] = &model.Student{ID: id, UserID: userID, DisplayName: name}
}

func (f *fakeProfiles) addTutor(userID, id uint64, name string) {
    t := &model.Tutor{ID: id, UserID: userID, DisplayName: name}
    f.tutors[userID] = t
    f.tutorsByID[id] = t
}

func (f *fakeProfiles) ResolveStudent(_ context.Context, userID uint64) (*model.Student, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    s, ok := f.students[userID]
    if !ok {
        return nil, repository.ErrStudentNotFound
    }
    cp := *s
    return &cp, nil
}

func (f *fakeProfiles) ResolveTutor(_ context.Context, userID uint64) (*model.Tutor, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    t, ok := f.tutors[userID]
    if !ok {
        return nil, repository.ErrTutorNotFound
    }
    cp := *t
    return &cp, nil
}

func (f *fakeProfiles) GetTutorByID(_ context.Context, tutorID uint64) (*model.Tutor, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    t, ok := f.tutorsByID[tutorID]
    if !ok {
        return nil, repository.ErrTutorNotFound
    }
    cp := *t
    return &cp, nil
}

func (f *fakeProfiles) StudentUserID(_ context.Context, studentID uint64) (uint64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, s := range f.students {
        if s.ID == studentID {
            return s.UserID, nil
        }
    }
    return 0, repository.ErrStudentNotFound
}

func (f *fakeProfiles) SearchTutors(_ context.Context, q repository.TutorSearchQuery) ([]repository.PublicTutorRow, int64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := []repository.PublicTutorRow{}
    for _, t := range f.tutorsByID {
        if q.MinRating > 0 && t.Rating < q.MinRating {
            continue
        }
        out = append(out, repository.PublicTutorRow{
            ID:          t.ID,
            DisplayName: t.DisplayName,
            Rating:      t.Rating,
            RatingCount: t.RatingCount,
        })
    }
    return out, int64(len(out)), nil
}

type fakeRatings struct {
    mu       sync.Mutex
    profiles *fakeProfiles
    feedback []*model.Feedback
}

func (f *fakeRatings) CreateFeedbackTx(_ context.Context, _ *sql.Tx, fb *model.Feedback) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, existing := range f.feedback {
        if existing.BookingID == fb.BookingID {
            return repository.ErrAlreadyRated
        }
    }
    fb.ID = uint64(len(f.feedback) + 1)
    fb.CreatedAt = time.Now()
    cp := *fb
    f.feedback = append(f.feedback, &cp)
    return nil
}

func (f *fakeRatings) RecomputeTx(_ context.Context, _ *sql.Tx, tutorID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    var sum, count uint32
    for _, fb := range f.feedback {
        if fb.TutorID == tutorID {
            sum += uint32(fb.Rating)
            count++
        }
    }
    f.profiles.mu.Lock()
    defer f.profiles.mu.Unlock()
    t, ok := f.profiles.tutorsByID[tutorID]
    if !ok {
        return repository.ErrTutorNotFound
    }
    if count == 0 {
        t.Rating = 0
    } else {
        t.Rating = float64(sum) / float64(count)
    }
    t.RatingCount = count
    return nil
}

func (f *fakeRatings) ListFeedbackByTutor(_ context.Context, tutorID uint64) ([]model.Feedback, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := []model.Feedback{}
    for _, fb := range f.feedback {
        if fb.TutorID == tutorID {
            out = append(out, *fb)
        }
    }
    return out, nil
}

type sentNote struct {
    recipientID uint64
    senderID    uint64
    bookingID   uint64
    text        string
    kind        string
}

type fakeNotifier struct {
    mu   sync.Mutex
    sent []sentNote
}

func (f *fakeNotifier) Notify(_ context.Context, recipientID, senderID, bookingID uint64, text, kind string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.sent = append(f.sent, sentNote{recipientID, senderID, bookingID, text, kind})
    return nil
}

type env struct {
    svc      *BookingService
    slots    *fakeSlots
    bookings *fakeBookings
    ratings  *fakeRatings
    profiles *fakeProfiles
    notifier *fakeNotifier
}

// Seeded identities shared by the tests.
var (
    studentActor  = Actor{UserID: 10, Role: model.RoleStudent}
    student2Actor = Actor{UserID: 11, Role: model.RoleStudent}
    tutorActor    = Actor{UserID: 20, Role: model.RoleTutor}
    tutor2Actor   = Actor{UserID: 21, Role: model.RoleTutor}
    adminActor    = Actor{UserID: 99, Role: model.RoleAdmin}
)

func newEnv(t *testing.T) *env {
    t.Helper()
    profiles := newFakeProfiles()
    profiles.addStudent(10, 1, "Dana")
    profiles.addStudent(11, 2, "Lee")
    profiles.addTutor(20, 1, "Prof. Adler")
    profiles.addTutor(21, 2, "Prof. Beck")

    e := &env{
        slots:    newFakeSlots(),
        bookings: newFakeBookings(),
        ratings:  &fakeRatings{profiles: profiles},
        profiles: profiles,
        notifier: &fakeNotifier{},
    }
    e.svc = NewBookingService(inertDB(t), e.slots, e.bookings, e.ratings, e.profiles, e.notifier, zap.NewNop())
    return e
}

// addSlot seeds a FREE slot directly in the store.
func (e *env) addSlot(t *testing.T, tutorID uint64, date, start, end string) uint64 {
    t.Helper()
    slot := &model.Slot{TutorID: tutorID, Date: date, StartTime: start, EndTime: end}
    if err := e.slots.Create(context.Background(), slot); err != nil {
        t.Fatalf("seed slot: %v", err)
    }
    return slot.ID
}

func (e *env) mustReserve(t *testing.T, actor Actor, slotID uint64) {
    t.Helper()
    if err := e.svc.Reserve(context.Background(), actor, slotID); err != nil {
        t.Fatalf("reserve slot %d: %v", slotID, err)
    }
}

func (e *env) mustBook(t *testing.T, actor Actor, slotID uint64) *model.Booking {
    t.Helper()
    b, err := e.svc.Book(context.Background(), actor, slotID, nil, nil)
    if err != nil {
        t.Fatalf("book slot %d: %v", slotID, err)
    }
    return b
}

func TestAddScheduleValidation(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()

    cases := []struct {
        name  string
        date  string
        start string
        end   string
    }{
        {"past date", "2020-01-01", "10:00", "11:00"},
        {"malformed date", "not-a-date", "10:00", "11:00"},
        {"start equals end", "2031-05-01", "10:00", "10:00"},
        {"start after end", "2031-05-01", "11:00", "10:00"},
        {"malformed time", "2031-05-01", "10am", "11:00"},
    }
    for _, c := range cases {
        t.Run(c.name, func(t *testing.T) {
            _, err := e.svc.AddSchedule(ctx, tutorActor, c.date, c.start, c.end)
            if !errors.Is(err, ErrValidation) {
                t.Fatalf("expected ErrValidation, got %v", err)
            }
        })
    }
}

func TestAddScheduleNormalizesTimes(t *testing.T) {
    e := newEnv(t)
    slot, err := e.svc.AddSchedule(context.Background(), tutorActor, "2031-05-01", "10:00", "11:30")
    if err != nil {
        t.Fatalf("add schedule: %v", err)
    }
    if slot.StartTime != "10:00:00" || slot.EndTime != "11:30:00" {
        t.Errorf("times not normalized: %s-%s", slot.StartTime, slot.EndTime)
    }
    if slot.Status != model.SlotFree {
        t.Errorf("new slot status = %s, want FREE", slot.Status)
    }
}

func TestAddScheduleDuplicateWindow(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    if _, err := e.svc.AddSchedule(ctx, tutorActor, "2031-05-01", "10:00", "11:00"); err != nil {
        t.Fatalf("first add: %v", err)
    }
    if _, err := e.svc.AddSchedule(ctx, tutorActor, "2031-05-01", "10:00", "11:00"); !errors.Is(err, repository.ErrConflict) {
        t.Fatalf("duplicate window: expected ErrConflict, got %v", err)
    }
}

func TestAddScheduleRequiresTutor(t *testing.T) {
    e := newEnv(t)
    if _, err := e.svc.AddSchedule(context.Background(), studentActor, "2031-05-01", "10:00", "11:00"); !errors.Is(err, repository.ErrForbidden) {
        t.Fatalf("expected ErrForbidden, got %v", err)
    }
}

func TestReserveSingleWinner(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")

    const callers = 16
    errs := make(chan error, callers)
    var wg sync.WaitGroup
    for i := 0; i < callers; i++ {
        wg.Add(1)
        actor := studentActor
        if i%2 == 1 {
            actor = student2Actor
        }
        go func(a Actor) {
            defer wg.Done()
            errs <- e.svc.Reserve(context.Background(), a, slotID)
        }(actor)
    }
    wg.Wait()
    close(errs)

    winners, conflicts := 0, 0
    for err := range errs {
        switch {
        case err == nil:
            winners++
        case errors.Is(err, repository.ErrConflict):
            conflicts++
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    if winners != 1 || conflicts != callers-1 {
        t.Fatalf("winners=%d conflicts=%d, want 1 and %d", winners, conflicts, callers-1)
    }
}

func TestReserveRequiresStudent(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    if err := e.svc.Reserve(context.Background(), tutorActor, slotID); !errors.Is(err, repository.ErrForbidden) {
        t.Fatalf("expected ErrForbidden, got %v", err)
    }
}

func TestReserveUnknownSlot(t *testing.T) {
    e := newEnv(t)
    if err := e.svc.Reserve(context.Background(), studentActor, 404); !errors.Is(err, repository.ErrSlotNotFound) {
        t.Fatalf("expected ErrSlotNotFound, got %v", err)
    }
}

func TestReleaseReturnsSlotToFree(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)

    if err := e.svc.Release(ctx, studentActor, slotID); err != nil {
        t.Fatalf("release: %v", err)
    }
    slot, _ := e.slots.GetByID(ctx, slotID)
    if slot.Status != model.SlotFree || slot.ReservedBy != nil {
        t.Errorf("slot not freed: status=%s reserved_by=%v", slot.Status, slot.ReservedBy)
    }
    // A different student can now take it.
    e.mustReserve(t, student2Actor, slotID)
}

func TestReleaseByOtherStudent(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    if err := e.svc.Release(context.Background(), student2Actor, slotID); !errors.Is(err, repository.ErrConflict) {
        t.Fatalf("expected ErrConflict, got %v", err)
    }
}

func TestBookCopiesSlotWindow(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)

    subject := "algebra"
    booking, err := e.svc.Book(context.Background(), studentActor, slotID, &subject, nil)
    if err != nil {
        t.Fatalf("book: %v", err)
    }
    if booking.Status != model.BookingConfirmed {
        t.Errorf("status = %s, want CONFIRMED", booking.Status)
    }
    if booking.Date != "2031-05-01" || booking.StartTime != "10:00:00" || booking.EndTime != "11:00:00" {
        t.Errorf("window not copied: %s %s-%s", booking.Date, booking.StartTime, booking.EndTime)
    }
    if booking.Subject == nil || *booking.Subject != "algebra" {
        t.Errorf("subject not carried: %v", booking.Subject)
    }
    slot, _ := e.slots.GetByID(context.Background(), slotID)
    if slot.Status != model.SlotBooked {
        t.Errorf("slot status = %s, want BOOKED", slot.Status)
    }
}

func TestBookNotifiesTutor(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    e.notifier.mu.Lock()
    defer e.notifier.mu.Unlock()
    if len(e.notifier.sent) != 1 {
        t.Fatalf("sent %d notifications, want 1", len(e.notifier.sent))
    }
    n := e.notifier.sent[0]
    if n.recipientID != 20 || n.bookingID != booking.ID || n.kind != "booking" {
        t.Errorf("unexpected notification: %+v", n)
    }
}

func TestBookWithoutReservation(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    if _, err := e.svc.Book(context.Background(), studentActor, slotID, nil, nil); !errors.Is(err, repository.ErrConflict) {
        t.Fatalf("expected ErrConflict, got %v", err)
    }
}

func TestBookSomeoneElsesReservation(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    if _, err := e.svc.Book(context.Background(), student2Actor, slotID, nil, nil); !errors.Is(err, repository.ErrConflict) {
        t.Fatalf("expected ErrConflict, got %v", err)
    }
}

func TestCancelBookingFreesSlot(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    if err := e.svc.Cancel(ctx, tutorActor, CancelRef{BookingID: &booking.ID}); err != nil {
        t.Fatalf("cancel: %v", err)
    }
    got, _ := e.bookings.GetByID(ctx, booking.ID)
    if got.Status != model.BookingCancelled {
        t.Errorf("booking status = %s, want CANCELLED", got.Status)
    }
    slot, _ := e.slots.GetByID(ctx, slotID)
    if slot.Status != model.SlotFree {
        t.Errorf("slot status = %s, want FREE", slot.Status)
    }
    // The student hears about the cancellation, after the booking
    // notification the flow already sent to the tutor.
    if len(e.notifier.sent) != 2 {
        t.Fatalf("sent %d notifications, want 2", len(e.notifier.sent))
    }
    note := e.notifier.sent[1]
    if note.recipientID != 10 {
        t.Errorf("cancellation recipient = %d, want student user 10", note.recipientID)
    }
    if note.bookingID != booking.ID {
        t.Errorf("cancellation booking id = %d, want %d", note.bookingID, booking.ID)
    }
    // The slot is immediately reservable again.
    e.mustReserve(t, student2Actor, slotID)
}

// Freeing a slot that is already FREE is a no-op, so a cancel whose
// slot was freed out of band still lands the booking in CANCELLED.
func TestCancelSucceedsWhenSlotAlreadyFree(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    e.slots.mu.Lock()
    s := e.slots.slots[slotID]
    s.Status = model.SlotFree
    s.ReservedBy = nil
    s.ReservedAt = nil
    s.BookedAt = nil
    e.slots.mu.Unlock()

    if err := e.svc.Cancel(ctx, tutorActor, CancelRef{BookingID: &booking.ID}); err != nil {
        t.Fatalf("cancel with free slot: %v", err)
    }
    got, _ := e.bookings.GetByID(ctx, booking.ID)
    if got.Status != model.BookingCancelled {
        t.Errorf("booking status = %s, want CANCELLED", got.Status)
    }
}

func TestCompleteSucceedsWhenSlotAlreadyFree(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    e.slots.mu.Lock()
    s := e.slots.slots[slotID]
    s.Status = model.SlotFree
    s.ReservedBy = nil
    s.ReservedAt = nil
    s.BookedAt = nil
    e.slots.mu.Unlock()

    if err := e.svc.Complete(ctx, tutorActor, booking.ID); err != nil {
        t.Fatalf("complete with free slot: %v", err)
    }
    got, _ := e.bookings.GetByID(ctx, booking.ID)
    if got.Status != model.BookingCompleted {
        t.Errorf("booking status = %s, want COMPLETED", got.Status)
    }
}

func TestCancelIsTerminal(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    if err := e.svc.Cancel(ctx, tutorActor, CancelRef{BookingID: &booking.ID}); err != nil {
        t.Fatalf("first cancel: %v", err)
    }
    if err := e.svc.Cancel(ctx, tutorActor, CancelRef{BookingID: &booking.ID}); !errors.Is(err, repository.ErrConflict) {
        t.Fatalf("second cancel: expected ErrConflict, got %v", err)
    }
}

func TestCancelByWindow(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    if err := e.svc.Cancel(ctx, tutorActor, CancelRef{Date: "2031-05-01", StartTime: "10:00"}); err != nil {
        t.Fatalf("cancel by window: %v", err)
    }
    got, _ := e.bookings.GetByID(ctx, booking.ID)
    if got.Status != model.BookingCancelled {
        t.Errorf("booking status = %s, want CANCELLED", got.Status)
    }
}

func TestCancelReservedSlotReleasesHold(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)

    if err := e.svc.Cancel(ctx, tutorActor, CancelRef{SlotID: &slotID}); err != nil {
        t.Fatalf("cancel reservation: %v", err)
    }
    slot, _ := e.slots.GetByID(ctx, slotID)
    if slot.Status != model.SlotFree {
        t.Errorf("slot status = %s, want FREE", slot.Status)
    }
    // The held student gets told.
    e.notifier.mu.Lock()
    defer e.notifier.mu.Unlock()
    if len(e.notifier.sent) != 1 || e.notifier.sent[0].recipientID != 10 {
        t.Errorf("expected one notification to user 10, got %+v", e.notifier.sent)
    }
}

func TestCancelOwnershipEnforced(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    if err := e.svc.Cancel(ctx, tutor2Actor, CancelRef{BookingID: &booking.ID}); !errors.Is(err, repository.ErrForbidden) {
        t.Fatalf("foreign tutor: expected ErrForbidden, got %v", err)
    }
    if err := e.svc.Cancel(ctx, studentActor, CancelRef{BookingID: &booking.ID}); !errors.Is(err, repository.ErrForbidden) {
        t.Fatalf("student: expected ErrForbidden, got %v", err)
    }
    // Admins may cancel anyone's booking.
    if err := e.svc.Cancel(ctx, adminActor, CancelRef{BookingID: &booking.ID}); err != nil {
        t.Fatalf("admin cancel: %v", err)
    }
}

func TestAdminCancelNeedsConcreteRef(t *testing.T) {
    e := newEnv(t)
    err := e.svc.Cancel(context.Background(), adminActor, CancelRef{Date: "2031-05-01", StartTime: "10:00"})
    if !errors.Is(err, ErrValidation) {
        t.Fatalf("expected ErrValidation, got %v", err)
    }
}

func TestCompleteFreesSlotAndNotifies(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    if err := e.svc.Complete(ctx, tutorActor, booking.ID); err != nil {
        t.Fatalf("complete: %v", err)
    }
    got, _ := e.bookings.GetByID(ctx, booking.ID)
    if got.Status != model.BookingCompleted {
        t.Errorf("booking status = %s, want COMPLETED", got.Status)
    }
    slot, _ := e.slots.GetByID(ctx, slotID)
    if slot.Status != model.SlotFree {
        t.Errorf("slot status = %s, want FREE", slot.Status)
    }
    e.notifier.mu.Lock()
    defer e.notifier.mu.Unlock()
    // One booking note plus one completion note.
    if len(e.notifier.sent) != 2 || e.notifier.sent[1].recipientID != 10 {
        t.Errorf("expected completion notification to user 10, got %+v", e.notifier.sent)
    }
}

func TestDeleteBookingRemovesLedgerRow(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    if err := e.svc.DeleteBooking(ctx, tutorActor, booking.ID); err != nil {
        t.Fatalf("delete: %v", err)
    }
    if _, err := e.bookings.GetByID(ctx, booking.ID); !errors.Is(err, repository.ErrBookingNotFound) {
        t.Fatalf("expected ErrBookingNotFound, got %v", err)
    }
    slot, _ := e.slots.GetByID(ctx, slotID)
    if slot.Status != model.SlotFree {
        t.Errorf("slot status = %s, want FREE", slot.Status)
    }
}

// completedBooking runs the full reserve/book/complete cycle and
// returns the booking id.
func completedBooking(t *testing.T, e *env, actor Actor, slotID uint64) uint64 {
    t.Helper()
    e.mustReserve(t, actor, slotID)
    booking := e.mustBook(t, actor, slotID)
    if err := e.svc.Complete(context.Background(), tutorActor, booking.ID); err != nil {
        t.Fatalf("complete: %v", err)
    }
    return booking.ID
}

func TestRateRequiresCompletedBooking(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    if err := e.svc.Rate(context.Background(), studentActor, booking.ID, 5); !errors.Is(err, repository.ErrConflict) {
        t.Fatalf("rating a CONFIRMED booking: expected ErrConflict, got %v", err)
    }
}

func TestRateAtMostOnce(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    id := completedBooking(t, e, studentActor, slotID)

    if err := e.svc.Rate(ctx, studentActor, id, 5); err != nil {
        t.Fatalf("first rate: %v", err)
    }
    if err := e.svc.Rate(ctx, studentActor, id, 4); !errors.Is(err, repository.ErrAlreadyRated) {
        t.Fatalf("second rate: expected ErrAlreadyRated, got %v", err)
    }
    // The feedback path is guarded by the same write-once rule.
    if err := e.svc.SubmitFeedback(ctx, studentActor, id, 3, nil); !errors.Is(err, repository.ErrAlreadyRated) {
        t.Fatalf("feedback after rate: expected ErrAlreadyRated, got %v", err)
    }
}

func TestRateBoundaries(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    for _, bad := range []uint8{0, 6} {
        if err := e.svc.Rate(ctx, studentActor, 1, bad); !errors.Is(err, ErrValidation) {
            t.Errorf("rating %d: expected ErrValidation, got %v", bad, err)
        }
    }
}

func TestRateOwnershipEnforced(t *testing.T) {
    e := newEnv(t)
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    id := completedBooking(t, e, studentActor, slotID)

    if err := e.svc.Rate(context.Background(), student2Actor, id, 5); !errors.Is(err, repository.ErrForbidden) {
        t.Fatalf("expected ErrForbidden, got %v", err)
    }
}

func TestRatingRecomputesAggregate(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotA := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    slotB := e.addSlot(t, 1, "2031-05-01", "12:00:00", "13:00:00")
    idA := completedBooking(t, e, studentActor, slotA)
    idB := completedBooking(t, e, student2Actor, slotB)

    comment := "great session"
    if err := e.svc.Rate(ctx, studentActor, idA, 4); err != nil {
        t.Fatalf("rate A: %v", err)
    }
    if err := e.svc.SubmitFeedback(ctx, student2Actor, idB, 5, &comment); err != nil {
        t.Fatalf("feedback B: %v", err)
    }

    tutor, err := e.profiles.GetTutorByID(ctx, 1)
    if err != nil {
        t.Fatalf("get tutor: %v", err)
    }
    if tutor.RatingCount != 2 {
        t.Errorf("rating count = %d, want 2", tutor.RatingCount)
    }
    if tutor.Rating != 4.5 {
        t.Errorf("rating = %v, want 4.5", tutor.Rating)
    }

    items, err := e.svc.TutorFeedback(ctx, 1)
    if err != nil {
        t.Fatalf("list feedback: %v", err)
    }
    if len(items) != 2 {
        t.Fatalf("feedback rows = %d, want 2", len(items))
    }
}

func TestUpdateBookingAllowList(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotID)
    booking := e.mustBook(t, studentActor, slotID)

    subject := "geometry"
    notes := "bring compass"
    if err := e.svc.UpdateBooking(ctx, tutorActor, booking.ID, model.BookingUpdate{Subject: &subject, Notes: &notes}); err != nil {
        t.Fatalf("update: %v", err)
    }
    got, _ := e.bookings.GetByID(ctx, booking.ID)
    if got.Subject == nil || *got.Subject != "geometry" || got.Notes == nil || *got.Notes != "bring compass" {
        t.Errorf("update not applied: subject=%v notes=%v", got.Subject, got.Notes)
    }

    if err := e.svc.UpdateBooking(ctx, tutor2Actor, booking.ID, model.BookingUpdate{Subject: &subject}); !errors.Is(err, repository.ErrForbidden) {
        t.Fatalf("foreign tutor update: expected ErrForbidden, got %v", err)
    }
}

func TestListingsScopedToActor(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotA := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    slotB := e.addSlot(t, 2, "2031-05-01", "10:00:00", "11:00:00")
    e.mustReserve(t, studentActor, slotA)
    e.mustBook(t, studentActor, slotA)
    e.mustReserve(t, student2Actor, slotB)
    e.mustBook(t, student2Actor, slotB)

    mine, err := e.svc.MyBookings(ctx, studentActor)
    if err != nil {
        t.Fatalf("my bookings: %v", err)
    }
    if len(mine) != 1 || mine[0].StudentID != 1 {
        t.Errorf("student listing leaked rows: %+v", mine)
    }

    theirs, err := e.svc.TutorBookings(ctx, tutor2Actor)
    if err != nil {
        t.Fatalf("tutor bookings: %v", err)
    }
    if len(theirs) != 1 || theirs[0].TutorID != 2 {
        t.Errorf("tutor listing leaked rows: %+v", theirs)
    }
}

func TestSearchTutorsClampsPaging(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    if _, _, err := e.svc.SearchTutors(ctx, repository.TutorSearchQuery{MinRating: 9}); !errors.Is(err, ErrValidation) {
        t.Fatalf("min_rating 9: expected ErrValidation, got %v", err)
    }
    items, total, err := e.svc.SearchTutors(ctx, repository.TutorSearchQuery{Page: -3, PageSize: 1000})
    if err != nil {
        t.Fatalf("search: %v", err)
    }
    if total != 2 || len(items) != 2 {
        t.Errorf("total=%d len=%d, want 2 and 2", total, len(items))
    }
}

func TestAvailabilityIncludesAggregate(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    slotID := e.addSlot(t, 1, "2031-05-01", "10:00:00", "11:00:00")
    id := completedBooking(t, e, studentActor, slotID)
    if err := e.svc.Rate(ctx, studentActor, id, 5); err != nil {
        t.Fatalf("rate: %v", err)
    }

    tutor, slots, err := e.svc.Availability(ctx, 1, "")
    if err != nil {
        t.Fatalf("availability: %v", err)
    }
    if tutor.Rating != 5 || tutor.RatingCount != 1 {
        t.Errorf("aggregate = %v/%d, want 5/1", tutor.Rating, tutor.RatingCount)
    }
    if len(slots) != 1 {
        t.Errorf("slots = %d, want 1", len(slots))
    }
}
