package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/tutor-slot-booking/internal/model"
)

// ProfileRepo adapts the externally owned profile data to the
// lookups this service needs: resolving an authenticated user into
// a student or tutor profile, and loading tutor rows for the public
// browse endpoints.  Profile CRUD itself lives outside this service.
type ProfileRepo struct {
    db *sql.DB
}

// NewProfileRepo returns a new ProfileRepo bound to the given database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// ResolveStudent maps an authenticated user id to its student
// profile.  Returns ErrStudentNotFound when the user has none.
func (r *ProfileRepo) ResolveStudent(ctx context.Context, userID uint64) (*model.Student, error) {
    const q = `SELECT id, user_id, display_name, created_at, updated_at FROM students WHERE user_id = ?`
    var s model.Student
    err := r.db.QueryRowContext(ctx, q, userID).Scan(&s.ID, &s.UserID, &s.DisplayName, &s.CreatedAt, &s.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrStudentNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// ResolveTutor maps an authenticated user id to its tutor profile.
// Returns ErrTutorNotFound when the user has none.
func (r *ProfileRepo) ResolveTutor(ctx context.Context, userID uint64) (*model.Tutor, error) {
    const q = `SELECT id, user_id, display_name, subject, rating, rating_count, created_at, updated_at
               FROM tutors WHERE user_id = ?`
    return r.scanTutor(r.db.QueryRowContext(ctx, q, userID))
}

// GetTutorByID loads a tutor profile by its primary key.  Returns
// ErrTutorNotFound when the id does not exist.
func (r *ProfileRepo) GetTutorByID(ctx context.Context, tutorID uint64) (*model.Tutor, error) {
    const q = `SELECT id, user_id, display_name, subject, rating, rating_count, created_at, updated_at
               FROM tutors WHERE id = ?`
    return r.scanTutor(r.db.QueryRowContext(ctx, q, tutorID))
}

// StudentUserID maps a student profile id back to the owning user
// id, needed when addressing a notification to the student.
func (r *ProfileRepo) StudentUserID(ctx context.Context, studentID uint64) (uint64, error) {
    var userID uint64
    err := r.db.QueryRowContext(ctx, `SELECT user_id FROM students WHERE id = ?`, studentID).Scan(&userID)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, ErrStudentNotFound
    }
    return userID, err
}

func (r *ProfileRepo) scanTutor(row *sql.Row) (*model.Tutor, error) {
    var t model.Tutor
    var subject sql.NullString
    err := row.Scan(&t.ID, &t.UserID, &t.DisplayName, &subject, &t.Rating, &t.RatingCount, &t.CreatedAt, &t.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTutorNotFound
    }
    if err != nil {
        return nil, err
    }
    if subject.Valid {
        v := subject.String
        t.Subject = &v
    }
    return &t, nil
}
