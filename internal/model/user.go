package model

import "time"

// Role names stored in the users.role column and carried in the
// session credential's "role" claim.  The service never issues
// credentials itself; it only verifies them.
const (
    RoleStudent = "STUDENT"
    RoleTutor   = "TUTOR"
    RoleAdmin   = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  Authentication and session issuance live in an
// external component; this service only needs the identity row to
// resolve a user into a tutor or student profile.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Email     – unique email address.
//  Role      – role name (STUDENT, TUTOR or ADMIN).
//  IsActive  – whether the account is active.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
    ID        uint64    // users.id
    Email     string    // users.email
    Role      string    // users.role
    IsActive  bool      // users.is_active
    CreatedAt time.Time // users.created_at
    UpdatedAt time.Time // users.updated_at
}
