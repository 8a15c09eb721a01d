package model

import "time"

// Role names stored in the users.role column and carried in the JWT
// "role" claim.  Keeping them as named constants lets route wiring and
// rate-budget policy key off a closed set instead of scattered string
// literals.
const (
	RoleAdmin     = "ADMIN"
	RoleDriver    = "DRIVER"
	RoleTraveller = "TRAVELLER"
)

// ValidRole reports whether s is one of the three known role names.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleDriver || s == RoleTraveller
}

// User represents an application user record as stored in the `users`
// table.  A user is an administrator, a driver or a traveller; drivers
// are created by administrators while travellers self-register.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name shown to drivers on pickup manifests.
//  Role         – one of ADMIN, DRIVER, TRAVELLER.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its SHA-256
// hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
