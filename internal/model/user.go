package model

import "time"

// Roles carried in the access token's "role" claim.
const (
	RolePlayer = "PLAYER"
	RoleAdmin  = "ADMIN"
)

// User represents an account record as stored in the `users` table.
// Accounts own every quest, template, stats row and earned badge; deleting
// a user cascades to all of them.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – PLAYER or ADMIN.
//  IsActive     – whether the account may log in.
//  Timezone     – IANA zone the user's calendar days are counted in; empty
//                 means the server default.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	Timezone     string    // users.timezone
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
