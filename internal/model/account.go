package model

import "time"

// User is an authentication identity as stored in the `users` table.
// It carries credentials only; the role and the rest of the account
// view live on Profile.
//
// Fields:
//  ID           – uuid primary key, shared with profiles.id.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}

// Profile is the account record visible to the application (`profiles`).
// Deleting a profile does not delete the identity behind it.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA‑256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// TokenKind distinguishes single-use tokens.
type TokenKind string

const (
	TokenMagicLink TokenKind = "magiclink" // issued by the impersonation endpoint
	TokenRecovery  TokenKind = "recovery"  // issued by the password recovery flow
)

func (k TokenKind) Valid() bool { return k == TokenMagicLink || k == TokenRecovery }

// OneTimeToken is a row of `one_time_tokens`: a hashed token that can be
// exchanged for a session exactly once before it expires.
type OneTimeToken struct {
	ID        uint64
	UserID    string
	Kind      TokenKind
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
}
