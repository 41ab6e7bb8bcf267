package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/tutoplus/internal/model"
)

// ErrTokenInvalid is returned for unknown, expired, revoked or used tokens.
var ErrTokenInvalid = errors.New("token invalid")

// TokenRepo persists refresh tokens and single-use login tokens. Only
// SHA‑256 hashes are stored.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the owner of a non-revoked, non-expired token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var (
		userID    string
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", err
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return "", ErrTokenInvalid
	}
	return userID, nil
}

// RevokeByHash marks a refresh token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes every active refresh token of a user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = ? AND revoked_at IS NULL",
		userID)
	return err
}

// StoreOneTime inserts a single-use token of the given kind.
func (r *TokenRepo) StoreOneTime(ctx context.Context, userID string, kind model.TokenKind, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO one_time_tokens (user_id, kind, token_hash, expires_at) VALUES (?,?,?,?)",
		userID, string(kind), tokenHash, exp)
	return err
}

// ConsumeOneTime marks a valid token of kind as used and returns its owner.
// The conditional UPDATE makes a second exchange of the same token fail.
func (r *TokenRepo) ConsumeOneTime(ctx context.Context, kind model.TokenKind, tokenHash string) (string, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE one_time_tokens SET used_at = ? WHERE token_hash = ? AND kind = ? AND used_at IS NULL AND expires_at > ?",
		time.Now().UTC(), tokenHash, string(kind), time.Now().UTC())
	if err != nil {
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrTokenInvalid
	}
	var userID string
	if err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM one_time_tokens WHERE token_hash = ? LIMIT 1", tokenHash).Scan(&userID); err != nil {
		return "", err
	}
	return userID, nil
}
