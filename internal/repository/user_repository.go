package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/utils"
)

// UserRepo manages authentication identities (`users`) together with the
// profile row created alongside each identity.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes password, then inserts the identity and its profile in one
// transaction so a signup never leaves one without the other.
func (r *UserRepo) Create(ctx context.Context, email, password string, role model.Role, cost int) (p model.Profile, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.Profile{}, err
	}
	id := uuid.NewString()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Profile{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?,?,?)",
		id, email, hash); err != nil {
		if isDuplicate(err) {
			return model.Profile{}, ErrEmailExists
		}
		return model.Profile{}, err
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO profiles (id, email, role) VALUES (?,?,?)",
		id, email, string(role)); err != nil {
		return model.Profile{}, err
	}
	err = tx.QueryRowContext(ctx,
		"SELECT id, email, role, created_at FROM profiles WHERE id = ?", id).
		Scan(&p.ID, &p.Email, &p.Role, &p.CreatedAt)
	return p, err
}

// GetByEmail fetches an identity by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = ? LIMIT 1", email)
}

// GetByID fetches an identity by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = ? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdatePassword replaces the password hash of an identity.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// cascadeStatements lists what DeleteCascade removes, children first.
var cascadeStatements = []string{
	"DELETE FROM registrations WHERE user_id = ?",
	"DELETE FROM tutor_assignments WHERE student_id = ?",
	"DELETE FROM tutor_assignments WHERE tutor_id = ?",
	"DELETE FROM tutoring_sessions WHERE student_id = ?",
	"DELETE FROM tutoring_sessions WHERE tutor_id = ?",
	"DELETE FROM refresh_tokens WHERE user_id = ?",
	"DELETE FROM one_time_tokens WHERE user_id = ?",
	"DELETE FROM profiles WHERE id = ?",
}

// DeleteCascade removes an account completely: its registrations,
// assignments and sessions on either side, tokens, profile and finally the
// identity. It returns ErrNotFound and rolls back when neither a profile
// nor an identity exists for id.
func (r *UserRepo) DeleteCascade(ctx context.Context, id string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var profiles int64
	for _, stmt := range cascadeStatements {
		res, execErr := tx.ExecContext(ctx, stmt, id)
		if execErr != nil {
			return execErr
		}
		if strings.HasPrefix(stmt, "DELETE FROM profiles") {
			profiles, _ = res.RowsAffected()
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	users, _ := res.RowsAffected()
	if users == 0 && profiles == 0 {
		return ErrNotFound
	}
	return nil
}
