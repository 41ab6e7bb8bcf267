package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tutoplus/internal/model"
)

var profilesTable = newTable("profiles",
	column{name: "id", readOnly: true},
	column{name: "email"},
	column{name: "role"},
	column{name: "created_at", readOnly: true},
)

// ProfileRepo reads and patches account profiles.
type ProfileRepo struct{ db *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

func scanProfile(rs rowScanner) (model.Profile, error) {
	var p model.Profile
	err := rs.Scan(&p.ID, &p.Email, &p.Role, &p.CreatedAt)
	return p, err
}

// List returns the profiles matching q.
func (r *ProfileRepo) List(ctx context.Context, q Query) ([]model.Profile, error) {
	return list(ctx, r.db, profilesTable, q, scanProfile)
}

// GetByID returns ErrNotFound when no profile has id.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (model.Profile, error) {
	stmt, args, _ := profilesTable.selectSQL(Query{Filters: []Filter{Eq("id", id)}})
	p, err := scanProfile(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNotFound
	}
	return p, err
}

// Update applies p to the profiles matching filters.
func (r *ProfileRepo) Update(ctx context.Context, filters []Filter, p Patch) ([]model.Profile, error) {
	return update(ctx, r.db, profilesTable, filters, p, scanProfile)
}

// Delete removes the profiles matching filters. The identities behind them
// are kept.
func (r *ProfileRepo) Delete(ctx context.Context, filters []Filter) (int64, error) {
	return remove(ctx, r.db, profilesTable, filters)
}
