package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/tutoplus/internal/model"
)

var registrationsTable = newTable("registrations",
	column{name: "id", readOnly: true},
	column{name: "user_id"},
	column{name: "parent_name"},
	column{name: "student_name"},
	column{name: "phone"},
	column{name: "email"},
	column{name: "service"},
	column{name: "address"},
	column{name: "mental_health"},
	column{name: "specifications"},
	column{name: "status"},
	column{name: "contact_status"},
	column{name: "created_at", readOnly: true},
	column{name: "updated_at", readOnly: true},
)

// RegistrationRepo encapsulates queries on `registrations`.
type RegistrationRepo struct{ db *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

func scanRegistration(rs rowScanner) (model.Registration, error) {
	var (
		g            model.Registration
		mental, spec sql.NullString
	)
	err := rs.Scan(&g.ID, &g.UserID, &g.ParentName, &g.StudentName, &g.Phone, &g.Email,
		&g.Service, &g.Address, &mental, &spec, &g.Status, &g.ContactStatus, &g.CreatedAt, &g.UpdatedAt)
	g.MentalHealth = stringPtr(mental)
	g.Specifications = stringPtr(spec)
	return g, err
}

// List returns the registrations matching q.
func (r *RegistrationRepo) List(ctx context.Context, q Query) ([]model.Registration, error) {
	return list(ctx, r.db, registrationsTable, q, scanRegistration)
}

// Create inserts g and reloads it so defaults and timestamps are filled.
// A second registration for the same account yields ErrConflict.
func (r *RegistrationRepo) Create(ctx context.Context, g *model.Registration) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	const qInsert = `INSERT INTO registrations
		(id, user_id, parent_name, student_name, phone, email, service, address,
		 mental_health, specifications, status, contact_status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	if _, err := r.db.ExecContext(ctx, qInsert,
		g.ID, g.UserID, g.ParentName, g.StudentName, g.Phone, g.Email, string(g.Service), g.Address,
		nullString(g.MentalHealth), nullString(g.Specifications), string(g.Status), string(g.ContactStatus)); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	rows, err := r.List(ctx, Query{Filters: []Filter{Eq("id", g.ID)}})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	*g = rows[0]
	return nil
}

// Update applies p to the registrations matching filters.
func (r *RegistrationRepo) Update(ctx context.Context, filters []Filter, p Patch) ([]model.Registration, error) {
	return update(ctx, r.db, registrationsTable, filters, p, scanRegistration)
}

// Delete removes the registrations matching filters.
func (r *RegistrationRepo) Delete(ctx context.Context, filters []Filter) (int64, error) {
	return remove(ctx, r.db, registrationsTable, filters)
}
