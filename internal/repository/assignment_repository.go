package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/tutoplus/internal/model"
)

var assignmentsTable = newTable("tutor_assignments",
	column{name: "id", readOnly: true},
	column{name: "tutor_id"},
	column{name: "student_id"},
	column{name: "created_at", readOnly: true},
)

// AssignmentRepo encapsulates queries on `tutor_assignments`.
type AssignmentRepo struct{ db *sql.DB }

func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

func scanAssignment(rs rowScanner) (model.Assignment, error) {
	var a model.Assignment
	err := rs.Scan(&a.ID, &a.TutorID, &a.StudentID, &a.CreatedAt)
	return a, err
}

// List returns the assignments matching q.
func (r *AssignmentRepo) List(ctx context.Context, q Query) ([]model.Assignment, error) {
	return list(ctx, r.db, assignmentsTable, q, scanAssignment)
}

// Create inserts a. A second assignment for the same student yields
// ErrConflict.
func (r *AssignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO tutor_assignments (id, tutor_id, student_id) VALUES (?,?,?)",
		a.ID, a.TutorID, a.StudentID); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	rows, err := r.List(ctx, Query{Filters: []Filter{Eq("id", a.ID)}})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	*a = rows[0]
	return nil
}

// Update applies p to the assignments matching filters.
func (r *AssignmentRepo) Update(ctx context.Context, filters []Filter, p Patch) ([]model.Assignment, error) {
	return update(ctx, r.db, assignmentsTable, filters, p, scanAssignment)
}

// Delete removes the assignments matching filters.
func (r *AssignmentRepo) Delete(ctx context.Context, filters []Filter) (int64, error) {
	return remove(ctx, r.db, assignmentsTable, filters)
}

// StudentIDs returns the students assigned to tutorID.
func (r *AssignmentRepo) StudentIDs(ctx context.Context, tutorID string) ([]string, error) {
	rows, err := r.List(ctx, Query{Filters: []Filter{Eq("tutor_id", tutorID)}})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, a := range rows {
		ids[i] = a.StudentID
	}
	return ids, nil
}

// TutorID returns the tutor assigned to studentID, or "" when none.
func (r *AssignmentRepo) TutorID(ctx context.Context, studentID string) (string, error) {
	rows, err := r.List(ctx, Query{Filters: []Filter{Eq("student_id", studentID)}})
	if err != nil || len(rows) == 0 {
		return "", err
	}
	return rows[0].TutorID, nil
}
