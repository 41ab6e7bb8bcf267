package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/tutoplus/internal/model"
)

var sessionsTable = newTable("tutoring_sessions",
	column{name: "id", readOnly: true},
	column{name: "tutor_id"},
	column{name: "student_id"},
	column{name: "title"},
	column{name: "session_date", expr: "DATE_FORMAT(session_date, '%Y-%m-%d')"},
	column{name: "start_time"},
	column{name: "end_time"},
	column{name: "notes"},
	column{name: "status"},
	column{name: "is_paid", kind: kindBool},
	column{name: "created_at", readOnly: true},
	column{name: "updated_at", readOnly: true},
)

// SessionRepo encapsulates queries on `tutoring_sessions`. Overlapping
// sessions are accepted.
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

func scanSession(rs rowScanner) (model.Session, error) {
	var (
		s     model.Session
		notes sql.NullString
	)
	err := rs.Scan(&s.ID, &s.TutorID, &s.StudentID, &s.Title, &s.SessionDate, &s.StartTime, &s.EndTime,
		&notes, &s.Status, &s.IsPaid, &s.CreatedAt, &s.UpdatedAt)
	s.Notes = stringPtr(notes)
	return s, err
}

// List returns the sessions matching q.
func (r *SessionRepo) List(ctx context.Context, q Query) ([]model.Session, error) {
	return list(ctx, r.db, sessionsTable, q, scanSession)
}

// Create inserts s and reloads it.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const qInsert = `INSERT INTO tutoring_sessions
		(id, tutor_id, student_id, title, session_date, start_time, end_time, notes, status, is_paid)
		VALUES (?,?,?,?,?,?,?,?,?,?)`
	if _, err := r.db.ExecContext(ctx, qInsert,
		s.ID, s.TutorID, s.StudentID, s.Title, s.SessionDate, s.StartTime, s.EndTime,
		nullString(s.Notes), string(s.Status), s.IsPaid); err != nil {
		return err
	}
	rows, err := r.List(ctx, Query{Filters: []Filter{Eq("id", s.ID)}})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	*s = rows[0]
	return nil
}

// Update applies p to the sessions matching filters.
func (r *SessionRepo) Update(ctx context.Context, filters []Filter, p Patch) ([]model.Session, error) {
	return update(ctx, r.db, sessionsTable, filters, p, scanSession)
}

// Delete removes the sessions matching filters.
func (r *SessionRepo) Delete(ctx context.Context, filters []Filter) (int64, error) {
	return remove(ctx, r.db, sessionsTable, filters)
}
