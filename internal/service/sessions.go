package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/repository"
)

// Sessions exposes tutoring sessions. Admins have full access. Tutors
// manage their own sessions, for their assigned students only, and cannot
// move a session into the billing states. Users read their own sessions.
type Sessions struct {
	Store       SessionStore
	Assignments AssignmentStore
}

type sessionInput struct {
	TutorID     string  `json:"tutor_id"`
	StudentID   string  `json:"student_id"`
	Title       string  `json:"title"`
	SessionDate string  `json:"session_date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Notes       *string `json:"notes"`
	Status      string  `json:"status"`
	IsPaid      *bool   `json:"is_paid"`
}

var sessionRules = map[string]fieldRule{
	"tutor_id":     textRule("tutor_id"),
	"student_id":   textRule("student_id"),
	"title":        textRule("title"),
	"session_date": dateRule("session_date"),
	"start_time":   clockRule("start_time"),
	"end_time":     clockRule("end_time"),
	"notes":        optionalTextRule("notes"),
	"status":       enumRule[model.SessionStatus]("status", model.SessionStatus.Valid),
	"is_paid":      boolRule("is_paid"),
}

func (s *Sessions) Select(ctx context.Context, a Actor, q repository.Query) (any, error) {
	switch a.Role {
	case model.RoleAdmin:
	case model.RoleTutor:
		q.Filters = scoped(q.Filters, repository.Eq("tutor_id", a.ID))
	default:
		q.Filters = scoped(q.Filters, repository.Eq("student_id", a.ID))
	}
	return s.Store.List(ctx, q)
}

func (s *Sessions) Insert(ctx context.Context, a Actor, body []byte) (any, error) {
	var in sessionInput
	if err := decodeStrict(body, &in); err != nil {
		return nil, err
	}
	switch a.Role {
	case model.RoleAdmin:
	case model.RoleTutor:
		in.TutorID = a.ID
	default:
		return nil, ErrForbidden
	}
	if in.Status == "" {
		in.Status = string(model.SessionScheduled)
	}
	if in.StartTime == "" {
		in.StartTime = model.DefaultStartTime
	}
	if in.EndTime == "" {
		in.EndTime = model.DefaultEndTime
	}
	paid := false
	if in.IsPaid != nil {
		paid = *in.IsPaid
	}

	clean, err := applyRules(sessionRules, map[string]any{
		"tutor_id":     in.TutorID,
		"student_id":   in.StudentID,
		"title":        in.Title,
		"session_date": in.SessionDate,
		"start_time":   in.StartTime,
		"end_time":     in.EndTime,
		"notes":        derefOrNil(in.Notes),
		"status":       in.Status,
		"is_paid":      paid,
	})
	if err != nil {
		return nil, err
	}
	if a.Role == model.RoleTutor {
		if err := s.tutorGuard(ctx, a, clean); err != nil {
			return nil, err
		}
	}

	row := model.Session{
		TutorID:     clean["tutor_id"].(string),
		StudentID:   clean["student_id"].(string),
		Title:       clean["title"].(string),
		SessionDate: clean["session_date"].(string),
		StartTime:   clean["start_time"].(string),
		EndTime:     clean["end_time"].(string),
		Notes:       optionalString(clean["notes"]),
		Status:      model.SessionStatus(clean["status"].(string)),
		IsPaid:      clean["is_paid"].(bool),
	}
	if err := s.Store.Create(ctx, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Sessions) Update(ctx context.Context, a Actor, filters []repository.Filter, raw map[string]any) (any, error) {
	if err := requireFilters(filters); err != nil {
		return nil, err
	}
	switch a.Role {
	case model.RoleAdmin:
	case model.RoleTutor:
		if _, ok := raw["tutor_id"]; ok {
			return nil, ErrForbidden
		}
		filters = scoped(filters, repository.Eq("tutor_id", a.ID))
	default:
		return nil, ErrForbidden
	}
	patch, err := applyRules(sessionRules, raw)
	if err != nil {
		return nil, err
	}
	if a.Role == model.RoleTutor {
		if err := s.tutorGuard(ctx, a, patch); err != nil {
			return nil, err
		}
	}
	return s.Store.Update(ctx, filters, patch)
}

func (s *Sessions) Delete(ctx context.Context, a Actor, filters []repository.Filter) error {
	if err := requireFilters(filters); err != nil {
		return err
	}
	switch a.Role {
	case model.RoleAdmin:
	case model.RoleTutor:
		filters = scoped(filters, repository.Eq("tutor_id", a.ID))
	default:
		return ErrForbidden
	}
	_, err := s.Store.Delete(ctx, filters)
	return err
}

// tutorGuard checks the tutor-only limits on a normalized field set: the
// student must be assigned to the tutor and the status must stay outside
// the billing states.
func (s *Sessions) tutorGuard(ctx context.Context, a Actor, fields map[string]any) error {
	if st, ok := fields["status"].(string); ok && !model.SessionStatus(st).TutorSettable() {
		return fmt.Errorf("%w: status %s is reserved to administrators", ErrForbidden, st)
	}
	if student, ok := fields["student_id"].(string); ok {
		ids, err := visibleStudents(ctx, s.Assignments, a.ID)
		if err != nil {
			return err
		}
		if !contains(ids, student) {
			return fmt.Errorf("%w: student is not assigned to you", ErrForbidden)
		}
	}
	return nil
}
