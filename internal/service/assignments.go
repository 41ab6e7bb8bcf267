package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/repository"
)

// Assignments exposes the tutor/student mapping. Only admins write; the
// tutor side must reference an account whose role is tutor.
type Assignments struct {
	Store    AssignmentStore
	Profiles ProfileStore
}

type assignmentInput struct {
	TutorID   string `json:"tutor_id"`
	StudentID string `json:"student_id"`
}

var assignmentRules = map[string]fieldRule{
	"tutor_id":   textRule("tutor_id"),
	"student_id": textRule("student_id"),
}

func (s *Assignments) Select(ctx context.Context, a Actor, q repository.Query) (any, error) {
	switch a.Role {
	case model.RoleAdmin:
	case model.RoleTutor:
		q.Filters = scoped(q.Filters, repository.Eq("tutor_id", a.ID))
	default:
		q.Filters = scoped(q.Filters, repository.Eq("student_id", a.ID))
	}
	return s.Store.List(ctx, q)
}

func (s *Assignments) Insert(ctx context.Context, a Actor, body []byte) (any, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	var in assignmentInput
	if err := decodeStrict(body, &in); err != nil {
		return nil, err
	}
	clean, err := applyRules(assignmentRules, map[string]any{"tutor_id": in.TutorID, "student_id": in.StudentID})
	if err != nil {
		return nil, err
	}
	row := model.Assignment{TutorID: clean["tutor_id"].(string), StudentID: clean["student_id"].(string)}
	if err := s.checkTutor(ctx, row.TutorID); err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Assignments) Update(ctx context.Context, a Actor, filters []repository.Filter, raw map[string]any) (any, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if err := requireFilters(filters); err != nil {
		return nil, err
	}
	patch, err := applyRules(assignmentRules, raw)
	if err != nil {
		return nil, err
	}
	if tutorID, ok := patch["tutor_id"].(string); ok {
		if err := s.checkTutor(ctx, tutorID); err != nil {
			return nil, err
		}
	}
	return s.Store.Update(ctx, filters, patch)
}

func (s *Assignments) Delete(ctx context.Context, a Actor, filters []repository.Filter) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	if err := requireFilters(filters); err != nil {
		return err
	}
	_, err := s.Store.Delete(ctx, filters)
	return err
}

func (s *Assignments) checkTutor(ctx context.Context, id string) error {
	p, err := s.Profiles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid("tutor_id", "does not reference an account")
	}
	if err != nil {
		return fmt.Errorf("load tutor profile: %w", err)
	}
	if p.Role != model.RoleTutor {
		return invalid("tutor_id", "does not reference a tutor")
	}
	return nil
}
