package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/repository"
)

// Profiles exposes account profiles. Tutors see themselves and their
// students, users see themselves and their tutor. Only admins write, and
// only the role column.
type Profiles struct {
	Store       ProfileStore
	Assignments AssignmentStore
}

var profileRules = map[string]fieldRule{
	"role": enumRule[model.Role]("role", model.Role.Valid),
}

func (p *Profiles) Select(ctx context.Context, a Actor, q repository.Query) (any, error) {
	switch a.Role {
	case model.RoleAdmin:
	case model.RoleTutor:
		ids, err := visibleStudents(ctx, p.Assignments, a.ID)
		if err != nil {
			return nil, err
		}
		q.Filters = scoped(q.Filters, repository.In("id", append(ids, a.ID)...))
	default:
		ids := []string{a.ID}
		tutorID, err := p.Assignments.TutorID(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("load assigned tutor: %w", err)
		}
		if tutorID != "" {
			ids = append(ids, tutorID)
		}
		q.Filters = scoped(q.Filters, repository.In("id", ids...))
	}
	return p.Store.List(ctx, q)
}

// Insert is refused: profiles are created with their identity at signup.
func (p *Profiles) Insert(context.Context, Actor, []byte) (any, error) {
	return nil, ErrForbidden
}

func (p *Profiles) Update(ctx context.Context, a Actor, filters []repository.Filter, raw map[string]any) (any, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if err := requireFilters(filters); err != nil {
		return nil, err
	}
	patch, err := applyRules(profileRules, raw)
	if err != nil {
		return nil, err
	}
	if err := p.guardSelf(ctx, a, filters); err != nil {
		return nil, err
	}
	return p.Store.Update(ctx, filters, patch)
}

// Delete removes profile rows only; the identity behind them survives.
func (p *Profiles) Delete(ctx context.Context, a Actor, filters []repository.Filter) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	if err := requireFilters(filters); err != nil {
		return err
	}
	if err := p.guardSelf(ctx, a, filters); err != nil {
		return err
	}
	_, err := p.Store.Delete(ctx, filters)
	return err
}

// guardSelf fails with ErrSelfLockout when filters match the caller's own
// profile.
func (p *Profiles) guardSelf(ctx context.Context, a Actor, filters []repository.Filter) error {
	rows, err := p.Store.List(ctx, repository.Query{Filters: filters})
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.ID == a.ID {
			return ErrSelfLockout
		}
	}
	return nil
}
