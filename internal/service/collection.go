package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/repository"
)

// Collection names served by the collection API.
const (
	CollectionProfiles      = "profiles"
	CollectionRegistrations = "registrations"
	CollectionAssignments   = "tutor_assignments"
	CollectionSessions      = "tutoring_sessions"
)

// Collection is one table behind the collection API. Every method applies
// the row policy of the caller's role before touching the store.
type Collection interface {
	Select(ctx context.Context, a Actor, q repository.Query) (any, error)
	Insert(ctx context.Context, a Actor, body []byte) (any, error)
	Update(ctx context.Context, a Actor, filters []repository.Filter, patch map[string]any) (any, error)
	Delete(ctx context.Context, a Actor, filters []repository.Filter) error
}

// Registry maps collection names to their policies.
type Registry map[string]Collection

// NewRegistry wires the four collections over their stores.
func NewRegistry(p ProfileStore, r RegistrationStore, a AssignmentStore, s SessionStore) Registry {
	return Registry{
		CollectionProfiles:      &Profiles{Store: p, Assignments: a},
		CollectionRegistrations: &Registrations{Store: r, Assignments: a},
		CollectionAssignments:   &Assignments{Store: a, Profiles: p},
		CollectionSessions:      &Sessions{Store: s, Assignments: a},
	}
}

// Lookup returns ErrUnknownCollection for names outside the registry.
func (r Registry) Lookup(name string) (Collection, error) {
	c, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return c, nil
}

// decodeStrict unmarshals body into v, refusing unknown fields.
func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// requireFilters refuses unfiltered writes.
func requireFilters(filters []repository.Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("%w: at least one filter is required", ErrValidation)
	}
	return nil
}

func requireAdmin(a Actor) error {
	if a.Role != model.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// visibleStudents returns the students assigned to a tutor.
func visibleStudents(ctx context.Context, store AssignmentStore, tutorID string) ([]string, error) {
	ids, err := store.StudentIDs(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("load assigned students: %w", err)
	}
	return ids, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
