package service

import (
	"context"
	"strings"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/repository"
)

// Registrations exposes intake records. Admins have full access. Tutors
// read the rows of their students. Users read their own row plus the phone
// number of their tutor, and may submit their own row once.
type Registrations struct {
	Store       RegistrationStore
	Assignments AssignmentStore
}

type registrationInput struct {
	UserID         string  `json:"user_id"`
	ParentName     string  `json:"parent_name"`
	StudentName    string  `json:"student_name"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Service        string  `json:"service"`
	Address        string  `json:"address"`
	MentalHealth   *string `json:"mental_health"`
	Specifications *string `json:"specifications"`
	Status         string  `json:"status"`
	ContactStatus  string  `json:"contact_status"`
}

var registrationRules = map[string]fieldRule{
	"user_id":        textRule("user_id"),
	"parent_name":    textRule("parent_name"),
	"student_name":   textRule("student_name"),
	"phone":          textRule("phone"),
	"email":          textRule("email"),
	"address":        textRule("address"),
	"service":        enumRule[model.Service]("service", model.Service.Valid),
	"mental_health":  optionalTextRule("mental_health"),
	"specifications": optionalTextRule("specifications"),
	"status":         enumRule[model.RegistrationStatus]("status", model.RegistrationStatus.Valid),
	"contact_status": enumRule[model.ContactStatus]("contact_status", model.ContactStatus.Valid),
}

// Placeholder rows filed by an administrator may carry a blank email.
var adminRegistrationRules = withRule(registrationRules, "email", trimRule("email"))

func (s *Registrations) Select(ctx context.Context, a Actor, q repository.Query) (any, error) {
	switch a.Role {
	case model.RoleAdmin:
		return s.Store.List(ctx, q)
	case model.RoleTutor:
		ids, err := visibleStudents(ctx, s.Assignments, a.ID)
		if err != nil {
			return nil, err
		}
		q.Filters = scoped(q.Filters, repository.In("user_id", ids...))
		return s.Store.List(ctx, q)
	}

	tutorID, err := s.Assignments.TutorID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	owners := []string{a.ID}
	if tutorID != "" {
		owners = append(owners, tutorID)
	}
	q.Filters = scoped(q.Filters, repository.In("user_id", owners...))
	rows, err := s.Store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if r.UserID != a.ID {
			rows[i] = model.Registration{ID: r.ID, UserID: r.UserID, Phone: r.Phone}
		}
	}
	return rows, nil
}

func (s *Registrations) Insert(ctx context.Context, a Actor, body []byte) (any, error) {
	var in registrationInput
	if err := decodeStrict(body, &in); err != nil {
		return nil, err
	}
	rules := registrationRules
	switch a.Role {
	case model.RoleAdmin:
		rules = adminRegistrationRules
	case model.RoleUser:
		in.UserID = a.ID
		in.Status = string(model.RegistrationPending)
		in.ContactStatus = string(model.ContactNotContacted)
	default:
		return nil, ErrForbidden
	}
	if in.Status == "" {
		in.Status = string(model.RegistrationPending)
	}
	if in.ContactStatus == "" {
		in.ContactStatus = string(model.ContactNotContacted)
	}

	fields := map[string]any{
		"user_id":        in.UserID,
		"parent_name":    in.ParentName,
		"student_name":   in.StudentName,
		"phone":          in.Phone,
		"email":          in.Email,
		"service":        in.Service,
		"address":        in.Address,
		"mental_health":  derefOrNil(in.MentalHealth),
		"specifications": derefOrNil(in.Specifications),
		"status":         in.Status,
		"contact_status": in.ContactStatus,
	}
	clean, err := applyRules(rules, fields)
	if err != nil {
		return nil, err
	}
	g := model.Registration{
		UserID:         clean["user_id"].(string),
		ParentName:     clean["parent_name"].(string),
		StudentName:    clean["student_name"].(string),
		Phone:          clean["phone"].(string),
		Email:          strings.ToLower(clean["email"].(string)),
		Service:        model.Service(clean["service"].(string)),
		Address:        clean["address"].(string),
		MentalHealth:   optionalString(clean["mental_health"]),
		Specifications: optionalString(clean["specifications"]),
		Status:         model.RegistrationStatus(clean["status"].(string)),
		ContactStatus:  model.ContactStatus(clean["contact_status"].(string)),
	}
	if err := s.Store.Create(ctx, &g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Registrations) Update(ctx context.Context, a Actor, filters []repository.Filter, raw map[string]any) (any, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if err := requireFilters(filters); err != nil {
		return nil, err
	}
	patch, err := applyRules(registrationRules, raw)
	if err != nil {
		return nil, err
	}
	return s.Store.Update(ctx, filters, patch)
}

func (s *Registrations) Delete(ctx context.Context, a Actor, filters []repository.Filter) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	if err := requireFilters(filters); err != nil {
		return err
	}
	_, err := s.Store.Delete(ctx, filters)
	return err
}

func derefOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
