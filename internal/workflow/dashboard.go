package workflow

import (
	"context"
	"net/http"

	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
)

// StudentDashboard is the landing page of a student or parent account.
type StudentDashboard struct {
	gw gateway.Gateway

	User         *gateway.User
	Registration *model.Registration
	Sessions     []model.Session
	Tutor        *model.Profile
	TutorPhone   string
}

func NewStudentDashboard(gw gateway.Gateway) *StudentDashboard {
	return &StudentDashboard{gw: gw}
}

// Load resolves the signed-in account. Administrators and tutors are sent
// to their own screens without loading anything else.
func (d *StudentDashboard) Load(ctx context.Context) (Route, error) {
	u, err := d.gw.CurrentUser(ctx)
	if err != nil {
		if gateway.StatusOf(err) == http.StatusUnauthorized {
			return RouteLogin, ErrNotSignedIn
		}
		return RouteLogin, err
	}
	if u == nil {
		return RouteLogin, ErrNotSignedIn
	}
	d.User = u
	if r := RouteFor(u.Role); r != RouteDashboard {
		return r, nil
	}

	var regs []model.Registration
	if err := d.gw.Select(ctx, gateway.Registrations, gateway.Where(gateway.Eq("user_id", u.ID)), &regs); err != nil {
		return RouteDashboard, err
	}
	d.Registration = nil
	if len(regs) > 0 {
		d.Registration = &regs[0]
	}

	q := gateway.Where(gateway.Eq("student_id", u.ID)).OrderBy(gateway.Asc("session_date"), gateway.Asc("start_time"))
	if err := d.gw.Select(ctx, gateway.TutoringSessions, q, &d.Sessions); err != nil {
		return RouteDashboard, err
	}

	d.Tutor, d.TutorPhone = nil, ""
	if err := d.loadTutor(ctx, u.ID); err != nil {
		return RouteDashboard, err
	}
	return RouteDashboard, nil
}

func (d *StudentDashboard) loadTutor(ctx context.Context, studentID string) error {
	var assignments []model.Assignment
	if err := d.gw.Select(ctx, gateway.TutorAssignments, gateway.Where(gateway.Eq("student_id", studentID)), &assignments); err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}
	tutorID := assignments[0].TutorID

	var profiles []model.Profile
	if err := d.gw.Select(ctx, gateway.Profiles, gateway.Where(gateway.Eq("id", tutorID)), &profiles); err != nil {
		return err
	}
	if len(profiles) > 0 {
		d.Tutor = &profiles[0]
	}

	var regs []model.Registration
	if err := d.gw.Select(ctx, gateway.Registrations, gateway.Where(gateway.Eq("user_id", tutorID)), &regs); err != nil {
		return err
	}
	if len(regs) > 0 {
		d.TutorPhone = regs[0].Phone
	}
	return nil
}
