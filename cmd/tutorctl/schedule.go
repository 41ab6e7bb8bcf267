package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/calendar"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/workflow"
)

// schedule is the session list of either the back office or a tutor.
type schedule interface {
	Sessions() []model.Session
	Session(id string) (model.Session, bool)
	CreateSession(ctx context.Context, f workflow.SessionForm) (model.Session, error)
	UpdateSession(ctx context.Context, id string, f workflow.SessionForm) (model.Session, error)
	SetStatus(ctx context.Context, id string, s model.SessionStatus) (model.Session, error)
	TogglePaid(ctx context.Context, id string) (model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type officeSchedule struct{ *workflow.Admin }

func (o officeSchedule) SetStatus(ctx context.Context, id string, s model.SessionStatus) (model.Session, error) {
	return o.SetSessionStatus(ctx, id, s)
}

var (
	_ schedule = officeSchedule{}
	_ schedule = (*workflow.TutorBoard)(nil)
)

var errNoSchedule = errors.New("sessions are managed by tutors and administrators; students use tutorctl dashboard")

func (cli *commandLine) openSchedule(ctx context.Context) (schedule, error) {
	u, err := cli.signedIn()
	if err != nil {
		return nil, err
	}
	switch u.Role {
	case model.RoleAdmin:
		a := workflow.NewAdmin(cli.gw, cli.term, u)
		if err := a.Load(ctx); err != nil {
			return nil, err
		}
		return officeSchedule{a}, nil
	case model.RoleTutor:
		t, err := cli.tutorBoard(ctx)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, errNoSchedule
}

// sessionFlags binds the editable session fields to fs.
func sessionFlags(fs *flag.FlagSet, f *workflow.SessionForm) {
	fs.StringVar(&f.TutorID, "tutor", "", "tutor account id (back office only)")
	fs.StringVar(&f.StudentID, "student", "", "student account id")
	fs.StringVar(&f.Title, "title", "", "session title")
	fs.StringVar(&f.Date, "date", "", "YYYY-MM-DD")
	fs.StringVar(&f.StartTime, "start", "", "HH:MM, default "+workflow.DefaultStart)
	fs.StringVar(&f.EndTime, "end", "", "HH:MM, default "+workflow.DefaultEnd)
	fs.StringVar(&f.Notes, "notes", "", "free text")
}

func (cli *commandLine) sessions(ctx context.Context, args []string) error {
	fs := cli.flags("sessions")
	var f workflow.SessionFilter
	var status, paid string
	fs.StringVar(&status, "status", "", "scheduled, completed, facture_envoyee, recu_envoye or cancelled")
	fs.StringVar(&paid, "paid", "", "yes or no")
	fs.StringVar(&f.TutorID, "tutor", "", "tutor account id")
	fs.StringVar(&f.StudentID, "student", "", "student account id")
	if err := parse(fs, args); err != nil {
		return err
	}
	f.Status = model.SessionStatus(status)
	switch paid {
	case "":
	case "yes", "oui":
		p := true
		f.Paid = &p
	case "no", "non":
		p := false
		f.Paid = &p
	default:
		return fmt.Errorf("-paid must be yes or no, got %q", paid)
	}

	sc, err := cli.openSchedule(ctx)
	if err != nil {
		return err
	}
	var rows []model.Session
	for _, s := range sc.Sessions() {
		if f.Match(s) {
			rows = append(rows, s)
		}
	}
	renderSessions(cli.table(), rows)
	return nil
}

func (cli *commandLine) sessionCreate(ctx context.Context, args []string) error {
	fs := cli.flags("session-create")
	var f workflow.SessionForm
	sessionFlags(fs, &f)
	if err := parse(fs, args, "student", "title", "date"); err != nil {
		return err
	}
	sc, err := cli.openSchedule(ctx)
	if err != nil {
		return err
	}
	s, err := sc.CreateSession(ctx, f)
	if err != nil {
		return err
	}
	renderSessions(cli.table(), []model.Session{s})
	return nil
}

func (cli *commandLine) sessionUpdate(ctx context.Context, args []string) error {
	fs := cli.flags("session-update")
	id := fs.String("id", "", "session id")
	var edits workflow.SessionForm
	sessionFlags(fs, &edits)
	if err := parse(fs, args, "id"); err != nil {
		return err
	}
	sc, err := cli.openSchedule(ctx)
	if err != nil {
		return err
	}
	cur, ok := sc.Session(*id)
	if !ok {
		return fmt.Errorf("session %s: %w", *id, workflow.ErrNotFound)
	}

	// Only the flags given on the command line replace stored values.
	f := workflow.FormFor(cur)
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "tutor":
			f.TutorID = edits.TutorID
		case "student":
			f.StudentID = edits.StudentID
		case "title":
			f.Title = edits.Title
		case "date":
			f.Date = edits.Date
		case "start":
			f.StartTime = edits.StartTime
		case "end":
			f.EndTime = edits.EndTime
		case "notes":
			f.Notes = edits.Notes
		}
	})
	s, err := sc.UpdateSession(ctx, *id, f)
	if err != nil {
		return err
	}
	renderSessions(cli.table(), []model.Session{s})
	return nil
}

func (cli *commandLine) sessionStatus(ctx context.Context, args []string) error {
	fs := cli.flags("session-status")
	id := fs.String("id", "", "session id")
	status := fs.String("status", "", "scheduled, completed, facture_envoyee, recu_envoye or cancelled")
	if err := parse(fs, args, "id", "status"); err != nil {
		return err
	}
	sc, err := cli.openSchedule(ctx)
	if err != nil {
		return err
	}
	s, err := sc.SetStatus(ctx, *id, model.SessionStatus(*status))
	if err != nil {
		return err
	}
	renderSessions(cli.table(), []model.Session{s})
	return nil
}

func (cli *commandLine) sessionPaid(ctx context.Context, args []string) error {
	fs := cli.flags("session-paid")
	id := fs.String("id", "", "session id")
	if err := parse(fs, args, "id"); err != nil {
		return err
	}
	sc, err := cli.openSchedule(ctx)
	if err != nil {
		return err
	}
	s, err := sc.TogglePaid(ctx, *id)
	if err != nil {
		return err
	}
	renderSessions(cli.table(), []model.Session{s})
	return nil
}

func (cli *commandLine) sessionDelete(ctx context.Context, args []string) error {
	fs := cli.flags("session-delete")
	id := fs.String("id", "", "session id")
	cli.assumeYes(fs)
	if err := parse(fs, args, "id"); err != nil {
		return err
	}
	sc, err := cli.openSchedule(ctx)
	if err != nil {
		return err
	}
	if err := sc.DeleteSession(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Séance supprimée")
	return nil
}

// ── Tutor board ─────────────────────────────────────────────────────

func (cli *commandLine) showCalendar(ctx context.Context, args []string) error {
	fs := cli.flags("calendar")
	month := fs.String("month", "", "YYYY-MM, default the current month")
	if err := parse(fs, args); err != nil {
		return err
	}
	t, err := cli.tutorBoard(ctx)
	if err != nil {
		return err
	}
	if *month != "" {
		m, err := calendar.ParseMonth(*month)
		if err != nil {
			return err
		}
		t.SetMonth(m)
	}
	renderCalendar(cli.out, t)
	return nil
}

func (cli *commandLine) students(ctx context.Context, args []string) error {
	if err := parse(cli.flags("students"), args); err != nil {
		return err
	}
	t, err := cli.tutorBoard(ctx)
	if err != nil {
		return err
	}
	renderStudents(cli.table(), t.Students())
	return nil
}
