package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/tutoplus/internal/calendar"
	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
)

// Student is an assigned student as the tutor sees them.
type Student struct {
	model.Profile
	Registration *model.Registration
}

// Name is the student name from the registration, else the email.
func (s Student) Name() string {
	if s.Registration != nil && s.Registration.StudentName != "" {
		return s.Registration.StudentName
	}
	return s.Email
}

// Cell is one calendar day. Day is 0 for the leading and trailing blanks.
type Cell struct {
	Day      int
	Date     string
	Sessions []model.Session
}

// TutorBoard is the tutor's view: assigned students and a month calendar
// of their own sessions. Data is fetched once by Load; month navigation is
// client side.
type TutorBoard struct {
	gw     gateway.Gateway
	prompt Prompter
	self   gateway.User

	students []Student
	book     sessionBook
	month    calendar.Month
}

// NewTutorBoard opens the board on the month containing now.
func NewTutorBoard(gw gateway.Gateway, p Prompter, self gateway.User, now time.Time) *TutorBoard {
	return &TutorBoard{
		gw:     gw,
		prompt: p,
		self:   self,
		book: sessionBook{
			gw:     gw,
			prompt: p,
			scope:  []gateway.Filter{gateway.Eq("tutor_id", self.ID)},
		},
		month: calendar.MonthOf(now),
	}
}

// Load fetches the assigned students with their profiles and registrations,
// then the tutor's sessions in date order.
func (t *TutorBoard) Load(ctx context.Context) error {
	var assignments []model.Assignment
	q := gateway.Where(gateway.Eq("tutor_id", t.self.ID))
	if err := t.gw.Select(ctx, gateway.TutorAssignments, q, &assignments); err != nil {
		return alert(t.prompt, "Erreur de chargement des élèves", err)
	}
	ids := make([]string, 0, len(assignments))
	for _, as := range assignments {
		ids = append(ids, as.StudentID)
	}

	var students []Student
	if len(ids) > 0 {
		var profiles []model.Profile
		if err := t.gw.Select(ctx, gateway.Profiles, gateway.Where(gateway.In("id", ids...)), &profiles); err != nil {
			return alert(t.prompt, "Erreur de chargement des élèves", err)
		}
		var regs []model.Registration
		if err := t.gw.Select(ctx, gateway.Registrations, gateway.Where(gateway.In("user_id", ids...)), &regs); err != nil {
			return alert(t.prompt, "Erreur de chargement des inscriptions", err)
		}
		byUser := make(map[string]model.Registration, len(regs))
		for _, r := range regs {
			byUser[r.UserID] = r
		}
		for _, p := range profiles {
			s := Student{Profile: p}
			if r, ok := byUser[p.ID]; ok {
				s.Registration = &r
			}
			students = append(students, s)
		}
	}

	if err := t.book.load(ctx, gateway.Eq("tutor_id", t.self.ID)); err != nil {
		return err
	}
	t.students = students
	return nil
}

func (t *TutorBoard) Students() []Student { return t.students }

// Student looks up an assigned student.
func (t *TutorBoard) Student(id string) (Student, bool) {
	i := indexOf(t.students, func(s Student) bool { return s.ID == id })
	if i < 0 {
		return Student{}, false
	}
	return t.students[i], true
}

func (t *TutorBoard) Sessions() []model.Session { return t.book.rows }

// Session looks up a loaded session.
func (t *TutorBoard) Session(id string) (model.Session, bool) { return t.book.get(id) }

func (t *TutorBoard) Month() calendar.Month { return t.month }
func (t *TutorBoard) Next()                 { t.month = t.month.Shift(1) }
func (t *TutorBoard) Prev()                 { t.month = t.month.Shift(-1) }

// SetMonth jumps to m without refetching.
func (t *TutorBoard) SetMonth(m calendar.Month) { t.month = m }

// Calendar returns the displayed month as weeks of seven cells.
func (t *TutorBoard) Calendar() [][]Cell {
	byDay := calendar.Bucket(t.month, t.book.rows, func(s model.Session) string { return s.SessionDate })
	weeks := t.month.Weeks()
	out := make([][]Cell, len(weeks))
	for i, week := range weeks {
		out[i] = make([]Cell, len(week))
		for j, d := range week {
			if d == 0 {
				continue
			}
			out[i][j] = Cell{Day: d, Date: t.month.Key(d), Sessions: byDay[d]}
		}
	}
	return out
}

// SessionsOn lists the sessions of one day of the displayed month.
func (t *TutorBoard) SessionsOn(day int) []model.Session {
	return calendar.Bucket(t.month, t.book.rows, func(s model.Session) string { return s.SessionDate })[day]
}

// CreateSession schedules a session with one of the tutor's students.
func (t *TutorBoard) CreateSession(ctx context.Context, f SessionForm) (model.Session, error) {
	if _, ok := t.Student(f.StudentID); !ok {
		return model.Session{}, &FormError{"student_id", ErrNotAssigned.Error()}
	}
	f.TutorID = t.self.ID
	return t.book.create(ctx, f)
}

// UpdateSession edits a session. The tutor and student cannot be moved to
// someone outside the tutor's list.
func (t *TutorBoard) UpdateSession(ctx context.Context, id string, f SessionForm) (model.Session, error) {
	if _, ok := t.Student(f.StudentID); !ok {
		return model.Session{}, &FormError{"student_id", ErrNotAssigned.Error()}
	}
	f.TutorID = t.self.ID
	return t.book.update(ctx, id, f, "tutor_id")
}

func (t *TutorBoard) MarkCompleted(ctx context.Context, id string) (model.Session, error) {
	return t.SetStatus(ctx, id, model.SessionCompleted)
}

// SetStatus accepts only the statuses a tutor may set.
func (t *TutorBoard) SetStatus(ctx context.Context, id string, s model.SessionStatus) (model.Session, error) {
	if !s.TutorSettable() {
		return model.Session{}, &FormError{"status", fmt.Sprintf("status %q is reserved to the office", s)}
	}
	return t.book.setStatus(ctx, id, s)
}

func (t *TutorBoard) TogglePaid(ctx context.Context, id string) (model.Session, error) {
	return t.book.togglePaid(ctx, id)
}

func (t *TutorBoard) DeleteSession(ctx context.Context, id string) error {
	return t.book.remove(ctx, id)
}
