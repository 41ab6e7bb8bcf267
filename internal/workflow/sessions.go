package workflow

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/iliyamo/tutoplus/internal/calendar"
	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
)

// FormError is an inline error on one form field. No remote call was made.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Default slot for a new session.
const (
	DefaultStart = model.DefaultStartTime
	DefaultEnd   = model.DefaultEndTime
)

// SessionForm is the editable part of a tutoring session.
type SessionForm struct {
	TutorID   string
	StudentID string
	Title     string
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string
	Notes     string
}

// FormFor fills a form from an existing session, for editing.
func FormFor(s model.Session) SessionForm {
	f := SessionForm{
		TutorID:   s.TutorID,
		StudentID: s.StudentID,
		Title:     s.Title,
		Date:      s.SessionDate,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
	if s.Notes != nil {
		f.Notes = *s.Notes
	}
	return f
}

// clean applies the default slot and checks every field.
func (f SessionForm) clean() (SessionForm, error) {
	if f.StartTime == "" {
		f.StartTime = DefaultStart
	}
	if f.EndTime == "" {
		f.EndTime = DefaultEnd
	}
	f.Title = strings.TrimSpace(f.Title)
	f.Notes = strings.TrimSpace(f.Notes)
	switch {
	case f.TutorID == "":
		return f, &FormError{"tutor_id", "choose a tutor"}
	case f.StudentID == "":
		return f, &FormError{"student_id", "choose a student"}
	case f.Title == "":
		return f, &FormError{"title", "title is required"}
	}
	var err error
	if f.Date, err = calendar.NormalizeDate(f.Date); err != nil {
		return f, &FormError{"session_date", err.Error()}
	}
	if f.StartTime, err = calendar.NormalizeClock(f.StartTime); err != nil {
		return f, &FormError{"start_time", err.Error()}
	}
	if f.EndTime, err = calendar.NormalizeClock(f.EndTime); err != nil {
		return f, &FormError{"end_time", err.Error()}
	}
	return f, nil
}

func (f SessionForm) fields() map[string]any {
	return map[string]any{
		"tutor_id":     f.TutorID,
		"student_id":   f.StudentID,
		"title":        f.Title,
		"session_date": f.Date,
		"start_time":   f.StartTime,
		"end_time":     f.EndTime,
		"notes":        optional(f.Notes),
	}
}

// SessionFilter narrows the back-office session list. Zero fields match
// everything.
type SessionFilter struct {
	Status    model.SessionStatus
	Paid      *bool
	TutorID   string
	StudentID string
}

// Match reports whether s passes every set field.
func (f SessionFilter) Match(s model.Session) bool {
	return (f.Status == "" || s.Status == f.Status) &&
		(f.Paid == nil || s.IsPaid == *f.Paid) &&
		(f.TutorID == "" || s.TutorID == f.TutorID) &&
		(f.StudentID == "" || s.StudentID == f.StudentID)
}

// sessionBook is the fetched session list shared by the admin and tutor
// views. scope is added to every write filter.
type sessionBook struct {
	gw     gateway.Gateway
	prompt Prompter
	scope  []gateway.Filter
	desc   bool
	rows   []model.Session
}

func (b *sessionBook) load(ctx context.Context, filters ...gateway.Filter) error {
	dir := gateway.Asc
	if b.desc {
		dir = gateway.Desc
	}
	q := gateway.Where(filters...).OrderBy(dir("session_date"), dir("start_time"))
	var rows []model.Session
	if err := b.gw.Select(ctx, gateway.TutoringSessions, q, &rows); err != nil {
		return alert(b.prompt, "Erreur de chargement des séances", err)
	}
	b.rows = rows
	return nil
}

func (b *sessionBook) sort() {
	slices.SortStableFunc(b.rows, func(x, y model.Session) int {
		c := strings.Compare(x.SessionDate+x.StartTime, y.SessionDate+y.StartTime)
		if b.desc {
			return -c
		}
		return c
	})
}

func (b *sessionBook) find(id string) (int, error) {
	i := indexOf(b.rows, func(s model.Session) bool { return s.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return i, nil
}

func (b *sessionBook) get(id string) (model.Session, bool) {
	i := indexOf(b.rows, func(s model.Session) bool { return s.ID == id })
	if i < 0 {
		return model.Session{}, false
	}
	return b.rows[i], true
}

func (b *sessionBook) writeFilters(id string) []gateway.Filter {
	return append(slices.Clone(b.scope), gateway.Eq("id", id))
}

// create inserts a scheduled, unpaid session.
func (b *sessionBook) create(ctx context.Context, form SessionForm) (model.Session, error) {
	form, err := form.clean()
	if err != nil {
		return model.Session{}, err
	}
	rec := form.fields()
	rec["status"] = model.SessionScheduled
	rec["is_paid"] = false

	var row model.Session
	if err := b.gw.Insert(ctx, gateway.TutoringSessions, rec, &row); err != nil {
		return model.Session{}, alert(b.prompt, "Erreur lors de la création", err)
	}
	b.rows = append(b.rows, row)
	b.sort()
	return row, nil
}

// patch writes the given columns and mirrors them into the local row.
func (b *sessionBook) patch(ctx context.Context, id string, patch map[string]any) (model.Session, error) {
	i, err := b.find(id)
	if err != nil {
		return model.Session{}, err
	}
	if err := b.gw.Update(ctx, gateway.TutoringSessions, b.writeFilters(id), patch, nil); err != nil {
		return model.Session{}, alert(b.prompt, "Erreur lors de la mise à jour", err)
	}
	row := b.rows[i]
	applySessionPatch(&row, patch)
	b.rows[i] = row
	b.sort()
	return row, nil
}

func (b *sessionBook) update(ctx context.Context, id string, form SessionForm, drop ...string) (model.Session, error) {
	form, err := form.clean()
	if err != nil {
		return model.Session{}, err
	}
	patch := form.fields()
	for _, k := range drop {
		delete(patch, k)
	}
	return b.patch(ctx, id, patch)
}

func (b *sessionBook) setStatus(ctx context.Context, id string, s model.SessionStatus) (model.Session, error) {
	if !s.Valid() {
		return model.Session{}, &FormError{"status", fmt.Sprintf("unknown status %q", s)}
	}
	return b.patch(ctx, id, map[string]any{"status": s})
}

func (b *sessionBook) togglePaid(ctx context.Context, id string) (model.Session, error) {
	i, err := b.find(id)
	if err != nil {
		return model.Session{}, err
	}
	return b.patch(ctx, id, map[string]any{"is_paid": !b.rows[i].IsPaid})
}

func (b *sessionBook) remove(ctx context.Context, id string) error {
	i, err := b.find(id)
	if err != nil {
		return err
	}
	s := b.rows[i]
	if err := confirm(ctx, b.prompt, fmt.Sprintf("Supprimer la séance « %s » du %s ?", s.Title, s.SessionDate)); err != nil {
		return err
	}
	if err := b.gw.Delete(ctx, gateway.TutoringSessions, b.writeFilters(id)); err != nil {
		return alert(b.prompt, "Erreur lors de la suppression", err)
	}
	b.rows = removeWhere(b.rows, func(r model.Session) bool { return r.ID == id })
	return nil
}

func (b *sessionBook) dropUser(userID string) {
	b.rows = removeWhere(b.rows, func(s model.Session) bool { return s.StudentID == userID || s.TutorID == userID })
}

func applySessionPatch(s *model.Session, patch map[string]any) {
	for k, v := range patch {
		switch k {
		case "tutor_id":
			s.TutorID = v.(string)
		case "student_id":
			s.StudentID = v.(string)
		case "title":
			s.Title = v.(string)
		case "session_date":
			s.SessionDate = v.(string)
		case "start_time":
			s.StartTime = v.(string)
		case "end_time":
			s.EndTime = v.(string)
		case "notes":
			s.Notes, _ = v.(*string)
		case "status":
			s.Status = v.(model.SessionStatus)
		case "is_paid":
			s.IsPaid = v.(bool)
		}
	}
}
