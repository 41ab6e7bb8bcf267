package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iliyamo/tutoplus/internal/calendar"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/workflow"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func paidLabel(paid bool) string {
	if paid {
		return "payée"
	}
	return "non payée"
}

func slot(s model.Session) string {
	return calendar.FormatTime(s.StartTime) + " - " + calendar.FormatTime(s.EndTime)
}

func renderRegistrations(w *tabwriter.Writer, rows []model.Registration) {
	fmt.Fprintln(w, "ID\tREÇUE\tÉLÈVE\tPARENT\tFORFAIT\tSTATUT\tCONTACT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02"), r.StudentName, r.ParentName,
			r.Service.Label(), r.Status.Display().Label, r.ContactStatus.Display().Label)
	}
	_ = w.Flush()
}

func renderRegistration(w *tabwriter.Writer, r *model.Registration) {
	if r == nil {
		return
	}
	fields := [][2]string{
		{"Élève", r.StudentName},
		{"Parent", r.ParentName},
		{"Courriel", r.Email},
		{"Téléphone", r.Phone},
		{"Adresse", r.Address},
		{"Forfait", fmt.Sprintf("%s (%d $/h)", r.Service.Label(), r.Service.Tier().HourlyPrice)},
		{"Santé mentale", deref(r.MentalHealth)},
		{"Précisions", deref(r.Specifications)},
		{"Statut", r.Status.Display().Label},
		{"Contact", r.ContactStatus.Display().Label},
		{"Reçue le", r.CreatedAt.Format("2006-01-02 15:04")},
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\n", f[0], f[1])
	}
	_ = w.Flush()
}

func renderAccounts(w *tabwriter.Writer, a *workflow.Admin, rows []workflow.Account) {
	fmt.Fprintln(w, "ID\tCOURRIEL\tRÔLE\tFORFAIT\tTUTEUR")
	for _, acc := range rows {
		service := ""
		if acc.Registration != nil {
			service = acc.Registration.Service.Label()
		}
		tutor := ""
		if acc.TutorID != "" {
			tutor = acc.TutorID
			if t, err := a.Account(acc.TutorID); err == nil {
				tutor = t.Email
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", acc.ID, acc.Email, acc.Role.Label(), service, tutor)
	}
	_ = w.Flush()
}

func renderSessions(w *tabwriter.Writer, rows []model.Session) {
	fmt.Fprintln(w, "ID\tDATE\tHEURE\tTITRE\tSTATUT\tPAIEMENT")
	for _, s := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.SessionDate, slot(s), s.Title, s.Status.Display().Label, paidLabel(s.IsPaid))
	}
	_ = w.Flush()
}

func renderStudents(w *tabwriter.Writer, rows []workflow.Student) {
	fmt.Fprintln(w, "ID\tÉLÈVE\tCOURRIEL\tTÉLÉPHONE\tFORFAIT")
	for _, s := range rows {
		phone, service := "", ""
		if s.Registration != nil {
			phone = s.Registration.Phone
			service = s.Registration.Service.Label()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name(), s.Email, phone, service)
	}
	_ = w.Flush()
}

var weekdays = []string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}

// renderCalendar prints the month grid, marking days with sessions, then
// the sessions of the month day by day.
func renderCalendar(out io.Writer, t *workflow.TutorBoard) {
	fmt.Fprintf(out, "%s\n\n", t.Month())
	fmt.Fprintln(out, strings.Join(weekdays, " "))
	var busy []workflow.Cell
	for _, week := range t.Calendar() {
		cells := make([]string, len(week))
		for i, c := range week {
			switch {
			case c.Day == 0:
				cells[i] = "   "
			case len(c.Sessions) > 0:
				cells[i] = fmt.Sprintf("%2d*", c.Day)
				busy = append(busy, c)
			default:
				cells[i] = fmt.Sprintf("%2d ", c.Day)
			}
		}
		fmt.Fprintln(out, strings.Join(cells, " "))
	}
	for _, c := range busy {
		fmt.Fprintf(out, "\n%s\n", c.Date)
		for _, s := range c.Sessions {
			fmt.Fprintf(out, "  %s  %s  [%s]  %s\n", slot(s), s.Title, s.Status.Display().Label, s.ID)
		}
	}
}

func renderDashboard(out io.Writer, d *workflow.StudentDashboard) {
	fmt.Fprintf(out, "Compte: %s\n", d.User.Email)
	if r := d.Registration; r != nil {
		fmt.Fprintf(out, "Inscription: %s, %s (%s)\n", r.StudentName, r.Service.Label(), r.Status.Display().Label)
	} else {
		fmt.Fprintln(out, "Inscription: aucune")
	}
	if d.Tutor != nil {
		fmt.Fprintf(out, "Tuteur: %s", d.Tutor.Email)
		if d.TutorPhone != "" {
			fmt.Fprintf(out, ", %s", d.TutorPhone)
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprintln(out, "Tuteur: pas encore assigné")
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	renderSessions(w, d.Sessions)
}
