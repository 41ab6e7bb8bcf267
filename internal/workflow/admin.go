package workflow

import (
	"context"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
)

// Placeholder is written into required text fields the back office does
// not know when it creates a registration on an account's behalf.
const Placeholder = model.NotSpecified

// Account is a profile joined with its registration and, for students,
// the assigned tutor.
type Account struct {
	model.Profile
	Registration *model.Registration
	TutorID      string
}

// Admin is the back office: registration review, account and assignment
// management, and the full session schedule.
type Admin struct {
	gw     gateway.Gateway
	prompt Prompter
	self   gateway.User

	registrations []model.Registration
	statusFilter  model.RegistrationStatus
	selectedID    string

	profiles    []model.Profile
	assignments []model.Assignment

	book          sessionBook
	sessionFilter SessionFilter
}

// NewAdmin builds the back office for the signed-in administrator self.
func NewAdmin(gw gateway.Gateway, p Prompter, self gateway.User) *Admin {
	return &Admin{
		gw:     gw,
		prompt: p,
		self:   self,
		book:   sessionBook{gw: gw, prompt: p, desc: true},
	}
}

// Load fetches everything the back office shows.
func (a *Admin) Load(ctx context.Context) error {
	if err := a.LoadAccounts(ctx); err != nil {
		return err
	}
	return a.LoadSessions(ctx)
}

// ── Registrations ───────────────────────────────────────────────────

// LoadRegistrations fetches every registration, newest first.
func (a *Admin) LoadRegistrations(ctx context.Context) error {
	var rows []model.Registration
	q := gateway.Query{}.OrderBy(gateway.Desc("created_at"))
	if err := a.gw.Select(ctx, gateway.Registrations, q, &rows); err != nil {
		return alert(a.prompt, "Erreur de chargement des inscriptions", err)
	}
	a.registrations = rows
	if a.selectedID != "" && a.findRegistration(a.selectedID) < 0 {
		a.selectedID = ""
	}
	return nil
}

// FilterRegistrations keeps the rows with the given approval status, in
// order. An empty status keeps everything.
func FilterRegistrations(rows []model.Registration, status model.RegistrationStatus) []model.Registration {
	out := make([]model.Registration, 0, len(rows))
	for _, r := range rows {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// FilterByStatus sets the approval-status filter; "" shows all.
func (a *Admin) FilterByStatus(s model.RegistrationStatus) { a.statusFilter = s }

func (a *Admin) VisibleRegistrations() []model.Registration {
	return FilterRegistrations(a.registrations, a.statusFilter)
}

func (a *Admin) findRegistration(id string) int {
	return indexOf(a.registrations, func(r model.Registration) bool { return r.ID == id })
}

func (a *Admin) SelectRegistration(id string) error {
	if a.findRegistration(id) < 0 {
		return fmt.Errorf("registration %s: %w", id, ErrNotFound)
	}
	a.selectedID = id
	return nil
}

// Selected returns the inspected registration, or nil.
func (a *Admin) Selected() *model.Registration {
	if i := a.findRegistration(a.selectedID); i >= 0 {
		r := a.registrations[i]
		return &r
	}
	return nil
}

func (a *Admin) patchRegistration(ctx context.Context, id string, patch map[string]any, apply func(*model.Registration)) error {
	i := a.findRegistration(id)
	if i < 0 {
		return fmt.Errorf("registration %s: %w", id, ErrNotFound)
	}
	if err := a.gw.Update(ctx, gateway.Registrations, []gateway.Filter{gateway.Eq("id", id)}, patch, nil); err != nil {
		return alert(a.prompt, "Erreur lors de la mise à jour", err)
	}
	apply(&a.registrations[i])
	return nil
}

// SetRegistrationStatus approves, refuses or resets a registration.
func (a *Admin) SetRegistrationStatus(ctx context.Context, id string, s model.RegistrationStatus) error {
	if !s.Valid() {
		return &FormError{"status", fmt.Sprintf("unknown status %q", s)}
	}
	return a.patchRegistration(ctx, id, map[string]any{"status": s}, func(r *model.Registration) { r.Status = s })
}

// SetContactStatus moves the outreach tracker; approval is untouched.
func (a *Admin) SetContactStatus(ctx context.Context, id string, s model.ContactStatus) error {
	if !s.Valid() {
		return &FormError{"contact_status", fmt.Sprintf("unknown status %q", s)}
	}
	return a.patchRegistration(ctx, id, map[string]any{"contact_status": s}, func(r *model.Registration) { r.ContactStatus = s })
}

// DeleteRegistration asks for confirmation, deletes the row and drops it
// from every local view.
func (a *Admin) DeleteRegistration(ctx context.Context, id string) error {
	i := a.findRegistration(id)
	if i < 0 {
		return fmt.Errorf("registration %s: %w", id, ErrNotFound)
	}
	r := a.registrations[i]
	if err := confirm(ctx, a.prompt, fmt.Sprintf("Supprimer l'inscription de %s ?", r.StudentName)); err != nil {
		return err
	}
	if err := a.gw.Delete(ctx, gateway.Registrations, []gateway.Filter{gateway.Eq("id", id)}); err != nil {
		return alert(a.prompt, "Erreur lors de la suppression", err)
	}
	a.registrations = removeWhere(a.registrations, func(x model.Registration) bool { return x.ID == id })
	if a.selectedID == id {
		a.selectedID = ""
	}
	return nil
}

// ── Accounts ────────────────────────────────────────────────────────

// LoadAccounts fetches profiles, registrations and assignments.
func (a *Admin) LoadAccounts(ctx context.Context) error {
	var profiles []model.Profile
	q := gateway.Query{}.OrderBy(gateway.Desc("created_at"))
	if err := a.gw.Select(ctx, gateway.Profiles, q, &profiles); err != nil {
		return alert(a.prompt, "Erreur de chargement des comptes", err)
	}
	if err := a.LoadRegistrations(ctx); err != nil {
		return err
	}
	var assignments []model.Assignment
	if err := a.gw.Select(ctx, gateway.TutorAssignments, gateway.Query{}, &assignments); err != nil {
		return alert(a.prompt, "Erreur de chargement des assignations", err)
	}
	a.profiles = profiles
	a.assignments = assignments
	return nil
}

// Accounts joins each profile to its registration through an index keyed
// by account id. An account has at most one registration.
func (a *Admin) Accounts() []Account {
	regs := make(map[string]model.Registration, len(a.registrations))
	for _, r := range a.registrations {
		if _, dup := regs[r.UserID]; !dup {
			regs[r.UserID] = r
		}
	}
	tutors := make(map[string]string, len(a.assignments))
	for _, as := range a.assignments {
		tutors[as.StudentID] = as.TutorID
	}
	out := make([]Account, 0, len(a.profiles))
	for _, p := range a.profiles {
		acc := Account{Profile: p, TutorID: tutors[p.ID]}
		if r, ok := regs[p.ID]; ok {
			acc.Registration = &r
		}
		out = append(out, acc)
	}
	return out
}

// Account returns one joined account.
func (a *Admin) Account(userID string) (Account, error) {
	for _, acc := range a.Accounts() {
		if acc.ID == userID {
			return acc, nil
		}
	}
	return Account{}, fmt.Errorf("account %s: %w", userID, ErrNotFound)
}

// Tutors lists the accounts that can be assigned to students.
func (a *Admin) Tutors() []model.Profile {
	var out []model.Profile
	for _, p := range a.profiles {
		if p.Role == model.RoleTutor {
			out = append(out, p)
		}
	}
	return out
}

func (a *Admin) findProfile(id string) int {
	return indexOf(a.profiles, func(p model.Profile) bool { return p.ID == id })
}

func (a *Admin) profile(id string) (model.Profile, error) {
	i := a.findProfile(id)
	if i < 0 {
		return model.Profile{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return a.profiles[i], nil
}

// ChangeRole sets an account's role. The signed-in administrator cannot
// change their own.
func (a *Admin) ChangeRole(ctx context.Context, userID string, role model.Role) error {
	if userID == a.self.ID {
		return alert(a.prompt, "Action refusée", ErrSelfLockout)
	}
	if !role.Valid() {
		return &FormError{"role", fmt.Sprintf("unknown role %q", role)}
	}
	i := a.findProfile(userID)
	if i < 0 {
		return fmt.Errorf("account %s: %w", userID, ErrNotFound)
	}
	patch := map[string]any{"role": role}
	if err := a.gw.Update(ctx, gateway.Profiles, []gateway.Filter{gateway.Eq("id", userID)}, patch, nil); err != nil {
		return alert(a.prompt, "Erreur lors du changement de rôle", err)
	}
	a.profiles[i].Role = role
	return nil
}

// SetService changes the account's service tier, creating an approved
// placeholder registration when the account has none.
func (a *Admin) SetService(ctx context.Context, userID string, svc model.Service) error {
	if !svc.Valid() {
		return &FormError{"service", fmt.Sprintf("unknown service %q", svc)}
	}
	p, err := a.profile(userID)
	if err != nil {
		return err
	}
	if i := indexOf(a.registrations, func(r model.Registration) bool { return r.UserID == userID }); i >= 0 {
		return a.patchRegistration(ctx, a.registrations[i].ID, map[string]any{"service": svc},
			func(r *model.Registration) { r.Service = svc })
	}

	named := p.Email
	if named == "" {
		named = Placeholder
	}
	rec := map[string]any{
		"user_id":      userID,
		"parent_name":  named,
		"student_name": Placeholder,
		"phone":        Placeholder,
		"email":        p.Email,
		"service":      svc,
		"address":      Placeholder,
		"status":       model.RegistrationApproved,
	}
	var row model.Registration
	if err := a.gw.Insert(ctx, gateway.Registrations, rec, &row); err != nil {
		return alert(a.prompt, "Erreur lors de la création du forfait", err)
	}
	a.registrations = append([]model.Registration{row}, a.registrations...)
	return nil
}

// SendPasswordReset emails a reset link to the account.
func (a *Admin) SendPasswordReset(ctx context.Context, userID string) error {
	p, err := a.profile(userID)
	if err != nil {
		return err
	}
	if err := confirm(ctx, a.prompt, fmt.Sprintf("Envoyer un courriel de réinitialisation à %s ?", p.Email)); err != nil {
		return err
	}
	if err := a.gw.SendPasswordReset(ctx, p.Email); err != nil {
		return alert(a.prompt, "Erreur lors de l'envoi", err)
	}
	return nil
}

// ImpersonationResult is the impersonate function's reply.
type ImpersonationResult struct {
	Link  string `json:"link"`
	Token string `json:"token"`
	Email string `json:"email"`
}

// adminCall is the body of both privileged functions.
type adminCall struct {
	UserID     string `json:"userId"`
	AdminEmail string `json:"adminEmail"`
}

// Impersonate obtains a one-time login token for the account, signs the
// administrator out and signs in as the target. The Admin is unusable
// afterwards.
func (a *Admin) Impersonate(ctx context.Context, userID string) (*gateway.Session, error) {
	p, err := a.profile(userID)
	if err != nil {
		return nil, err
	}
	if err := confirm(ctx, a.prompt, fmt.Sprintf("Se connecter en tant que %s ?", p.Email)); err != nil {
		return nil, err
	}
	var res ImpersonationResult
	if err := a.gw.Invoke(ctx, "impersonate", adminCall{UserID: p.Email, AdminEmail: a.self.Email}, &res); err != nil {
		return nil, alert(a.prompt, "Erreur d'impersonation", err)
	}
	if err := a.gw.SignOut(ctx); err != nil {
		return nil, alert(a.prompt, "Erreur de déconnexion", err)
	}
	s, err := a.gw.VerifyOTP(ctx, res.Token, gateway.OTPMagicLink)
	if err != nil {
		return nil, alert(a.prompt, "Erreur de connexion", err)
	}
	return s, nil
}

// DeleteAccountData removes the account's registrations, sessions,
// assignments and profile. The authentication identity is kept; use
// HardDeleteAccount to remove it as well.
func (a *Admin) DeleteAccountData(ctx context.Context, userID string) error {
	p, err := a.checkDeletable(userID)
	if err != nil {
		return err
	}
	if err := confirm(ctx, a.prompt, fmt.Sprintf("Supprimer les données de %s ?", p.Email)); err != nil {
		return err
	}
	steps := []struct {
		collection string
		column     string
	}{
		{gateway.Registrations, "user_id"},
		{gateway.TutoringSessions, "student_id"},
		{gateway.TutoringSessions, "tutor_id"},
		{gateway.TutorAssignments, "student_id"},
		{gateway.TutorAssignments, "tutor_id"},
		{gateway.Profiles, "id"},
	}
	for _, s := range steps {
		if err := a.gw.Delete(ctx, s.collection, []gateway.Filter{gateway.Eq(s.column, userID)}); err != nil {
			return alert(a.prompt, "Erreur lors de la suppression", err)
		}
	}
	a.dropAccount(userID)
	return nil
}

// HardDeleteAccount deletes the account through the privileged endpoint,
// identity included.
func (a *Admin) HardDeleteAccount(ctx context.Context, userID string) error {
	p, err := a.checkDeletable(userID)
	if err != nil {
		return err
	}
	if err := confirm(ctx, a.prompt, fmt.Sprintf("Supprimer définitivement le compte %s ?", p.Email)); err != nil {
		return err
	}
	if err := a.gw.Invoke(ctx, "delete-user", adminCall{UserID: userID, AdminEmail: a.self.Email}, nil); err != nil {
		return alert(a.prompt, "Erreur lors de la suppression", err)
	}
	a.dropAccount(userID)
	return nil
}

func (a *Admin) checkDeletable(userID string) (model.Profile, error) {
	if userID == a.self.ID {
		return model.Profile{}, alert(a.prompt, "Action refusée", ErrSelfLockout)
	}
	return a.profile(userID)
}

func (a *Admin) dropAccount(userID string) {
	a.profiles = removeWhere(a.profiles, func(p model.Profile) bool { return p.ID == userID })
	a.registrations = removeWhere(a.registrations, func(r model.Registration) bool {
		if r.UserID == userID && r.ID == a.selectedID {
			a.selectedID = ""
		}
		return r.UserID == userID
	})
	a.assignments = removeWhere(a.assignments, func(as model.Assignment) bool {
		return as.StudentID == userID || as.TutorID == userID
	})
	a.book.dropUser(userID)
}

// ── Assignments ─────────────────────────────────────────────────────

// TutorOf returns the tutor assigned to a student, or "".
func (a *Admin) TutorOf(studentID string) string {
	if i := a.findAssignment(studentID); i >= 0 {
		return a.assignments[i].TutorID
	}
	return ""
}

func (a *Admin) findAssignment(studentID string) int {
	return indexOf(a.assignments, func(as model.Assignment) bool { return as.StudentID == studentID })
}

// AssignTutor sets the student's tutor. An existing mapping is updated in
// place; an empty tutorID removes it.
func (a *Admin) AssignTutor(ctx context.Context, studentID, tutorID string) error {
	byStudent := []gateway.Filter{gateway.Eq("student_id", studentID)}
	i := a.findAssignment(studentID)

	switch {
	case tutorID == "":
		if err := a.gw.Delete(ctx, gateway.TutorAssignments, byStudent); err != nil {
			return alert(a.prompt, "Erreur lors du retrait du tuteur", err)
		}
		a.assignments = removeWhere(a.assignments, func(as model.Assignment) bool { return as.StudentID == studentID })

	case i >= 0:
		if err := a.gw.Update(ctx, gateway.TutorAssignments, byStudent, map[string]any{"tutor_id": tutorID}, nil); err != nil {
			return alert(a.prompt, "Erreur lors de l'assignation", err)
		}
		a.assignments[i].TutorID = tutorID

	default:
		var row model.Assignment
		rec := map[string]string{"tutor_id": tutorID, "student_id": studentID}
		if err := a.gw.Insert(ctx, gateway.TutorAssignments, rec, &row); err != nil {
			return alert(a.prompt, "Erreur lors de l'assignation", err)
		}
		a.assignments = append(a.assignments, row)
	}
	return nil
}

// ── Sessions ────────────────────────────────────────────────────────

// LoadSessions fetches every session, latest date first.
func (a *Admin) LoadSessions(ctx context.Context) error { return a.book.load(ctx) }

func (a *Admin) SetSessionFilter(f SessionFilter) { a.sessionFilter = f }

// Sessions returns the loaded sessions that pass the current filter.
func (a *Admin) Sessions() []model.Session {
	var out []model.Session
	for _, s := range a.book.rows {
		if a.sessionFilter.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Session looks up a loaded session, ignoring the filter.
func (a *Admin) Session(id string) (model.Session, bool) { return a.book.get(id) }

// CreateSession schedules an unpaid session for any tutor and student.
func (a *Admin) CreateSession(ctx context.Context, f SessionForm) (model.Session, error) {
	return a.book.create(ctx, f)
}

func (a *Admin) UpdateSession(ctx context.Context, id string, f SessionForm) (model.Session, error) {
	return a.book.update(ctx, id, f)
}

// SetSessionStatus moves a session to any status.
func (a *Admin) SetSessionStatus(ctx context.Context, id string, s model.SessionStatus) (model.Session, error) {
	return a.book.setStatus(ctx, id, s)
}

func (a *Admin) TogglePaid(ctx context.Context, id string) (model.Session, error) {
	return a.book.togglePaid(ctx, id)
}

func (a *Admin) DeleteSession(ctx context.Context, id string) error {
	return a.book.remove(ctx, id)
}
