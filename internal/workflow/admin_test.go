package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
)

var adminUser = gateway.User{ID: "admin-1", Email: "office@example.com", Role: model.RoleAdmin}

func reg(id, userID string, s model.RegistrationStatus) model.Registration {
	return model.Registration{ID: id, UserID: userID, StudentName: "Student " + id, Status: s, ContactStatus: model.ContactNotContacted}
}

// setupAdmin returns an Admin preloaded with three accounts: the admin,
// a tutor and a student with a registration.
func setupAdmin(t *testing.T) (*Admin, *fakeGateway, *fakePrompter) {
	t.Helper()
	gw := &fakeGateway{}
	p := &fakePrompter{answer: true}
	a := NewAdmin(gw, p, adminUser)
	a.profiles = []model.Profile{
		{ID: "s1", Email: "s1@example.com", Role: model.RoleUser},
		{ID: "t1", Email: "t1@example.com", Role: model.RoleTutor},
		{ID: "admin-1", Email: adminUser.Email, Role: model.RoleAdmin},
	}
	a.registrations = []model.Registration{
		reg("r3", "s3", model.RegistrationPending),
		reg("r2", "s1", model.RegistrationApproved),
		reg("r1", "s2", model.RegistrationPending),
	}
	t.Cleanup(func() { gw.AssertExpectations(t) })
	return a, gw, p
}

func ids(rows []model.Registration) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

// ── Registrations ───────────────────────────────────────────────────

func TestLoadRegistrations_NewestFirst(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	want := gateway.Query{}.OrderBy(gateway.Desc("created_at"))
	gw.On("Select", mock.Anything, gateway.Registrations, want, mock.Anything).
		Run(fill([]model.Registration{reg("rB", "u", model.RegistrationPending)})).Return(nil)

	require.NoError(t, a.LoadRegistrations(context.Background()))
	assert.Equal(t, []string{"rB"}, ids(a.VisibleRegistrations()))
}

func TestFilterRegistrations(t *testing.T) {
	rows := []model.Registration{
		reg("a", "u1", model.RegistrationPending),
		reg("b", "u2", model.RegistrationApproved),
		reg("c", "u3", model.RegistrationPending),
		reg("d", "u4", model.RegistrationRefused),
	}
	tests := []struct {
		status model.RegistrationStatus
		want   []string
	}{
		{model.RegistrationPending, []string{"a", "c"}},
		{model.RegistrationApproved, []string{"b"}},
		{model.RegistrationRefused, []string{"d"}},
		{"", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterRegistrations(rows, tt.status)))
		})
	}
}

func TestFilterByStatus_KeepsSource(t *testing.T) {
	a, _, _ := setupAdmin(t)
	a.FilterByStatus(model.RegistrationPending)
	assert.Equal(t, []string{"r3", "r1"}, ids(a.VisibleRegistrations()))
	a.FilterByStatus("")
	assert.Len(t, a.VisibleRegistrations(), 3)
}

func TestSetRegistrationStatus(t *testing.T) {
	t.Run("patches after success", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		gw.On("Update", mock.Anything, gateway.Registrations, []gateway.Filter{gateway.Eq("id", "r1")},
			map[string]any{"status": model.RegistrationApproved}, nil).Return(nil)

		require.NoError(t, a.SetRegistrationStatus(context.Background(), "r1", model.RegistrationApproved))
		assert.Equal(t, model.RegistrationApproved, a.registrations[2].Status)
		assert.Equal(t, model.ContactNotContacted, a.registrations[2].ContactStatus)
	})

	t.Run("failure leaves state and alerts", func(t *testing.T) {
		a, gw, p := setupAdmin(t)
		gw.On("Update", mock.Anything, gateway.Registrations, mock.Anything, mock.Anything, nil).
			Return(&gateway.Error{Status: 403, Message: "forbidden"})

		err := a.SetRegistrationStatus(context.Background(), "r1", model.RegistrationRefused)
		assert.Equal(t, 403, gateway.StatusOf(err))
		assert.Equal(t, model.RegistrationPending, a.registrations[2].Status)
		require.Len(t, p.alerts, 1)
		assert.Contains(t, p.alerts[0], "forbidden")
	})

	t.Run("unknown status is rejected locally", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		var fe *FormError
		assert.ErrorAs(t, a.SetRegistrationStatus(context.Background(), "r1", "bogus"), &fe)
		gw.AssertNumberOfCalls(t, "Update", 0)
	})
}

func TestSetContactStatus_IndependentOfApproval(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	gw.On("Update", mock.Anything, gateway.Registrations, []gateway.Filter{gateway.Eq("id", "r2")},
		map[string]any{"contact_status": model.ContactDiscussing}, nil).Return(nil)

	require.NoError(t, a.SetContactStatus(context.Background(), "r2", model.ContactDiscussing))
	assert.Equal(t, model.ContactDiscussing, a.registrations[1].ContactStatus)
	assert.Equal(t, model.RegistrationApproved, a.registrations[1].Status)
}

func TestDeleteRegistration(t *testing.T) {
	t.Run("removes from list, join and selection", func(t *testing.T) {
		a, gw, p := setupAdmin(t)
		require.NoError(t, a.SelectRegistration("r2"))
		gw.On("Delete", mock.Anything, gateway.Registrations, []gateway.Filter{gateway.Eq("id", "r2")}).Return(nil)

		require.NoError(t, a.DeleteRegistration(context.Background(), "r2"))
		assert.Equal(t, []string{"r3", "r1"}, ids(a.registrations))
		assert.Nil(t, a.Selected())
		acc, err := a.Account("s1")
		require.NoError(t, err)
		assert.Nil(t, acc.Registration)
		assert.Len(t, p.asked, 1)
	})

	t.Run("other selection survives", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		require.NoError(t, a.SelectRegistration("r3"))
		gw.On("Delete", mock.Anything, gateway.Registrations, mock.Anything).Return(nil)

		require.NoError(t, a.DeleteRegistration(context.Background(), "r2"))
		require.NotNil(t, a.Selected())
		assert.Equal(t, "r3", a.Selected().ID)
	})

	t.Run("declined confirmation makes no call", func(t *testing.T) {
		a, gw, p := setupAdmin(t)
		p.answer = false

		assert.ErrorIs(t, a.DeleteRegistration(context.Background(), "r2"), ErrCancelled)
		assert.Len(t, a.registrations, 3)
		gw.AssertNumberOfCalls(t, "Delete", 0)
	})
}

// ── Accounts ────────────────────────────────────────────────────────

func TestAccounts_JoinByUserID(t *testing.T) {
	a, _, _ := setupAdmin(t)
	a.assignments = []model.Assignment{{ID: "as1", TutorID: "t1", StudentID: "s1"}}

	accs := a.Accounts()
	require.Len(t, accs, 3)
	require.NotNil(t, accs[0].Registration)
	assert.Equal(t, "r2", accs[0].Registration.ID)
	assert.Equal(t, "t1", accs[0].TutorID)
	assert.Nil(t, accs[1].Registration)
	assert.Equal(t, []model.Profile{a.profiles[1]}, a.Tutors())
}

func TestLoadAccounts(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	gw.On("Select", mock.Anything, gateway.Profiles, mock.Anything, mock.Anything).
		Run(fill([]model.Profile{{ID: "x", Role: model.RoleTutor}})).Return(nil)
	gw.On("Select", mock.Anything, gateway.Registrations, mock.Anything, mock.Anything).
		Run(fill([]model.Registration{reg("rx", "x", model.RegistrationApproved)})).Return(nil)
	gw.On("Select", mock.Anything, gateway.TutorAssignments, gateway.Query{}, mock.Anything).
		Run(fill([]model.Assignment{})).Return(nil)

	require.NoError(t, a.LoadAccounts(context.Background()))
	accs := a.Accounts()
	require.Len(t, accs, 1)
	assert.Equal(t, "rx", accs[0].Registration.ID)
}

func TestChangeRole(t *testing.T) {
	t.Run("own account is blocked", func(t *testing.T) {
		a, gw, p := setupAdmin(t)
		assert.ErrorIs(t, a.ChangeRole(context.Background(), "admin-1", model.RoleUser), ErrSelfLockout)
		gw.AssertNumberOfCalls(t, "Update", 0)
		assert.Len(t, p.alerts, 1)
	})

	t.Run("other account", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		gw.On("Update", mock.Anything, gateway.Profiles, []gateway.Filter{gateway.Eq("id", "s1")},
			map[string]any{"role": model.RoleTutor}, nil).Return(nil)

		require.NoError(t, a.ChangeRole(context.Background(), "s1", model.RoleTutor))
		assert.Equal(t, model.RoleTutor, a.profiles[0].Role)
	})
}

func TestSetService(t *testing.T) {
	t.Run("updates the existing registration", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		gw.On("Update", mock.Anything, gateway.Registrations, []gateway.Filter{gateway.Eq("id", "r2")},
			map[string]any{"service": model.ServiceCegep}, nil).Return(nil)

		require.NoError(t, a.SetService(context.Background(), "s1", model.ServiceCegep))
		assert.Equal(t, model.ServiceCegep, a.registrations[1].Service)
	})

	t.Run("creates an approved placeholder", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		isPlaceholder := mock.MatchedBy(func(rec map[string]any) bool {
			return rec["user_id"] == "t1" &&
				rec["parent_name"] == "t1@example.com" &&
				rec["student_name"] == Placeholder &&
				rec["status"] == model.RegistrationApproved &&
				rec["service"] == model.ServicePrimary
		})
		gw.On("Insert", mock.Anything, gateway.Registrations, isPlaceholder, mock.Anything).
			Run(fill(model.Registration{ID: "r9", UserID: "t1", Service: model.ServicePrimary})).Return(nil)

		require.NoError(t, a.SetService(context.Background(), "t1", model.ServicePrimary))
		acc, err := a.Account("t1")
		require.NoError(t, err)
		require.NotNil(t, acc.Registration)
		assert.Equal(t, "r9", acc.Registration.ID)
	})

	t.Run("placeholder for an account without email", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		a.profiles = append(a.profiles, model.Profile{ID: "x1", Role: model.RoleUser})
		blank := mock.MatchedBy(func(rec map[string]any) bool {
			return rec["parent_name"] == Placeholder && rec["email"] == ""
		})
		gw.On("Insert", mock.Anything, gateway.Registrations, blank, mock.Anything).
			Run(fill(model.Registration{ID: "r10", UserID: "x1"})).Return(nil)

		require.NoError(t, a.SetService(context.Background(), "x1", model.ServiceOnline))
	})
}

func TestImpersonate(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	var order []string
	gw.On("Invoke", mock.Anything, "impersonate", adminCall{UserID: "s1@example.com", AdminEmail: adminUser.Email}, mock.Anything).
		Run(func(args mock.Arguments) {
			order = append(order, "invoke")
			fill(ImpersonationResult{Token: "tok", Email: "s1@example.com"})(args)
		}).Return(nil)
	gw.On("SignOut", mock.Anything).Run(func(mock.Arguments) { order = append(order, "signout") }).Return(nil)
	gw.On("VerifyOTP", mock.Anything, "tok", gateway.OTPMagicLink).
		Run(func(mock.Arguments) { order = append(order, "verify") }).
		Return(&gateway.Session{User: gateway.User{ID: "s1"}}, nil)

	s, err := a.Impersonate(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.User.ID)
	assert.Equal(t, []string{"invoke", "signout", "verify"}, order)
}

func TestImpersonate_RejectedKeepsSession(t *testing.T) {
	a, gw, p := setupAdmin(t)
	gw.On("Invoke", mock.Anything, "impersonate", mock.Anything, mock.Anything).
		Return(&gateway.Error{Status: 401, Message: "Unauthorized"})

	_, err := a.Impersonate(context.Background(), "s1")
	assert.Equal(t, 401, gateway.StatusOf(err))
	gw.AssertNumberOfCalls(t, "SignOut", 0)
	assert.Contains(t, p.alerts[0], "Unauthorized")
}

func TestDeleteAccountData(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	a.assignments = []model.Assignment{{ID: "as1", TutorID: "t1", StudentID: "s1"}}
	a.book.rows = []model.Session{{ID: "x1", TutorID: "t1", StudentID: "s1"}, {ID: "x2", TutorID: "t1", StudentID: "s2"}}
	require.NoError(t, a.SelectRegistration("r2"))

	for _, c := range []struct{ coll, col string }{
		{gateway.Registrations, "user_id"},
		{gateway.TutoringSessions, "student_id"},
		{gateway.TutoringSessions, "tutor_id"},
		{gateway.TutorAssignments, "student_id"},
		{gateway.TutorAssignments, "tutor_id"},
		{gateway.Profiles, "id"},
	} {
		gw.On("Delete", mock.Anything, c.coll, []gateway.Filter{gateway.Eq(c.col, "s1")}).Return(nil).Once()
	}

	require.NoError(t, a.DeleteAccountData(context.Background(), "s1"))
	_, err := a.Account("s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, a.assignments)
	assert.Equal(t, []string{"r3", "r1"}, ids(a.registrations))
	assert.Nil(t, a.Selected())
	require.Len(t, a.book.rows, 1)
	assert.Equal(t, "x2", a.book.rows[0].ID)
	gw.AssertNumberOfCalls(t, "Invoke", 0)
}

func TestHardDeleteAccount(t *testing.T) {
	t.Run("own account is blocked", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		assert.ErrorIs(t, a.HardDeleteAccount(context.Background(), "admin-1"), ErrSelfLockout)
		gw.AssertNumberOfCalls(t, "Invoke", 0)
	})

	t.Run("calls delete-user", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		gw.On("Invoke", mock.Anything, "delete-user", adminCall{UserID: "t1", AdminEmail: adminUser.Email}, nil).Return(nil)

		require.NoError(t, a.HardDeleteAccount(context.Background(), "t1"))
		assert.Empty(t, a.Tutors())
	})
}

// ── Assignments ─────────────────────────────────────────────────────

func TestAssignTutor(t *testing.T) {
	byStudent := []gateway.Filter{gateway.Eq("student_id", "s1")}

	t.Run("inserts when none exists", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		gw.On("Insert", mock.Anything, gateway.TutorAssignments, map[string]string{"tutor_id": "t1", "student_id": "s1"}, mock.Anything).
			Run(fill(model.Assignment{ID: "as1", TutorID: "t1", StudentID: "s1"})).Return(nil)

		require.NoError(t, a.AssignTutor(context.Background(), "s1", "t1"))
		assert.Equal(t, "t1", a.TutorOf("s1"))
	})

	t.Run("overwrites an existing mapping", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		a.assignments = []model.Assignment{{ID: "as1", TutorID: "t0", StudentID: "s1"}}
		gw.On("Update", mock.Anything, gateway.TutorAssignments, byStudent, map[string]any{"tutor_id": "t1"}, nil).Return(nil)

		require.NoError(t, a.AssignTutor(context.Background(), "s1", "t1"))
		assert.Len(t, a.assignments, 1)
		assert.Equal(t, "t1", a.TutorOf("s1"))
		gw.AssertNumberOfCalls(t, "Insert", 0)
	})

	t.Run("empty tutor deletes the mapping", func(t *testing.T) {
		a, gw, _ := setupAdmin(t)
		a.assignments = []model.Assignment{{ID: "as1", TutorID: "t1", StudentID: "s1"}}
		gw.On("Delete", mock.Anything, gateway.TutorAssignments, byStudent).Return(nil)

		require.NoError(t, a.AssignTutor(context.Background(), "s1", ""))
		assert.Empty(t, a.assignments)
		assert.Equal(t, "", a.TutorOf("s1"))
	})
}

// ── Sessions ────────────────────────────────────────────────────────

func TestCreateSession_Defaults(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	isDefault := mock.MatchedBy(func(rec map[string]any) bool {
		return rec["status"] == model.SessionScheduled &&
			rec["is_paid"] == false &&
			rec["start_time"] == "09:00" &&
			rec["end_time"] == "10:00" &&
			rec["notes"] == (*string)(nil)
	})
	gw.On("Insert", mock.Anything, gateway.TutoringSessions, isDefault, mock.Anything).
		Run(fill(model.Session{ID: "x1", Status: model.SessionScheduled, SessionDate: "2024-03-05"})).Return(nil)

	s, err := a.CreateSession(context.Background(), SessionForm{TutorID: "t1", StudentID: "s1", Title: "Maths", Date: "2024-03-05"})
	require.NoError(t, err)
	assert.Equal(t, model.SessionScheduled, s.Status)
	assert.False(t, s.IsPaid)
	assert.Len(t, a.Sessions(), 1)
}

func TestCreateSession_InvalidForm(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	_, err := a.CreateSession(context.Background(), SessionForm{TutorID: "t1", StudentID: "s1", Title: "Maths", Date: "05/03/2024"})
	var fe *FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "session_date", fe.Field)
	gw.AssertNumberOfCalls(t, "Insert", 0)
}

func TestTogglePaid_FlipsOnlyPaid(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	notes := "bring homework"
	before := model.Session{ID: "x1", TutorID: "t1", StudentID: "s1", Title: "Maths", SessionDate: "2024-03-05",
		StartTime: "09:00", EndTime: "10:00", Notes: &notes, Status: model.SessionCompleted}
	a.book.rows = []model.Session{before}
	gw.On("Update", mock.Anything, gateway.TutoringSessions, []gateway.Filter{gateway.Eq("id", "x1")},
		map[string]any{"is_paid": true}, nil).Return(nil)

	after, err := a.TogglePaid(context.Background(), "x1")
	require.NoError(t, err)

	want := before
	want.IsPaid = true
	assert.Equal(t, want, after)
	assert.Equal(t, want, a.book.rows[0])
}

func TestSetSessionStatus_AnyStatus(t *testing.T) {
	a, gw, _ := setupAdmin(t)
	a.book.rows = []model.Session{{ID: "x1", Status: model.SessionScheduled}}
	gw.On("Update", mock.Anything, gateway.TutoringSessions, mock.Anything,
		map[string]any{"status": model.SessionReceiptSent}, nil).Return(nil)

	s, err := a.SetSessionStatus(context.Background(), "x1", model.SessionReceiptSent)
	require.NoError(t, err)
	assert.Equal(t, model.SessionReceiptSent, s.Status)
}

func TestSessionFilter(t *testing.T) {
	a, _, _ := setupAdmin(t)
	a.book.rows = []model.Session{
		{ID: "1", TutorID: "t1", StudentID: "s1", Status: model.SessionScheduled},
		{ID: "2", TutorID: "t1", StudentID: "s2", Status: model.SessionCompleted, IsPaid: true},
		{ID: "3", TutorID: "t2", StudentID: "s1", Status: model.SessionCompleted},
	}
	paid, unpaid := true, false
	tests := []struct {
		name   string
		filter SessionFilter
		want   []string
	}{
		{"all", SessionFilter{}, []string{"1", "2", "3"}},
		{"status", SessionFilter{Status: model.SessionCompleted}, []string{"2", "3"}},
		{"paid", SessionFilter{Paid: &paid}, []string{"2"}},
		{"unpaid completed", SessionFilter{Paid: &unpaid, Status: model.SessionCompleted}, []string{"3"}},
		{"tutor", SessionFilter{TutorID: "t1"}, []string{"1", "2"}},
		{"student", SessionFilter{StudentID: "s1"}, []string{"1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.SetSessionFilter(tt.filter)
			var got []string
			for _, s := range a.Sessions() {
				got = append(got, s.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeleteSession_Declined(t *testing.T) {
	a, gw, p := setupAdmin(t)
	p.answer = false
	a.book.rows = []model.Session{{ID: "x1"}}

	assert.ErrorIs(t, a.DeleteSession(context.Background(), "x1"), ErrCancelled)
	assert.Len(t, a.book.rows, 1)
	gw.AssertNumberOfCalls(t, "Delete", 0)
}
