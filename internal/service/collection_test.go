package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/repository"
	"github.com/iliyamo/tutoplus/internal/service"
	"github.com/iliyamo/tutoplus/internal/service/mocks"
)

type stores struct {
	profiles      *mocks.MockProfileStore
	registrations *mocks.MockRegistrationStore
	assignments   *mocks.MockAssignmentStore
	sessions      *mocks.MockSessionStore
}

func setup(t *testing.T) (service.Registry, stores) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	s := stores{
		profiles:      mocks.NewMockProfileStore(ctrl),
		registrations: mocks.NewMockRegistrationStore(ctrl),
		assignments:   mocks.NewMockAssignmentStore(ctrl),
		sessions:      mocks.NewMockSessionStore(ctrl),
	}
	return service.NewRegistry(s.profiles, s.registrations, s.assignments, s.sessions), s
}

func collection(t *testing.T, r service.Registry, name string) service.Collection {
	t.Helper()
	c, err := r.Lookup(name)
	require.NoError(t, err)
	return c
}

var (
	admin   = service.Actor{ID: "admin-1", Email: "tutoplus2025@gmail.com", Role: model.RoleAdmin}
	tutor   = service.Actor{ID: "tutor-1", Email: "tutor@example.com", Role: model.RoleTutor}
	student = service.Actor{ID: "student-1", Email: "student@example.com", Role: model.RoleUser}
	ctx     = context.Background()
)

func TestRegistryLookup(t *testing.T) {
	r, _ := setup(t)
	_, err := r.Lookup("payments")
	assert.ErrorIs(t, err, service.ErrUnknownCollection)
}

// ── Profiles ────────────────────────────────────────────────────────

func TestProfilesSelect(t *testing.T) {
	t.Run("AdminUnscoped", func(t *testing.T) {
		r, s := setup(t)
		q := repository.Query{Order: []repository.Order{{Column: "created_at", Desc: true}}}
		s.profiles.EXPECT().List(gomock.Any(), q).Return([]model.Profile{{ID: "a"}, {ID: "b"}}, nil)

		out, err := collection(t, r, service.CollectionProfiles).Select(ctx, admin, q)
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("TutorSeesSelfAndStudents", func(t *testing.T) {
		r, s := setup(t)
		s.assignments.EXPECT().StudentIDs(gomock.Any(), tutor.ID).Return([]string{"student-1", "student-2"}, nil)
		want := repository.Query{Filters: []repository.Filter{repository.In("id", "student-1", "student-2", tutor.ID)}}
		s.profiles.EXPECT().List(gomock.Any(), want).Return([]model.Profile{}, nil)

		_, err := collection(t, r, service.CollectionProfiles).Select(ctx, tutor, repository.Query{})
		require.NoError(t, err)
	})

	t.Run("UserSeesSelfAndTutor", func(t *testing.T) {
		r, s := setup(t)
		s.assignments.EXPECT().TutorID(gomock.Any(), student.ID).Return(tutor.ID, nil)
		want := repository.Query{Filters: []repository.Filter{
			repository.Eq("role", "tutor"),
			repository.In("id", student.ID, tutor.ID),
		}}
		s.profiles.EXPECT().List(gomock.Any(), want).Return([]model.Profile{{ID: tutor.ID}}, nil)

		q := repository.Query{Filters: []repository.Filter{repository.Eq("role", "tutor")}}
		_, err := collection(t, r, service.CollectionProfiles).Select(ctx, student, q)
		require.NoError(t, err)
	})

	t.Run("UserWithoutTutor", func(t *testing.T) {
		r, s := setup(t)
		s.assignments.EXPECT().TutorID(gomock.Any(), student.ID).Return("", nil)
		want := repository.Query{Filters: []repository.Filter{repository.In("id", student.ID)}}
		s.profiles.EXPECT().List(gomock.Any(), want).Return([]model.Profile{}, nil)

		_, err := collection(t, r, service.CollectionProfiles).Select(ctx, student, repository.Query{})
		require.NoError(t, err)
	})
}

func TestProfilesWrite(t *testing.T) {
	byID := []repository.Filter{repository.Eq("id", "student-1")}

	t.Run("InsertForbidden", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionProfiles).Insert(ctx, admin, []byte(`{}`))
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("ChangeRole", func(t *testing.T) {
		r, s := setup(t)
		s.profiles.EXPECT().List(gomock.Any(), repository.Query{Filters: byID}).Return([]model.Profile{{ID: "student-1"}}, nil)
		s.profiles.EXPECT().Update(gomock.Any(), byID, repository.Patch{"role": "tutor"}).
			Return([]model.Profile{{ID: "student-1", Role: model.RoleTutor}}, nil)

		out, err := collection(t, r, service.CollectionProfiles).Update(ctx, admin, byID, map[string]any{"role": "tutor"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleTutor, out.([]model.Profile)[0].Role)
	})

	t.Run("SelfLockout", func(t *testing.T) {
		r, s := setup(t)
		self := []repository.Filter{repository.Eq("id", admin.ID)}
		s.profiles.EXPECT().List(gomock.Any(), repository.Query{Filters: self}).Return([]model.Profile{{ID: admin.ID}}, nil)

		_, err := collection(t, r, service.CollectionProfiles).Update(ctx, admin, self, map[string]any{"role": "user"})
		assert.ErrorIs(t, err, service.ErrSelfLockout)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionProfiles).Update(ctx, admin, byID, map[string]any{"role": "owner"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("EmailNotPatchable", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionProfiles).Update(ctx, admin, byID, map[string]any{"email": "x@y.z"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("NonAdmin", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionProfiles).Update(ctx, tutor, byID, map[string]any{"role": "admin"})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("DeleteOther", func(t *testing.T) {
		r, s := setup(t)
		s.profiles.EXPECT().List(gomock.Any(), repository.Query{Filters: byID}).Return([]model.Profile{{ID: "student-1"}}, nil)
		s.profiles.EXPECT().Delete(gomock.Any(), byID).Return(int64(1), nil)

		require.NoError(t, collection(t, r, service.CollectionProfiles).Delete(ctx, admin, byID))
	})

	t.Run("DeleteWithoutFilter", func(t *testing.T) {
		r, _ := setup(t)
		err := collection(t, r, service.CollectionProfiles).Delete(ctx, admin, nil)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

// ── Registrations ───────────────────────────────────────────────────

func TestRegistrationsSelect(t *testing.T) {
	t.Run("TutorScopedToStudents", func(t *testing.T) {
		r, s := setup(t)
		s.assignments.EXPECT().StudentIDs(gomock.Any(), tutor.ID).Return([]string{"student-1"}, nil)
		want := repository.Query{Filters: []repository.Filter{repository.In("user_id", "student-1")}}
		s.registrations.EXPECT().List(gomock.Any(), want).Return([]model.Registration{{UserID: "student-1"}}, nil)

		out, err := collection(t, r, service.CollectionRegistrations).Select(ctx, tutor, repository.Query{})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("UserSeesTutorPhoneOnly", func(t *testing.T) {
		r, s := setup(t)
		s.assignments.EXPECT().TutorID(gomock.Any(), student.ID).Return(tutor.ID, nil)
		want := repository.Query{Filters: []repository.Filter{repository.In("user_id", student.ID, tutor.ID)}}
		s.registrations.EXPECT().List(gomock.Any(), want).Return([]model.Registration{
			{ID: "r1", UserID: student.ID, ParentName: "Marie", Phone: "514-000-0000"},
			{ID: "r2", UserID: tutor.ID, ParentName: "Tutor", Address: "1 rue", Phone: "438-111-1111"},
		}, nil)

		out, err := collection(t, r, service.CollectionRegistrations).Select(ctx, student, repository.Query{})
		require.NoError(t, err)
		rows := out.([]model.Registration)
		assert.Equal(t, "Marie", rows[0].ParentName)
		assert.Equal(t, model.Registration{ID: "r2", UserID: tutor.ID, Phone: "438-111-1111"}, rows[1])
	})
}

func TestRegistrationsInsert(t *testing.T) {
	body := []byte(`{
		"user_id": "someone-else",
		"parent_name": "Marie Tremblay",
		"student_name": "Léo",
		"phone": "514-555-0101",
		"email": "Marie@Example.com",
		"service": "secondaire",
		"address": "12 rue Principale",
		"mental_health": "",
		"specifications": "Maths",
		"status": "approuve"
	}`)

	t.Run("UserForcedToSelfAndPending", func(t *testing.T) {
		r, s := setup(t)
		s.registrations.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, g *model.Registration) error {
				assert.Equal(t, student.ID, g.UserID)
				assert.Equal(t, model.RegistrationPending, g.Status)
				assert.Equal(t, model.ContactNotContacted, g.ContactStatus)
				assert.Equal(t, "marie@example.com", g.Email)
				assert.Nil(t, g.MentalHealth)
				require.NotNil(t, g.Specifications)
				assert.Equal(t, "Maths", *g.Specifications)
				g.ID = "reg-1"
				return nil
			})

		out, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, student, body)
		require.NoError(t, err)
		assert.Equal(t, "reg-1", out.(model.Registration).ID)
	})

	t.Run("AdminKeepsStatus", func(t *testing.T) {
		r, s := setup(t)
		s.registrations.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, g *model.Registration) error {
				assert.Equal(t, "someone-else", g.UserID)
				assert.Equal(t, model.RegistrationApproved, g.Status)
				return nil
			})

		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, admin, body)
		require.NoError(t, err)
	})

	placeholder := []byte(`{"user_id":"u9","parent_name":"Non spécifié","student_name":"Non spécifié",
		"phone":"Non spécifié","email":"","service":"primaire","address":"Non spécifié","status":"approuve"}`)

	t.Run("AdminPlaceholderWithoutEmail", func(t *testing.T) {
		r, s := setup(t)
		s.registrations.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, g *model.Registration) error {
				assert.Equal(t, "u9", g.UserID)
				assert.Equal(t, "", g.Email)
				return nil
			})

		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, admin, placeholder)
		require.NoError(t, err)
	})

	t.Run("UserEmailRequired", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, student, placeholder)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("SecondRegistrationConflicts", func(t *testing.T) {
		r, s := setup(t)
		s.registrations.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrConflict)

		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, student, body)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("BlankRequiredField", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, student,
			[]byte(`{"parent_name":"  ","student_name":"x","phone":"1","email":"a@b.c","service":"cegep","address":"x"}`))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("UnknownService", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, student,
			[]byte(`{"parent_name":"p","student_name":"x","phone":"1","email":"a@b.c","service":"online","address":"x"}`))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("UnknownField", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, student, []byte(`{"grade":"5"}`))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("TutorForbidden", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Insert(ctx, tutor, body)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestRegistrationsUpdate(t *testing.T) {
	byID := []repository.Filter{repository.Eq("id", "reg-1")}

	t.Run("ContactStatusIndependent", func(t *testing.T) {
		r, s := setup(t)
		s.registrations.EXPECT().Update(gomock.Any(), byID, repository.Patch{"contact_status": "contacte"}).
			Return([]model.Registration{{ID: "reg-1", Status: model.RegistrationPending, ContactStatus: model.ContactContacted}}, nil)

		out, err := collection(t, r, service.CollectionRegistrations).Update(ctx, admin, byID, map[string]any{"contact_status": "contacte"})
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationPending, out.([]model.Registration)[0].Status)
	})

	t.Run("BadStatus", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Update(ctx, admin, byID, map[string]any{"status": "maybe"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("UserCannotEdit", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Update(ctx, student, byID, map[string]any{"status": "approuve"})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("NoFilter", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionRegistrations).Update(ctx, admin, nil, map[string]any{"status": "approuve"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

// ── Assignments ─────────────────────────────────────────────────────

func TestAssignments(t *testing.T) {
	t.Run("TutorReadsOwnRows", func(t *testing.T) {
		r, s := setup(t)
		want := repository.Query{Filters: []repository.Filter{repository.Eq("tutor_id", tutor.ID)}}
		s.assignments.EXPECT().List(gomock.Any(), want).Return([]model.Assignment{}, nil)

		_, err := collection(t, r, service.CollectionAssignments).Select(ctx, tutor, repository.Query{})
		require.NoError(t, err)
	})

	t.Run("InsertChecksTutorRole", func(t *testing.T) {
		r, s := setup(t)
		s.profiles.EXPECT().GetByID(gomock.Any(), "user-9").Return(model.Profile{ID: "user-9", Role: model.RoleUser}, nil)

		_, err := collection(t, r, service.CollectionAssignments).Insert(ctx, admin,
			[]byte(`{"tutor_id":"user-9","student_id":"student-1"}`))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("InsertUnknownTutor", func(t *testing.T) {
		r, s := setup(t)
		s.profiles.EXPECT().GetByID(gomock.Any(), "ghost").Return(model.Profile{}, repository.ErrNotFound)

		_, err := collection(t, r, service.CollectionAssignments).Insert(ctx, admin,
			[]byte(`{"tutor_id":"ghost","student_id":"student-1"}`))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("Insert", func(t *testing.T) {
		r, s := setup(t)
		s.profiles.EXPECT().GetByID(gomock.Any(), tutor.ID).Return(model.Profile{ID: tutor.ID, Role: model.RoleTutor}, nil)
		s.assignments.EXPECT().Create(gomock.Any(), &model.Assignment{TutorID: tutor.ID, StudentID: "student-1"}).Return(nil)

		out, err := collection(t, r, service.CollectionAssignments).Insert(ctx, admin,
			[]byte(`{"tutor_id":"tutor-1","student_id":"student-1"}`))
		require.NoError(t, err)
		assert.Equal(t, tutor.ID, out.(model.Assignment).TutorID)
	})

	t.Run("Reassign", func(t *testing.T) {
		r, s := setup(t)
		byStudent := []repository.Filter{repository.Eq("student_id", "student-1")}
		s.profiles.EXPECT().GetByID(gomock.Any(), "tutor-2").Return(model.Profile{ID: "tutor-2", Role: model.RoleTutor}, nil)
		s.assignments.EXPECT().Update(gomock.Any(), byStudent, repository.Patch{"tutor_id": "tutor-2"}).
			Return([]model.Assignment{{TutorID: "tutor-2", StudentID: "student-1"}}, nil)

		_, err := collection(t, r, service.CollectionAssignments).Update(ctx, admin, byStudent, map[string]any{"tutor_id": "tutor-2"})
		require.NoError(t, err)
	})

	t.Run("TutorCannotWrite", func(t *testing.T) {
		r, _ := setup(t)
		err := collection(t, r, service.CollectionAssignments).Delete(ctx, tutor, []repository.Filter{repository.Eq("student_id", "x")})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

// ── Sessions ────────────────────────────────────────────────────────

func TestSessionsInsert(t *testing.T) {
	t.Run("TutorDefaults", func(t *testing.T) {
		r, s := setup(t)
		s.assignments.EXPECT().StudentIDs(gomock.Any(), tutor.ID).Return([]string{"student-1"}, nil)
		s.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, row *model.Session) error {
				assert.Equal(t, tutor.ID, row.TutorID)
				assert.Equal(t, model.SessionScheduled, row.Status)
				assert.False(t, row.IsPaid)
				assert.Equal(t, "09:00", row.StartTime)
				assert.Equal(t, "10:00", row.EndTime)
				assert.Equal(t, "2024-03-05", row.SessionDate)
				return nil
			})

		_, err := collection(t, r, service.CollectionSessions).Insert(ctx, tutor,
			[]byte(`{"tutor_id":"someone","student_id":"student-1","title":"Algèbre","session_date":"2024-03-05"}`))
		require.NoError(t, err)
	})

	t.Run("TutorUnassignedStudent", func(t *testing.T) {
		r, s := setup(t)
		s.assignments.EXPECT().StudentIDs(gomock.Any(), tutor.ID).Return([]string{"student-1"}, nil)

		_, err := collection(t, r, service.CollectionSessions).Insert(ctx, tutor,
			[]byte(`{"student_id":"student-7","title":"Algèbre","session_date":"2024-03-05"}`))
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("TutorBillingStatus", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionSessions).Insert(ctx, tutor,
			[]byte(`{"student_id":"student-1","title":"x","session_date":"2024-03-05","status":"facture_envoyee"}`))
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("AdminNormalizesClock", func(t *testing.T) {
		r, s := setup(t)
		s.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, row *model.Session) error {
				assert.Equal(t, "09:30", row.StartTime)
				assert.Equal(t, "11:00", row.EndTime)
				assert.True(t, row.IsPaid)
				assert.Equal(t, model.SessionReceiptSent, row.Status)
				return nil
			})

		_, err := collection(t, r, service.CollectionSessions).Insert(ctx, admin, []byte(`{
			"tutor_id":"tutor-1","student_id":"student-1","title":"x","session_date":"2024-03-05",
			"start_time":"9:30","end_time":"11:00:00","status":"recu_envoye","is_paid":true}`))
		require.NoError(t, err)
	})

	t.Run("BadDate", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionSessions).Insert(ctx, admin,
			[]byte(`{"tutor_id":"t","student_id":"s","title":"x","session_date":"2024-02-30"}`))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("UserForbidden", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionSessions).Insert(ctx, student,
			[]byte(`{"tutor_id":"t","student_id":"s","title":"x","session_date":"2024-03-05"}`))
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestSessionsWrite(t *testing.T) {
	byID := []repository.Filter{repository.Eq("id", "sess-1")}

	t.Run("TutorScopedToOwnRows", func(t *testing.T) {
		r, s := setup(t)
		want := []repository.Filter{repository.Eq("id", "sess-1"), repository.Eq("tutor_id", tutor.ID)}
		s.sessions.EXPECT().Update(gomock.Any(), want, repository.Patch{"status": "completed"}).
			Return([]model.Session{{ID: "sess-1", Status: model.SessionCompleted}}, nil)

		_, err := collection(t, r, service.CollectionSessions).Update(ctx, tutor, byID, map[string]any{"status": "completed"})
		require.NoError(t, err)
	})

	t.Run("TogglePaidOnly", func(t *testing.T) {
		r, s := setup(t)
		s.sessions.EXPECT().Update(gomock.Any(), byID, repository.Patch{"is_paid": true}).
			Return([]model.Session{{ID: "sess-1", IsPaid: true}}, nil)

		_, err := collection(t, r, service.CollectionSessions).Update(ctx, admin, byID, map[string]any{"is_paid": true})
		require.NoError(t, err)
	})

	t.Run("TutorCannotReassign", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionSessions).Update(ctx, tutor, byID, map[string]any{"tutor_id": "tutor-2"})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("TutorCannotInvoice", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionSessions).Update(ctx, tutor, byID, map[string]any{"status": "facture_envoyee"})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("UserReadOnly", func(t *testing.T) {
		r, _ := setup(t)
		_, err := collection(t, r, service.CollectionSessions).Update(ctx, student, byID, map[string]any{"notes": "x"})
		assert.ErrorIs(t, err, service.ErrForbidden)
		assert.ErrorIs(t, collection(t, r, service.CollectionSessions).Delete(ctx, student, byID), service.ErrForbidden)
	})

	t.Run("TutorDelete", func(t *testing.T) {
		r, s := setup(t)
		want := []repository.Filter{repository.Eq("id", "sess-1"), repository.Eq("tutor_id", tutor.ID)}
		s.sessions.EXPECT().Delete(gomock.Any(), want).Return(int64(1), nil)

		require.NoError(t, collection(t, r, service.CollectionSessions).Delete(ctx, tutor, byID))
	})

	t.Run("UserSelectScoped", func(t *testing.T) {
		r, s := setup(t)
		want := repository.Query{Filters: []repository.Filter{repository.Eq("student_id", student.ID)}}
		s.sessions.EXPECT().List(gomock.Any(), want).Return([]model.Session{}, nil)

		_, err := collection(t, r, service.CollectionSessions).Select(ctx, student, repository.Query{})
		require.NoError(t, err)
	})
}
