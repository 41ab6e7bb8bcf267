package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/config"
	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/workflow"
)

type reply struct {
	status int
	body   string
}

// fakeAPI answers "METHOD /path" routes and records every request.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []string
	auth   map[string]string
	bodies map[string]map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, key)
	f.auth[key] = r.Header.Get("Authorization")
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		f.bodies[key] = m
	}
	w.Header().Set("Content-Type", "application/json")
	rep, ok := f.routes[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
		return
	}
	if rep.status == 0 {
		rep.status = http.StatusOK
	}
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (f *fakeAPI) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

var today = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, stdin string, routes map[string]reply) (*commandLine, *bytes.Buffer, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{routes: routes, auth: map[string]string{}, bodies: map[string]map[string]any{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	path := filepath.Join(t.TempDir(), "tutorctl", "session.json")
	return &commandLine{
		cfg:   &config.ClientConfig{APIURL: srv.URL, SessionFile: path},
		gw:    gateway.Connect(srv.URL),
		store: sessionStore{path: path},
		term:  &terminal{in: bufio.NewReader(strings.NewReader(stdin)), out: out},
		out:   out,
		now:   func() time.Time { return today },
		log:   zap.NewNop(),
	}, out, api
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	prev := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = prev })
}

func storeSession(t *testing.T, cli *commandLine, role string, expires time.Time) {
	t.Helper()
	require.NoError(t, cli.store.Save(&gateway.Session{
		User:          gateway.User{ID: "me", Email: "me@tutoplus.ca", Role: model.Role(role)},
		AccessToken:   "acc",
		RefreshToken:  "ref",
		AccessExpires: expires,
	}))
}

func sessionJSON(role, token string) string {
	return `{"user":{"id":"me","email":"me@tutoplus.ca","role":"` + role + `"},` +
		`"access":{"token":"` + token + `","expires":"2030-01-01T00:00:00Z"},` +
		`"refresh":{"token":"ref2","expires":"2030-02-01T00:00:00Z"}}`
}

// ── Session store ───────────────────────────────────────────────────

func TestSessionStore_RoundTrip(t *testing.T) {
	s := sessionStore{path: filepath.Join(t.TempDir(), "nested", "session.json")}

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	in := &gateway.Session{User: gateway.User{ID: "u1", Email: "a@b.ca"}, AccessToken: "acc", RefreshToken: "ref"}
	require.NoError(t, s.Save(in))

	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, got)

	require.NoError(t, s.Save(nil))
	_, err = os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, s.Save(nil))
}

func TestSessionStore_Corrupt(t *testing.T) {
	s := sessionStore{path: filepath.Join(t.TempDir(), "session.json")}
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0o600))

	_, err := s.Load()
	assert.Error(t, err)
}

// ── Dispatch ────────────────────────────────────────────────────────

func Test_commandLine_help(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command"},
		{name: "unknown command", args: []string{"lol"}},
		{name: "login without email", args: []string{"login"}},
		{name: "registration without id", args: []string{"registration"}},
		{name: "recover without link or token", args: []string{"recover"}},
		{name: "flag help", args: []string{"sessions", "-h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _, _ := setup(t, "", nil)
			err := cli.run(context.Background(), append([]string{"tutorctl"}, tt.args...))
			assert.ErrorIs(t, err, errHelp)
		})
	}
}

// ── Auth ────────────────────────────────────────────────────────────

func TestLogin_StoresSession(t *testing.T) {
	cli, out, api := setup(t, "", map[string]reply{
		"POST /v1/auth/login": {body: sessionJSON("tutor", "acc")},
	})
	mockPassword(t, "secret12")

	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "login", "-email", "me@tutoplus.ca"}))
	assert.Equal(t, "secret12", api.bodies["POST /v1/auth/login"]["password"])
	assert.Contains(t, out.String(), "Espace tuteur")

	stored, err := cli.store.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "acc", stored.AccessToken)
}

func TestLogin_BadCredentials(t *testing.T) {
	cli, _, _ := setup(t, "", map[string]reply{
		"POST /v1/auth/login": {status: http.StatusUnauthorized, body: `{"error":"Invalid login credentials"}`},
	})
	mockPassword(t, "nope")

	err := cli.run(context.Background(), []string{"tutorctl", "login", "-email", "me@tutoplus.ca"})
	var fe *workflow.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Invalid login credentials", fe.Message)

	stored, err := cli.store.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestLogout_ForgetsSession(t *testing.T) {
	cli, _, api := setup(t, "", map[string]reply{
		"POST /v1/auth/logout": {status: http.StatusNoContent},
	})
	storeSession(t, cli, "user", today.Add(time.Hour))

	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "logout"}))
	assert.True(t, api.called("POST /v1/auth/logout"))
	_, err := os.Stat(cli.store.path)
	assert.True(t, os.IsNotExist(err))
}

func TestRecover_EmailedLink(t *testing.T) {
	cli, out, api := setup(t, "", map[string]reply{
		"POST /v1/auth/verify": {body: sessionJSON("user", "acc3")},
		"PUT /v1/auth/user":    {status: http.StatusNoContent},
	})
	mockPassword(t, "secret12")

	link := "http://localhost:3000/reset-password?token=abc123"
	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "recover", "-link", link}))
	assert.Equal(t, "abc123", api.bodies["POST /v1/auth/verify"]["token"])
	assert.Equal(t, "recovery", api.bodies["POST /v1/auth/verify"]["type"])
	assert.Equal(t, "Bearer acc3", api.auth["PUT /v1/auth/user"])
	assert.Equal(t, "secret12", api.bodies["PUT /v1/auth/user"]["password"])
	assert.Contains(t, out.String(), "Mot de passe mis à jour")
}

func TestResume_RefreshesExpiredSession(t *testing.T) {
	cli, out, api := setup(t, "", map[string]reply{
		"POST /v1/auth/refresh": {body: sessionJSON("user", "acc2")},
		"GET /v1/auth/user":     {body: `{"id":"me","email":"me@tutoplus.ca","role":"user"}`},
	})
	storeSession(t, cli, "user", today.Add(-time.Minute))

	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "whoami"}))
	assert.Equal(t, "Bearer acc2", api.auth["GET /v1/auth/user"])
	assert.Contains(t, out.String(), "me@tutoplus.ca")

	stored, err := cli.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "acc2", stored.AccessToken)
}

func TestResume_DropsRejectedSession(t *testing.T) {
	cli, _, api := setup(t, "", map[string]reply{
		"POST /v1/auth/refresh": {status: http.StatusUnauthorized, body: `{"error":"refresh token expired"}`},
	})
	storeSession(t, cli, "user", today.Add(-time.Minute))

	err := cli.run(context.Background(), []string{"tutorctl", "whoami"})
	assert.ErrorIs(t, err, workflow.ErrNotSignedIn)
	assert.False(t, api.called("GET /v1/auth/user"))
	_, err = os.Stat(cli.store.path)
	assert.True(t, os.IsNotExist(err))
}

// ── Role checks ─────────────────────────────────────────────────────

func TestSessions_StudentIsRefused(t *testing.T) {
	cli, _, _ := setup(t, "", nil)
	storeSession(t, cli, "user", today.Add(time.Hour))

	err := cli.run(context.Background(), []string{"tutorctl", "sessions"})
	assert.ErrorIs(t, err, errNoSchedule)
}

func TestRegistrations_NeedsAdmin(t *testing.T) {
	cli, _, api := setup(t, "", nil)
	storeSession(t, cli, "tutor", today.Add(time.Hour))

	err := cli.run(context.Background(), []string{"tutorctl", "registrations"})
	assert.EqualError(t, err, "this command needs an administrator account")
	assert.Empty(t, api.calls)
}

// ── Back office ─────────────────────────────────────────────────────

const registrationRows = `[{"id":"r1","user_id":"s1","student_name":"Léa","parent_name":"Marc",
	"service":"cegep","status":"en_attente","contact_status":"non_contacte","created_at":"2025-03-01T10:00:00Z"}]`

func TestRegistrations_List(t *testing.T) {
	cli, out, _ := setup(t, "", map[string]reply{
		"GET /v1/rest/registrations": {body: registrationRows},
	})
	storeSession(t, cli, "admin", today.Add(time.Hour))

	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "registrations", "-status", "en_attente"}))
	assert.Contains(t, out.String(), "Léa")
	assert.Contains(t, out.String(), "Cégep")
	assert.Contains(t, out.String(), "En attente")
}

func TestDeleteRegistration_Declined(t *testing.T) {
	cli, out, api := setup(t, "n\n", map[string]reply{
		"GET /v1/rest/registrations": {body: registrationRows},
	})
	storeSession(t, cli, "admin", today.Add(time.Hour))

	err := cli.run(context.Background(), []string{"tutorctl", "delete-registration", "-id", "r1"})
	assert.ErrorIs(t, err, workflow.ErrCancelled)
	assert.Contains(t, out.String(), "[o/N]")
	assert.False(t, api.called("DELETE /v1/rest/registrations"))
}

func TestDeleteRegistration_AssumeYes(t *testing.T) {
	cli, _, api := setup(t, "", map[string]reply{
		"GET /v1/rest/registrations":    {body: registrationRows},
		"DELETE /v1/rest/registrations": {status: http.StatusNoContent},
	})
	storeSession(t, cli, "admin", today.Add(time.Hour))

	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "delete-registration", "-id", "r1", "-y"}))
	assert.True(t, api.called("DELETE /v1/rest/registrations"))
}

// ── Tutor board ─────────────────────────────────────────────────────

func tutorRoutes() map[string]reply {
	return map[string]reply{
		"GET /v1/rest/tutor_assignments": {body: `[{"id":"a1","tutor_id":"me","student_id":"st1"}]`},
		"GET /v1/rest/profiles":          {body: `[{"id":"st1","email":"st1@tutoplus.ca","role":"user"}]`},
		"GET /v1/rest/registrations":     {body: `[{"id":"r1","user_id":"st1","student_name":"Léa","phone":"514-555-0100","service":"secondaire"}]`},
		"GET /v1/rest/tutoring_sessions": {body: `[{"id":"s1","tutor_id":"me","student_id":"st1","title":"Algèbre",
			"session_date":"2025-03-12","start_time":"16:00","end_time":"17:00","status":"scheduled","is_paid":false}]`},
		"PATCH /v1/rest/tutoring_sessions": {status: http.StatusOK, body: `[]`},
	}
}

func TestCalendar_Month(t *testing.T) {
	cli, out, _ := setup(t, "", tutorRoutes())
	storeSession(t, cli, "tutor", today.Add(time.Hour))

	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "calendar", "-month", "2025-03"}))
	s := out.String()
	assert.Contains(t, s, "2025-03")
	assert.Contains(t, s, "12*")
	assert.Contains(t, s, "4:00 PM - 5:00 PM  Algèbre")
}

func TestCalendar_BadMonth(t *testing.T) {
	cli, _, _ := setup(t, "", tutorRoutes())
	storeSession(t, cli, "tutor", today.Add(time.Hour))

	err := cli.run(context.Background(), []string{"tutorctl", "calendar", "-month", "mars"})
	assert.Error(t, err)
}

func TestStudents(t *testing.T) {
	cli, out, _ := setup(t, "", tutorRoutes())
	storeSession(t, cli, "tutor", today.Add(time.Hour))

	require.NoError(t, cli.run(context.Background(), []string{"tutorctl", "students"}))
	assert.Contains(t, out.String(), "Léa")
	assert.Contains(t, out.String(), "514-555-0100")
}

func TestSessionUpdate_KeepsUnsetFields(t *testing.T) {
	cli, _, api := setup(t, "", tutorRoutes())
	storeSession(t, cli, "tutor", today.Add(time.Hour))

	require.NoError(t, cli.run(context.Background(),
		[]string{"tutorctl", "session-update", "-id", "s1", "-title", "Géométrie", "-end", "17:30"}))

	body := api.bodies["PATCH /v1/rest/tutoring_sessions"]
	require.NotNil(t, body)
	assert.Equal(t, "Géométrie", body["title"])
	assert.Equal(t, "2025-03-12", body["session_date"])
	assert.Equal(t, "16:00", body["start_time"])
	assert.Equal(t, "17:30", body["end_time"])
	assert.Equal(t, "st1", body["student_id"])
	assert.NotContains(t, body, "tutor_id")
}

func TestSessionStatus_TutorCannotInvoice(t *testing.T) {
	cli, _, api := setup(t, "", tutorRoutes())
	storeSession(t, cli, "tutor", today.Add(time.Hour))

	err := cli.run(context.Background(), []string{"tutorctl", "session-status", "-id", "s1", "-status", "facture_envoyee"})
	var fe *workflow.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "status", fe.Field)
	assert.False(t, api.called("PATCH /v1/rest/tutoring_sessions"))
}
