package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tutoplus/internal/model"
)

// recorded is the last request seen by the fake server.
type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Auth   string
	Body   map[string]any
}

func setup(t *testing.T, status int, reply string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.Query()
		rec.Auth = r.Header.Get("Authorization")
		rec.Body = nil
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			assert.NoError(t, json.Unmarshal(b, &rec.Body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if reply != "" {
			_, _ = io.WriteString(w, reply)
		}
	}))
	t.Cleanup(srv.Close)
	return Connect(srv.URL + "/"), rec
}

const sessionReply = `{
	"user": {"id": "u1", "email": "u1@example.com", "role": "tutor"},
	"access": {"token": "acc", "expires": "2030-01-01T00:00:00Z"},
	"refresh": {"token": "ref", "expires": "2030-02-01T00:00:00Z"}
}`

func signedIn(c *Client) {
	c.Restore(&Session{User: User{ID: "u1"}, AccessToken: "acc", RefreshToken: "ref"})
}

// ── Query encoding ──────────────────────────────────────────────────

func TestQueryValues(t *testing.T) {
	q := Where(Eq("tutor_id", "t1"), In("student_id", "a", "b")).OrderBy(Desc("session_date"), Asc("start_time"))
	v := q.Values()

	assert.Equal(t, "eq.t1", v.Get("tutor_id"))
	assert.Equal(t, "in.(a,b)", v.Get("student_id"))
	assert.Equal(t, "session_date.desc,start_time.asc", v.Get("order"))
}

func TestQueryValues_EmptyIn(t *testing.T) {
	assert.Equal(t, "in.()", Where(In("id")).Values().Get("id"))
}

func TestOrderBy_DoesNotAlias(t *testing.T) {
	base := Query{Order: make([]Order, 0, 4)}
	a := base.OrderBy(Asc("a"))
	b := base.OrderBy(Asc("b"))
	assert.Equal(t, "a", a.Order[0].Column)
	assert.Equal(t, "b", b.Order[0].Column)
}

// ── Auth ────────────────────────────────────────────────────────────

func TestSignIn_KeepsSession(t *testing.T) {
	c, rec := setup(t, http.StatusOK, sessionReply)

	s, err := c.SignIn(context.Background(), "u1@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/v1/auth/login", rec.Path)
	assert.Equal(t, "u1@example.com", rec.Body["email"])
	assert.Equal(t, model.RoleTutor, s.User.Role)
	assert.Equal(t, "acc", c.Session().AccessToken)
	assert.Equal(t, "ref", c.Session().RefreshToken)
}

func TestSignIn_BadCredentials(t *testing.T) {
	c, _ := setup(t, http.StatusUnauthorized, `{"error":"invalid credentials"}`)

	_, err := c.SignIn(context.Background(), "u1@example.com", "nope")
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusUnauthorized, ge.Status)
	assert.Equal(t, "invalid credentials", ge.Message)
	assert.Nil(t, c.Session())
}

func TestSignUp_WithoutSession(t *testing.T) {
	c, _ := setup(t, http.StatusCreated, `{"user":{"id":"u2","email":"u2@example.com"}}`)

	s, err := c.SignUp(context.Background(), "u2@example.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Nil(t, c.Session())
}

func TestCurrentUser(t *testing.T) {
	t.Run("anonymous makes no call", func(t *testing.T) {
		c, rec := setup(t, http.StatusOK, `{}`)
		u, err := c.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, u)
		assert.Empty(t, rec.Path)
	})

	t.Run("sends bearer", func(t *testing.T) {
		c, rec := setup(t, http.StatusOK, `{"id":"u1","email":"u1@example.com","role":"admin"}`)
		signedIn(c)
		u, err := c.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer acc", rec.Auth)
		assert.Equal(t, model.RoleAdmin, u.Role)
	})
}

func TestSignOut_ClearsEvenOnFailure(t *testing.T) {
	c, rec := setup(t, http.StatusInternalServerError, `{"error":"internal error"}`)
	signedIn(c)

	err := c.SignOut(context.Background())
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "ref", rec.Body["refresh_token"])
	assert.Nil(t, c.Session())
}

func TestSetSession(t *testing.T) {
	t.Run("valid tokens are kept", func(t *testing.T) {
		c, rec := setup(t, http.StatusOK, `{"id":"u9","email":"u9@example.com","role":"user"}`)
		u, err := c.SetSession(context.Background(), "new-acc", "new-ref")
		require.NoError(t, err)
		assert.Equal(t, "Bearer new-acc", rec.Auth)
		assert.Equal(t, "u9", u.ID)
		assert.Equal(t, "u9", c.Session().User.ID)
		assert.Equal(t, "new-ref", c.Session().RefreshToken)
	})

	t.Run("rejected tokens restore the previous session", func(t *testing.T) {
		c, _ := setup(t, http.StatusUnauthorized, `{"error":"invalid or expired token"}`)
		signedIn(c)
		_, err := c.SetSession(context.Background(), "bad", "bad")
		require.Error(t, err)
		assert.Equal(t, "acc", c.Session().AccessToken)
	})
}

func TestVerifyOTP(t *testing.T) {
	c, rec := setup(t, http.StatusOK, sessionReply)

	s, err := c.VerifyOTP(context.Background(), "tok", OTPMagicLink)
	require.NoError(t, err)
	assert.Equal(t, "/v1/auth/verify", rec.Path)
	assert.Equal(t, "magiclink", rec.Body["type"])
	assert.Equal(t, "u1", s.User.ID)
	assert.True(t, s.AccessExpires.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRefresh_RequiresSession(t *testing.T) {
	c, _ := setup(t, http.StatusOK, sessionReply)
	_, err := c.Refresh(context.Background())
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, Session{}.Expired(now))
	assert.True(t, Session{AccessExpires: now}.Expired(now))
	assert.False(t, Session{AccessExpires: now.Add(time.Minute)}.Expired(now))
}

// ── Collections ─────────────────────────────────────────────────────

func TestSelect(t *testing.T) {
	c, rec := setup(t, http.StatusOK, `[{"id":"r1","status":"approuve"},{"id":"r2","status":"en_attente"}]`)
	signedIn(c)

	var rows []model.Registration
	err := c.Select(context.Background(), Registrations, Query{}.OrderBy(Desc("created_at")), &rows)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/v1/rest/registrations", rec.Path)
	assert.Equal(t, []string{"created_at.desc"}, rec.Query["order"])
	require.Len(t, rows, 2)
	assert.Equal(t, model.RegistrationApproved, rows[0].Status)
}

func TestInsert(t *testing.T) {
	c, rec := setup(t, http.StatusCreated, `{"id":"a1","tutor_id":"t1","student_id":"s1"}`)

	var row model.Assignment
	err := c.Insert(context.Background(), TutorAssignments, map[string]string{"tutor_id": "t1", "student_id": "s1"}, &row)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "t1", rec.Body["tutor_id"])
	assert.Equal(t, "a1", row.ID)
}

func TestUpdate(t *testing.T) {
	c, rec := setup(t, http.StatusOK, `[{"id":"s1","is_paid":true}]`)

	var rows []model.Session
	err := c.Update(context.Background(), TutoringSessions, []Filter{Eq("id", "s1")}, map[string]any{"is_paid": true}, &rows)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, rec.Method)
	assert.Equal(t, "eq.s1", rec.Query["id"][0])
	assert.Equal(t, true, rec.Body["is_paid"])
	assert.True(t, rows[0].IsPaid)
}

func TestDelete(t *testing.T) {
	c, rec := setup(t, http.StatusNoContent, "")

	err := c.Delete(context.Background(), TutoringSessions, []Filter{Eq("tutor_id", "t1"), Eq("id", "s1")})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "eq.t1", rec.Query["tutor_id"][0])
}

func TestValidationErrorFields(t *testing.T) {
	c, _ := setup(t, http.StatusBadRequest, `{"error":"validation failed","fields":{"title":"title is required"}}`)

	err := c.Insert(context.Background(), TutoringSessions, map[string]any{}, nil)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "title is required", ge.Fields["title"])
}

func TestErrorWithoutBody(t *testing.T) {
	c, _ := setup(t, http.StatusBadGateway, "")
	err := c.Delete(context.Background(), Profiles, nil)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Bad Gateway", ge.Message)
}

func TestInvoke(t *testing.T) {
	c, rec := setup(t, http.StatusOK, `{"link":"http://app.test/auth/verify?token=x&type=magiclink","token":"x","email":"s@example.com"}`)

	var out struct {
		Token string `json:"token"`
	}
	err := c.Invoke(context.Background(), "impersonate", map[string]string{"userId": "s@example.com", "adminEmail": "a@example.com"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "/v1/admin/impersonate", rec.Path)
	assert.Equal(t, "x", out.Token)
}
