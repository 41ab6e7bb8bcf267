// Package gateway is the client side of the Tutoplus API. Workflows talk to
// the backend only through the Gateway interface; a *Client is created once
// with Connect and injected wherever it is needed.
package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/tutoplus/internal/model"
)

// OTPType selects which single-use token VerifyOTP exchanges.
type OTPType string

const (
	OTPMagicLink OTPType = "magiclink"
	OTPRecovery  OTPType = "recovery"
)

// User is the authenticated identity.
type User struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// Session holds the tokens of a signed-in user. It is what callers persist
// between runs and hand back through Restore.
type Session struct {
	User           User      `json:"user"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	AccessExpires  time.Time `json:"access_expires"`
	RefreshExpires time.Time `json:"refresh_expires"`
}

// Expired reports whether the access token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.AccessExpires.IsZero() && !now.Before(s.AccessExpires)
}

// Gateway is the remote data store as seen by the workflows. Every call is
// a single request: no retries and no timeout beyond ctx.
type Gateway interface {
	// CurrentUser returns nil, nil when no one is signed in.
	CurrentUser(ctx context.Context) (*User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// SignUp may return a nil session when the backend does not open one.
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	SetSession(ctx context.Context, accessToken, refreshToken string) (*User, error)
	UpdatePassword(ctx context.Context, password string) error
	VerifyOTP(ctx context.Context, token string, kind OTPType) (*Session, error)

	Select(ctx context.Context, collection string, q Query, out any) error
	Insert(ctx context.Context, collection string, record, out any) error
	Update(ctx context.Context, collection string, filters []Filter, patch map[string]any, out any) error
	Delete(ctx context.Context, collection string, filters []Filter) error
	Invoke(ctx context.Context, function string, body, out any) error
}

// Client implements Gateway over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu      sync.RWMutex
	session *Session
}

var _ Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

// WithSession starts the client signed in.
func WithSession(s Session) Option {
	return func(c *Client) { c.session = &s }
}

// Connect returns a client for the API at baseURL. Without WithSession it
// starts anonymous.
func Connect(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns a copy of the current session, or nil when anonymous.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Restore replaces the current session without contacting the server.
// A nil session signs the client out locally.
func (c *Client) Restore(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == nil {
		c.session = nil
		return
	}
	cp := *s
	c.session = &cp
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}
