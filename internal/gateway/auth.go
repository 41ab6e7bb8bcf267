package gateway

import (
	"context"
	"net/http"
	"time"
)

type wireToken struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type wireSession struct {
	User    User      `json:"user"`
	Access  wireToken `json:"access"`
	Refresh wireToken `json:"refresh"`
}

func (w wireSession) session() *Session {
	if w.Access.Token == "" {
		return nil
	}
	return &Session{
		User:           w.User,
		AccessToken:    w.Access.Token,
		RefreshToken:   w.Refresh.Token,
		AccessExpires:  w.Access.Expires,
		RefreshExpires: w.Refresh.Expires,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// open posts to an endpoint answering with a session and keeps it.
func (c *Client) open(ctx context.Context, path string, in any) (*Session, error) {
	var w wireSession
	if err := c.do(ctx, http.MethodPost, path, nil, in, &w); err != nil {
		return nil, err
	}
	s := w.session()
	if s != nil {
		c.Restore(s)
	}
	return s, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if c.accessToken() == "" {
		return nil, nil
	}
	var u User
	if err := c.do(ctx, http.MethodGet, "/v1/auth/user", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.open(ctx, "/v1/auth/login", credentials{email, password})
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.open(ctx, "/v1/auth/signup", credentials{email, password})
}

// SignOut revokes the refresh token and clears the local session. The
// session is dropped even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	s := c.Session()
	if s == nil {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, map[string]string{"refresh_token": s.RefreshToken}, nil)
	c.Restore(nil)
	return err
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/recover", nil, map[string]string{"email": email}, nil)
}

// SetSession adopts tokens obtained elsewhere, such as a recovery redirect.
// The access token is checked against the server first; on failure the
// previous session is kept.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*User, error) {
	prev := c.Session()
	c.Restore(&Session{AccessToken: accessToken, RefreshToken: refreshToken})
	u, err := c.CurrentUser(ctx)
	if err != nil {
		c.Restore(prev)
		return nil, err
	}
	c.Restore(&Session{User: *u, AccessToken: accessToken, RefreshToken: refreshToken})
	return u, nil
}

func (c *Client) UpdatePassword(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPut, "/v1/auth/user", nil, map[string]string{"password": password}, nil)
}

// VerifyOTP exchanges a single-use token for a session and signs in with it.
func (c *Client) VerifyOTP(ctx context.Context, token string, kind OTPType) (*Session, error) {
	return c.open(ctx, "/v1/auth/verify", map[string]string{"token": token, "type": string(kind)})
}

// Refresh rotates the refresh token and keeps the new pair.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	s := c.Session()
	if s == nil || s.RefreshToken == "" {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "not signed in"}
	}
	return c.open(ctx, "/v1/auth/refresh", map[string]string{"refresh_token": s.RefreshToken})
}
