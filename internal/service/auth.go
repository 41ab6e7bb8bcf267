package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/config"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/queue"
	"github.com/iliyamo/tutoplus/internal/repository"
	"github.com/iliyamo/tutoplus/internal/utils"
)

// TokenPart is a token with its expiry.
type TokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// UserPart is the identity returned with a session.
type UserPart struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// AuthSession is an issued access/refresh pair.
type AuthSession struct {
	User    UserPart  `json:"user"`
	Access  TokenPart `json:"access"`
	Refresh TokenPart `json:"refresh"`
}

// AuthService issues and rotates sessions, and runs password recovery.
type AuthService struct {
	Cfg      config.Config
	Users    UserStore
	Profiles ProfileStore
	Tokens   TokenStore
	Mail     MailPublisher
	Log      *zap.Logger
}

func NewAuthService(cfg config.Config, u UserStore, p ProfileStore, t TokenStore, m MailPublisher, log *zap.Logger) *AuthService {
	return &AuthService{Cfg: cfg, Users: u, Profiles: p, Tokens: t, Mail: m, Log: log}
}

// SignUp creates an identity and its user profile, then opens a session.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (AuthSession, error) {
	email = normalizeEmail(email)
	if email == "" {
		return AuthSession{}, invalid("email", "is required")
	}
	if err := utils.CheckNewPassword(password, password); err != nil {
		return AuthSession{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	p, err := s.Users.Create(ctx, email, password, model.RoleUser, s.Cfg.BcryptCost)
	if err != nil {
		return AuthSession{}, err
	}
	s.publish(ctx, queue.MailEvent{Kind: queue.MailWelcome, To: p.Email, Link: s.Cfg.FrontendURL + "/login"})
	return s.issue(ctx, p.ID, p.Email, p.Role)
}

// Login verifies credentials. Unknown emails and wrong passwords both
// yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthSession, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return AuthSession{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthSession{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthSession{}, ErrInvalidCredentials
	}
	return s.sessionFor(ctx, u)
}

// Refresh revokes raw and returns a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, raw string) (AuthSession, error) {
	hash := utils.HashToken(strings.TrimSpace(raw))
	userID, err := s.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return AuthSession{}, ErrUnauthorized
	}
	if err != nil {
		return AuthSession{}, err
	}
	if err := s.Tokens.RevokeByHash(ctx, hash); err != nil {
		return AuthSession{}, err
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return AuthSession{}, err
	}
	return s.sessionFor(ctx, u)
}

// Logout revokes one refresh token, or every token of userID when raw is
// empty.
func (s *AuthService) Logout(ctx context.Context, userID, raw string) error {
	if raw = strings.TrimSpace(raw); raw != "" {
		return s.Tokens.RevokeByHash(ctx, utils.HashToken(raw))
	}
	if userID == "" {
		return ErrUnauthorized
	}
	return s.Tokens.RevokeAllForUser(ctx, userID)
}

// Recover issues a recovery token and queues the email. Unknown addresses
// succeed silently so the endpoint does not reveal which accounts exist.
func (s *AuthService) Recover(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.Log.Info("recovery requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := utils.NewOneTimeToken(s.Cfg.RecoveryTTLMin)
	if err != nil {
		return err
	}
	if err := s.Tokens.StoreOneTime(ctx, u.ID, model.TokenRecovery, utils.HashToken(tok.Raw), tok.Exp); err != nil {
		return err
	}
	s.publish(ctx, queue.MailEvent{
		Kind:      queue.MailPasswordRecovery,
		To:        u.Email,
		Link:      s.Cfg.FrontendURL + "/reset-password?token=" + tok.Raw,
		ExpiresAt: &tok.Exp,
	})
	return nil
}

// Verify exchanges a single-use token of kind for a session.
func (s *AuthService) Verify(ctx context.Context, raw string, kind model.TokenKind) (AuthSession, error) {
	if !kind.Valid() {
		return AuthSession{}, invalid("type", "must be magiclink or recovery")
	}
	userID, err := s.Tokens.ConsumeOneTime(ctx, kind, utils.HashToken(strings.TrimSpace(raw)))
	if errors.Is(err, repository.ErrTokenInvalid) {
		return AuthSession{}, ErrUnauthorized
	}
	if err != nil {
		return AuthSession{}, err
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return AuthSession{}, err
	}
	return s.sessionFor(ctx, u)
}

// CurrentUser returns the identity behind userID with its profile role.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (UserPart, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserPart{}, ErrUnauthorized
	}
	if err != nil {
		return UserPart{}, err
	}
	role, err := s.roleOf(ctx, u)
	if err != nil {
		return UserPart{}, err
	}
	return UserPart{ID: u.ID, Email: u.Email, Role: role}, nil
}

// UpdatePassword replaces the password of userID.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, password string) error {
	if err := utils.CheckNewPassword(password, password); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.Users.UpdatePassword(ctx, userID, password, s.Cfg.BcryptCost)
}

func (s *AuthService) sessionFor(ctx context.Context, u model.User) (AuthSession, error) {
	role, err := s.roleOf(ctx, u)
	if err != nil {
		return AuthSession{}, err
	}
	return s.issue(ctx, u.ID, u.Email, role)
}

// roleOf reads the profile role. An identity without a profile row is a
// plain user, except the designated administrator address.
func (s *AuthService) roleOf(ctx context.Context, u model.User) (model.Role, error) {
	p, err := s.Profiles.GetByID(ctx, u.ID)
	if errors.Is(err, repository.ErrNotFound) {
		if strings.EqualFold(u.Email, s.Cfg.AdminEmail) {
			return model.RoleAdmin, nil
		}
		return model.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

func (s *AuthService) issue(ctx context.Context, userID, email string, role model.Role) (AuthSession, error) {
	access, err := utils.NewAccessToken(s.Cfg.JWTSecret, userID, email, string(role), s.Cfg.AccessTTLMin)
	if err != nil {
		return AuthSession{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.Cfg.RefreshTTLDays)
	if err != nil {
		return AuthSession{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.Tokens.StoreRefresh(ctx, userID, utils.HashToken(refresh.Raw), refresh.Exp); err != nil {
		return AuthSession{}, fmt.Errorf("save refresh: %w", err)
	}
	return AuthSession{
		User:    UserPart{ID: userID, Email: email, Role: role},
		Access:  TokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: TokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// publish queues ev. A broker failure is logged and does not fail the
// request that produced the event.
func (s *AuthService) publish(ctx context.Context, ev queue.MailEvent) {
	if s.Mail == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.RequestedAt = time.Now().UTC()
	if err := s.Mail.PublishMail(ctx, ev); err != nil {
		s.Log.Warn("publish mail event failed", zap.String("kind", ev.Kind), zap.Error(err))
	}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
