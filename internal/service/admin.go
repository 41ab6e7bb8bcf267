package service

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/config"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/repository"
	"github.com/iliyamo/tutoplus/internal/utils"
)

// ImpersonationLink is returned by Impersonate. Token is single use.
type ImpersonationLink struct {
	Link  string `json:"link"`
	Token string `json:"token"`
	Email string `json:"email"`
}

// AdminService runs the two privileged operations. Both require the
// claimed administrator email to equal the configured one, checked before
// anything else.
type AdminService struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	Log    *zap.Logger
}

func NewAdminService(cfg config.Config, u UserStore, t TokenStore, log *zap.Logger) *AdminService {
	return &AdminService{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

func (s *AdminService) checkClaim(a Actor, adminEmail string) error {
	if a.Role != model.RoleAdmin {
		return ErrForbidden
	}
	if adminEmail == "" || adminEmail != s.Cfg.AdminEmail {
		return ErrUnauthorized
	}
	return nil
}

// Impersonate issues a magic-link token for the account with targetEmail.
func (s *AdminService) Impersonate(ctx context.Context, a Actor, adminEmail, targetEmail string) (ImpersonationLink, error) {
	if err := s.checkClaim(a, adminEmail); err != nil {
		return ImpersonationLink{}, err
	}
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(targetEmail))
	if err != nil {
		return ImpersonationLink{}, err
	}
	tok, err := utils.NewOneTimeToken(s.Cfg.MagicLinkTTLMin)
	if err != nil {
		return ImpersonationLink{}, err
	}
	if err := s.Tokens.StoreOneTime(ctx, u.ID, model.TokenMagicLink, utils.HashToken(tok.Raw), tok.Exp); err != nil {
		return ImpersonationLink{}, err
	}
	s.Log.Info("impersonation link issued", zap.String("admin", a.ID), zap.String("target", u.ID))
	q := url.Values{"token": {tok.Raw}, "type": {string(model.TokenMagicLink)}}
	return ImpersonationLink{
		Link:  s.Cfg.FrontendURL + "/auth/verify?" + q.Encode(),
		Token: tok.Raw,
		Email: u.Email,
	}, nil
}

// DeleteUser removes the account userID with every row that references
// it, identity included.
func (s *AdminService) DeleteUser(ctx context.Context, a Actor, adminEmail, userID string) error {
	if err := s.checkClaim(a, adminEmail); err != nil {
		return err
	}
	if userID == "" {
		return invalid("userId", "is required")
	}
	if userID == a.ID {
		return ErrSelfLockout
	}
	if err := s.Users.DeleteCascade(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		s.Log.Error("delete user failed", zap.String("user", userID), zap.Error(err))
		return err
	}
	s.Log.Info("user deleted", zap.String("admin", a.ID), zap.String("user", userID))
	return nil
}
