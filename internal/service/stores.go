package service

//go:generate mockgen -source=stores.go -destination=mocks/stores.go -package=mocks

import (
	"context"
	"time"

	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/queue"
	"github.com/iliyamo/tutoplus/internal/repository"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string
	Email string
	Role  model.Role
}

type ProfileStore interface {
	List(ctx context.Context, q repository.Query) ([]model.Profile, error)
	GetByID(ctx context.Context, id string) (model.Profile, error)
	Update(ctx context.Context, filters []repository.Filter, p repository.Patch) ([]model.Profile, error)
	Delete(ctx context.Context, filters []repository.Filter) (int64, error)
}

type RegistrationStore interface {
	List(ctx context.Context, q repository.Query) ([]model.Registration, error)
	Create(ctx context.Context, g *model.Registration) error
	Update(ctx context.Context, filters []repository.Filter, p repository.Patch) ([]model.Registration, error)
	Delete(ctx context.Context, filters []repository.Filter) (int64, error)
}

type AssignmentStore interface {
	List(ctx context.Context, q repository.Query) ([]model.Assignment, error)
	Create(ctx context.Context, a *model.Assignment) error
	Update(ctx context.Context, filters []repository.Filter, p repository.Patch) ([]model.Assignment, error)
	Delete(ctx context.Context, filters []repository.Filter) (int64, error)
	StudentIDs(ctx context.Context, tutorID string) ([]string, error)
	TutorID(ctx context.Context, studentID string) (string, error)
}

type SessionStore interface {
	List(ctx context.Context, q repository.Query) ([]model.Session, error)
	Create(ctx context.Context, s *model.Session) error
	Update(ctx context.Context, filters []repository.Filter, p repository.Patch) ([]model.Session, error)
	Delete(ctx context.Context, filters []repository.Filter) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, email, password string, role model.Role, cost int) (model.Profile, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdatePassword(ctx context.Context, id, password string, cost int) error
	DeleteCascade(ctx context.Context, id string) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	StoreOneTime(ctx context.Context, userID string, kind model.TokenKind, tokenHash string, exp time.Time) error
	ConsumeOneTime(ctx context.Context, kind model.TokenKind, tokenHash string) (string, error)
}

type MailPublisher interface {
	PublishMail(ctx context.Context, ev queue.MailEvent) error
}
