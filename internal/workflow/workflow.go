// Package workflow holds the view-models behind the Tutoplus screens: the
// back office, the tutor board, the student dashboard and the self-service
// forms. Each one receives a gateway.Gateway at construction and keeps the
// rows it has fetched; local state is patched only after a remote write
// succeeds.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
)

// Prompter is the blocking UI surface: confirmation dialogs and alerts.
type Prompter interface {
	Confirm(ctx context.Context, message string) bool
	Alert(message string)
}

var (
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")
	// ErrSelfLockout blocks an administrator from changing their own account.
	ErrSelfLockout = errors.New("you cannot change your own account")
	// ErrNotFound reports an id missing from the loaded rows.
	ErrNotFound = errors.New("not found in loaded data")
	// ErrNotAssigned reports a student who is not assigned to the tutor.
	ErrNotAssigned = errors.New("student is not assigned to you")
	// ErrNotSignedIn is returned by screens that need a session.
	ErrNotSignedIn = errors.New("not signed in")
)

// Route names the screen a user lands on after signing in.
type Route string

const (
	RouteLogin     Route = "login"
	RouteAdmin     Route = "admin"
	RouteTutor     Route = "tutor"
	RouteDashboard Route = "dashboard"
)

// RouteFor picks the landing screen from the role claim.
func RouteFor(role model.Role) Route {
	switch role {
	case model.RoleAdmin:
		return RouteAdmin
	case model.RoleTutor:
		return RouteTutor
	}
	return RouteDashboard
}

// alert shows err to the user and returns it unchanged.
func alert(p Prompter, action string, err error) error {
	if p != nil {
		p.Alert(fmt.Sprintf("%s: %s", action, message(err)))
	}
	return err
}

// message is the backend text for gateway errors, else err.Error().
func message(err error) string {
	var ge *gateway.Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return err.Error()
}

func confirm(ctx context.Context, p Prompter, msg string) error {
	if p != nil && !p.Confirm(ctx, msg) {
		return ErrCancelled
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func indexOf[T any](rows []T, match func(T) bool) int {
	for i, r := range rows {
		if match(r) {
			return i
		}
	}
	return -1
}

func removeWhere[T any](rows []T, match func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if !match(r) {
			out = append(out, r)
		}
	}
	return out
}
