package workflow

import (
	"context"
	"net/url"
	"strings"

	"github.com/iliyamo/tutoplus/internal/gateway"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/utils"
)

// SignUpForm is the public registration form.
type SignUpForm struct {
	Email          string
	Password       string
	Confirm        string
	ParentName     string
	StudentName    string
	Phone          string
	Service        model.Service
	Address        string
	MentalHealth   string
	Specifications string
}

func (f SignUpForm) check() error {
	if err := utils.CheckNewPassword(f.Password, f.Confirm); err != nil {
		return &FormError{"password", err.Error()}
	}
	required := []struct{ field, value string }{
		{"email", f.Email},
		{"parent_name", f.ParentName},
		{"student_name", f.StudentName},
		{"phone", f.Phone},
		{"address", f.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &FormError{r.field, "this field is required"}
		}
	}
	if !f.Service.Valid() {
		return &FormError{"service", "choose a service"}
	}
	return nil
}

// SelfService backs the sign-up, login and password-reset screens.
type SelfService struct {
	gw gateway.Gateway
}

func NewSelfService(gw gateway.Gateway) *SelfService {
	return &SelfService{gw: gw}
}

// inline turns a backend failure into a form-level error.
func inline(err error) error {
	return &FormError{Message: message(err)}
}

// SignUp creates the account, makes sure a session is open, then files
// the registration. Invalid input returns a *FormError before any call.
//
// A failure after the account exists leaves it without a registration;
// signing in again and resubmitting the form completes it.
func (s *SelfService) SignUp(ctx context.Context, f SignUpForm) (model.Registration, error) {
	if err := f.check(); err != nil {
		return model.Registration{}, err
	}
	email := strings.TrimSpace(f.Email)

	sess, err := s.gw.SignUp(ctx, email, f.Password)
	if err != nil {
		return model.Registration{}, inline(err)
	}
	if sess == nil {
		if sess, err = s.gw.SignIn(ctx, email, f.Password); err != nil {
			return model.Registration{}, inline(err)
		}
	}

	rec := map[string]any{
		"user_id":        sess.User.ID,
		"parent_name":    strings.TrimSpace(f.ParentName),
		"student_name":   strings.TrimSpace(f.StudentName),
		"phone":          strings.TrimSpace(f.Phone),
		"email":          email,
		"service":        f.Service,
		"address":        strings.TrimSpace(f.Address),
		"mental_health":  optional(strings.TrimSpace(f.MentalHealth)),
		"specifications": optional(strings.TrimSpace(f.Specifications)),
	}
	var row model.Registration
	if err := s.gw.Insert(ctx, gateway.Registrations, rec, &row); err != nil {
		return model.Registration{}, inline(err)
	}
	return row, nil
}

// Login authenticates and returns the landing screen for the account.
func (s *SelfService) Login(ctx context.Context, email, password string) (Route, error) {
	sess, err := s.gw.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return RouteLogin, inline(err)
	}
	return RouteFor(sess.User.Role), nil
}

func (s *SelfService) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return &FormError{"email", "this field is required"}
	}
	if err := s.gw.SendPasswordReset(ctx, strings.TrimSpace(email)); err != nil {
		return inline(err)
	}
	return nil
}

// ErrInvalidLink is the inline error for a bad recovery redirect.
const ErrInvalidLink = "invalid or expired link"

// RecoveryTokens extracts the tokens of a recovery redirect fragment such
// as "#access_token=..&refresh_token=..&type=recovery".
func RecoveryTokens(fragment string) (access, refresh string, err error) {
	v, perr := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if perr != nil || v.Get("type") != string(gateway.OTPRecovery) ||
		v.Get("access_token") == "" || v.Get("refresh_token") == "" {
		return "", "", &FormError{Message: ErrInvalidLink}
	}
	return v.Get("access_token"), v.Get("refresh_token"), nil
}

// CompletePasswordReset opens the session carried by a recovery redirect
// and sets the new password.
func (s *SelfService) CompletePasswordReset(ctx context.Context, fragment, password, confirmation string) error {
	access, refresh, err := RecoveryTokens(fragment)
	if err != nil {
		return err
	}
	if err := utils.CheckNewPassword(password, confirmation); err != nil {
		return &FormError{"password", err.Error()}
	}
	if _, err := s.gw.SetSession(ctx, access, refresh); err != nil {
		return &FormError{Message: ErrInvalidLink}
	}
	if err := s.gw.UpdatePassword(ctx, password); err != nil {
		return inline(err)
	}
	return nil
}

// CompleteResetLink finishes a reset from the link the user followed. A
// redirect carrying session tokens in its fragment goes through
// CompletePasswordReset; the emailed link carries a single-use token in its
// "token" query parameter, which is only spent once the new password is
// acceptable.
func (s *SelfService) CompleteResetLink(ctx context.Context, link, password, confirmation string) error {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return &FormError{Message: ErrInvalidLink}
	}
	if _, _, err := RecoveryTokens(u.Fragment); err == nil {
		return s.CompletePasswordReset(ctx, u.Fragment, password, confirmation)
	}
	token := u.Query().Get("token")
	if token == "" {
		return &FormError{Message: ErrInvalidLink}
	}
	if err := utils.CheckNewPassword(password, confirmation); err != nil {
		return &FormError{"password", err.Error()}
	}
	if err := s.ExchangeRecoveryToken(ctx, token); err != nil {
		return err
	}
	return s.SetNewPassword(ctx, password, confirmation)
}

// ExchangeRecoveryToken signs in with the token of an emailed reset link,
// after which UpdatePassword can be called.
func (s *SelfService) ExchangeRecoveryToken(ctx context.Context, token string) error {
	if token == "" {
		return &FormError{Message: ErrInvalidLink}
	}
	if _, err := s.gw.VerifyOTP(ctx, token, gateway.OTPRecovery); err != nil {
		return &FormError{Message: ErrInvalidLink}
	}
	return nil
}

// SetNewPassword updates the signed-in account's password.
func (s *SelfService) SetNewPassword(ctx context.Context, password, confirmation string) error {
	if err := utils.CheckNewPassword(password, confirmation); err != nil {
		return &FormError{"password", err.Error()}
	}
	if err := s.gw.UpdatePassword(ctx, password); err != nil {
		return inline(err)
	}
	return nil
}
