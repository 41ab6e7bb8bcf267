package workflow

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/tutoplus/internal/gateway"
)

// fakeGateway is a testify mock of gateway.Gateway.
type fakeGateway struct{ mock.Mock }

var _ gateway.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) CurrentUser(ctx context.Context) (*gateway.User, error) {
	args := f.Called(ctx)
	u, _ := args.Get(0).(*gateway.User)
	return u, args.Error(1)
}

func (f *fakeGateway) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	args := f.Called(ctx, email, password)
	s, _ := args.Get(0).(*gateway.Session)
	return s, args.Error(1)
}

func (f *fakeGateway) SignOut(ctx context.Context) error {
	return f.Called(ctx).Error(0)
}

func (f *fakeGateway) SignUp(ctx context.Context, email, password string) (*gateway.Session, error) {
	args := f.Called(ctx, email, password)
	s, _ := args.Get(0).(*gateway.Session)
	return s, args.Error(1)
}

func (f *fakeGateway) SendPasswordReset(ctx context.Context, email string) error {
	return f.Called(ctx, email).Error(0)
}

func (f *fakeGateway) SetSession(ctx context.Context, access, refresh string) (*gateway.User, error) {
	args := f.Called(ctx, access, refresh)
	u, _ := args.Get(0).(*gateway.User)
	return u, args.Error(1)
}

func (f *fakeGateway) UpdatePassword(ctx context.Context, password string) error {
	return f.Called(ctx, password).Error(0)
}

func (f *fakeGateway) VerifyOTP(ctx context.Context, token string, kind gateway.OTPType) (*gateway.Session, error) {
	args := f.Called(ctx, token, kind)
	s, _ := args.Get(0).(*gateway.Session)
	return s, args.Error(1)
}

func (f *fakeGateway) Select(ctx context.Context, collection string, q gateway.Query, out any) error {
	return f.Called(ctx, collection, q, out).Error(0)
}

func (f *fakeGateway) Insert(ctx context.Context, collection string, record, out any) error {
	return f.Called(ctx, collection, record, out).Error(0)
}

func (f *fakeGateway) Update(ctx context.Context, collection string, filters []gateway.Filter, patch map[string]any, out any) error {
	return f.Called(ctx, collection, filters, patch, out).Error(0)
}

func (f *fakeGateway) Delete(ctx context.Context, collection string, filters []gateway.Filter) error {
	return f.Called(ctx, collection, filters).Error(0)
}

func (f *fakeGateway) Invoke(ctx context.Context, function string, body, out any) error {
	return f.Called(ctx, function, body, out).Error(0)
}

// fill copies v into the call's last argument, the out pointer.
func fill(v any) func(mock.Arguments) {
	return func(args mock.Arguments) {
		b, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		if err := json.Unmarshal(b, args.Get(len(args)-1)); err != nil {
			panic(err)
		}
	}
}

// fakePrompter answers every confirmation with answer and records alerts.
type fakePrompter struct {
	answer bool
	asked  []string
	alerts []string
}

func (p *fakePrompter) Confirm(_ context.Context, msg string) bool {
	p.asked = append(p.asked, msg)
	return p.answer
}

func (p *fakePrompter) Alert(msg string) { p.alerts = append(p.alerts, msg) }

