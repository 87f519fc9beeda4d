package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/pkg/enums"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

type stubProvider struct {
	signUpID     uuid.UUID
	signUpErr    error
	signInErr    error
	signInCalled bool
	signUpCalled bool
}

func (s *stubProvider) SignUp(context.Context, SignUpParams) (uuid.UUID, error) {
	s.signUpCalled = true
	return s.signUpID, s.signUpErr
}

func (s *stubProvider) SignInWithPassword(_ context.Context, email, _ string) (*Session, error) {
	s.signInCalled = true
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return &Session{
		UserID:       s.signUpID,
		Email:        email,
		AccessToken:  "access",
		RefreshToken: "refresh",
		AccessID:     "jti",
	}, nil
}

func (s *stubProvider) SignOut(context.Context, string) error { return nil }

func (s *stubProvider) GetSession(context.Context, string) (*Session, error) { return nil, nil }

func (s *stubProvider) OnAuthStateChange(func(Change)) func() { return func() {} }

type stubAssigner struct {
	assigned map[uuid.UUID]enums.Role
	err      error
}

func (s *stubAssigner) Assign(_ context.Context, userID uuid.UUID, role enums.Role) error {
	if s.err != nil {
		return s.err
	}
	if s.assigned == nil {
		s.assigned = make(map[uuid.UUID]enums.Role)
	}
	s.assigned[userID] = role
	return nil
}

type stubResolver struct {
	role enums.Role
}

func (s *stubResolver) Resolve(context.Context, uuid.UUID) enums.Role { return s.role }

type stubConfirmer struct {
	err    error
	called bool
}

func (s *stubConfirmer) Confirm(context.Context, string) error {
	s.called = true
	return s.err
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func buildRegisterService(t *testing.T, provider *stubProvider, assigner *stubAssigner, confirmer *stubConfirmer, role enums.Role) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		Provider:     provider,
		Roles:        assigner,
		RoleResolver: &stubResolver{role: role},
		Confirmer:    confirmer,
		Logger:       newTestLogger(),
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	return svc
}

func TestSignUpProvisionsRoleAndSession(t *testing.T) {
	userID := uuid.New()
	provider := &stubProvider{signUpID: userID}
	assigner := &stubAssigner{}
	confirmer := &stubConfirmer{}

	svc := buildRegisterService(t, provider, assigner, confirmer, enums.RoleVendor)
	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "A@B.com",
		Password: "pw123456",
		FullName: "Vendor One",
		Role:     enums.RoleVendor,
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if assigner.assigned[userID] != enums.RoleVendor {
		t.Fatalf("expected vendor role row, got %v", assigner.assigned)
	}
	if !confirmer.called {
		t.Fatal("expected confirm attempt")
	}
	if !provider.signInCalled {
		t.Fatal("expected sign-in to materialize the session")
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected issued tokens")
	}
	if resp.Role != enums.RoleVendor {
		t.Fatalf("expected vendor role, got %s", resp.Role)
	}
}

func TestSignUpSucceedsWhenConfirmFails(t *testing.T) {
	userID := uuid.New()
	provider := &stubProvider{signUpID: userID}
	confirmer := &stubConfirmer{err: errors.New("admin api down")}

	svc := buildRegisterService(t, provider, &stubAssigner{}, confirmer, enums.RoleCustomer)
	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "a@b.com",
		Password: "pw123456",
		FullName: "Customer",
	})
	if err != nil {
		t.Fatalf("confirm failure must not block sign-up: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected an active session despite confirm failure")
	}
}

func TestConfirmFailureIsLoggedWithCause(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	svc, err := NewRegisterService(RegisterServiceParams{
		Provider:     &stubProvider{signUpID: uuid.New()},
		Roles:        &stubAssigner{},
		RoleResolver: &stubResolver{role: enums.RoleCustomer},
		Confirmer:    &stubConfirmer{err: errors.New("admin api down")},
		Logger:       logg,
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}

	if _, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "a@b.com",
		Password: "pw123456",
		FullName: "Customer",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if !strings.Contains(buf.String(), "admin api down") {
		t.Fatalf("expected the confirm failure cause in the log, got %s", buf.String())
	}
}

func TestSignUpDuplicateFallsBackToSignIn(t *testing.T) {
	provider := &stubProvider{signUpErr: ErrAlreadyRegistered}
	assigner := &stubAssigner{}
	confirmer := &stubConfirmer{}

	svc := buildRegisterService(t, provider, assigner, confirmer, enums.RoleCustomer)
	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "dup@example.com",
		Password: "pw123456",
		FullName: "Dup",
	})
	if err != nil {
		t.Fatalf("duplicate sign-up with matching password must succeed: %v", err)
	}
	if len(assigner.assigned) != 0 {
		t.Fatal("duplicate path must not assign a new role row")
	}
	if confirmer.called {
		t.Fatal("duplicate path must not call confirm")
	}
	if resp.AccessToken == "" {
		t.Fatal("expected session from fallback sign-in")
	}
}

func TestSignUpDuplicateWrongPasswordFails(t *testing.T) {
	provider := &stubProvider{
		signUpErr: ErrAlreadyRegistered,
		signInErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"),
	}

	svc := buildRegisterService(t, provider, &stubAssigner{}, &stubConfirmer{}, enums.RoleCustomer)
	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "dup@example.com",
		Password: "wrong",
		FullName: "Dup",
	})
	if err == nil {
		t.Fatal("expected failure when fallback sign-in is rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSignUpRejectsUnknownRole(t *testing.T) {
	svc := buildRegisterService(t, &stubProvider{}, &stubAssigner{}, &stubConfirmer{}, enums.RoleCustomer)
	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "a@b.com",
		Password: "pw123456",
		Role:     enums.Role("superuser"),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
