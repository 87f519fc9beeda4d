package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/internal/users"
	pkgAuth "github.com/servanahq/servana-backend/pkg/auth"
	"github.com/servanahq/servana-backend/pkg/config"
	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/security"
)

type stubUserRepo struct {
	user    *models.User
	created []users.CreateUserDTO
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	s.created = append(s.created, dto)
	return &models.User{ID: uuid.New(), Email: dto.Email, PasswordHash: dto.PasswordHash, IsActive: true}, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error { return nil }

type stubSessionManager struct {
	refreshToken string
	revoked      []string
	active       map[string]bool
}

func (s *stubSessionManager) Generate(context.Context, string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func (s *stubSessionManager) HasSession(_ context.Context, accessID string) (bool, error) {
	if s.active == nil {
		return true, nil
	}
	return s.active[accessID], nil
}

func testProviderConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "servana", ExpirationMinutes: 30}
}

func buildLocalProvider(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager, role enums.Role) *LocalProvider {
	t.Helper()
	provider, err := NewLocalProvider(LocalProviderParams{
		UserRepo:       repo,
		SessionManager: sessions,
		RoleResolver:   &stubResolver{role: role},
		JWTConfig:      testProviderConfig(),
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build provider: %v", err)
	}
	return provider
}

func seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{ID: uuid.New(), Email: email, PasswordHash: hash, IsActive: true}
}

func TestLocalProviderSignUpDuplicate(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, "dup@example.com", "pw123456")}
	provider := buildLocalProvider(t, repo, &stubSessionManager{refreshToken: "r"}, enums.RoleCustomer)

	_, err := provider.SignUp(context.Background(), SignUpParams{Email: "Dup@Example.com", Password: "pw123456"})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("duplicate sign-up must not create a user")
	}
}

func TestLocalProviderSignInIssuesRoleBearingToken(t *testing.T) {
	user := seedUser(t, "vendor@example.com", "pw123456")
	repo := &stubUserRepo{user: user}
	provider := buildLocalProvider(t, repo, &stubSessionManager{refreshToken: "refresh"}, enums.RoleVendor)

	var events []Change
	unsubscribe := provider.OnAuthStateChange(func(c Change) { events = append(events, c) })
	defer unsubscribe()

	sess, err := provider.SignInWithPassword(context.Background(), "vendor@example.com", "pw123456")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testProviderConfig(), sess.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleVendor {
		t.Fatalf("expected vendor role claim, got %s", claims.Role)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if sess.RefreshToken != "refresh" {
		t.Fatalf("expected refresh token, got %q", sess.RefreshToken)
	}

	if len(events) != 1 || events[0].Event != EventSignedIn || events[0].Session == nil {
		t.Fatalf("expected one signed-in event, got %+v", events)
	}
}

func TestLocalProviderSignInRejectsWrongPassword(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, "a@example.com", "pw123456")}
	provider := buildLocalProvider(t, repo, &stubSessionManager{refreshToken: "r"}, enums.RoleCustomer)

	_, err := provider.SignInWithPassword(context.Background(), "a@example.com", "wrong")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLocalProviderSignOutEmitsEvent(t *testing.T) {
	sessions := &stubSessionManager{refreshToken: "r"}
	provider := buildLocalProvider(t, &stubUserRepo{}, sessions, enums.RoleCustomer)

	var events []Change
	unsubscribe := provider.OnAuthStateChange(func(c Change) { events = append(events, c) })
	defer unsubscribe()

	if err := provider.SignOut(context.Background(), "jti-1"); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected revoked session, got %v", sessions.revoked)
	}
	if len(events) != 1 || events[0].Event != EventSignedOut || events[0].Session != nil {
		t.Fatalf("expected signed-out event, got %+v", events)
	}
}

func TestLocalProviderGetSessionRoundTrip(t *testing.T) {
	user := seedUser(t, "b@example.com", "pw123456")
	repo := &stubUserRepo{user: user}
	provider := buildLocalProvider(t, repo, &stubSessionManager{refreshToken: "r"}, enums.RoleCustomer)

	sess, err := provider.SignInWithPassword(context.Background(), "b@example.com", "pw123456")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	snapshot, err := provider.GetSession(context.Background(), sess.AccessToken)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if snapshot == nil || snapshot.UserID != user.ID {
		t.Fatalf("expected session snapshot for user, got %+v", snapshot)
	}
}

func TestLocalProviderGetSessionRevokedReturnsNil(t *testing.T) {
	user := seedUser(t, "c@example.com", "pw123456")
	sessions := &stubSessionManager{refreshToken: "r", active: map[string]bool{}}
	provider := buildLocalProvider(t, &stubUserRepo{user: user}, sessions, enums.RoleCustomer)

	sess, err := provider.SignInWithPassword(context.Background(), "c@example.com", "pw123456")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	snapshot, err := provider.GetSession(context.Background(), sess.AccessToken)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if snapshot != nil {
		t.Fatalf("expected nil snapshot for revoked session, got %+v", snapshot)
	}
}
