package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/internal/users"
	pkgAuth "github.com/servanahq/servana-backend/pkg/auth"
	"github.com/servanahq/servana-backend/pkg/auth/session"
	"github.com/servanahq/servana-backend/pkg/config"
	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type roleResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) enums.Role
}

// LocalProvider implements Provider against the platform's own user store,
// minting JWT access tokens and Redis-backed refresh sessions.
type LocalProvider struct {
	users    userRepository
	sessions sessionManager
	resolver roleResolver
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig

	mu        sync.Mutex
	listeners map[int]func(Change)
	nextID    int
}

// LocalProviderParams bundles the dependencies for a LocalProvider.
type LocalProviderParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	RoleResolver   roleResolver
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewLocalProvider constructs the provider with the supplied dependencies.
func NewLocalProvider(params LocalProviderParams) (*LocalProvider, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	if params.RoleResolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "role resolver required")
	}
	return &LocalProvider{
		users:     params.UserRepo,
		sessions:  params.SessionManager,
		resolver:  params.RoleResolver,
		jwtCfg:    params.JWTConfig,
		pwCfg:     params.PasswordConfig,
		listeners: make(map[int]func(Change)),
	}, nil
}

// SignUp provisions a new identity. Duplicate emails yield ErrAlreadyRegistered.
func (p *LocalProvider) SignUp(ctx context.Context, params SignUpParams) (uuid.UUID, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if _, err := p.users.FindByEmail(ctx, email); err == nil {
		return uuid.Nil, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	hash, err := security.HashPassword(params.Password, p.pwCfg)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := p.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(params.FullName),
	})
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return user.ID, nil
}

// SignInWithPassword verifies credentials and issues a session. The issued
// session is also pushed to every auth-state listener.
func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := p.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}

	role := p.resolver.Resolve(ctx, user.ID)

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(p.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := p.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	issued := &Session{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessID:     accessID,
		ExpiresAt:    now.Add(time.Duration(p.jwtCfg.ExpirationMinutes) * time.Minute),
	}

	p.notify(Change{Event: EventSignedIn, Session: issued})
	return issued, nil
}

// SignOut revokes the refresh session and pushes a sign-out event.
func (p *LocalProvider) SignOut(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) != "" {
		if err := p.sessions.Revoke(ctx, accessID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
		}
	}
	p.notify(Change{Event: EventSignedOut})
	return nil
}

// GetSession validates an access token against the live session store and
// reconstructs the session snapshot.
func (p *LocalProvider) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, nil
	}
	claims, err := pkgAuth.ParseAccessToken(p.jwtCfg, accessToken)
	if err != nil {
		return nil, nil
	}
	active, err := p.sessions.HasSession(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check session")
	}
	if !active {
		return nil, nil
	}

	snapshot := &Session{
		UserID:      claims.UserID,
		Email:       claims.Email,
		AccessToken: accessToken,
		AccessID:    claims.ID,
	}
	if claims.ExpiresAt != nil {
		snapshot.ExpiresAt = claims.ExpiresAt.Time
	}
	return snapshot, nil
}

// OnAuthStateChange registers a listener for sign-in/sign-out pushes.
func (p *LocalProvider) OnAuthStateChange(fn func(Change)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) notify(change Change) {
	p.mu.Lock()
	fns := make([]func(Change), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (p *LocalProvider) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := p.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
