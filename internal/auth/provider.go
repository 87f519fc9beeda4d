package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyRegistered distinguishes a duplicate sign-up from other failures.
var ErrAlreadyRegistered = errors.New("user already registered")

// Session is the credential bundle issued after a successful sign-in.
type Session struct {
	UserID       uuid.UUID
	Email        string
	AccessToken  string
	RefreshToken string
	AccessID     string
	ExpiresAt    time.Time
}

// ChangeEvent labels auth state transitions pushed to listeners.
type ChangeEvent string

const (
	EventSignedIn  ChangeEvent = "SIGNED_IN"
	EventSignedOut ChangeEvent = "SIGNED_OUT"
)

// Change carries one auth state transition. Session is nil for sign-out.
type Change struct {
	Event   ChangeEvent
	Session *Session
}

// SignUpParams captures the fields needed to provision an identity.
type SignUpParams struct {
	Email    string
	Password string
	FullName string
}

// Provider is the identity capability consumed by the auth flows. Sign-up
// and sign-in are independently callable; sign-up reports a duplicate via
// ErrAlreadyRegistered.
type Provider interface {
	SignUp(ctx context.Context, params SignUpParams) (uuid.UUID, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessID string) error
	GetSession(ctx context.Context, accessToken string) (*Session, error)
	// OnAuthStateChange registers a push listener and returns its
	// unsubscribe function.
	OnAuthStateChange(fn func(Change)) (unsubscribe func())
}
