package confirm

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
	pkgerrors "github.com/servanahq/servana-backend/pkg/errors"
	"github.com/servanahq/servana-backend/pkg/logger"
)

type stubUserRepo struct {
	user      *models.User
	confirmed []uuid.UUID
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) MarkEmailConfirmed(_ context.Context, id uuid.UUID) error {
	s.confirmed = append(s.confirmed, id)
	return nil
}

func buildConfirmService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo: repo,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestConfirmMarksAccount(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@b.com"}
	repo := &stubUserRepo{user: user}
	svc := buildConfirmService(t, repo)

	if err := svc.Confirm(context.Background(), " A@B.com "); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(repo.confirmed) != 1 || repo.confirmed[0] != user.ID {
		t.Fatalf("expected confirm for %s, got %v", user.ID, repo.confirmed)
	}
}

func TestConfirmAlreadyConfirmedIsNoOp(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@b.com", EmailConfirmed: true}
	repo := &stubUserRepo{user: user}
	svc := buildConfirmService(t, repo)

	if err := svc.Confirm(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(repo.confirmed) != 0 {
		t.Fatal("already confirmed account must not be updated")
	}
}

func TestConfirmUnknownEmailIsNotFound(t *testing.T) {
	svc := buildConfirmService(t, &stubUserRepo{})

	err := svc.Confirm(context.Background(), "missing@b.com")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConfirmRequiresEmail(t *testing.T) {
	svc := buildConfirmService(t, &stubUserRepo{})

	err := svc.Confirm(context.Background(), "   ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
