package roles

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servanahq/servana-backend/pkg/db/models"
	"github.com/servanahq/servana-backend/pkg/enums"
	"github.com/servanahq/servana-backend/pkg/logger"
)

type stubRoleRepo struct {
	row *models.UserRole
	err error
}

func (s *stubRoleRepo) FindByUserID(context.Context, uuid.UUID) (*models.UserRole, error) {
	return s.row, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestResolveReturnsAssignedRole(t *testing.T) {
	userID := uuid.New()
	resolver, err := NewResolver(&stubRoleRepo{row: &models.UserRole{UserID: userID, Role: enums.RoleVendor}}, testLogger())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if got := resolver.Resolve(context.Background(), userID); got != enums.RoleVendor {
		t.Fatalf("expected vendor, got %s", got)
	}
}

func TestResolveDefaultsToCustomerWhenRowMissing(t *testing.T) {
	resolver, err := NewResolver(&stubRoleRepo{err: gorm.ErrRecordNotFound}, testLogger())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if got := resolver.Resolve(context.Background(), uuid.New()); got != enums.RoleCustomer {
		t.Fatalf("expected customer fallback, got %s", got)
	}
}

func TestResolveDefaultsToCustomerOnLookupError(t *testing.T) {
	resolver, err := NewResolver(&stubRoleRepo{err: errors.New("connection reset")}, testLogger())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if got := resolver.Resolve(context.Background(), uuid.New()); got != enums.RoleCustomer {
		t.Fatalf("expected customer fallback, got %s", got)
	}
}

func TestResolveDefaultsToCustomerOnUnknownRole(t *testing.T) {
	resolver, err := NewResolver(&stubRoleRepo{row: &models.UserRole{Role: enums.Role("superuser")}}, testLogger())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	if got := resolver.Resolve(context.Background(), uuid.New()); got != enums.RoleCustomer {
		t.Fatalf("expected customer fallback, got %s", got)
	}
}
