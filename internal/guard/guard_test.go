package guard

import (
	"testing"

	"github.com/servanahq/servana-backend/internal/auth"
	"github.com/servanahq/servana-backend/internal/authstate"
	"github.com/servanahq/servana-backend/pkg/enums"
)

func snapshotFor(session *auth.Session, role *enums.Role, loading bool) authstate.Snapshot {
	return authstate.Snapshot{Session: session, Role: role, IsLoading: loading}
}

func rolePtr(role enums.Role) *enums.Role { return &role }

func TestLoadingAlwaysWins(t *testing.T) {
	role := enums.RoleAdmin
	outcome := Evaluate(snapshotFor(&auth.Session{}, &role, true), "/admin/dashboard", []enums.Role{enums.RoleAdmin})
	if outcome.Kind != KindLoading {
		t.Fatalf("expected loading, got %v", outcome.Kind)
	}
}

func TestAnonymousRedirectsToLoginPreservingPath(t *testing.T) {
	outcome := Evaluate(snapshotFor(nil, nil, false), "/vendor/dashboard", nil)
	if outcome.Kind != KindRedirectLogin {
		t.Fatalf("expected login redirect, got %v", outcome.Kind)
	}
	if outcome.Location != LoginPath {
		t.Fatalf("expected %s, got %s", LoginPath, outcome.Location)
	}
	if outcome.From != "/vendor/dashboard" {
		t.Fatalf("expected preserved path, got %s", outcome.From)
	}
}

func TestWrongRoleRedirectsToOwnHome(t *testing.T) {
	outcome := Evaluate(
		snapshotFor(&auth.Session{}, rolePtr(enums.RoleVendor), false),
		"/admin/dashboard",
		[]enums.Role{enums.RoleAdmin},
	)
	if outcome.Kind != KindRedirectHome {
		t.Fatalf("expected home redirect, got %v", outcome.Kind)
	}
	if outcome.Location != "/vendor/dashboard" {
		t.Fatalf("expected vendor home, got %s", outcome.Location)
	}
}

func TestMatchingRoleAllowed(t *testing.T) {
	outcome := Evaluate(
		snapshotFor(&auth.Session{}, rolePtr(enums.RoleAdmin), false),
		"/admin/dashboard",
		[]enums.Role{enums.RoleAdmin},
	)
	if outcome.Kind != KindAllow {
		t.Fatalf("expected allow, got %v", outcome.Kind)
	}
}

func TestNoRequiredRolesAllowsAnyAuthenticated(t *testing.T) {
	outcome := Evaluate(snapshotFor(&auth.Session{}, nil, false), "/bookings", nil)
	if outcome.Kind != KindAllow {
		t.Fatalf("expected allow, got %v", outcome.Kind)
	}
}

func TestUnresolvedRoleTreatedAsCustomer(t *testing.T) {
	outcome := Evaluate(
		snapshotFor(&auth.Session{}, nil, false),
		"/admin/dashboard",
		[]enums.Role{enums.RoleAdmin},
	)
	if outcome.Kind != KindRedirectHome {
		t.Fatalf("expected home redirect, got %v", outcome.Kind)
	}
	if outcome.Location != "/customer/dashboard" {
		t.Fatalf("expected customer home, got %s", outcome.Location)
	}
}
