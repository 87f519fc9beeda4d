package enums

import "testing"

func TestParseRole(t *testing.T) {
	for _, value := range []string{"admin", "vendor", "customer"} {
		role, err := ParseRole(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if !role.IsValid() {
			t.Fatalf("expected %q to be valid", value)
		}
	}

	if _, err := ParseRole("superuser"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestHomePathPerRole(t *testing.T) {
	tests := map[Role]string{
		RoleAdmin:    "/admin/dashboard",
		RoleVendor:   "/vendor/dashboard",
		RoleCustomer: "/customer/dashboard",
	}
	for role, want := range tests {
		if got := role.HomePath(); got != want {
			t.Fatalf("role %s expected home %q got %q", role, want, got)
		}
	}
}

func TestTrackingEnabledOnlyWhileEnroute(t *testing.T) {
	for _, status := range validBookingStatuses {
		want := status == BookingStatusEnroute
		if got := status.TrackingEnabled(); got != want {
			t.Fatalf("status %s tracking enabled = %v, want %v", status, got, want)
		}
	}
}
