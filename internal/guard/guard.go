package guard

import (
	"github.com/servanahq/servana-backend/internal/authstate"
	"github.com/servanahq/servana-backend/pkg/enums"
)

// LoginPath is the anonymous entry point.
const LoginPath = "/login/customer"

// Kind enumerates the guard's possible decisions.
type Kind int

const (
	// KindLoading renders a placeholder; no redirect decision is made
	// until the initial session fetch resolves.
	KindLoading Kind = iota
	// KindRedirectLogin sends an anonymous request to the login page.
	KindRedirectLogin
	// KindRedirectHome sends an authorized-but-wrong-role request to that
	// role's own landing area.
	KindRedirectHome
	// KindAllow renders the protected content.
	KindAllow
)

// Outcome is the guard's decision for one request.
type Outcome struct {
	Kind Kind
	// Location is the redirect target for the redirect kinds.
	Location string
	// From preserves the originally requested path for the post-login
	// bounce-back.
	From string
}

// Evaluate decides render/redirect/loading purely from the auth snapshot.
// A wrong-role request degrades to "take you where you belong": it lands
// on the holder's own dashboard, never an error page.
func Evaluate(snap authstate.Snapshot, requestedPath string, required []enums.Role) Outcome {
	if snap.IsLoading {
		return Outcome{Kind: KindLoading}
	}

	if snap.Session == nil {
		return Outcome{Kind: KindRedirectLogin, Location: LoginPath, From: requestedPath}
	}

	if len(required) > 0 {
		role := enums.RoleCustomer
		if snap.Role != nil {
			role = *snap.Role
		}
		if !roleIn(role, required) {
			return Outcome{Kind: KindRedirectHome, Location: role.HomePath()}
		}
	}

	return Outcome{Kind: KindAllow}
}

func roleIn(role enums.Role, set []enums.Role) bool {
	for _, candidate := range set {
		if role == candidate {
			return true
		}
	}
	return false
}
