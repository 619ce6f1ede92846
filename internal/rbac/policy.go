package rbac

import "authgate/internal/authn"

// Decision is the outcome of an access check. The two deny kinds are
// distinct because they map to different status codes: a missing
// principal is 401, a principal lacking the role is 403.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) Allowed() bool { return d == Allow }

// Requirement is the policy a route declares: either public or a named
// required role.
type Requirement struct {
	role   string
	public bool
}

// Public declares an endpoint open to unauthenticated requests.
func Public() Requirement { return Requirement{public: true} }

// Authenticated declares an endpoint open to any principal, whatever its
// roles.
func Authenticated() Requirement { return Requirement{} }

// Role declares an endpoint restricted to principals holding name.
func Role(name string) Requirement { return Requirement{role: name} }

// Check evaluates a requirement against the request principal. It is a
// pure function: identical inputs always yield identical decisions.
func Check(p *authn.Principal, req Requirement) Decision {
	if req.public {
		return Allow
	}
	if p == nil {
		return DenyUnauthenticated
	}
	if req.role != "" && !p.HasRole(req.role) {
		return DenyForbidden
	}
	return Allow
}
