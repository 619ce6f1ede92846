package rbac

import (
	"testing"

	"authgate/internal/authn"
	"authgate/internal/identity"
)

func TestCheck(t *testing.T) {
	alice := &authn.Principal{Login: "alice", Roles: []string{identity.RoleUser}}
	admin := &authn.Principal{Login: "root", Roles: []string{identity.RoleAdmin, identity.RoleUser}}

	cases := []struct {
		name string
		p    *authn.Principal
		req  Requirement
		want Decision
	}{
		{"public without principal", nil, Public(), Allow},
		{"public with principal", alice, Public(), Allow},
		{"required role, unauthenticated", nil, Role(identity.RoleAdmin), DenyUnauthenticated},
		{"required role, missing from set", alice, Role(identity.RoleAdmin), DenyForbidden},
		{"required role, present", admin, Role(identity.RoleAdmin), Allow},
		{"required role, exact member", alice, Role(identity.RoleUser), Allow},
		{"empty role set", &authn.Principal{Login: "ghost"}, Role(identity.RoleUser), DenyForbidden},
		{"authenticated-only, no principal", nil, Authenticated(), DenyUnauthenticated},
		{"authenticated-only, any principal", alice, Authenticated(), Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Check(tc.p, tc.req)
			if got != tc.want {
				t.Fatalf("Check() = %v, want %v", got, tc.want)
			}
			// Pure: same inputs, same decision.
			if again := Check(tc.p, tc.req); again != got {
				t.Fatalf("Check() not deterministic: %v then %v", got, again)
			}
		})
	}
}

func TestDecision_Allowed(t *testing.T) {
	if !Allow.Allowed() {
		t.Fatalf("Allow should be allowed")
	}
	if DenyUnauthenticated.Allowed() || DenyForbidden.Allowed() {
		t.Fatalf("deny decisions must not be allowed")
	}
}
