package access

import (
	"sort"
	"strings"
)

// Registry maps role names to policies. It is built once and only read
// afterwards, so it is safe for concurrent use.
type Registry struct {
	policies map[string]Policy
	fallback Policy
}

// NewRegistry creates a registry from policies, keyed by RoleName().
// A later policy for the same role replaces an earlier one.
func NewRegistry(policies ...Policy) *Registry {
	r := &Registry{
		policies: make(map[string]Policy, len(policies)),
		fallback: DenyAll(),
	}
	for _, p := range policies {
		if p == nil {
			continue
		}
		r.policies[normalizeRole(p.RoleName())] = p
	}
	return r
}

// DefaultRegistry holds the Student, Professor, Admin and Guest policies.
func DefaultRegistry() *Registry {
	return NewRegistry(Student(), Professor(), Admin(), Guest())
}

// Resolve returns the policy for role, or the deny-all fallback. It never
// returns nil.
func (r *Registry) Resolve(role string) Policy {
	if p, ok := r.policies[normalizeRole(role)]; ok {
		return p
	}
	return r.fallback
}

// CanAccess resolves role and evaluates the request.
func (r *Registry) CanAccess(userID int64, role, resource string, ctx Context) bool {
	return r.Resolve(role).CanAccessResource(userID, resource, ctx)
}

// Roles returns the registered role names in sorted order.
func (r *Registry) Roles() []string {
	roles := make([]string, 0, len(r.policies))
	for name := range r.policies {
		roles = append(roles, name)
	}
	sort.Strings(roles)
	return roles
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
